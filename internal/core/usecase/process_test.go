package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rudradey/campus-companion/internal/core/domain"
)

type repoFake struct {
	doc        *domain.Document
	statuses   []domain.DocumentStatus
	chunkCount int
	getErr     error
}

func (f *repoFake) Create(context.Context, *domain.Document) error { return nil }

func (f *repoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.doc, nil
}

func (f *repoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, _ string) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *repoFake) SaveChunkCount(_ context.Context, _ string, chunkCount int) error {
	f.chunkCount = chunkCount
	return nil
}

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, *domain.Document) (string, error) {
	return f.text, f.err
}

type chunkerFake struct {
	chunks []string
}

func (f *chunkerFake) Split(string) []string { return f.chunks }

type upsertRecorder struct {
	vectorStoreFake
	chunks []domain.DocumentChunk
}

func (f *upsertRecorder) UpsertChunks(_ context.Context, _ *domain.Document, chunks []domain.DocumentChunk) error {
	f.chunks = chunks
	return nil
}

func testDocument() *domain.Document {
	now := time.Now().UTC()
	return &domain.Document{
		ID:          "doc-1",
		Filename:    "hostel_rules.pdf",
		MimeType:    "application/pdf",
		StoragePath: "doc-1_hostel_rules.pdf",
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestProcessDocumentHappyPath(t *testing.T) {
	repo := &repoFake{doc: testDocument()}
	store := &upsertRecorder{}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{text: "some extracted text"},
		&chunkerFake{chunks: []string{"chunk one", "chunk two"}},
		&embedderFake{vector: vectorOfDim(384)},
		store,
		384,
	)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}

	if len(store.chunks) != 2 {
		t.Fatalf("expected 2 indexed chunks, got %d", len(store.chunks))
	}
	for i, c := range store.chunks {
		if c.Position != i {
			t.Fatalf("chunk %d has position %d", i, c.Position)
		}
		if c.DocumentID != "doc-1" {
			t.Fatalf("chunk missing document id")
		}
	}
	if repo.chunkCount != 2 {
		t.Fatalf("expected chunk count 2, got %d", repo.chunkCount)
	}

	want := []domain.DocumentStatus{domain.StatusProcessing, domain.StatusReady}
	if len(repo.statuses) != 2 || repo.statuses[0] != want[0] || repo.statuses[1] != want[1] {
		t.Fatalf("unexpected status transitions: %v", repo.statuses)
	}
}

func TestProcessDocumentMarksFailedOnExtractError(t *testing.T) {
	repo := &repoFake{doc: testDocument()}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{err: errors.New("corrupt pdf")},
		&chunkerFake{chunks: []string{"x"}},
		&embedderFake{vector: vectorOfDim(384)},
		&upsertRecorder{},
		384,
	)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.statuses) != 2 || repo.statuses[1] != domain.StatusFailed {
		t.Fatalf("expected failed status, got %v", repo.statuses)
	}
}

func TestProcessDocumentRejectsDimensionMismatch(t *testing.T) {
	repo := &repoFake{doc: testDocument()}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{text: "text"},
		&chunkerFake{chunks: []string{"x"}},
		&embedderFake{vector: vectorOfDim(256)},
		&upsertRecorder{},
		384,
	)

	err := uc.ProcessByID(context.Background(), "doc-1")
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestProcessDocumentRejectsEmptyText(t *testing.T) {
	repo := &repoFake{doc: testDocument()}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{text: ""},
		&chunkerFake{chunks: nil},
		&embedderFake{vector: vectorOfDim(384)},
		&upsertRecorder{},
		384,
	)

	err := uc.ProcessByID(context.Background(), "doc-1")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

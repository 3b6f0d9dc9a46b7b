package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rudradey/campus-companion/internal/core/domain"
)

type storageFake struct {
	saved map[string][]byte
	err   error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, _ := io.ReadAll(data)
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.saved[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type createRecorder struct {
	repoFake
	created *domain.Document
}

func (f *createRecorder) Create(_ context.Context, doc *domain.Document) error {
	f.created = doc
	return nil
}

type queueFake struct {
	published []string
	retrains  int
	err       error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return nil
}

func (f *queueFake) PublishRetrainRequested(context.Context) error {
	f.retrains++
	return nil
}

func (f *queueFake) SubscribeRetrainRequested(context.Context, func(context.Context) error) error {
	return nil
}

func TestUploadStoresRecordsAndPublishes(t *testing.T) {
	repo := &createRecorder{}
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue)

	doc, err := uc.Upload(context.Background(), "Hostel Rules 2026.pdf", "application/pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected uploaded status, got %s", doc.Status)
	}
	if len(storage.saved) != 1 {
		t.Fatalf("expected one stored object")
	}
	if repo.created == nil || repo.created.ID != doc.ID {
		t.Fatalf("metadata row not created")
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("ingestion event not published: %v", queue.published)
	}
	if strings.Contains(doc.StoragePath, " ") {
		t.Fatalf("storage key must be sanitized: %q", doc.StoragePath)
	}
}

func TestUploadStorageFailureAborts(t *testing.T) {
	uc := NewIngestDocumentUseCase(&createRecorder{}, &storageFake{err: errors.New("disk full")}, &queueFake{})

	if _, err := uc.Upload(context.Background(), "a.pdf", "application/pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Hostel Rules.pdf":  "Hostel_Rules.pdf",
		"../../evil.sh":     "evil.sh",
		"":                  "document.bin",
		"notes@v2 (1).txt": "notes_v2__1_.txt",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

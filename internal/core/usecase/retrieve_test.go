package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rudradey/campus-companion/internal/core/domain"
)

type embedderFake struct {
	vector []float32
	err    error
	query  string
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.query = text
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type vectorStoreFake struct {
	results []domain.RetrievalResult
	err     error
	topK    int
}

func (f *vectorStoreFake) UpsertChunks(context.Context, *domain.Document, []domain.DocumentChunk) error {
	return nil
}

func (f *vectorStoreFake) Query(_ context.Context, _ []float32, topK int) ([]domain.RetrievalResult, error) {
	f.topK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func vectorOfDim(dim int) []float32 {
	v := make([]float32, dim)
	v[0] = 1
	return v
}

func TestRetrieveEmptyStoreReturnsEmptySequence(t *testing.T) {
	embedder := &embedderFake{vector: vectorOfDim(384)}
	store := &vectorStoreFake{}
	uc := NewRetrievalUseCase(embedder, store, 384, 0.3, 3)

	results, err := uc.Retrieve(context.Background(), "hostel rules", 0)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result, got %d", len(results))
	}
	if store.topK != 3 {
		t.Fatalf("expected default topK=3, got %d", store.topK)
	}
}

func TestRetrieveFiltersBelowMinScore(t *testing.T) {
	embedder := &embedderFake{vector: vectorOfDim(384)}
	store := &vectorStoreFake{results: []domain.RetrievalResult{
		{Chunk: domain.DocumentChunk{ID: "a"}, Similarity: 0.89},
		{Chunk: domain.DocumentChunk{ID: "b"}, Similarity: 0.31},
		{Chunk: domain.DocumentChunk{ID: "c"}, Similarity: 0.12},
	}}
	uc := NewRetrievalUseCase(embedder, store, 384, 0.3, 3)

	results, err := uc.Retrieve(context.Background(), "cgpa rules", 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results above floor, got %d", len(results))
	}
	if results[0].Chunk.ID != "a" || results[1].Chunk.ID != "b" {
		t.Fatalf("ordering must be preserved: got %s, %s", results[0].Chunk.ID, results[1].Chunk.ID)
	}
}

func TestRetrieveDimensionMismatchIsFatal(t *testing.T) {
	embedder := &embedderFake{vector: vectorOfDim(256)}
	uc := NewRetrievalUseCase(embedder, &vectorStoreFake{}, 384, 0.3, 3)

	_, err := uc.Retrieve(context.Background(), "query", 3)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRetrieveEmbedErrorPropagates(t *testing.T) {
	embedder := &embedderFake{err: errors.New("embedding service down")}
	uc := NewRetrievalUseCase(embedder, &vectorStoreFake{}, 384, 0.3, 3)

	if _, err := uc.Retrieve(context.Background(), "query", 3); err == nil {
		t.Fatalf("expected error")
	}
}

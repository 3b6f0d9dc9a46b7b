package usecase

import (
	"context"
	"fmt"

	"github.com/rudradey/campus-companion/internal/core/domain"
	"github.com/rudradey/campus-companion/internal/core/ports"
)

// RetrievalUseCase turns query text into ranked grounding chunks: embed
// the query into the corpus space, similarity-search the vector store,
// drop weak matches. An empty result is a valid fallback signal, never
// an error.
type RetrievalUseCase struct {
	embedder ports.Embedder
	vectorDB ports.VectorStore

	embeddingDim int
	minScore     float64
	defaultTopK  int
}

func NewRetrievalUseCase(
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	embeddingDim int,
	minScore float64,
	defaultTopK int,
) *RetrievalUseCase {
	if embeddingDim <= 0 {
		embeddingDim = 384
	}
	if defaultTopK <= 0 {
		defaultTopK = 3
	}
	return &RetrievalUseCase{
		embedder:     embedder,
		vectorDB:     vectorDB,
		embeddingDim: embeddingDim,
		minScore:     minScore,
		defaultTopK:  defaultTopK,
	}
}

func (uc *RetrievalUseCase) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	if topK <= 0 {
		topK = uc.defaultTopK
	}

	vector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	// A dimension mismatch means the corpus and query were embedded with
	// different model versions; that is a configuration bug, not a
	// transient condition, so it surfaces to the caller.
	if len(vector) != uc.embeddingDim {
		return nil, domain.WrapError(
			domain.ErrDimensionMismatch,
			"embed query",
			fmt.Errorf("got %d dimensions, corpus uses %d", len(vector), uc.embeddingDim),
		)
	}

	results, err := uc.vectorDB.Query(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("query vector store: %w", err)
	}

	out := make([]domain.RetrievalResult, 0, len(results))
	for _, r := range results {
		if r.Similarity < uc.minScore {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

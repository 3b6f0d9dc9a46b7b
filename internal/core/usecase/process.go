package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rudradey/campus-companion/internal/core/domain"
	"github.com/rudradey/campus-companion/internal/core/ports"
)

// ProcessDocumentUseCase runs the ingestion pipeline for one uploaded
// document: extract text, chunk, embed, index into the vector store.
// Status transitions uploaded -> processing -> ready/failed.
type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	vectorDB  ports.VectorStore

	embeddingDim int
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	embeddingDim int,
) *ProcessDocumentUseCase {
	if embeddingDim <= 0 {
		embeddingDim = 384
	}
	return &ProcessDocumentUseCase{
		repo:         repo,
		extractor:    extractor,
		chunker:      chunker,
		embedder:     embedder,
		vectorDB:     vectorDB,
		embeddingDim: embeddingDim,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	chunkCount, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveChunkCount(ctx, documentID, chunkCount); err != nil {
		return fmt.Errorf("save chunk count: %w", err)
	}
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (int, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("fetch document by id: %w", err)
	}

	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return 0, domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}

	pieces := uc.chunker.Split(text)
	if len(pieces) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}

	vectors, err := uc.embedder.Embed(ctx, pieces)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(pieces) {
		return 0, domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(pieces)),
		)
	}

	chunks := make([]domain.DocumentChunk, 0, len(pieces))
	for i, piece := range pieces {
		if len(vectors[i]) != uc.embeddingDim {
			return 0, domain.WrapError(
				domain.ErrDimensionMismatch,
				"embed chunks",
				fmt.Errorf("chunk %d: got %d dimensions, want %d", i, len(vectors[i]), uc.embeddingDim),
			)
		}
		chunks = append(chunks, domain.DocumentChunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Filename:   doc.Filename,
			Text:       piece,
			Vector:     vectors[i],
			Position:   i,
		})
	}

	if err := uc.vectorDB.UpsertChunks(ctx, doc, chunks); err != nil {
		return 0, fmt.Errorf("index chunks in vector store: %w", err)
	}
	return len(chunks), nil
}

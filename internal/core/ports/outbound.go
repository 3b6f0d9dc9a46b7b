package ports

import (
	"context"
	"io"

	"github.com/rudradey/campus-companion/internal/core/domain"
)

// Embedder builds fixed-dimension vectors for chunks and query text. The
// corpus and query sides must use the same model version.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Completer is the external language-model inference collaborator.
// Temperature is caller-supplied: deterministic for classification,
// creative for fallback deflection.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// VectorStore indexes chunks and performs similarity search. Query
// results come back ordered descending by similarity; implementations
// may use exact or approximate ranking.
type VectorStore interface {
	UpsertChunks(ctx context.Context, doc *domain.Document, chunks []domain.DocumentChunk) error
	Query(ctx context.Context, vector []float32, topK int) ([]domain.RetrievalResult, error)
}

// Directory resolves structured contact and location lookups against the
// campus database. Entities are pre-normalized query terms.
type Directory interface {
	LookupContacts(ctx context.Context, entities []string) ([]domain.ContactRecord, error)
	LookupLocations(ctx context.Context, entities []string) ([]domain.LocationRecord, error)
}

// TrainingSource supplies labeled examples for the ML tier.
type TrainingSource interface {
	TrainingExamples(ctx context.Context) ([]domain.TrainingExample, error)
}

// DocumentRepository persists and reads document ingestion state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveChunkCount(ctx context.Context, id string, chunkCount int) error
}

// ObjectStorage stores uploaded source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion and retrain events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
	PublishRetrainRequested(ctx context.Context) error
	SubscribeRetrainRequested(ctx context.Context, handler func(context.Context) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// Chunker splits extracted text into indexable chunks.
type Chunker interface {
	Split(text string) []string
}

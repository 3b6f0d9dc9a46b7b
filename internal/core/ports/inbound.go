package ports

import (
	"context"
	"io"

	"github.com/rudradey/campus-companion/internal/core/domain"
)

// IntentClassifier is the decision core's contract: classify one query
// with the full cascade. It always returns a valid result; tier-level
// faults never escape it.
type IntentClassifier interface {
	Classify(ctx context.Context, text string, allowLLM bool) domain.ClassificationResult
}

// ChatService answers a free-text campus query end to end: classify,
// route, ground, and compose the reply.
type ChatService interface {
	Chat(ctx context.Context, text string) (*domain.ChatReply, error)
}

// Retriever turns query text into ranked grounding chunks.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error)
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous ingestion.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentReader is the inbound read model for document state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// ModelTrainer re-fits the ML tier from the training source.
type ModelTrainer interface {
	Retrain(ctx context.Context) error
}

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rudradey/campus-companion/internal/core/domain"
	"github.com/rudradey/campus-companion/internal/infrastructure/resilience"
)

func TestGeneratorCompletePassesModelAndTemperature(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("path = %q, want /api/generate", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "  The library closes at 10pm.  "})
	}))
	defer server.Close()

	gen := NewGenerator(New(server.URL, "llama3", "all-minilm", Options{}))
	answer, err := gen.Complete(context.Background(), "when does the library close", 0.7)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if answer != "The library closes at 10pm." {
		t.Fatalf("answer = %q", answer)
	}

	if got["model"] != "llama3" {
		t.Fatalf("model = %v, want llama3", got["model"])
	}
	if got["stream"] != false {
		t.Fatalf("stream = %v, want false", got["stream"])
	}
	opts, ok := got["options"].(map[string]any)
	if !ok {
		t.Fatalf("options missing from request: %v", got)
	}
	if opts["temperature"] != 0.7 {
		t.Fatalf("temperature = %v, want 0.7", opts["temperature"])
	}
}

func TestEmbedderEmbedReturnsVectors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Fatalf("path = %q, want /api/embed", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["model"] != "all-minilm" {
			t.Fatalf("model = %v, want all-minilm", req["model"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer server.Close()

	emb := NewEmbedder(New(server.URL, "llama3", "all-minilm", Options{}))
	vectors, err := emb.Embed(context.Background(), []string{"hostel rules", "mess timings"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("len(vectors) = %d, want 2", len(vectors))
	}
	if vectors[1][0] != 0.3 {
		t.Fatalf("vectors[1][0] = %v, want 0.3", vectors[1][0])
	}
}

func TestEmbedderEmbedQueryUnwrapsSingleVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.5, 0.6, 0.7}},
		})
	}))
	defer server.Close()

	emb := NewEmbedder(New(server.URL, "llama3", "all-minilm", Options{}))
	vector, err := emb.EmbedQuery(context.Background(), "where is the admin block")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if len(vector) != 3 {
		t.Fatalf("len(vector) = %d, want 3", len(vector))
	}
}

func TestEmbedderEmbedEmptyInputSkipsServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server should not be called for empty input")
	}))
	defer server.Close()

	emb := NewEmbedder(New(server.URL, "llama3", "all-minilm", Options{}))
	vectors, err := emb.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if vectors != nil {
		t.Fatalf("vectors = %v, want nil", vectors)
	}
}

func TestGeneratorSurfacesHTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	gen := NewGenerator(New(server.URL, "llama3", "all-minilm", Options{}))
	_, err := gen.Complete(context.Background(), "hello", 0.2)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *HTTPStatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
}

func TestGeneratorRetriesThenWrapsTemporary(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
		BreakerEnabled:      false,
	})
	gen := NewGenerator(New(server.URL, "llama3", "all-minilm", Options{ResilienceExecutor: executor}))

	_, err := gen.Complete(context.Background(), "hello", 0.2)
	if err == nil {
		t.Fatal("expected error for persistent 503")
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("error = %v, want ErrTemporary kind", err)
	}
}

func TestClassifyOllamaError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		retryable     bool
		recordFailure bool
	}{
		{"context canceled", context.Canceled, false, false},
		{"deadline exceeded", context.DeadlineExceeded, false, false},
		{"retryable status", &HTTPStatusError{StatusCode: http.StatusServiceUnavailable}, true, true},
		{"client status", &HTTPStatusError{StatusCode: http.StatusBadRequest}, false, false},
		{"unknown error", errors.New("boom"), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class := classifyOllamaError(tt.err)
			if class.Retryable != tt.retryable {
				t.Fatalf("Retryable = %v, want %v", class.Retryable, tt.retryable)
			}
			if class.RecordFailure != tt.recordFailure {
				t.Fatalf("RecordFailure = %v, want %v", class.RecordFailure, tt.recordFailure)
			}
		})
	}
}

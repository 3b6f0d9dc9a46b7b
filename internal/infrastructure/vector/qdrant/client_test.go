package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rudradey/campus-companion/internal/core/domain"
)

func testDocument() *domain.Document {
	return &domain.Document{
		ID:          "doc-1",
		Filename:    "handbook.pdf",
		MimeType:    "application/pdf",
		StoragePath: "doc-1.pdf",
		Status:      domain.StatusProcessing,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func TestUpsertChunksEnsuresCollectionThenUpserts(t *testing.T) {
	var ensured, upserted bool
	var gotUpsert struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/campus":
			ensured = true
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/campus/points":
			upserted = true
			if err := json.NewDecoder(r.Body).Decode(&gotUpsert); err != nil {
				t.Fatalf("decode upsert: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := New(server.URL, "campus", 3)
	chunks := []domain.DocumentChunk{
		{ID: "chunk-1", Text: "attendance must be above 75 percent", Vector: []float32{0.1, 0.2, 0.3}, Position: 0},
		{ID: "chunk-2", Text: "cgpa is the weighted mean of sgpa", Vector: []float32{0.4, 0.5, 0.6}, Position: 1},
	}
	if err := client.UpsertChunks(context.Background(), testDocument(), chunks); err != nil {
		t.Fatalf("UpsertChunks() error = %v", err)
	}

	if !ensured || !upserted {
		t.Fatalf("ensured = %v, upserted = %v, want both true", ensured, upserted)
	}
	if len(gotUpsert.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(gotUpsert.Points))
	}
	if gotUpsert.Points[0].ID != "chunk-1" {
		t.Fatalf("point id = %q, want chunk-1", gotUpsert.Points[0].ID)
	}
	if gotUpsert.Points[1].Payload["doc_id"] != "doc-1" {
		t.Fatalf("payload doc_id = %v", gotUpsert.Points[1].Payload["doc_id"])
	}
	if gotUpsert.Points[1].Payload["position"] != float64(1) {
		t.Fatalf("payload position = %v", gotUpsert.Points[1].Payload["position"])
	}
}

func TestUpsertChunksEnsuresCollectionOnce(t *testing.T) {
	ensureCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/campus" {
			ensureCalls++
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL, "campus", 3)
	chunks := []domain.DocumentChunk{{ID: "chunk-1", Text: "t", Vector: []float32{1, 0, 0}}}
	for i := 0; i < 3; i++ {
		if err := client.UpsertChunks(context.Background(), testDocument(), chunks); err != nil {
			t.Fatalf("UpsertChunks() error = %v", err)
		}
	}
	if ensureCalls != 1 {
		t.Fatalf("ensure calls = %d, want 1", ensureCalls)
	}
}

func TestUpsertChunksTreatsConflictAsEnsured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/campus" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL, "campus", 3)
	chunks := []domain.DocumentChunk{{ID: "chunk-1", Text: "t", Vector: []float32{1, 0, 0}}}
	if err := client.UpsertChunks(context.Background(), testDocument(), chunks); err != nil {
		t.Fatalf("UpsertChunks() error = %v", err)
	}
}

func TestUpsertChunksEmptyInputIsNoop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server should not be called for empty input")
	}))
	defer server.Close()

	client := New(server.URL, "campus", 3)
	if err := client.UpsertChunks(context.Background(), testDocument(), nil); err != nil {
		t.Fatalf("UpsertChunks() error = %v", err)
	}
}

func TestQueryDecodesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/campus/points/search" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode search: %v", err)
		}
		if req["limit"] != float64(3) {
			t.Fatalf("limit = %v, want 3", req["limit"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"id":    "chunk-9",
					"score": 0.87,
					"payload": map[string]any{
						"doc_id":   "doc-1",
						"filename": "handbook.pdf",
						"text":     "minimum attendance is 75 percent",
						"position": 4,
					},
				},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL, "campus", 3)
	results, err := client.Query(context.Background(), []float32{0.1, 0.2, 0.3}, 3)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	got := results[0]
	if got.Similarity != 0.87 {
		t.Fatalf("similarity = %v, want 0.87", got.Similarity)
	}
	if got.Chunk.DocumentID != "doc-1" || got.Chunk.Position != 4 {
		t.Fatalf("chunk = %+v", got.Chunk)
	}
}

func TestQueryErrorStatusSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "collection missing", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL, "campus", 3)
	if _, err := client.Query(context.Background(), []float32{1}, 3); err == nil {
		t.Fatal("expected error for 404 search response")
	}
}

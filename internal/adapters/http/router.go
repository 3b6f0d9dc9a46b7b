package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rudradey/campus-companion/internal/core/domain"
	"github.com/rudradey/campus-companion/internal/core/ports"
	"github.com/rudradey/campus-companion/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	chat     ports.ChatService
	ingest   ports.DocumentIngestor
	docs     ports.DocumentReader
	queue    ports.MessageQueue
	metrics  *metrics.HTTPServerMetrics
	logger   *slog.Logger
	limiter  *chatLimiter
	maxBytes int64
}

type RouterOptions struct {
	ChatRateRPS   float64
	ChatRateBurst int
	MaxUploadMB   int64
}

func NewRouter(
	chat ports.ChatService,
	ingest ports.DocumentIngestor,
	docs ports.DocumentReader,
	queue ports.MessageQueue,
	m *metrics.HTTPServerMetrics,
	logger *slog.Logger,
	options RouterOptions,
) *Router {
	maxMB := options.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 32
	}
	return &Router{
		chat:     chat,
		ingest:   ingest,
		docs:     docs,
		queue:    queue,
		metrics:  m,
		logger:   logger,
		limiter:  newChatLimiter(options.ChatRateRPS, options.ChatRateBurst),
		maxBytes: maxMB << 20,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/v1/chat", rt.limiter.middleware(http.HandlerFunc(rt.postChat)))
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.HandleFunc("/v1/classifier/retrain", rt.triggerRetrain)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) postChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	reply, err := rt.chat.Chat(r.Context(), req.Message)
	if err != nil {
		rt.logger.Error("chat_failed",
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordChatObservation(
			serviceName,
			string(deciderTier(reply.Classification)),
			string(reply.Classification.PrimaryIntent),
			reply.Classification.IsMultiIntent,
			reply.UsedFallback,
			reachedLLMTier(reply.Classification),
			len(reply.Sources),
			time.Since(start),
		)
	}
	writeJSON(w, http.StatusOK, reply)
}

func reachedLLMTier(classification domain.ClassificationResult) bool {
	for _, result := range classification.TierResults {
		if result.Tier == domain.TierLLM {
			return true
		}
	}
	return false
}

// deciderTier finds which tier produced the winning verdict.
func deciderTier(classification domain.ClassificationResult) domain.ClassifierTier {
	for _, result := range classification.TierResults {
		if result.Intent == classification.PrimaryIntent && result.Confidence == classification.Confidence {
			return result.Tier
		}
	}
	return ""
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.maxBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		rt.logger.Error("document_upload_failed",
			"request_id", requestIDFromContext(r.Context()),
			"filename", fileHeader.Filename,
			"error", err,
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) triggerRetrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := rt.queue.PublishRetrainRequested(r.Context()); err != nil {
		rt.logger.Error("retrain_publish_failed",
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "retrain requested"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

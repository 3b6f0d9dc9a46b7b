package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	tierResultsTotal   *prometheus.CounterVec
	escalationsTotal   *prometheus.CounterVec
	fallbacksTotal     *prometheus.CounterVec
	multiIntentTotal   *prometheus.CounterVec
	chatDuration       *prometheus.HistogramVec
	retrievedChunks    *prometheus.HistogramVec
	retrievalHitTotal  *prometheus.CounterVec
	retrievalMissTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campus",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "campus",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	tierResultsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "classifier",
			Name:      "tier_results_total",
			Help:      "Final classification verdicts by deciding tier and intent.",
		},
		[]string{"service", "tier", "intent"},
	)
	escalationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "classifier",
			Name:      "escalations_total",
			Help:      "Queries that escalated past the cheap tiers to the LLM.",
		},
		[]string{"service"},
	)
	fallbacksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "classifier",
			Name:      "fallbacks_total",
			Help:      "Replies answered through the fallback path.",
		},
		[]string{"service"},
	)
	multiIntentTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "classifier",
			Name:      "multi_intent_total",
			Help:      "Queries flagged as carrying more than one intent.",
		},
		[]string{"service"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campus",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "End-to-end chat handling duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "intent"},
	)
	retrievedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campus",
			Subsystem: "retrieval",
			Name:      "chunks",
			Help:      "Distribution of grounding chunks per answered rag query.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
		[]string{"service"},
	)
	retrievalHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "retrieval",
			Name:      "hit_total",
			Help:      "Rag queries grounded by at least one chunk.",
		},
		[]string{"service"},
	)
	retrievalMissTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "retrieval",
			Name:      "miss_total",
			Help:      "Rag queries with no chunk above the score floor.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		tierResultsTotal,
		escalationsTotal,
		fallbacksTotal,
		multiIntentTotal,
		chatDuration,
		retrievedChunks,
		retrievalHitTotal,
		retrievalMissTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		tierResultsTotal:   tierResultsTotal,
		escalationsTotal:   escalationsTotal,
		fallbacksTotal:     fallbacksTotal,
		multiIntentTotal:   multiIntentTotal,
		chatDuration:       chatDuration,
		retrievedChunks:    retrievedChunks,
		retrievalHitTotal:  retrievalHitTotal,
		retrievalMissTotal: retrievalMissTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &metricsStatusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	default:
		return path
	}
}

// RecordChatObservation records one answered chat turn: the deciding
// tier, the routed intent, how it was grounded and how long it took.
func (m *HTTPServerMetrics) RecordChatObservation(service, tier, intent string, multiIntent, usedFallback, escalated bool, sourceCount int, duration time.Duration) {
	if tier == "" {
		tier = "unknown"
	}
	if intent == "" {
		intent = "unknown"
	}

	m.tierResultsTotal.WithLabelValues(service, tier, intent).Inc()
	m.chatDuration.WithLabelValues(service, intent).Observe(duration.Seconds())

	if escalated {
		m.escalationsTotal.WithLabelValues(service).Inc()
	}
	if usedFallback {
		m.fallbacksTotal.WithLabelValues(service).Inc()
	}
	if multiIntent {
		m.multiIntentTotal.WithLabelValues(service).Inc()
	}

	if intent == "rag" {
		m.retrievedChunks.WithLabelValues(service).Observe(float64(sourceCount))
		if sourceCount > 0 {
			m.retrievalHitTotal.WithLabelValues(service).Inc()
		} else {
			m.retrievalMissTotal.WithLabelValues(service).Inc()
		}
	}
}

type metricsStatusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *metricsStatusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *metricsStatusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *metricsStatusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *metricsStatusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}

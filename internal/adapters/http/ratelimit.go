package httpadapter

import (
	"net/http"

	"golang.org/x/time/rate"
)

// chatLimiter throttles the chat endpoint with a single shared token
// bucket sized to the LLM tier's capacity.
type chatLimiter struct {
	limiter *rate.Limiter
}

func newChatLimiter(rps float64, burst int) *chatLimiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &chatLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (l *chatLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

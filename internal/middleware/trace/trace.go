// Package trace stamps each request with an ID, logs start and
// completion, and keeps the latency counters behind /metrics.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

type contextKey struct{}

// requestIDKey carries the request ID through the request context.
var requestIDKey contextKey

// Middleware wraps the whole handler chain. It sits outermost so even
// requests blocked further in get an ID and a completion line.
type Middleware struct {
	extractIP func(*http.Request) string

	requests      int64
	durationMicro int64
}

// Metrics is the counter snapshot for the metrics endpoint.
type Metrics struct {
	TotalRequests       int64
	AverageResponseTime int64 // microseconds
}

// NewMiddleware uses extractIP (may be nil) to resolve the client
// address for request logs.
func NewMiddleware(extractIP func(*http.Request) string) *Middleware {
	return &Middleware{extractIP: extractIP}
}

// Middleware returns the wrapping handler.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := newRequestID()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", id)

		slog.InfoContext(ctx, "HTTP request started",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"),
			"referer", r.Header.Get("Referer"),
			"content_length", r.ContentLength,
			"protocol", r.Proto)

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		elapsed := time.Since(start)
		atomic.AddInt64(&m.requests, 1)
		atomic.AddInt64(&m.durationMicro, elapsed.Microseconds())

		slog.Log(ctx, levelFor(rw.status), "HTTP request completed",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"status_code", rw.status,
			"duration_ms", elapsed.Milliseconds(),
			"duration_human", elapsed.String(),
			"client_ip", clientIP,
			"success", rw.status < 400)
	})
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// statusWriter remembers the status code for the completion log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

// GetRequestID returns the request ID stamped by the middleware, or ""
// outside a traced request.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns request count and mean latency.
func (m *Middleware) GetMetrics() Metrics {
	total := atomic.LoadInt64(&m.requests)
	var avg int64
	if total > 0 {
		avg = atomic.LoadInt64(&m.durationMicro) / total
	}
	return Metrics{TotalRequests: total, AverageResponseTime: avg}
}

// Package logging a simple slog logger middleware
package logging

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// responseWriterPool reuses responseWriterWrapper instances to avoid a
// per-request allocation
var responseWriterPool = sync.Pool{
	New: func() any {
		return &responseWriterWrapper{
			statusCode: 200,
		}
	},
}

// LoggingMiddleware logs HTTP requests using slog with structured logging
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Fast path: Skip logging for health check endpoints
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			// Get response writer wrapper from pool instead of allocating new one
			ww := responseWriterPool.Get().(*responseWriterWrapper)
			ww.ResponseWriter = w
			ww.statusCode = 200
			ww.bytesWritten = 0

			// Call the next handler
			next.ServeHTTP(ww, r)

			// Calculate duration
			duration := time.Since(start)

			// Extract request ID from context with type safety
			requestID, ok := r.Context().Value(middleware.RequestIDKey).(string)
			if !ok || requestID == "" {
				requestID = "unknown"
			}

			// Build log attributes conditionally
			attrs := []any{
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
			}

			// Only add query if it exists (saves allocation for most requests)
			if r.URL.RawQuery != "" {
				attrs = append(attrs, "query", r.URL.RawQuery)
			}

			attrs = append(attrs,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"status_code", ww.statusCode,
				"bytes_written", ww.bytesWritten,
				"duration_ms", duration.Milliseconds(),
			)

			// Log the request with structured data
			logger.InfoContext(r.Context(), "HTTP request", attrs...)

			// Return wrapper to pool for reuse
			responseWriterPool.Put(ww)
		})
	}
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code and bytes written
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(data []byte) (int, error) {
	n, err := w.ResponseWriter.Write(data)
	w.bytesWritten += n
	return n, err
}

package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxLoggedBody caps request and response bodies in debug logs
const maxLoggedBody = 4096

// responseWriter captures the status code and, for debug logging, the body
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	body       *bytes.Buffer
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	if rw.body != nil && rw.body.Len() < maxLoggedBody {
		rw.body.Write(b[:min(len(b), maxLoggedBody-rw.body.Len())])
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// RequestID reuses a caller supplied X-Request-ID or assigns a new UUID and
// echoes it in the response
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), RequestIDKey, id)))
	})
}

// GetRequestID returns the ID assigned by RequestID
func GetRequestID(r *http.Request) string {
	id, _ := r.Context().Value(RequestIDKey).(string)
	return id
}

// LoggingMiddleware logs every request. Successful requests log at INFO, 4xx
// at WARN and 5xx at ERROR. At DEBUG the query and both bodies are included;
// chat bodies are left out because they hold transcript text.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		debug := slog.Default().Enabled(r.Context(), slog.LevelDebug) && !isChatPath(r.URL.Path)

		var requestBody []byte
		if debug && r.Body != nil {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if debug {
			wrapped.body = &bytes.Buffer{}
		}

		next.ServeHTTP(wrapped, r)

		attrs := []any{
			"request_id", GetRequestID(r),
			"remote_ip", getIP(r),
			"user_agent", r.UserAgent(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if debug {
			if r.URL.RawQuery != "" {
				attrs = append(attrs, "query", r.URL.RawQuery)
			}
			if len(requestBody) > 0 {
				attrs = append(attrs, "request_body", string(requestBody[:min(len(requestBody), maxLoggedBody)]))
			}
			if wrapped.body.Len() > 0 {
				attrs = append(attrs, "response_body", wrapped.body.String())
			}
		}

		level, msg := slog.LevelInfo, "Request completed"
		switch {
		case wrapped.statusCode >= 500:
			level, msg = slog.LevelError, "Request failed with error"
		case wrapped.statusCode >= 400:
			level, msg = slog.LevelWarn, "Request failed"
		}
		slog.Log(r.Context(), level, msg, attrs...)
	})
}

func isChatPath(path string) bool {
	return strings.HasPrefix(path, "/api/v1/chat")
}

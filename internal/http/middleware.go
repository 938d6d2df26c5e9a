package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"time"

	applog "outlay/internal/log"
)

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestID returns a short random identifier, falling back to a timestamp
// if the random source is unavailable.
func requestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("t-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// traceMiddleware logs every request with an id, status and duration.
func traceMiddleware(logger *applog.Logger) func(http.Handler) http.Handler {
	httpLog := logger.WithComponent(applog.ComponentHTTP)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := requestID()

			reqLog := httpLog.With(applog.FieldRequestID, id)
			r = r.WithContext(applog.NewContext(r.Context(), reqLog))

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			reqLog.Info("HTTP request",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldQuery, r.URL.RawQuery,
				applog.FieldClientIP, clientIP(r),
				applog.FieldStatusCode, rw.statusCode,
				applog.FieldDuration, time.Since(start).Milliseconds(),
				applog.FieldSuccess, rw.statusCode < 400)
		})
	}
}

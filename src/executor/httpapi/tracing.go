package httpapi

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// traceIDHeader carries the per-request trace id into responses so a
// caller can correlate a request with the structured log line it produced.
const traceIDHeader = "X-Request-Id"

// newTraceID generates a random UUID v4 per RFC 4122, used to correlate one
// HTTP request's response with the log line (including latency) it produced.
func newTraceID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("httpapi: generate trace id: %w", err)
	}
	buf[6] = (buf[6] & 0x0f) | 0x40
	buf[8] = (buf[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", buf[0:4], buf[4:6], buf[6:8], buf[8:10], buf[10:16]), nil
}

// statusWriter captures the status code a handler wrote so it can be logged
// after the fact -- http.ResponseWriter itself exposes no getter for it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// withTracing assigns each inbound request a trace id, echoes it back on
// traceIDHeader, and logs method/path/status/latency once the handler
// returns.
func (s *Server) withTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID, err := newTraceID()
		if err != nil {
			traceID = "unavailable"
		}
		w.Header().Set(traceIDHeader, traceID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)

		s.logger.Info("http request",
			zap.String("traceId", traceID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

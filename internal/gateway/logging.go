package gateway

import (
	"log/slog"
	"net/http"
	"time"
)

// loggingTransport logs every admin API round trip. Tokens and bodies are never logged.
type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	attrs := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get("X-Request-ID"),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		slog.Warn("gateway request failed", append(attrs, "error", err)...)
		return nil, err
	}
	slog.Debug("gateway request", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}

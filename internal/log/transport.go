package log

import (
	"log/slog"
	"net/http"
	"time"
)

// Transport is an http.RoundTripper that logs each outgoing request
// with its status and duration. Responses with 4xx log at Warn, 5xx at
// Error, everything else at Info.
type Transport struct {
	next http.RoundTripper
}

// NewTransport wraps next with request logging. A nil next uses
// http.DefaultTransport.
func NewTransport(next http.RoundTripper) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{next: next}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start)

	attrs := []any{
		FieldComponent, ComponentAPI,
		FieldMethod, req.Method,
		FieldPath, req.URL.Path,
		FieldDuration, duration.Milliseconds(),
		FieldRequestID, req.Header.Get("X-Request-ID"),
	}

	if err != nil {
		slog.ErrorContext(req.Context(), "Request failed", append(attrs, FieldError, err)...)
		return nil, err
	}

	attrs = append(attrs, FieldStatusCode, resp.StatusCode)
	level := slog.LevelInfo
	switch {
	case resp.StatusCode >= 500:
		level = slog.LevelError
	case resp.StatusCode >= 400:
		level = slog.LevelWarn
	}
	slog.Log(req.Context(), level, "Request completed", attrs...)
	return resp, nil
}

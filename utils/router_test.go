package utils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthRoute(t *testing.T) {
	r := NewRouter(func(context.Context) error { return nil })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"status":"ok"}` {
		t.Fatalf("unexpected body %q", got)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := NewRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}

func TestHealthReportsFailedPing(t *testing.T) {
	r := NewRouter(func(context.Context) error { return errors.New("database is locked") })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"status":"unavailable"}` {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestLogRequestsWrapsUnmatchedHandler(t *testing.T) {
	r := NewRouter(nil)
	r.NotFoundHandler = LogRequests(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a request id on unmatched routes")
	}
}

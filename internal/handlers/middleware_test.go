package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grassigrosso/lead-relay/internal/origin"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSMiddlewareAllowedOrigin(t *testing.T) {
	cors := NewCORSMiddleware(origin.NewChecker("https://example.com"))
	handler := cors.Handle(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/submit", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, expected the request origin", got)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, expected 200", rec.Code)
	}
}

func TestCORSMiddlewareDeniedOrigin(t *testing.T) {
	cors := NewCORSMiddleware(origin.NewChecker("https://example.com"))
	handler := cors.Handle(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/submit", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, expected no header for a denied origin", got)
	}
}

func TestCORSMiddlewareAbsentOrigin(t *testing.T) {
	cors := NewCORSMiddleware(origin.NewChecker("https://example.com"))
	handler := cors.Handle(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/submit", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Same-origin and server-to-server requests pass straight through.
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, expected 200", rec.Code)
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	cors := NewCORSMiddleware(origin.NewChecker("https://example.com"))
	handler := cors.Handle(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/submit", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, expected 204 for preflight", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("preflight response should carry allowed methods")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	recovery := NewRecoveryMiddleware()
	handler := recovery.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, expected 500 after panic", rec.Code)
	}
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Error("panic response should carry a correlation id")
	}
}

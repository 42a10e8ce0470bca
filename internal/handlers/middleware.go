package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/grassigrosso/lead-relay/internal/origin"
)

// CORSMiddleware applies the origin allow-list to cross-origin requests
type CORSMiddleware struct {
	checker *origin.Checker
}

// NewCORSMiddleware creates a new CORSMiddleware
func NewCORSMiddleware(checker *origin.Checker) *CORSMiddleware {
	return &CORSMiddleware{checker: checker}
}

// Handle wraps a handler with the cross-origin policy. Allowed origins
// are echoed back; preflight requests are answered here.
func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqOrigin := r.Header.Get("Origin")

		if reqOrigin != "" && m.checker.Allowed(reqOrigin) {
			w.Header().Set("Access-Control-Allow-Origin", reqOrigin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RecoveryMiddleware recovers from panics and returns 500 Internal
// Server Error instead of dropping the connection.
type RecoveryMiddleware struct{}

// NewRecoveryMiddleware creates a new RecoveryMiddleware
func NewRecoveryMiddleware() *RecoveryMiddleware {
	return &RecoveryMiddleware{}
}

// Handle wraps a handler with panic recovery
func (m *RecoveryMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				correlationID := uuid.New().String()
				log.Printf("[%s] Panic recovered: %v", correlationID, err)

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Correlation-ID", correlationID)
				w.WriteHeader(http.StatusInternalServerError)

				response := ErrorResponse{Error: "internal server error"}
				if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
					log.Printf("[%s] Failed to encode error response: %v", correlationID, encodeErr)
				}
			}
		}()

		next.ServeHTTP(w, r)
	})
}

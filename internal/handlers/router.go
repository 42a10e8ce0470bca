package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/grassigrosso/lead-relay/internal/origin"
)

// RouterDeps collects the handlers wired into the HTTP surface
type RouterDeps struct {
	Submit  *SubmitHandler
	Health  *HealthHandler
	Diag    *DiagHandler
	Checker *origin.Checker
}

// NewRouter builds the relay's HTTP router with CORS and panic
// recovery applied to every route
func NewRouter(deps RouterDeps) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", deps.Health.HandleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/submit", deps.Submit.HandleSubmit).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/test", deps.Diag.HandleTest).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	api.HandleFunc("/get-chat-id", deps.Diag.HandleGetChatID).Methods(http.MethodGet)
	api.HandleFunc("/smtp-diag", deps.Diag.HandleSMTPDiag).Methods(http.MethodGet)

	cors := NewCORSMiddleware(deps.Checker)
	recovery := NewRecoveryMiddleware()

	return recovery.Handle(cors.Handle(r))
}

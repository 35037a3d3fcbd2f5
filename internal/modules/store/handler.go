package store

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
)

// Handler exposes the workspace callable endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/stores", func(r chi.Router) {
		r.Post("/initialize", h.initializeStore)    // POST /api/v1/stores/initialize
		r.Post("/resolve-access", h.resolveAccess)  // POST /api/v1/stores/resolve-access
	})
}

func (h *Handler) initializeStore(w http.ResponseWriter, r *http.Request) {
	var req InitializeStoreRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			callable.WriteError(w, callable.New(callable.CodeInvalidArgument, "Invalid request body"))
			return
		}
	}
	resp, err := h.service.InitializeStore(r.Context(), auth.CallerFromRequest(r), req)
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusOK, resp)
}

func (h *Handler) resolveAccess(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ResolveStoreAccess(r.Context(), auth.CallerFromRequest(r))
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusOK, resp)
}

package billing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sedifex/sedifex-backend/internal/callable"
)

// Handler exposes billing HTTP endpoints.
type Handler struct{ config Config }

func NewHandler(config Config) *Handler { return &Handler{config: config} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/billing", func(r chi.Router) {
		r.Get("/plans", h.listPlans)  // GET /api/v1/billing/plans
		r.Get("/config", h.getConfig) // GET /api/v1/billing/config
	})
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	callable.Respond(w, http.StatusOK, map[string]interface{}{"plans": Plans()})
}

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	callable.Respond(w, http.StatusOK, h.config)
}

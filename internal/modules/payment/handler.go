package payment

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
)

// Handler exposes payment HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Post("/checkout", h.startCheckout)
		r.Post("/checkout/{reference}/confirm", h.confirmCheckout)
		r.Get("/stores/{store_id}", h.listByStore)
	})
}

func (h *Handler) startCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		callable.WriteError(w, callable.New(callable.CodeInvalidArgument, "Invalid request body"))
		return
	}
	tx, err := h.service.StartCheckout(r.Context(), auth.CallerFromRequest(r), req)
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusCreated, tx)
}

func (h *Handler) confirmCheckout(w http.ResponseWriter, r *http.Request) {
	tx, err := h.service.ConfirmCheckout(r.Context(), auth.CallerFromRequest(r), chi.URLParam(r, "reference"))
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusOK, tx)
}

func (h *Handler) listByStore(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.service.ListByStore(r.Context(), auth.CallerFromRequest(r), chi.URLParam(r, "store_id"))
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusOK, map[string]interface{}{"transactions": transactions})
}

package closeout

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
)

// Handler exposes closeout HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/stores/{store_id}/closeouts", func(r chi.Router) {
		r.Get("/", h.history)
		r.Post("/", h.closeDay)
		r.Post("/preview", h.preview)
	})
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		callable.WriteError(w, callable.New(callable.CodeInvalidArgument, "Invalid request body"))
		return
	}
	result, err := h.service.Preview(r.Context(), auth.CallerFromRequest(r), chi.URLParam(r, "store_id"), in)
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusOK, result)
}

func (h *Handler) closeDay(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		callable.WriteError(w, callable.New(callable.CodeInvalidArgument, "Invalid request body"))
		return
	}
	record, err := h.service.Close(r.Context(), auth.CallerFromRequest(r), chi.URLParam(r, "store_id"), in)
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusCreated, record)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.History(r.Context(), auth.CallerFromRequest(r), chi.URLParam(r, "store_id"))
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusOK, map[string]interface{}{"closeouts": records})
}

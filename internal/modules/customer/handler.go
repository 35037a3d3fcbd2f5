package customer

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
)

// Handler exposes customer HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/stores/{store_id}/customers", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.List(r.Context(), auth.CallerFromRequest(r), chi.URLParam(r, "store_id"))
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusOK, map[string]interface{}{"customers": customers})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		callable.WriteError(w, callable.New(callable.CodeInvalidArgument, "Invalid request body"))
		return
	}
	c, err := h.service.Create(r.Context(), auth.CallerFromRequest(r), chi.URLParam(r, "store_id"), in)
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		callable.WriteError(w, callable.New(callable.CodeInvalidArgument, "Invalid request body"))
		return
	}
	c, err := h.service.Update(r.Context(), auth.CallerFromRequest(r), chi.URLParam(r, "store_id"), chi.URLParam(r, "id"), in)
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusOK, c)
}

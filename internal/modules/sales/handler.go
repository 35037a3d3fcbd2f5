package sales

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
)

// Handler exposes sales HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/stores/{store_id}/sales", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.record)
	})
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		callable.WriteError(w, callable.New(callable.CodeInvalidArgument, "Invalid request body"))
		return
	}
	sale, err := h.service.Record(r.Context(), auth.CallerFromRequest(r), chi.URLParam(r, "store_id"), in)
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusCreated, sale)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFromRequest(r)
	storeID := chi.URLParam(r, "store_id")
	var (
		list []Sale
		err  error
	)
	if day := r.URL.Query().Get("day"); day != "" {
		list, err = h.service.ListForDay(r.Context(), caller, storeID, day)
	} else {
		list, err = h.service.ListRecent(r.Context(), caller, storeID)
	}
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusOK, map[string]interface{}{"sales": list})
}

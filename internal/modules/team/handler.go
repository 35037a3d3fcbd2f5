package team

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
)

// Handler exposes team HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/team", func(r chi.Router) {
		r.Post("/staff", h.manageStaff)                       // POST /api/v1/team/staff
		r.Get("/memberships", h.listMemberships)              // GET  /api/v1/team/memberships
		r.Get("/stores/{store_id}/members", h.listForStore)   // GET  /api/v1/team/stores/{id}/members
	})
}

func (h *Handler) manageStaff(w http.ResponseWriter, r *http.Request) {
	var req ManageStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		callable.WriteError(w, callable.New(callable.CodeInvalidArgument, "Invalid request body"))
		return
	}
	resp, err := h.service.ManageStaffAccount(r.Context(), auth.CallerFromRequest(r), req)
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusOK, resp)
}

func (h *Handler) listMemberships(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFromRequest(r)
	if err := auth.RequireAuthenticated(caller); err != nil {
		callable.WriteError(w, err)
		return
	}
	members, err := h.service.ListMemberships(r.Context(), caller.UID)
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusOK, map[string]interface{}{"memberships": members})
}

func (h *Handler) listForStore(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListStoreMembers(r.Context(), auth.CallerFromRequest(r), chi.URLParam(r, "store_id"))
	if err != nil {
		callable.WriteError(w, err)
		return
	}
	callable.Respond(w, http.StatusOK, map[string]interface{}{"members": members})
}

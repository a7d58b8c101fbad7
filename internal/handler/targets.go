package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
	"github.com/skyreach/outreach-server-go/internal/service"
)

type TargetsHandler struct {
	targets *service.TargetService
}

func NewTargetsHandler(targets *service.TargetService) *TargetsHandler {
	return &TargetsHandler{targets: targets}
}

func (h *TargetsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/targets", h.AddTargets)

	return r
}

func (h *TargetsHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.targets.FindAllLists(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *TargetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	list, err := h.targets.CreateList(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (h *TargetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	list, err := h.targets.FindList(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *TargetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.targets.DeleteList(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *TargetsHandler) AddTargets(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Targets []string `json:"targets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if len(req.Targets) == 0 {
		writeError(w, apperrors.MissingRequired("targets"))
		return
	}

	result, err := h.targets.AddTargets(r.Context(), chi.URLParam(r, "id"), req.Targets)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

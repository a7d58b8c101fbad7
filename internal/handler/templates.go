package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
	"github.com/skyreach/outreach-server-go/internal/model"
	"github.com/skyreach/outreach-server-go/internal/service"
)

type TemplatesHandler struct {
	templates *service.TemplateService
}

func NewTemplatesHandler(templates *service.TemplateService) *TemplatesHandler {
	return &TemplatesHandler{templates: templates}
}

func (h *TemplatesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/render", h.Render)

	return r
}

func (h *TemplatesHandler) List(w http.ResponseWriter, r *http.Request) {
	var kind *model.ActionKind
	if v := r.URL.Query().Get("type"); v != "" {
		k := model.ActionKind(v)
		if !k.Valid() {
			writeError(w, apperrors.InvalidInput("type", "must be DM or POST"))
			return
		}
		kind = &k
	}

	templates, err := h.templates.FindAll(r.Context(), kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *TemplatesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string           `json:"name"`
		Description *string          `json:"description"`
		Type        model.ActionKind `json:"type"`
		Body        string           `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	tmpl, err := h.templates.Create(r.Context(), model.CreateTemplateParams{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Body:        req.Body,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tmpl)
}

func (h *TemplatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.templates.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (h *TemplatesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name *string           `json:"name"`
		Type *model.ActionKind `json:"type"`
		Body *string           `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	tmpl, err := h.templates.Update(r.Context(), chi.URLParam(r, "id"), model.UpdateTemplateParams{
		Name: req.Name,
		Type: req.Type,
		Body: req.Body,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (h *TemplatesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.templates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Render previews the template body with caller-supplied variables.
func (h *TemplatesHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Variables map[string]string `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	rendered, err := h.templates.Render(r.Context(), chi.URLParam(r, "id"), req.Variables)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"rendered": rendered})
}

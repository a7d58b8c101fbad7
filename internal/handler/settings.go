package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
	"github.com/skyreach/outreach-server-go/internal/service"
)

type SettingsHandler struct {
	settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Get)
	r.Put("/", h.Update)

	return r
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetCoreSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Update accepts a partial settings object; omitted keys keep their value.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var partial map[string]any
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if len(partial) == 0 {
		writeError(w, apperrors.ValidationError("No settings provided"))
		return
	}

	settings, err := h.settings.UpdateSettings(r.Context(), partial)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

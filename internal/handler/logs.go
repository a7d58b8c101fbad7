package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skyreach/outreach-server-go/internal/model"
	"github.com/skyreach/outreach-server-go/internal/service"
)

type LogsHandler struct {
	logs *service.LogService
}

func NewLogsHandler(logs *service.LogService) *LogsHandler {
	return &LogsHandler{logs: logs}
}

func (h *LogsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/stats", h.Stats)

	return r
}

func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	pagination := ParsePagination(r)
	q := r.URL.Query()

	entries, err := h.logs.Find(r.Context(), service.LogQueryParams{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		Level:      model.LogLevel(q.Get("level")),
		AccountID:  q.Get("accountId"),
		CampaignID: q.Get("campaignId"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"page":    pagination.Page,
		"limit":   pagination.Limit,
	})
}

func (h *LogsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.logs.GetStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

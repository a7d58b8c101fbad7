package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
	"github.com/skyreach/outreach-server-go/internal/model"
	"github.com/skyreach/outreach-server-go/internal/service"
)

type CampaignsHandler struct {
	campaigns *service.CampaignService
	queue     *service.QueueService
}

func NewCampaignsHandler(campaigns *service.CampaignService, queue *service.QueueService) *CampaignsHandler {
	return &CampaignsHandler{campaigns: campaigns, queue: queue}
}

func (h *CampaignsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/jobs/{jobId}", h.Job)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/stats", h.Stats)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/dispatch", h.Dispatch)

	return r
}

func (h *CampaignsHandler) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.FindAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (h *CampaignsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string           `json:"name"`
		Type      model.ActionKind `json:"type"`
		Message   string           `json:"message"`
		Targets   []string         `json:"targets"`
		AccountID string           `json:"accountId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	campaign, err := h.campaigns.Create(r.Context(), service.CreateCampaignParams{
		Name:      req.Name,
		Type:      req.Type,
		Message:   req.Message,
		Targets:   req.Targets,
		AccountID: req.AccountID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (h *CampaignsHandler) Get(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.campaigns.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (h *CampaignsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.campaigns.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CampaignsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.campaigns.GetStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *CampaignsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.CampaignStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	campaign, err := h.campaigns.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// Dispatch runs the campaign. Default is fire-and-forget with a job handle;
// ?sync=true blocks until the run finishes and returns the full result.
func (h *CampaignsHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Validate the campaign exists before accepting the job.
	if _, err := h.campaigns.FindByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("sync") == "true" {
		result, err := h.queue.DispatchNow(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		status := http.StatusOK
		if result.RateLimited {
			status = http.StatusTooManyRequests
		}
		writeJSON(w, status, result)
		return
	}

	job := h.queue.Enqueue(id)
	writeJSON(w, http.StatusAccepted, job)
}

func (h *CampaignsHandler) Job(w http.ResponseWriter, r *http.Request) {
	job, ok := h.queue.Job(chi.URLParam(r, "jobId"))
	if !ok {
		writeError(w, apperrors.NotFound("Dispatch job"))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

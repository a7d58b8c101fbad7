package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
	"github.com/skyreach/outreach-server-go/internal/model"
	"github.com/skyreach/outreach-server-go/internal/service"
)

// ConnectionTester verifies that stored credentials can open a session.
// Satisfied by bluesky.Client.
type ConnectionTester interface {
	TestConnection(ctx context.Context, creds model.AccountCredentials) error
}

type AccountsHandler struct {
	accounts    *service.AccountService
	rateLimiter *service.RateLimiter
	tester      ConnectionTester
}

func NewAccountsHandler(accounts *service.AccountService, rateLimiter *service.RateLimiter, tester ConnectionTester) *AccountsHandler {
	return &AccountsHandler{
		accounts:    accounts,
		rateLimiter: rateLimiter,
		tester:      tester,
	}
}

func (h *AccountsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Patch("/{id}/rate-limits", h.UpdateRateLimits)
	r.Get("/{id}/stats", h.Stats)
	r.Post("/{id}/clear-cooldown", h.ClearCooldown)
	r.Post("/{id}/test-connection", h.TestConnection)

	return r
}

func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.FindAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list accounts")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username         string  `json:"username"`
		AppPassword      string  `json:"appPassword"`
		DisplayName      *string `json:"displayName"`
		Label            *string `json:"label"`
		RateLimitPerHour *int    `json:"rateLimitPerHour"`
		RateLimitPerDay  *int    `json:"rateLimitPerDay"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	account, err := h.accounts.Create(r.Context(), service.CreateAccountParams{
		Username:         req.Username,
		AppPassword:      req.AppPassword,
		DisplayName:      req.DisplayName,
		Label:            req.Label,
		RateLimitPerHour: req.RateLimitPerHour,
		RateLimitPerDay:  req.RateLimitPerDay,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AccountsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.AccountStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	account, err := h.accounts.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *AccountsHandler) UpdateRateLimits(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RateLimitPerHour int `json:"rateLimitPerHour"`
		RateLimitPerDay  int `json:"rateLimitPerDay"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	account, err := h.accounts.UpdateRateLimits(r.Context(), chi.URLParam(r, "id"), req.RateLimitPerHour, req.RateLimitPerDay)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *AccountsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.rateLimiter.GetAccountStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AccountsHandler) ClearCooldown(w http.ResponseWriter, r *http.Request) {
	if err := h.rateLimiter.ClearCooldown(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AccountsHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	creds, err := h.accounts.GetCredentials(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.tester.TestConnection(r.Context(), creds); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"connected": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"connected": true})
}

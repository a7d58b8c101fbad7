package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skyreach/outreach-server-go/internal/bluesky"
	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
	"github.com/skyreach/outreach-server-go/internal/model"
)

// FollowClient is the graph surface of the Bluesky client. Satisfied by
// bluesky.Client.
type FollowClient interface {
	FollowUser(ctx context.Context, creds *model.AccountCredentials, handle string) (string, error)
	GetFollowers(ctx context.Context, creds *model.AccountCredentials, handle string, limit int) ([]bluesky.Follower, error)
}

// FollowHandler exposes follow and follower lookups over the shared session.
type FollowHandler struct {
	client FollowClient
}

func NewFollowHandler(client FollowClient) *FollowHandler {
	return &FollowHandler{client: client}
}

func (h *FollowHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/follow", h.Follow)
	r.Get("/followers/{handle}", h.Followers)

	return r
}

func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Handle string `json:"handle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.Handle == "" {
		writeError(w, apperrors.MissingRequired("handle"))
		return
	}

	did, err := h.client.FollowUser(r.Context(), nil, req.Handle)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"handle":  req.Handle,
		"did":     did,
	})
}

func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if handle == "" {
		writeError(w, apperrors.MissingRequired("handle"))
		return
	}

	followers, err := h.client.GetFollowers(r.Context(), nil, handle, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"handle":    handle,
		"followers": followers,
		"count":     len(followers),
	})
}

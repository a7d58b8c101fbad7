package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/skyreach/outreach-server-go/internal/repository"
	"github.com/skyreach/outreach-server-go/internal/service"
)

// StatsHandler serves the dashboard overview counters.
type StatsHandler struct {
	accountRepo  repository.AccountRepository
	campaignRepo repository.CampaignRepository
	logs         *service.LogService
}

func NewStatsHandler(accountRepo repository.AccountRepository, campaignRepo repository.CampaignRepository, logs *service.LogService) *StatsHandler {
	return &StatsHandler{
		accountRepo:  accountRepo,
		campaignRepo: campaignRepo,
		logs:         logs,
	}
}

func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accounts, err := h.accountRepo.Count(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to count accounts")
		writeError(w, err)
		return
	}
	cooldowns, err := h.accountRepo.CountInCooldown(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	campaigns, err := h.campaignRepo.Count(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	logStats, err := h.logs.GetStats(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accounts":           accounts,
		"accountsInCooldown": cooldowns,
		"campaigns":          campaigns,
		"logs":               logStats,
	})
}

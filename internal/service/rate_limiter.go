package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skyreach/outreach-server-go/internal/audit"
	"github.com/skyreach/outreach-server-go/internal/config"
	"github.com/skyreach/outreach-server-go/internal/model"
	"github.com/skyreach/outreach-server-go/internal/repository"
)

// RateLimiter answers whether an account may perform another outbound action,
// based on rolling hour/day counters and an explicit cooldown window.
//
// The rolling windows are approximated from campaign start times: a RUNNING
// campaign's sent_count is attributed to the hour window only when the
// campaign itself started within the last 60 minutes. A single campaign's
// sends cluster tightly because of the inter-action delay, so this is close
// enough in practice, but it under/over-counts for long campaigns that
// straddle the hour boundary. Known approximation, kept deliberately.
type RateLimiter struct {
	accountRepo  repository.AccountRepository
	campaignRepo repository.CampaignRepository
	settings     *SettingsService
}

func NewRateLimiter(
	accountRepo repository.AccountRepository,
	campaignRepo repository.CampaignRepository,
	settings *SettingsService,
) *RateLimiter {
	return &RateLimiter{
		accountRepo:  accountRepo,
		campaignRepo: campaignRepo,
		settings:     settings,
	}
}

// Check is read-only apart from warning logs; calling it twice without an
// intervening send yields the same verdict.
func (rl *RateLimiter) Check(ctx context.Context, accountID string, action model.ActionKind) (model.RateLimitResult, error) {
	account, err := rl.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return model.RateLimitResult{}, fmt.Errorf("find account: %w", err)
	}
	if account == nil {
		return model.RateLimitResult{Allowed: false, Reason: "Account not found"}, nil
	}

	now := time.Now()

	if account.InCooldown(now) {
		retryAfter := int(time.Until(*account.CooldownUntil).Seconds() + 0.999)
		return model.RateLimitResult{
			Allowed:    false,
			Reason:     "Account is in cooldown due to rate limiting",
			RetryAfter: retryAfter,
		}, nil
	}

	actionsLastHour, actionsLastDay, err := rl.countRecentActions(ctx, accountID, action, now)
	if err != nil {
		return model.RateLimitResult{}, err
	}

	rule := rl.effectiveRule(ctx, account)

	log.Debug().
		Str("handle", account.Handle).
		Int("lastHour", actionsLastHour).Int("maxPerHour", rule.MaxPerHour).
		Int("lastDay", actionsLastDay).Int("maxPerDay", rule.MaxPerDay).
		Msg("rate limit check")

	if actionsLastHour >= rule.MaxPerHour {
		return model.RateLimitResult{
			Allowed: false,
			Reason:  fmt.Sprintf("Hourly rate limit exceeded (%d/%d)", actionsLastHour, rule.MaxPerHour),
		}, nil
	}
	if actionsLastDay >= rule.MaxPerDay {
		return model.RateLimitResult{
			Allowed: false,
			Reason:  fmt.Sprintf("Daily rate limit exceeded (%d/%d)", actionsLastDay, rule.MaxPerDay),
		}, nil
	}

	if float64(actionsLastHour) >= float64(rule.MaxPerHour)*config.RateLimitWarnUtilization {
		log.Warn().
			Str("handle", account.Handle).
			Int("lastHour", actionsLastHour).Int("maxPerHour", rule.MaxPerHour).
			Msg("account approaching hourly rate limit")
	}
	if float64(actionsLastDay) >= float64(rule.MaxPerDay)*config.RateLimitWarnUtilization {
		log.Warn().
			Str("handle", account.Handle).
			Int("lastDay", actionsLastDay).Int("maxPerDay", rule.MaxPerDay).
			Msg("account approaching daily rate limit")
	}

	return model.RateLimitResult{Allowed: true}, nil
}

func (rl *RateLimiter) countRecentActions(ctx context.Context, accountID string, action model.ActionKind, now time.Time) (lastHour, lastDay int, err error) {
	campaigns, err := rl.campaignRepo.FindRunningByAccount(ctx, accountID, action, now.Add(-24*time.Hour))
	if err != nil {
		return 0, 0, fmt.Errorf("find running campaigns: %w", err)
	}

	oneHourAgo := now.Add(-time.Hour)
	for _, c := range campaigns {
		if c.StartedAt != nil && !c.StartedAt.Before(oneHourAgo) {
			lastHour += c.SentCount
		}
		lastDay += c.SentCount
	}
	return lastHour, lastDay, nil
}

// effectiveRule resolves caps from account overrides, falling back to
// settings, then compiled defaults.
func (rl *RateLimiter) effectiveRule(ctx context.Context, account *model.Account) model.RateLimitRule {
	rule := model.RateLimitRule{
		MaxPerHour:      config.DefaultMaxActionsPerHour,
		MaxPerDay:       config.DefaultMaxActionsPerDay,
		CooldownMinutes: config.DefaultCooldownMinutes,
	}

	settings, err := rl.settings.GetCoreSettings(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read settings for rate limit defaults")
	} else {
		if settings.MaxDmsPerHour > 0 {
			rule.MaxPerHour = settings.MaxDmsPerHour
		}
		if settings.MaxDmsPerDay > 0 {
			rule.MaxPerDay = settings.MaxDmsPerDay
		}
	}

	if account.RateLimitPerHour != nil && *account.RateLimitPerHour > 0 {
		rule.MaxPerHour = *account.RateLimitPerHour
	}
	if account.RateLimitPerDay != nil && *account.RateLimitPerDay > 0 {
		rule.MaxPerDay = *account.RateLimitPerDay
	}
	return rule
}

// RecordRateLimitHit puts the account in cooldown after a detected abuse
// signal and stamps last_error.
func (rl *RateLimiter) RecordRateLimitHit(ctx context.Context, accountID, reason string) error {
	until := time.Now().Add(time.Duration(config.DefaultCooldownMinutes) * time.Minute)
	if err := rl.accountRepo.SetCooldown(ctx, accountID, until, "Rate limited: "+reason); err != nil {
		return fmt.Errorf("set cooldown: %w", err)
	}

	log.Warn().
		Str("accountId", accountID).
		Time("cooldownUntil", until).
		Str("reason", reason).
		Msg("account put in cooldown")
	audit.Log(audit.Event{
		Type:      audit.EventRateLimitHit,
		AccountID: accountID,
		Details:   map[string]interface{}{"reason": reason, "cooldownUntil": until.Format(time.RFC3339)},
	})
	return nil
}

// ClearCooldown lifts a cooldown manually.
func (rl *RateLimiter) ClearCooldown(ctx context.Context, accountID string) error {
	if err := rl.accountRepo.ClearCooldown(ctx, accountID); err != nil {
		return fmt.Errorf("clear cooldown: %w", err)
	}
	log.Info().Str("accountId", accountID).Msg("cooldown cleared")
	audit.Log(audit.Event{Type: audit.EventCooldownCleared, AccountID: accountID})
	return nil
}

// AccountUsageStats summarizes recent activity for one account.
type AccountUsageStats struct {
	ActionsLastHour int        `json:"actionsLastHour"`
	ActionsLastDay  int        `json:"actionsLastDay"`
	InCooldown      bool       `json:"inCooldown"`
	CooldownUntil   *time.Time `json:"cooldownUntil,omitempty"`
}

func (rl *RateLimiter) GetAccountStats(ctx context.Context, accountID string) (*AccountUsageStats, error) {
	account, err := rl.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account not found: %s", accountID)
	}

	now := time.Now()
	campaigns, err := rl.campaignRepo.FindStartedByAccountSince(ctx, accountID, now.Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("find recent campaigns: %w", err)
	}

	stats := &AccountUsageStats{
		InCooldown:    account.InCooldown(now),
		CooldownUntil: account.CooldownUntil,
	}
	oneHourAgo := now.Add(-time.Hour)
	for _, c := range campaigns {
		if c.StartedAt != nil && !c.StartedAt.Before(oneHourAgo) {
			stats.ActionsLastHour += c.SentCount
		}
		stats.ActionsLastDay += c.SentCount
	}
	return stats, nil
}

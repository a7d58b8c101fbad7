package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skyreach/outreach-server-go/internal/audit"
	"github.com/skyreach/outreach-server-go/internal/bluesky"
	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
	"github.com/skyreach/outreach-server-go/internal/model"
	"github.com/skyreach/outreach-server-go/internal/repository"
)

// ActionClient is the outbound surface the dispatcher drives. Satisfied by
// bluesky.Client.
type ActionClient interface {
	SendPost(ctx context.Context, creds model.AccountCredentials, text string, langs []string) (*bluesky.PostResult, error)
	SendDirectMessage(ctx context.Context, creds model.AccountCredentials, target model.Target, text string) (*bluesky.DMResult, error)
}

// Locker serializes work per account. Satisfied by AccountLock.
type Locker interface {
	WithLock(ctx context.Context, accountID string, fn func(ctx context.Context) error) error
}

// Dispatcher executes one campaign end to end: rate-limit gate, per-target
// template rendering and sending under the account lock, counter updates,
// and the terminal status transition.
type Dispatcher struct {
	campaignRepo   repository.CampaignRepository
	templateRepo   repository.TemplateRepository
	targetListRepo repository.TargetListRepository
	accounts       *AccountService
	rateLimiter    *RateLimiter
	lock           Locker
	settings       *SettingsService
	logs           *LogService
	client         ActionClient
}

func NewDispatcher(
	campaignRepo repository.CampaignRepository,
	templateRepo repository.TemplateRepository,
	targetListRepo repository.TargetListRepository,
	accounts *AccountService,
	rateLimiter *RateLimiter,
	lock Locker,
	settings *SettingsService,
	logs *LogService,
	client ActionClient,
) *Dispatcher {
	return &Dispatcher{
		campaignRepo:   campaignRepo,
		templateRepo:   templateRepo,
		targetListRepo: targetListRepo,
		accounts:       accounts,
		rateLimiter:    rateLimiter,
		lock:           lock,
		settings:       settings,
		logs:           logs,
		client:         client,
	}
}

// Dispatch runs the campaign to completion. One failing target never aborts
// the run; only a rate-limit denial or a campaign-level setup failure does.
// The returned result mirrors what was persisted on the campaign row.
func (d *Dispatcher) Dispatch(ctx context.Context, campaignID string) (*model.DispatchResult, error) {
	campaign, err := d.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("find campaign: %w", err)
	}
	if campaign == nil {
		return &model.DispatchResult{Success: false, Error: "Campaign not found"}, nil
	}

	if campaign.Status == model.CampaignStatusRunning {
		return &model.DispatchResult{Success: false, Error: "Campaign is already running"}, nil
	}
	if campaign.Status.Terminal() {
		return &model.DispatchResult{Success: false, Error: fmt.Sprintf("Campaign already finished with status %s", campaign.Status)}, nil
	}

	// The gate runs once per campaign, before any send. Mid-run overshoot of
	// at most one batch is accepted; the next campaign pays for it.
	verdict, err := d.rateLimiter.Check(ctx, campaign.AccountID, campaign.Type)
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if !verdict.Allowed {
		// A denial is not terminal. The campaign keeps its current status so
		// the caller can retry once the window frees up or the cooldown ends.
		d.logs.Write(ctx, model.LogLevelWarn,
			fmt.Sprintf("Campaign %q blocked: %s", campaign.Name, verdict.Reason),
			campaign.AccountID, campaign.ID, nil)

		return &model.DispatchResult{
			Success:     false,
			RateLimited: true,
			RetryAfter:  verdict.RetryAfter,
			Error:       verdict.Reason,
		}, nil
	}

	creds, err := d.accounts.GetCredentials(ctx, campaign.AccountID)
	if err != nil {
		d.failCampaign(ctx, campaign, "Failed to load account credentials")
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	body, err := d.resolveBody(ctx, campaign)
	if err != nil {
		d.failCampaign(ctx, campaign, err.Error())
		return &model.DispatchResult{Success: false, Error: err.Error()}, nil
	}

	rawTargets, err := d.resolveTargets(ctx, campaign)
	if err != nil {
		d.failCampaign(ctx, campaign, "Campaign targets are malformed")
		return &model.DispatchResult{Success: false, Error: "Campaign targets are malformed"}, nil
	}
	if len(rawTargets) == 0 {
		d.failCampaign(ctx, campaign, "Campaign has no targets")
		return &model.DispatchResult{Success: false, Error: "Campaign has no targets"}, nil
	}

	now := time.Now()
	if _, err := d.campaignRepo.UpdateStatus(ctx, campaign.ID, model.CampaignStatusRunning, &now, nil); err != nil {
		return nil, fmt.Errorf("mark campaign running: %w", err)
	}
	d.logs.Write(ctx, model.LogLevelInfo,
		fmt.Sprintf("Campaign %q started with %d targets", campaign.Name, len(rawTargets)),
		campaign.AccountID, campaign.ID, map[string]any{"targets": len(rawTargets), "type": campaign.Type})
	audit.Log(audit.Event{
		Type:       audit.EventCampaignStart,
		AccountID:  campaign.AccountID,
		CampaignID: campaign.ID,
		Details:    map[string]interface{}{"targets": len(rawTargets), "type": string(campaign.Type)},
	})

	delay := d.settings.DispatchDelay(ctx)

	result := &model.DispatchResult{Results: make([]model.DispatchOutcome, 0, len(rawTargets))}

	for i, raw := range rawTargets {
		target := model.Target{Handle: raw}
		if strings.HasPrefix(raw, "did:") {
			target = model.Target{DID: raw, Handle: raw}
		}

		outcome := d.dispatchOne(ctx, campaign, creds, target, body)
		result.Results = append(result.Results, outcome)
		result.TotalProcessed++

		if outcome.Success {
			result.SuccessCount++
			if err := d.campaignRepo.IncrementCounters(ctx, campaign.ID, 1, 1); err != nil {
				log.Error().Err(err).Str("campaignId", campaign.ID).Msg("failed to increment campaign counters")
			}
		} else {
			result.FailureCount++
			if err := d.campaignRepo.IncrementCounters(ctx, campaign.ID, 1, 0); err != nil {
				log.Error().Err(err).Str("campaignId", campaign.ID).Msg("failed to increment campaign counters")
			}
			d.logs.Write(ctx, model.LogLevelError,
				fmt.Sprintf("Failed to reach %s: %s", target.Handle, outcome.Error),
				campaign.AccountID, campaign.ID, map[string]any{"target": target.Handle})
		}

		if ctx.Err() != nil {
			break
		}
		if delay > 0 && i < len(rawTargets)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
		}
	}

	if ctx.Err() != nil {
		d.failCampaign(ctx, campaign, "Campaign cancelled")
		result.Error = "Campaign cancelled"
		return result, nil
	}

	// Per-target failures were already counted and logged; a run that made it
	// through every target is COMPLETED regardless of how many sends stuck.
	done := time.Now()
	if _, err := d.campaignRepo.UpdateStatus(ctx, campaign.ID, model.CampaignStatusCompleted, nil, &done); err != nil {
		log.Error().Err(err).Str("campaignId", campaign.ID).Msg("failed to finalize campaign status")
	}

	result.Success = true
	d.logs.Write(ctx, model.LogLevelInfo,
		fmt.Sprintf("Campaign %q finished: %d sent, %d failed", campaign.Name, result.SuccessCount, result.FailureCount),
		campaign.AccountID, campaign.ID,
		map[string]any{"successCount": result.SuccessCount, "failureCount": result.FailureCount, "status": model.CampaignStatusCompleted})

	audit.Log(audit.Event{
		Type:       audit.EventCampaignComplete,
		AccountID:  campaign.AccountID,
		CampaignID: campaign.ID,
		Details:    map[string]interface{}{"successCount": result.SuccessCount, "failureCount": result.FailureCount},
	})

	return result, nil
}

// dispatchOne renders and sends to a single target under the account lock.
// All errors are folded into the outcome.
func (d *Dispatcher) dispatchOne(ctx context.Context, campaign *model.Campaign, creds model.AccountCredentials, target model.Target, body string) model.DispatchOutcome {
	outcome := model.DispatchOutcome{Target: target}

	message := RenderBody(body, templateVariables(target))

	err := d.lock.WithLock(ctx, campaign.AccountID, func(ctx context.Context) error {
		switch campaign.Type {
		case model.ActionKindPost:
			text := message
			if target.Handle != "" && !strings.HasPrefix(target.Handle, "did:") && !strings.Contains(text, "@"+target.Handle) {
				text = "@" + target.Handle + " " + text
			}
			res, err := d.client.SendPost(ctx, creds, text, []string{"en"})
			if err != nil {
				return err
			}
			outcome.MessageID = res.URI
		default:
			res, err := d.client.SendDirectMessage(ctx, creds, target, message)
			if err != nil {
				return err
			}
			outcome.MessageID = res.MessageID
		}
		return nil
	})
	if err != nil {
		outcome.Error = err.Error()

		// An upstream throttle mid-run puts the account on ice immediately
		// rather than burning the remaining targets.
		if apperrors.GetCode(err) == apperrors.ErrCodeUpstreamRateLimited {
			if rlErr := d.rateLimiter.RecordRateLimitHit(ctx, campaign.AccountID, err.Error()); rlErr != nil {
				log.Error().Err(rlErr).Str("accountId", campaign.AccountID).Msg("failed to record rate limit hit")
			}
		}
		return outcome
	}

	outcome.Success = true
	return outcome
}

// resolveTargets prefers the campaign's own serialized targets and falls back
// to the referenced reusable target list.
func (d *Dispatcher) resolveTargets(ctx context.Context, campaign *model.Campaign) ([]string, error) {
	targets, err := campaign.Targets()
	if err != nil {
		return nil, fmt.Errorf("decode campaign targets: %w", err)
	}
	if len(targets) > 0 {
		return targets, nil
	}

	if campaign.TargetListID != nil {
		list, err := d.targetListRepo.FindByID(ctx, *campaign.TargetListID)
		if err != nil {
			return nil, fmt.Errorf("load target list: %w", err)
		}
		if list != nil {
			return list.Targets()
		}
	}
	return nil, nil
}

// resolveBody prefers the campaign's linked template; the template must exist
// when referenced.
func (d *Dispatcher) resolveBody(ctx context.Context, campaign *model.Campaign) (string, error) {
	if campaign.TemplateID == nil {
		return "", fmt.Errorf("campaign has no message template")
	}
	tmpl, err := d.templateRepo.FindByID(ctx, *campaign.TemplateID)
	if err != nil {
		return "", fmt.Errorf("load template: %w", err)
	}
	if tmpl == nil {
		return "", fmt.Errorf("campaign template not found")
	}
	return tmpl.Body, nil
}

func (d *Dispatcher) failCampaign(ctx context.Context, campaign *model.Campaign, reason string) {
	done := time.Now()
	if _, err := d.campaignRepo.UpdateStatus(ctx, campaign.ID, model.CampaignStatusFailed, nil, &done); err != nil {
		log.Error().Err(err).Str("campaignId", campaign.ID).Msg("failed to mark campaign as failed")
	}
	d.logs.Write(ctx, model.LogLevelError,
		fmt.Sprintf("Campaign %q failed: %s", campaign.Name, reason),
		campaign.AccountID, campaign.ID, nil)
	audit.Log(audit.Event{
		Type:       audit.EventCampaignFailed,
		AccountID:  campaign.AccountID,
		CampaignID: campaign.ID,
		Details:    map[string]interface{}{"reason": reason},
	})
}

// templateVariables derives the substitution set for one target. Unknown
// recipients render as "there" instead of leaking raw identifiers.
func templateVariables(target model.Target) map[string]string {
	username := target.Handle
	if i := strings.IndexByte(username, '.'); i > 0 {
		username = username[:i]
	}
	if username == "" || strings.HasPrefix(target.Handle, "did:") {
		username = "there"
	}

	displayName := target.DisplayName
	if displayName == "" {
		displayName = username
	}

	handle := target.Handle
	if handle == "" {
		handle = "there"
	}

	return map[string]string{
		"username":    username,
		"displayName": displayName,
		"handle":      handle,
	}
}

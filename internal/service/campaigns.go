package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
	"github.com/skyreach/outreach-server-go/internal/model"
	"github.com/skyreach/outreach-server-go/internal/repository"
	"github.com/skyreach/outreach-server-go/internal/util"
)

type CampaignService struct {
	campaignRepo repository.CampaignRepository
	accountRepo  repository.AccountRepository
	templateRepo repository.TemplateRepository
}

func NewCampaignService(
	campaignRepo repository.CampaignRepository,
	accountRepo repository.AccountRepository,
	templateRepo repository.TemplateRepository,
) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		accountRepo:  accountRepo,
		templateRepo: templateRepo,
	}
}

type CreateCampaignParams struct {
	Name      string
	Type      model.ActionKind
	Message   string
	Targets   []string
	AccountID string
}

// Create validates the request, filters the target list down to valid
// handles/DIDs, creates a backing template holding the message body, and
// persists the campaign in QUEUED with the serialized targets.
func (s *CampaignService) Create(ctx context.Context, params CreateCampaignParams) (*model.Campaign, error) {
	if params.Name == "" {
		return nil, apperrors.MissingRequired("name")
	}
	if !params.Type.Valid() {
		return nil, apperrors.InvalidInput("type", "must be DM or POST")
	}
	if params.Message == "" {
		return nil, apperrors.MissingRequired("message")
	}
	if params.AccountID == "" {
		return nil, apperrors.MissingRequired("accountId")
	}
	if len(params.Targets) == 0 {
		return nil, apperrors.ValidationError("Targets must be a non-empty array")
	}

	validTargets := util.FilterValidTargets(params.Targets)
	if len(validTargets) == 0 {
		return nil, apperrors.ValidationError("Targets must contain at least one valid Bluesky handle or DID")
	}

	account, err := s.accountRepo.FindByID(ctx, params.AccountID)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if account == nil {
		return nil, apperrors.NotFound("Account")
	}

	template, err := s.templateRepo.Create(ctx, model.CreateTemplateParams{
		Name: params.Name + " Template",
		Type: params.Type,
		Body: params.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("create campaign template: %w", err)
	}

	targetsJSON, err := json.Marshal(validTargets)
	if err != nil {
		return nil, fmt.Errorf("encode targets: %w", err)
	}
	serialized := string(targetsJSON)

	campaign, err := s.campaignRepo.Create(ctx, model.CreateCampaignParams{
		Name:        params.Name,
		AccountID:   params.AccountID,
		TemplateID:  &template.ID,
		TargetsJSON: &serialized,
		Type:        params.Type,
		Status:      model.CampaignStatusQueued,
	})
	if err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	log.Info().
		Str("campaignId", campaign.ID).
		Str("accountId", params.AccountID).
		Int("targets", len(validTargets)).
		Msg("campaign created")

	return campaign, nil
}

func (s *CampaignService) FindAll(ctx context.Context) ([]model.Campaign, error) {
	return s.campaignRepo.FindAll(ctx)
}

func (s *CampaignService) FindByID(ctx context.Context, id string) (*model.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find campaign: %w", err)
	}
	if campaign == nil {
		return nil, apperrors.NotFound("Campaign")
	}
	return campaign, nil
}

// UpdateStatus transitions a campaign, stamping startedAt on entry to RUNNING
// and completedAt on entry to a completed-like status. Transitions out of a
// terminal status are rejected.
func (s *CampaignService) UpdateStatus(ctx context.Context, id string, status model.CampaignStatus) (*model.Campaign, error) {
	campaign, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status.Terminal() && campaign.Status != status {
		return nil, apperrors.New(apperrors.ErrCodeConflict,
			fmt.Sprintf("Campaign is %s and cannot transition to %s", campaign.Status, status))
	}

	var startedAt, completedAt *time.Time
	now := time.Now()
	switch status {
	case model.CampaignStatusRunning:
		startedAt = &now
	case model.CampaignStatusCompleted, model.CampaignStatusFailed, model.CampaignStatusCooldown:
		completedAt = &now
	}

	updated, err := s.campaignRepo.UpdateStatus(ctx, id, status, startedAt, completedAt)
	if err != nil {
		return nil, fmt.Errorf("update campaign status: %w", err)
	}
	return updated, nil
}

type CampaignStats struct {
	CampaignID   string               `json:"campaignId"`
	Status       model.CampaignStatus `json:"status"`
	TargetCount  int                  `json:"targetCount"`
	SentCount    int                  `json:"sentCount"`
	SuccessCount int                  `json:"successCount"`
	FailureCount int                  `json:"failureCount"`
}

func (s *CampaignService) GetStats(ctx context.Context, id string) (*CampaignStats, error) {
	campaign, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	targets, err := campaign.Targets()
	if err != nil {
		log.Warn().Err(err).Str("campaignId", id).Msg("failed to parse campaign targets")
	}

	return &CampaignStats{
		CampaignID:   campaign.ID,
		Status:       campaign.Status,
		TargetCount:  len(targets),
		SentCount:    campaign.SentCount,
		SuccessCount: campaign.SuccessCount,
		FailureCount: campaign.SentCount - campaign.SuccessCount,
	}, nil
}

func (s *CampaignService) Delete(ctx context.Context, id string) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	return s.campaignRepo.Delete(ctx, id)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
	"github.com/skyreach/outreach-server-go/internal/model"
)

func TestCampaignCreate(t *testing.T) {
	ctx := context.Background()

	validParams := func() CreateCampaignParams {
		return CreateCampaignParams{
			Name:      "Launch",
			Type:      model.ActionKindDM,
			Message:   "Hey {{username}}",
			Targets:   []string{"alice.bsky.social", "junk", "bob.bsky.social"},
			AccountID: "acc-1",
		}
	}

	t.Run("rejects missing fields", func(t *testing.T) {
		svc := NewCampaignService(new(mockCampaignRepo), new(mockAccountRepo), new(mockTemplateRepo))

		p := validParams()
		p.Name = ""
		_, err := svc.Create(ctx, p)
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))

		p = validParams()
		p.Type = "EMAIL"
		_, err = svc.Create(ctx, p)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))

		p = validParams()
		p.Targets = nil
		_, err = svc.Create(ctx, p)
		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
	})

	t.Run("rejects when no target survives validation", func(t *testing.T) {
		svc := NewCampaignService(new(mockCampaignRepo), new(mockAccountRepo), new(mockTemplateRepo))

		p := validParams()
		p.Targets = []string{"junk", "more junk"}
		_, err := svc.Create(ctx, p)
		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
	})

	t.Run("rejects an unknown account", func(t *testing.T) {
		accountRepo := new(mockAccountRepo)
		accountRepo.On("FindByID", ctx, "acc-1").Return(nil, nil)

		svc := NewCampaignService(new(mockCampaignRepo), accountRepo, new(mockTemplateRepo))
		_, err := svc.Create(ctx, validParams())
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("creates a backing template and persists only valid targets", func(t *testing.T) {
		accountRepo := new(mockAccountRepo)
		campaignRepo := new(mockCampaignRepo)
		templateRepo := new(mockTemplateRepo)

		accountRepo.On("FindByID", ctx, "acc-1").Return(&model.Account{ID: "acc-1"}, nil)
		templateRepo.On("Create", ctx, model.CreateTemplateParams{
			Name: "Launch Template",
			Type: model.ActionKindDM,
			Body: "Hey {{username}}",
		}).Return(&model.Template{ID: "tpl-1"}, nil)
		campaignRepo.On("Create", ctx, mock.MatchedBy(func(p model.CreateCampaignParams) bool {
			return p.Status == model.CampaignStatusQueued &&
				p.TemplateID != nil && *p.TemplateID == "tpl-1" &&
				p.TargetsJSON != nil && *p.TargetsJSON == `["alice.bsky.social","bob.bsky.social"]`
		})).Return(&model.Campaign{ID: "camp-1", Status: model.CampaignStatusQueued}, nil)

		svc := NewCampaignService(campaignRepo, accountRepo, templateRepo)
		campaign, err := svc.Create(ctx, validParams())

		require.NoError(t, err)
		assert.Equal(t, "camp-1", campaign.ID)
		templateRepo.AssertExpectations(t)
		campaignRepo.AssertExpectations(t)
	})
}

func TestCampaignUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps startedAt entering RUNNING", func(t *testing.T) {
		campaignRepo := new(mockCampaignRepo)
		campaignRepo.On("FindByID", ctx, "camp-1").
			Return(&model.Campaign{ID: "camp-1", Status: model.CampaignStatusQueued}, nil)
		campaignRepo.On("UpdateStatus", ctx, "camp-1", model.CampaignStatusRunning, mock.Anything, (*time.Time)(nil)).
			Return(&model.Campaign{ID: "camp-1", Status: model.CampaignStatusRunning}, nil)

		svc := NewCampaignService(campaignRepo, new(mockAccountRepo), new(mockTemplateRepo))
		updated, err := svc.UpdateStatus(ctx, "camp-1", model.CampaignStatusRunning)

		require.NoError(t, err)
		assert.Equal(t, model.CampaignStatusRunning, updated.Status)

		startedAt := campaignRepo.Calls[1].Arguments.Get(3).(*time.Time)
		require.NotNil(t, startedAt)
	})

	t.Run("rejects transitions out of a terminal status", func(t *testing.T) {
		campaignRepo := new(mockCampaignRepo)
		campaignRepo.On("FindByID", ctx, "camp-1").
			Return(&model.Campaign{ID: "camp-1", Status: model.CampaignStatusCompleted}, nil)

		svc := NewCampaignService(campaignRepo, new(mockAccountRepo), new(mockTemplateRepo))
		_, err := svc.UpdateStatus(ctx, "camp-1", model.CampaignStatusQueued)

		assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCode(err))
	})
}

func TestCampaignGetStats(t *testing.T) {
	ctx := context.Background()

	t.Run("derives failure count from the counters", func(t *testing.T) {
		targets := `["a.bsky.social","b.bsky.social","c.bsky.social"]`
		campaignRepo := new(mockCampaignRepo)
		campaignRepo.On("FindByID", ctx, "camp-1").Return(&model.Campaign{
			ID:           "camp-1",
			Status:       model.CampaignStatusCompleted,
			TargetsJSON:  &targets,
			SentCount:    3,
			SuccessCount: 2,
		}, nil)

		svc := NewCampaignService(campaignRepo, new(mockAccountRepo), new(mockTemplateRepo))
		stats, err := svc.GetStats(ctx, "camp-1")

		require.NoError(t, err)
		assert.Equal(t, 3, stats.TargetCount)
		assert.Equal(t, 3, stats.SentCount)
		assert.Equal(t, 2, stats.SuccessCount)
		assert.Equal(t, 1, stats.FailureCount)
	})
}

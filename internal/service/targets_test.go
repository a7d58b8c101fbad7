package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
	"github.com/skyreach/outreach-server-go/internal/model"
)

func TestAddTargets(t *testing.T) {
	ctx := context.Background()

	t.Run("partitions added, duplicate and invalid targets", func(t *testing.T) {
		listRepo := new(mockTargetListRepo)
		listRepo.On("FindByID", ctx, "list-1").Return(&model.TargetList{
			ID:          "list-1",
			TargetsJSON: `["alice.bsky.social"]`,
		}, nil)
		listRepo.On("UpdateTargets", ctx, "list-1", `["alice.bsky.social","bob.bsky.social","did:plc:abc"]`).
			Return(&model.TargetList{ID: "list-1"}, nil)

		svc := NewTargetService(listRepo, new(mockCampaignRepo))
		result, err := svc.AddTargets(ctx, "list-1", []string{
			"bob.bsky.social",
			"alice.bsky.social",
			"not valid",
			"did:plc:abc",
		})

		require.NoError(t, err)
		assert.Equal(t, 2, result.Added)
		assert.Equal(t, 1, result.Duplicates)
		assert.Equal(t, 1, result.Invalid)
		listRepo.AssertExpectations(t)
	})

	t.Run("rejects an all-invalid batch", func(t *testing.T) {
		listRepo := new(mockTargetListRepo)
		listRepo.On("FindByID", ctx, "list-1").Return(&model.TargetList{ID: "list-1", TargetsJSON: "[]"}, nil)

		svc := NewTargetService(listRepo, new(mockCampaignRepo))
		_, err := svc.AddTargets(ctx, "list-1", []string{"nope", "also nope"})

		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
	})

	t.Run("rejects an all-duplicate batch", func(t *testing.T) {
		listRepo := new(mockTargetListRepo)
		listRepo.On("FindByID", ctx, "list-1").Return(&model.TargetList{
			ID:          "list-1",
			TargetsJSON: `["alice.bsky.social"]`,
		}, nil)

		svc := NewTargetService(listRepo, new(mockCampaignRepo))
		_, err := svc.AddTargets(ctx, "list-1", []string{"alice.bsky.social"})

		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
	})

	t.Run("fails for an unknown list", func(t *testing.T) {
		listRepo := new(mockTargetListRepo)
		listRepo.On("FindByID", ctx, "missing").Return(nil, nil)

		svc := NewTargetService(listRepo, new(mockCampaignRepo))
		_, err := svc.AddTargets(ctx, "missing", []string{"alice.bsky.social"})

		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}

func TestDeleteList(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses while campaigns reference the list", func(t *testing.T) {
		listRepo := new(mockTargetListRepo)
		campaignRepo := new(mockCampaignRepo)
		listRepo.On("FindByID", ctx, "list-1").Return(&model.TargetList{ID: "list-1"}, nil)
		campaignRepo.On("CountByTargetListID", ctx, "list-1").Return(2, nil)

		svc := NewTargetService(listRepo, campaignRepo)
		err := svc.DeleteList(ctx, "list-1")

		assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCode(err))
		listRepo.AssertNotCalled(t, "Delete", ctx, "list-1")
	})

	t.Run("deletes an unreferenced list", func(t *testing.T) {
		listRepo := new(mockTargetListRepo)
		campaignRepo := new(mockCampaignRepo)
		listRepo.On("FindByID", ctx, "list-1").Return(&model.TargetList{ID: "list-1"}, nil)
		campaignRepo.On("CountByTargetListID", ctx, "list-1").Return(0, nil)
		listRepo.On("Delete", ctx, "list-1").Return(nil)

		svc := NewTargetService(listRepo, campaignRepo)
		require.NoError(t, svc.DeleteList(ctx, "list-1"))
		listRepo.AssertExpectations(t)
	})
}

func TestCreateList(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a name", func(t *testing.T) {
		svc := NewTargetService(new(mockTargetListRepo), new(mockCampaignRepo))
		_, err := svc.CreateList(ctx, "", nil)
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))
	})

	t.Run("starts with an empty target set", func(t *testing.T) {
		listRepo := new(mockTargetListRepo)
		listRepo.On("Create", ctx, model.CreateTargetListParams{Name: "Prospects", TargetsJSON: "[]"}).
			Return(&model.TargetList{ID: "list-1", Name: "Prospects", TargetsJSON: "[]"}, nil)

		svc := NewTargetService(listRepo, new(mockCampaignRepo))
		list, err := svc.CreateList(ctx, "Prospects", nil)

		require.NoError(t, err)
		assert.Equal(t, "Prospects", list.Name)
	})
}

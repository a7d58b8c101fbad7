package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
	"github.com/skyreach/outreach-server-go/internal/model"
	"github.com/skyreach/outreach-server-go/internal/repository"
	"github.com/skyreach/outreach-server-go/internal/util"
)

type TargetService struct {
	targetListRepo repository.TargetListRepository
	campaignRepo   repository.CampaignRepository
}

func NewTargetService(
	targetListRepo repository.TargetListRepository,
	campaignRepo repository.CampaignRepository,
) *TargetService {
	return &TargetService{
		targetListRepo: targetListRepo,
		campaignRepo:   campaignRepo,
	}
}

func (s *TargetService) CreateList(ctx context.Context, name string, description *string) (*model.TargetList, error) {
	if name == "" {
		return nil, apperrors.MissingRequired("name")
	}

	list, err := s.targetListRepo.Create(ctx, model.CreateTargetListParams{
		Name:        name,
		Description: description,
		TargetsJSON: "[]",
	})
	if err != nil {
		return nil, fmt.Errorf("create target list: %w", err)
	}

	log.Info().Str("targetListId", list.ID).Str("name", name).Msg("target list created")
	return list, nil
}

func (s *TargetService) FindAllLists(ctx context.Context) ([]model.TargetList, error) {
	return s.targetListRepo.FindAll(ctx)
}

func (s *TargetService) FindList(ctx context.Context, id string) (*model.TargetList, error) {
	list, err := s.targetListRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find target list: %w", err)
	}
	if list == nil {
		return nil, apperrors.NotFound("Target list")
	}
	return list, nil
}

// AddTargetsResult reports how an AddTargets batch was partitioned.
type AddTargetsResult struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
}

// AddTargets validates, dedups and appends targets to a list. Invalid and
// duplicate entries are counted, not errors; an all-invalid batch is.
func (s *TargetService) AddTargets(ctx context.Context, listID string, targets []string) (*AddTargetsResult, error) {
	list, err := s.FindList(ctx, listID)
	if err != nil {
		return nil, err
	}

	valid := util.FilterValidTargets(targets)
	if len(valid) == 0 {
		return nil, apperrors.ValidationError("No valid targets provided")
	}

	existing, err := list.Targets()
	if err != nil {
		return nil, fmt.Errorf("parse existing targets: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[t] = true
	}

	added := existing
	newCount := 0
	for _, t := range valid {
		if seen[t] {
			continue
		}
		seen[t] = true
		added = append(added, t)
		newCount++
	}

	if newCount == 0 {
		return nil, apperrors.ValidationError("All targets already exist in this list")
	}

	data, err := json.Marshal(added)
	if err != nil {
		return nil, fmt.Errorf("encode targets: %w", err)
	}
	if _, err := s.targetListRepo.UpdateTargets(ctx, listID, string(data)); err != nil {
		return nil, fmt.Errorf("update target list: %w", err)
	}

	log.Info().Str("targetListId", listID).Int("added", newCount).Msg("targets added to list")

	return &AddTargetsResult{
		Added:      newCount,
		Duplicates: len(valid) - newCount,
		Invalid:    len(targets) - len(valid),
	}, nil
}

// DeleteList removes a target list unless a campaign still references it.
func (s *TargetService) DeleteList(ctx context.Context, id string) error {
	if _, err := s.FindList(ctx, id); err != nil {
		return err
	}

	inUse, err := s.campaignRepo.CountByTargetListID(ctx, id)
	if err != nil {
		return fmt.Errorf("count referencing campaigns: %w", err)
	}
	if inUse > 0 {
		return apperrors.New(apperrors.ErrCodeConflict,
			fmt.Sprintf("Target list is used by %d campaign(s)", inUse))
	}

	return s.targetListRepo.Delete(ctx, id)
}

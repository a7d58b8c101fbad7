package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skyreach/outreach-server-go/internal/model"
)

type CampaignRepository interface {
	FindByID(ctx context.Context, id string) (*model.Campaign, error)
	FindAll(ctx context.Context) ([]model.Campaign, error)
	FindByAccountID(ctx context.Context, accountID string) ([]model.Campaign, error)
	// FindRunningByAccount returns the account's campaigns of the given kind
	// that are RUNNING and started at or after since.
	FindRunningByAccount(ctx context.Context, accountID string, kind model.ActionKind, since time.Time) ([]model.Campaign, error)
	FindStartedByAccountSince(ctx context.Context, accountID string, since time.Time) ([]model.Campaign, error)
	CountByTargetListID(ctx context.Context, targetListID string) (int, error)
	Create(ctx context.Context, params model.CreateCampaignParams) (*model.Campaign, error)
	UpdateStatus(ctx context.Context, id string, status model.CampaignStatus, startedAt, completedAt *time.Time) (*model.Campaign, error)
	// IncrementCounters bumps sent_count by sentDelta and success_count by
	// successDelta in a single statement.
	IncrementCounters(ctx context.Context, id string, sentDelta, successDelta int) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	WithTx(tx *sqlx.Tx) CampaignRepository
}

type campaignRepo struct {
	db sqlxDB
}

func NewCampaignRepository(db *sqlx.DB) CampaignRepository {
	return &campaignRepo{db: db}
}

func (r *campaignRepo) WithTx(tx *sqlx.Tx) CampaignRepository {
	return &campaignRepo{db: tx}
}

func (r *campaignRepo) FindByID(ctx context.Context, id string) (*model.Campaign, error) {
	var campaign model.Campaign
	err := r.db.GetContext(ctx, &campaign, `
		SELECT * FROM campaigns WHERE id = $1
	`, id)
	return HandleNotFound(&campaign, err)
}

func (r *campaignRepo) FindAll(ctx context.Context) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	err := r.db.SelectContext(ctx, &campaigns, `
		SELECT * FROM campaigns
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *campaignRepo) FindByAccountID(ctx context.Context, accountID string) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	err := r.db.SelectContext(ctx, &campaigns, `
		SELECT * FROM campaigns
		WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *campaignRepo) FindRunningByAccount(ctx context.Context, accountID string, kind model.ActionKind, since time.Time) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	err := r.db.SelectContext(ctx, &campaigns, `
		SELECT * FROM campaigns
		WHERE account_id = $1 AND type = $2 AND status = $3 AND started_at >= $4
		ORDER BY started_at DESC
	`, accountID, kind, model.CampaignStatusRunning, since)
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *campaignRepo) FindStartedByAccountSince(ctx context.Context, accountID string, since time.Time) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	err := r.db.SelectContext(ctx, &campaigns, `
		SELECT * FROM campaigns
		WHERE account_id = $1 AND started_at >= $2
		ORDER BY started_at DESC
	`, accountID, since)
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *campaignRepo) CountByTargetListID(ctx context.Context, targetListID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM campaigns WHERE target_list_id = $1
	`, targetListID)
	return count, err
}

func (r *campaignRepo) Create(ctx context.Context, params model.CreateCampaignParams) (*model.Campaign, error) {
	var campaign model.Campaign
	err := r.db.GetContext(ctx, &campaign, `
		INSERT INTO campaigns (name, account_id, template_id, target_list_id, targets_json, type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *
	`, params.Name, params.AccountID, params.TemplateID, params.TargetListID,
		params.TargetsJSON, params.Type, params.Status)
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepo) UpdateStatus(ctx context.Context, id string, status model.CampaignStatus, startedAt, completedAt *time.Time) (*model.Campaign, error) {
	var campaign model.Campaign
	err := r.db.GetContext(ctx, &campaign, `
		UPDATE campaigns SET
			status = $2,
			started_at = COALESCE($3, started_at),
			completed_at = COALESCE($4, completed_at),
			updated_at = $5
		WHERE id = $1
		RETURNING *
	`, id, status, startedAt, completedAt, time.Now())
	return HandleNotFound(&campaign, err)
}

func (r *campaignRepo) IncrementCounters(ctx context.Context, id string, sentDelta, successDelta int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET
			sent_count = sent_count + $2,
			success_count = success_count + $3,
			updated_at = $4
		WHERE id = $1
	`, id, sentDelta, successDelta, time.Now())
	return err
}

func (r *campaignRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	return err
}

func (r *campaignRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM campaigns`)
	return count, err
}

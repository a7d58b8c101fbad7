package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skyreach/outreach-server-go/internal/model"
)

type TargetListRepository interface {
	FindByID(ctx context.Context, id string) (*model.TargetList, error)
	FindAll(ctx context.Context) ([]model.TargetList, error)
	Create(ctx context.Context, params model.CreateTargetListParams) (*model.TargetList, error)
	UpdateTargets(ctx context.Context, id, targetsJSON string) (*model.TargetList, error)
	Delete(ctx context.Context, id string) error
	WithTx(tx *sqlx.Tx) TargetListRepository
}

type targetListRepo struct {
	db sqlxDB
}

func NewTargetListRepository(db *sqlx.DB) TargetListRepository {
	return &targetListRepo{db: db}
}

func (r *targetListRepo) WithTx(tx *sqlx.Tx) TargetListRepository {
	return &targetListRepo{db: tx}
}

func (r *targetListRepo) FindByID(ctx context.Context, id string) (*model.TargetList, error) {
	var list model.TargetList
	err := r.db.GetContext(ctx, &list, `
		SELECT * FROM target_lists WHERE id = $1
	`, id)
	return HandleNotFound(&list, err)
}

func (r *targetListRepo) FindAll(ctx context.Context) ([]model.TargetList, error) {
	var lists []model.TargetList
	err := r.db.SelectContext(ctx, &lists, `
		SELECT * FROM target_lists
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *targetListRepo) Create(ctx context.Context, params model.CreateTargetListParams) (*model.TargetList, error) {
	var list model.TargetList
	err := r.db.GetContext(ctx, &list, `
		INSERT INTO target_lists (name, description, targets_json)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.Name, params.Description, params.TargetsJSON)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *targetListRepo) UpdateTargets(ctx context.Context, id, targetsJSON string) (*model.TargetList, error) {
	var list model.TargetList
	err := r.db.GetContext(ctx, &list, `
		UPDATE target_lists SET targets_json = $2, updated_at = $3
		WHERE id = $1
		RETURNING *
	`, id, targetsJSON, time.Now())
	return HandleNotFound(&list, err)
}

func (r *targetListRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM target_lists WHERE id = $1`, id)
	return err
}

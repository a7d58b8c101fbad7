package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skyreach/outreach-server-go/internal/model"
)

type SettingRepository interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
	Upsert(ctx context.Context, key, value string) (*model.Setting, error)
	WithTx(tx *sqlx.Tx) SettingRepository
}

type settingRepo struct {
	db sqlxDB
}

func NewSettingRepository(db *sqlx.DB) SettingRepository {
	return &settingRepo{db: db}
}

func (r *settingRepo) WithTx(tx *sqlx.Tx) SettingRepository {
	return &settingRepo{db: tx}
}

func (r *settingRepo) Get(ctx context.Context, key string) (*model.Setting, error) {
	var setting model.Setting
	err := r.db.GetContext(ctx, &setting, `
		SELECT * FROM settings WHERE key = $1
	`, key)
	return HandleNotFound(&setting, err)
}

func (r *settingRepo) Upsert(ctx context.Context, key, value string) (*model.Setting, error) {
	var setting model.Setting
	err := r.db.GetContext(ctx, &setting, `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = $3
		RETURNING *
	`, key, value, time.Now())
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

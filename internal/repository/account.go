package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skyreach/outreach-server-go/internal/model"
)

type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*model.Account, error)
	FindByHandle(ctx context.Context, handle string) (*model.Account, error)
	FindAll(ctx context.Context) ([]model.Account, error)
	Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error)
	Update(ctx context.Context, id string, params model.UpdateAccountParams) (*model.Account, error)
	UpdateDID(ctx context.Context, id, did string) error
	TouchLastLogin(ctx context.Context, id string) error
	SetCooldown(ctx context.Context, id string, until time.Time, lastError string) error
	ClearCooldown(ctx context.Context, id string) error
	ClearExpiredCooldowns(ctx context.Context) (int64, error)
	CountInCooldown(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) AccountRepository
}

type accountRepo struct {
	db sqlxDB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) WithTx(tx *sqlx.Tx) AccountRepository {
	return &accountRepo{db: tx}
}

func (r *accountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM accounts WHERE id = $1
	`, id)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) FindByHandle(ctx context.Context, handle string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM accounts WHERE handle = $1
	`, handle)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) FindAll(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.SelectContext(ctx, &accounts, `
		SELECT * FROM accounts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepo) Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		INSERT INTO accounts (handle, display_name, label, encrypted_app_password, status, rate_limit_per_hour, rate_limit_per_day, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *
	`, params.Handle, params.DisplayName, params.Label, params.EncryptedAppPassword,
		model.AccountStatusActive, params.RateLimitPerHour, params.RateLimitPerDay, time.Now())
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) Update(ctx context.Context, id string, params model.UpdateAccountParams) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		UPDATE accounts SET
			display_name = COALESCE($2, display_name),
			label = COALESCE($3, label),
			status = COALESCE($4, status),
			rate_limit_per_hour = COALESCE($5, rate_limit_per_hour),
			rate_limit_per_day = COALESCE($6, rate_limit_per_day),
			updated_at = $7
		WHERE id = $1
		RETURNING *
	`, id, params.DisplayName, params.Label, params.Status,
		params.RateLimitPerHour, params.RateLimitPerDay, time.Now())
	return HandleNotFound(&account, err)
}

func (r *accountRepo) UpdateDID(ctx context.Context, id, did string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET did = $2, updated_at = $3 WHERE id = $1
	`, id, did, time.Now())
	return err
}

func (r *accountRepo) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET last_login_at = $2 WHERE id = $1
	`, id, time.Now())
	return err
}

func (r *accountRepo) SetCooldown(ctx context.Context, id string, until time.Time, lastError string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET cooldown_until = $2, last_error = $3, updated_at = $4 WHERE id = $1
	`, id, until, lastError, time.Now())
	return err
}

func (r *accountRepo) ClearCooldown(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET cooldown_until = NULL, last_error = NULL, updated_at = $2 WHERE id = $1
	`, id, time.Now())
	return err
}

func (r *accountRepo) ClearExpiredCooldowns(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET cooldown_until = NULL, updated_at = $1
		WHERE cooldown_until IS NOT NULL AND cooldown_until <= $1
	`, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *accountRepo) CountInCooldown(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM accounts WHERE cooldown_until IS NOT NULL AND cooldown_until > $1
	`, time.Now())
	return count, err
}

func (r *accountRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}

func (r *accountRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM accounts`)
	return count, err
}

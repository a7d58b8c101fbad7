package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skyreach/outreach-server-go/internal/model"
)

// LogEntryFilter narrows FindFiltered. Zero values mean "no filter".
type LogEntryFilter struct {
	Level      model.LogLevel
	AccountID  string
	CampaignID string
	Limit      int
	Offset     int
}

type LogEntryRepository interface {
	Create(ctx context.Context, params model.CreateLogEntryParams) (*model.LogEntry, error)
	FindRecent(ctx context.Context, limit int) ([]model.LogEntry, error)
	FindFiltered(ctx context.Context, filter LogEntryFilter) ([]model.LogEntry, error)
	CountByLevel(ctx context.Context, level model.LogLevel) (int, error)
	Count(ctx context.Context) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	WithTx(tx *sqlx.Tx) LogEntryRepository
}

type logEntryRepo struct {
	db sqlxDB
}

func NewLogEntryRepository(db *sqlx.DB) LogEntryRepository {
	return &logEntryRepo{db: db}
}

func (r *logEntryRepo) WithTx(tx *sqlx.Tx) LogEntryRepository {
	return &logEntryRepo{db: tx}
}

func (r *logEntryRepo) Create(ctx context.Context, params model.CreateLogEntryParams) (*model.LogEntry, error) {
	var entry model.LogEntry
	err := r.db.GetContext(ctx, &entry, `
		INSERT INTO log_entries (level, message, account_id, campaign_id, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.Level, params.Message, params.AccountID, params.CampaignID, params.Metadata)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *logEntryRepo) FindRecent(ctx context.Context, limit int) ([]model.LogEntry, error) {
	var entries []model.LogEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM log_entries
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *logEntryRepo) FindFiltered(ctx context.Context, filter LogEntryFilter) ([]model.LogEntry, error) {
	query := `SELECT * FROM log_entries WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filter.Level != "" {
		query += ` AND level = $` + strconv.Itoa(idx)
		args = append(args, filter.Level)
		idx++
	}
	if filter.AccountID != "" {
		query += ` AND account_id = $` + strconv.Itoa(idx)
		args = append(args, filter.AccountID)
		idx++
	}
	if filter.CampaignID != "" {
		query += ` AND campaign_id = $` + strconv.Itoa(idx)
		args = append(args, filter.CampaignID)
		idx++
	}

	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(idx)
	args = append(args, filter.Limit)
	idx++
	query += ` OFFSET $` + strconv.Itoa(idx)
	args = append(args, filter.Offset)

	var entries []model.LogEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *logEntryRepo) CountByLevel(ctx context.Context, level model.LogLevel) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM log_entries WHERE level = $1
	`, level)
	return count, err
}

func (r *logEntryRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM log_entries`)
	return count, err
}

func (r *logEntryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM log_entries WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}


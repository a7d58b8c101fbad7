package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skyreach/outreach-server-go/internal/model"
)

type TemplateRepository interface {
	FindByID(ctx context.Context, id string) (*model.Template, error)
	FindAll(ctx context.Context, kind *model.ActionKind) ([]model.Template, error)
	Create(ctx context.Context, params model.CreateTemplateParams) (*model.Template, error)
	Update(ctx context.Context, id string, params model.UpdateTemplateParams) (*model.Template, error)
	Delete(ctx context.Context, id string) error
	WithTx(tx *sqlx.Tx) TemplateRepository
}

type templateRepo struct {
	db sqlxDB
}

func NewTemplateRepository(db *sqlx.DB) TemplateRepository {
	return &templateRepo{db: db}
}

func (r *templateRepo) WithTx(tx *sqlx.Tx) TemplateRepository {
	return &templateRepo{db: tx}
}

func (r *templateRepo) FindByID(ctx context.Context, id string) (*model.Template, error) {
	var tmpl model.Template
	err := r.db.GetContext(ctx, &tmpl, `
		SELECT * FROM templates WHERE id = $1
	`, id)
	return HandleNotFound(&tmpl, err)
}

func (r *templateRepo) FindAll(ctx context.Context, kind *model.ActionKind) ([]model.Template, error) {
	var templates []model.Template
	if kind != nil {
		err := r.db.SelectContext(ctx, &templates, `
			SELECT * FROM templates WHERE type = $1
			ORDER BY created_at DESC
		`, *kind)
		if err != nil {
			return nil, err
		}
		return templates, nil
	}

	err := r.db.SelectContext(ctx, &templates, `
		SELECT * FROM templates
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepo) Create(ctx context.Context, params model.CreateTemplateParams) (*model.Template, error) {
	var tmpl model.Template
	err := r.db.GetContext(ctx, &tmpl, `
		INSERT INTO templates (name, description, type, body)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.Name, params.Description, params.Type, params.Body)
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *templateRepo) Update(ctx context.Context, id string, params model.UpdateTemplateParams) (*model.Template, error) {
	var tmpl model.Template
	err := r.db.GetContext(ctx, &tmpl, `
		UPDATE templates SET
			name = COALESCE($2, name),
			type = COALESCE($3, type),
			body = COALESCE($4, body),
			updated_at = $5
		WHERE id = $1
		RETURNING *
	`, id, params.Name, params.Type, params.Body, time.Now())
	return HandleNotFound(&tmpl, err)
}

func (r *templateRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	return err
}

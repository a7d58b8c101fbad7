package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
	"github.com/skyreach/outreach-server-go/internal/model"
	"github.com/skyreach/outreach-server-go/internal/repository"
)

type TemplateService struct {
	templateRepo repository.TemplateRepository
}

func NewTemplateService(templateRepo repository.TemplateRepository) *TemplateService {
	return &TemplateService{templateRepo: templateRepo}
}

func (s *TemplateService) FindAll(ctx context.Context, kind *model.ActionKind) ([]model.Template, error) {
	return s.templateRepo.FindAll(ctx, kind)
}

func (s *TemplateService) FindByID(ctx context.Context, id string) (*model.Template, error) {
	tmpl, err := s.templateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find template: %w", err)
	}
	if tmpl == nil {
		return nil, apperrors.NotFound("Template")
	}
	return tmpl, nil
}

func (s *TemplateService) Create(ctx context.Context, params model.CreateTemplateParams) (*model.Template, error) {
	if params.Name == "" {
		return nil, apperrors.MissingRequired("name")
	}
	if params.Body == "" {
		return nil, apperrors.MissingRequired("body")
	}
	if !params.Type.Valid() {
		return nil, apperrors.InvalidInput("type", "must be DM or POST")
	}

	tmpl, err := s.templateRepo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	log.Info().Str("templateId", tmpl.ID).Str("name", tmpl.Name).Msg("template created")
	return tmpl, nil
}

func (s *TemplateService) Update(ctx context.Context, id string, params model.UpdateTemplateParams) (*model.Template, error) {
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}

	tmpl, err := s.templateRepo.Update(ctx, id, params)
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return tmpl, nil
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	return s.templateRepo.Delete(ctx, id)
}

// Render resolves {{placeholder}} tokens in the template body against the
// supplied variable map. Unknown placeholders are left as-is.
func (s *TemplateService) Render(ctx context.Context, templateID string, variables map[string]string) (string, error) {
	tmpl, err := s.FindByID(ctx, templateID)
	if err != nil {
		return "", err
	}
	return RenderBody(tmpl.Body, variables), nil
}

// RenderBody substitutes {{key}} tokens in body for each variable.
func RenderBody(body string, variables map[string]string) string {
	rendered := body
	for key, value := range variables {
		rendered = strings.ReplaceAll(rendered, "{{"+key+"}}", value)
	}
	return rendered
}

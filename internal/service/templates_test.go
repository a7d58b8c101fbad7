package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
	"github.com/skyreach/outreach-server-go/internal/model"
)

func TestRenderBody(t *testing.T) {
	t.Run("substitutes all known variables", func(t *testing.T) {
		body := "Hi {{username}} ({{handle}}), I am {{displayName}}"
		got := RenderBody(body, map[string]string{
			"username":    "alice",
			"handle":      "alice.bsky.social",
			"displayName": "Alice",
		})
		assert.Equal(t, "Hi alice (alice.bsky.social), I am Alice", got)
	})

	t.Run("replaces repeated placeholders", func(t *testing.T) {
		got := RenderBody("{{name}} and {{name}}", map[string]string{"name": "bob"})
		assert.Equal(t, "bob and bob", got)
	})

	t.Run("leaves unknown placeholders untouched", func(t *testing.T) {
		got := RenderBody("Hi {{unknown}}", map[string]string{"username": "alice"})
		assert.Equal(t, "Hi {{unknown}}", got)
	})

	t.Run("handles empty variables", func(t *testing.T) {
		got := RenderBody("plain text", nil)
		assert.Equal(t, "plain text", got)
	})
}

func TestTemplateService(t *testing.T) {
	ctx := context.Background()

	t.Run("Create rejects missing fields", func(t *testing.T) {
		svc := NewTemplateService(new(mockTemplateRepo))

		_, err := svc.Create(ctx, model.CreateTemplateParams{Type: model.ActionKindDM, Body: "hi"})
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))

		_, err = svc.Create(ctx, model.CreateTemplateParams{Name: "x", Type: model.ActionKindDM})
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))
	})

	t.Run("Create rejects an unknown kind", func(t *testing.T) {
		svc := NewTemplateService(new(mockTemplateRepo))

		_, err := svc.Create(ctx, model.CreateTemplateParams{Name: "x", Type: "EMAIL", Body: "hi"})
		assert.Error(t, err)
	})

	t.Run("Render resolves the template body", func(t *testing.T) {
		repo := new(mockTemplateRepo)
		repo.On("FindByID", ctx, "tpl-1").
			Return(&model.Template{ID: "tpl-1", Body: "Hello {{username}}"}, nil)

		svc := NewTemplateService(repo)
		got, err := svc.Render(ctx, "tpl-1", map[string]string{"username": "alice"})

		require.NoError(t, err)
		assert.Equal(t, "Hello alice", got)
	})

	t.Run("Render fails for a missing template", func(t *testing.T) {
		repo := new(mockTemplateRepo)
		repo.On("FindByID", ctx, "nope").Return(nil, nil)

		svc := NewTemplateService(repo)
		_, err := svc.Render(ctx, "nope", nil)

		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skyreach/outreach-server-go/internal/model"
	"github.com/skyreach/outreach-server-go/internal/repository"
	"github.com/skyreach/outreach-server-go/internal/service"
)

type mockTemplateRepo struct {
	mock.Mock
}

func (m *mockTemplateRepo) FindByID(ctx context.Context, id string) (*model.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}

func (m *mockTemplateRepo) FindAll(ctx context.Context, kind *model.ActionKind) ([]model.Template, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Template), args.Error(1)
}

func (m *mockTemplateRepo) Create(ctx context.Context, params model.CreateTemplateParams) (*model.Template, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}

func (m *mockTemplateRepo) Update(ctx context.Context, id string, params model.UpdateTemplateParams) (*model.Template, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}

func (m *mockTemplateRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTemplateRepo) WithTx(tx *sqlx.Tx) repository.TemplateRepository {
	return m
}

func newTemplatesServer(repo *mockTemplateRepo) http.Handler {
	return NewTemplatesHandler(service.NewTemplateService(repo)).Routes()
}

func TestTemplatesHandler(t *testing.T) {
	t.Run("GET / lists templates", func(t *testing.T) {
		repo := new(mockTemplateRepo)
		repo.On("FindAll", mock.Anything, (*model.ActionKind)(nil)).
			Return([]model.Template{{ID: "tpl-1", Name: "Welcome"}}, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		newTemplatesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var got []model.Template
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Welcome", got[0].Name)
	})

	t.Run("GET /?type=invalid is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/?type=EMAIL", nil)
		newTemplatesServer(new(mockTemplateRepo)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("POST / creates a template", func(t *testing.T) {
		repo := new(mockTemplateRepo)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(p model.CreateTemplateParams) bool {
			return p.Name == "Welcome" && p.Type == model.ActionKindDM && p.Body == "Hi {{username}}"
		})).Return(&model.Template{ID: "tpl-1", Name: "Welcome"}, nil)

		body := `{"name":"Welcome","type":"DM","body":"Hi {{username}}"}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		newTemplatesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		repo.AssertExpectations(t)
	})

	t.Run("POST / with missing fields returns 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"type":"DM"}`))
		newTemplatesServer(new(mockTemplateRepo)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("GET /{id} returns 404 for a missing template", func(t *testing.T) {
		repo := new(mockTemplateRepo)
		repo.On("FindByID", mock.Anything, "nope").Return(nil, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		newTemplatesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("POST /{id}/render previews the body", func(t *testing.T) {
		repo := new(mockTemplateRepo)
		repo.On("FindByID", mock.Anything, "tpl-1").
			Return(&model.Template{ID: "tpl-1", Body: "Hi {{username}}"}, nil)

		body := `{"variables":{"username":"alice"}}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tpl-1/render", strings.NewReader(body))
		newTemplatesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var got map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Hi alice", got["rendered"])
	})
}

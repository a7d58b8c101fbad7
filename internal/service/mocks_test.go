package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/skyreach/outreach-server-go/internal/bluesky"
	"github.com/skyreach/outreach-server-go/internal/model"
	"github.com/skyreach/outreach-server-go/internal/repository"
)

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *mockAccountRepo) FindByHandle(ctx context.Context, handle string) (*model.Account, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *mockAccountRepo) FindAll(ctx context.Context) ([]model.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Account), args.Error(1)
}

func (m *mockAccountRepo) Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *mockAccountRepo) Update(ctx context.Context, id string, params model.UpdateAccountParams) (*model.Account, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *mockAccountRepo) UpdateDID(ctx context.Context, id, did string) error {
	args := m.Called(ctx, id, did)
	return args.Error(0)
}

func (m *mockAccountRepo) TouchLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAccountRepo) SetCooldown(ctx context.Context, id string, until time.Time, lastError string) error {
	args := m.Called(ctx, id, until, lastError)
	return args.Error(0)
}

func (m *mockAccountRepo) ClearCooldown(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAccountRepo) ClearExpiredCooldowns(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAccountRepo) CountInCooldown(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockAccountRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAccountRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockAccountRepo) WithTx(tx *sqlx.Tx) repository.AccountRepository {
	return m
}

type mockCampaignRepo struct {
	mock.Mock
}

func (m *mockCampaignRepo) FindByID(ctx context.Context, id string) (*model.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) FindAll(ctx context.Context) ([]model.Campaign, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) FindByAccountID(ctx context.Context, accountID string) ([]model.Campaign, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) FindRunningByAccount(ctx context.Context, accountID string, kind model.ActionKind, since time.Time) ([]model.Campaign, error) {
	args := m.Called(ctx, accountID, kind, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) FindStartedByAccountSince(ctx context.Context, accountID string, since time.Time) ([]model.Campaign, error) {
	args := m.Called(ctx, accountID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) CountByTargetListID(ctx context.Context, targetListID string) (int, error) {
	args := m.Called(ctx, targetListID)
	return args.Int(0), args.Error(1)
}

func (m *mockCampaignRepo) Create(ctx context.Context, params model.CreateCampaignParams) (*model.Campaign, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) UpdateStatus(ctx context.Context, id string, status model.CampaignStatus, startedAt, completedAt *time.Time) (*model.Campaign, error) {
	args := m.Called(ctx, id, status, startedAt, completedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) IncrementCounters(ctx context.Context, id string, sentDelta, successDelta int) error {
	args := m.Called(ctx, id, sentDelta, successDelta)
	return args.Error(0)
}

func (m *mockCampaignRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCampaignRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockCampaignRepo) WithTx(tx *sqlx.Tx) repository.CampaignRepository {
	return m
}

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

type mockTargetListRepo struct {
	mock.Mock
}

func (m *mockTargetListRepo) FindByID(ctx context.Context, id string) (*model.TargetList, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TargetList), args.Error(1)
}

func (m *mockTargetListRepo) FindAll(ctx context.Context) ([]model.TargetList, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TargetList), args.Error(1)
}

func (m *mockTargetListRepo) Create(ctx context.Context, params model.CreateTargetListParams) (*model.TargetList, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TargetList), args.Error(1)
}

func (m *mockTargetListRepo) UpdateTargets(ctx context.Context, id, targetsJSON string) (*model.TargetList, error) {
	args := m.Called(ctx, id, targetsJSON)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TargetList), args.Error(1)
}

func (m *mockTargetListRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTargetListRepo) WithTx(tx *sqlx.Tx) repository.TargetListRepository {
	return m
}

type mockSettingRepo struct {
	mock.Mock
}

func (m *mockSettingRepo) Get(ctx context.Context, key string) (*model.Setting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Setting), args.Error(1)
}

func (m *mockSettingRepo) Upsert(ctx context.Context, key, value string) (*model.Setting, error) {
	args := m.Called(ctx, key, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Setting), args.Error(1)
}

func (m *mockSettingRepo) WithTx(tx *sqlx.Tx) repository.SettingRepository {
	return m
}

type mockLogRepo struct {
	mock.Mock
}

func (m *mockLogRepo) Create(ctx context.Context, params model.CreateLogEntryParams) (*model.LogEntry, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LogEntry), args.Error(1)
}

func (m *mockLogRepo) FindRecent(ctx context.Context, limit int) ([]model.LogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LogEntry), args.Error(1)
}

func (m *mockLogRepo) FindFiltered(ctx context.Context, filter repository.LogEntryFilter) ([]model.LogEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LogEntry), args.Error(1)
}

func (m *mockLogRepo) CountByLevel(ctx context.Context, level model.LogLevel) (int, error) {
	args := m.Called(ctx, level)
	return args.Int(0), args.Error(1)
}

func (m *mockLogRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLogRepo) WithTx(tx *sqlx.Tx) repository.LogEntryRepository {
	return m
}

type mockActionClient struct {
	mock.Mock
}

func (m *mockActionClient) SendPost(ctx context.Context, creds model.AccountCredentials, text string, langs []string) (*bluesky.PostResult, error) {
	args := m.Called(ctx, creds, text, langs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bluesky.PostResult), args.Error(1)
}

func (m *mockActionClient) SendDirectMessage(ctx context.Context, creds model.AccountCredentials, target model.Target, text string) (*bluesky.DMResult, error) {
	args := m.Called(ctx, creds, target, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bluesky.DMResult), args.Error(1)
}

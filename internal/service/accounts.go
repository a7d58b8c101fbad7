package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/skyreach/outreach-server-go/internal/audit"
	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
	"github.com/skyreach/outreach-server-go/internal/model"
	"github.com/skyreach/outreach-server-go/internal/repository"
	"github.com/skyreach/outreach-server-go/internal/util"
)

// AccountService owns managed-account onboarding and credential resolution.
// App passwords are encrypted at rest; decryption happens only inside
// GetCredentials, immediately before a platform login.
type AccountService struct {
	accountRepo   repository.AccountRepository
	encryptionKey string
}

func NewAccountService(accountRepo repository.AccountRepository, encryptionKey string) *AccountService {
	return &AccountService{
		accountRepo:   accountRepo,
		encryptionKey: encryptionKey,
	}
}

type CreateAccountParams struct {
	Username         string
	AppPassword      string
	DisplayName      *string
	Label            *string
	RateLimitPerHour *int
	RateLimitPerDay  *int
}

func (s *AccountService) Create(ctx context.Context, params CreateAccountParams) (*model.Account, error) {
	if params.Username == "" {
		return nil, apperrors.MissingRequired("username")
	}
	if params.AppPassword == "" {
		return nil, apperrors.MissingRequired("appPassword")
	}

	handle := util.NormalizeHandle(params.Username)

	existing, err := s.accountRepo.FindByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("check existing account: %w", err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("Account with this handle")
	}

	encrypted, err := util.Encrypt(s.encryptionKey, params.AppPassword)
	if err != nil {
		return nil, fmt.Errorf("encrypt app password: %w", err)
	}

	account, err := s.accountRepo.Create(ctx, model.CreateAccountParams{
		Handle:               handle,
		DisplayName:          params.DisplayName,
		Label:                params.Label,
		EncryptedAppPassword: encrypted,
		RateLimitPerHour:     params.RateLimitPerHour,
		RateLimitPerDay:      params.RateLimitPerDay,
	})
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	log.Info().Str("accountId", account.ID).Str("handle", handle).Msg("account created")
	audit.Log(audit.Event{Type: audit.EventAccountCreate, AccountID: account.ID, Details: map[string]interface{}{"handle": handle}})
	return account, nil
}

func (s *AccountService) FindAll(ctx context.Context) ([]model.Account, error) {
	return s.accountRepo.FindAll(ctx)
}

func (s *AccountService) FindByID(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if account == nil {
		return nil, apperrors.NotFound("Account")
	}
	return account, nil
}

// GetCredentials resolves an account id to decrypted login material.
func (s *AccountService) GetCredentials(ctx context.Context, id string) (model.AccountCredentials, error) {
	account, err := s.FindByID(ctx, id)
	if err != nil {
		return model.AccountCredentials{}, err
	}

	password, err := util.Decrypt(s.encryptionKey, account.EncryptedAppPassword)
	if err != nil {
		return model.AccountCredentials{}, fmt.Errorf("decrypt app password: %w", err)
	}

	return model.AccountCredentials{
		Account:  account,
		Handle:   account.Handle,
		Password: password,
	}, nil
}

func (s *AccountService) UpdateStatus(ctx context.Context, id string, status model.AccountStatus) (*model.Account, error) {
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.accountRepo.Update(ctx, id, model.UpdateAccountParams{Status: &status})
}

func (s *AccountService) UpdateRateLimits(ctx context.Context, id string, perHour, perDay int) (*model.Account, error) {
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if perHour <= 0 || perDay <= 0 {
		return nil, apperrors.InvalidInput("rate limits", "must be positive")
	}
	return s.accountRepo.Update(ctx, id, model.UpdateAccountParams{
		RateLimitPerHour: &perHour,
		RateLimitPerDay:  &perDay,
	})
}

func (s *AccountService) Delete(ctx context.Context, id string) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.accountRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	log.Info().Str("accountId", id).Msg("account deleted")
	audit.Log(audit.Event{Type: audit.EventAccountDelete, AccountID: id})
	return nil
}

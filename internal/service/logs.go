package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/skyreach/outreach-server-go/internal/model"
	"github.com/skyreach/outreach-server-go/internal/repository"
)

// LogService is the append-only sink for per-action outcomes and campaign
// milestones. Every write is mirrored to the process log; persistence
// failures are logged but never propagated, so a broken sink cannot abort a
// campaign.
type LogService struct {
	logRepo repository.LogEntryRepository
}

func NewLogService(logRepo repository.LogEntryRepository) *LogService {
	return &LogService{logRepo: logRepo}
}

// Write appends one entry. accountID/campaignID may be empty; metadata may be nil.
func (s *LogService) Write(ctx context.Context, level model.LogLevel, message, accountID, campaignID string, metadata map[string]any) {
	var metadataJSON *json.RawMessage
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			log.Error().Err(err).Msg("failed to encode log metadata")
		} else {
			raw := json.RawMessage(data)
			metadataJSON = &raw
		}
	}

	params := model.CreateLogEntryParams{
		Level:    level,
		Message:  message,
		Metadata: metadataJSON,
	}
	if accountID != "" {
		params.AccountID = &accountID
	}
	if campaignID != "" {
		params.CampaignID = &campaignID
	}

	if _, err := s.logRepo.Create(ctx, params); err != nil {
		log.Error().Err(err).Str("message", message).Msg("failed to persist log entry")
	}

	evt := log.Info()
	switch level {
	case model.LogLevelWarn:
		evt = log.Warn()
	case model.LogLevelError:
		evt = log.Error()
	}
	evt.Str("accountId", accountID).Str("campaignId", campaignID).Msg(message)
}

type LogQueryParams struct {
	Page       int
	Limit      int
	Level      model.LogLevel
	AccountID  string
	CampaignID string
}

func (s *LogService) Find(ctx context.Context, params LogQueryParams) ([]model.LogEntry, error) {
	if params.Limit <= 0 {
		params.Limit = 50
	}
	if params.Limit > 200 {
		params.Limit = 200
	}
	if params.Page < 1 {
		params.Page = 1
	}

	entries, err := s.logRepo.FindFiltered(ctx, repository.LogEntryFilter{
		Level:      params.Level,
		AccountID:  params.AccountID,
		CampaignID: params.CampaignID,
		Limit:      params.Limit,
		Offset:     (params.Page - 1) * params.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("find log entries: %w", err)
	}
	return entries, nil
}

func (s *LogService) FindRecent(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.logRepo.FindRecent(ctx, limit)
}

type LogStats struct {
	Total int `json:"total"`
	Info  int `json:"info"`
	Warn  int `json:"warn"`
	Error int `json:"error"`
}

func (s *LogService) GetStats(ctx context.Context) (*LogStats, error) {
	total, err := s.logRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count log entries: %w", err)
	}
	info, err := s.logRepo.CountByLevel(ctx, model.LogLevelInfo)
	if err != nil {
		return nil, fmt.Errorf("count info entries: %w", err)
	}
	warn, err := s.logRepo.CountByLevel(ctx, model.LogLevelWarn)
	if err != nil {
		return nil, fmt.Errorf("count warn entries: %w", err)
	}
	errCount, err := s.logRepo.CountByLevel(ctx, model.LogLevelError)
	if err != nil {
		return nil, fmt.Errorf("count error entries: %w", err)
	}

	return &LogStats{Total: total, Info: info, Warn: warn, Error: errCount}, nil
}

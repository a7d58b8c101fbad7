package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skyreach/outreach-server-go/internal/config"
	"github.com/skyreach/outreach-server-go/internal/repository"
	"github.com/skyreach/outreach-server-go/internal/util"
)

const settingsKey = "global_settings"

// CoreSettings is the operator's automation policy, stored as one JSON blob.
type CoreSettings struct {
	BotName             string `json:"botName"`
	Language            string `json:"language"`
	MaxDmsPerHour       int    `json:"maxDmsPerHour"`
	MaxDmsPerDay        int    `json:"maxDmsPerDay"`
	DelayBetweenActions int    `json:"delayBetweenActions"` // seconds
	AppPassword         string `json:"appPassword,omitempty"`
}

// persistedSettings is the stored shape; the shared app password is encrypted
// at rest.
type persistedSettings struct {
	BotName              string  `json:"botName"`
	Language             string  `json:"language"`
	MaxDmsPerHour        int     `json:"maxDmsPerHour"`
	MaxDmsPerDay         int     `json:"maxDmsPerDay"`
	DelayBetweenActions  *int    `json:"delayBetweenActions"`
	AppPasswordEncrypted *string `json:"appPasswordEncrypted,omitempty"`
}

func defaultSettings() CoreSettings {
	return CoreSettings{
		BotName:             "Bluesky Pro Bot",
		Language:            "en",
		MaxDmsPerHour:       config.DefaultMaxActionsPerHour,
		MaxDmsPerDay:        config.DefaultMaxActionsPerDay,
		DelayBetweenActions: int(config.DefaultDelayBetweenActions / time.Second),
	}
}

type SettingsService struct {
	settingRepo   repository.SettingRepository
	encryptionKey string
}

func NewSettingsService(settingRepo repository.SettingRepository, encryptionKey string) *SettingsService {
	return &SettingsService{settingRepo: settingRepo, encryptionKey: encryptionKey}
}

// GetCoreSettings reads the stored settings, filling any missing field from
// defaults. A missing row yields pure defaults.
func (s *SettingsService) GetCoreSettings(ctx context.Context) (CoreSettings, error) {
	defaults := defaultSettings()

	record, err := s.settingRepo.Get(ctx, settingsKey)
	if err != nil {
		return defaults, fmt.Errorf("read settings: %w", err)
	}
	if record == nil {
		return defaults, nil
	}

	var stored persistedSettings
	if err := json.Unmarshal([]byte(record.Value), &stored); err != nil {
		log.Warn().Err(err).Msg("stored settings are malformed; using defaults")
		return defaults, nil
	}

	out := defaults
	if stored.BotName != "" {
		out.BotName = stored.BotName
	}
	if stored.Language != "" {
		out.Language = stored.Language
	}
	if stored.MaxDmsPerHour > 0 {
		out.MaxDmsPerHour = stored.MaxDmsPerHour
	}
	if stored.MaxDmsPerDay > 0 {
		out.MaxDmsPerDay = stored.MaxDmsPerDay
	}
	// Zero is a valid stored delay; only a missing field falls back.
	if stored.DelayBetweenActions != nil && *stored.DelayBetweenActions >= 0 {
		out.DelayBetweenActions = *stored.DelayBetweenActions
	}

	if stored.AppPasswordEncrypted != nil && s.encryptionKey != "" {
		password, err := util.Decrypt(s.encryptionKey, *stored.AppPasswordEncrypted)
		if err != nil {
			log.Warn().Err(err).Msg("failed to decrypt shared app password")
		} else {
			out.AppPassword = password
		}
	}

	return out, nil
}

// UpdateSettings merges the supplied partial update into the stored blob.
func (s *SettingsService) UpdateSettings(ctx context.Context, partial map[string]any) (CoreSettings, error) {
	current, err := s.GetCoreSettings(ctx)
	if err != nil {
		return current, err
	}

	if v, ok := partial["botName"].(string); ok && v != "" {
		current.BotName = v
	}
	if v, ok := partial["language"].(string); ok && (v == "en" || v == "ar") {
		current.Language = v
	}
	if v, ok := asInt(partial["maxDmsPerHour"]); ok && v > 0 {
		current.MaxDmsPerHour = v
	}
	if v, ok := asInt(partial["maxDmsPerDay"]); ok && v > 0 {
		current.MaxDmsPerDay = v
	}
	if v, ok := asInt(partial["delayBetweenActions"]); ok && v >= 0 {
		current.DelayBetweenActions = v
	}
	if v, ok := partial["appPassword"].(string); ok && v != "" {
		current.AppPassword = v
	}

	stored := persistedSettings{
		BotName:             current.BotName,
		Language:            current.Language,
		MaxDmsPerHour:       current.MaxDmsPerHour,
		MaxDmsPerDay:        current.MaxDmsPerDay,
		DelayBetweenActions: &current.DelayBetweenActions,
	}
	if current.AppPassword != "" && s.encryptionKey != "" {
		encrypted, err := util.Encrypt(s.encryptionKey, current.AppPassword)
		if err != nil {
			return current, fmt.Errorf("encrypt app password: %w", err)
		}
		stored.AppPasswordEncrypted = &encrypted
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return current, fmt.Errorf("encode settings: %w", err)
	}
	if _, err := s.settingRepo.Upsert(ctx, settingsKey, string(data)); err != nil {
		return current, fmt.Errorf("persist settings: %w", err)
	}

	log.Info().Msg("settings updated")
	return current, nil
}

// DispatchDelay returns the configured inter-action delay, clamped to >= 0.
func (s *SettingsService) DispatchDelay(ctx context.Context) time.Duration {
	settings, err := s.GetCoreSettings(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read settings; using default dispatch delay")
		return config.DefaultDelayBetweenActions
	}
	if settings.DelayBetweenActions < 0 {
		return 0
	}
	return time.Duration(settings.DelayBetweenActions) * time.Second
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

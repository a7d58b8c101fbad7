package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skyreach/outreach-server-go/internal/model"
)

func TestGetCoreSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("returns defaults when nothing is stored", func(t *testing.T) {
		repo := new(mockSettingRepo)
		repo.On("Get", ctx, "global_settings").Return(nil, nil)

		svc := NewSettingsService(repo, "")
		settings, err := svc.GetCoreSettings(ctx)

		require.NoError(t, err)
		assert.Equal(t, "Bluesky Pro Bot", settings.BotName)
		assert.Equal(t, "en", settings.Language)
		assert.Equal(t, 20, settings.MaxDmsPerHour)
		assert.Equal(t, 200, settings.MaxDmsPerDay)
		assert.Equal(t, 5, settings.DelayBetweenActions)
	})

	t.Run("fills missing fields from defaults", func(t *testing.T) {
		repo := new(mockSettingRepo)
		repo.On("Get", ctx, "global_settings").Return(&model.Setting{
			Key:   "global_settings",
			Value: `{"maxDmsPerHour":50}`,
		}, nil)

		svc := NewSettingsService(repo, "")
		settings, err := svc.GetCoreSettings(ctx)

		require.NoError(t, err)
		assert.Equal(t, 50, settings.MaxDmsPerHour)
		assert.Equal(t, 200, settings.MaxDmsPerDay)
		assert.Equal(t, "Bluesky Pro Bot", settings.BotName)
	})

	t.Run("falls back to defaults on malformed json", func(t *testing.T) {
		repo := new(mockSettingRepo)
		repo.On("Get", ctx, "global_settings").Return(&model.Setting{
			Key:   "global_settings",
			Value: `{{{`,
		}, nil)

		svc := NewSettingsService(repo, "")
		settings, err := svc.GetCoreSettings(ctx)

		require.NoError(t, err)
		assert.Equal(t, 20, settings.MaxDmsPerHour)
	})
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("merges a partial update", func(t *testing.T) {
		repo := new(mockSettingRepo)
		repo.On("Get", ctx, "global_settings").Return(nil, nil)
		repo.On("Upsert", ctx, "global_settings", mock.Anything).
			Return(&model.Setting{Key: "global_settings"}, nil)

		svc := NewSettingsService(repo, "")
		settings, err := svc.UpdateSettings(ctx, map[string]any{
			"maxDmsPerHour":       float64(10),
			"delayBetweenActions": float64(0),
		})

		require.NoError(t, err)
		assert.Equal(t, 10, settings.MaxDmsPerHour)
		assert.Equal(t, 0, settings.DelayBetweenActions)
		assert.Equal(t, 200, settings.MaxDmsPerDay)

		var stored map[string]any
		raw := repo.Calls[1].Arguments.String(2)
		require.NoError(t, json.Unmarshal([]byte(raw), &stored))
		assert.Equal(t, float64(10), stored["maxDmsPerHour"])
	})

	t.Run("ignores out-of-range values", func(t *testing.T) {
		repo := new(mockSettingRepo)
		repo.On("Get", ctx, "global_settings").Return(nil, nil)
		repo.On("Upsert", ctx, "global_settings", mock.Anything).
			Return(&model.Setting{Key: "global_settings"}, nil)

		svc := NewSettingsService(repo, "")
		settings, err := svc.UpdateSettings(ctx, map[string]any{
			"maxDmsPerHour":       float64(-5),
			"delayBetweenActions": float64(-1),
			"language":            "fr",
		})

		require.NoError(t, err)
		assert.Equal(t, 20, settings.MaxDmsPerHour)
		assert.Equal(t, 5, settings.DelayBetweenActions)
		assert.Equal(t, "en", settings.Language)
	})
}

func TestDispatchDelay(t *testing.T) {
	ctx := context.Background()

	t.Run("converts stored seconds", func(t *testing.T) {
		repo := new(mockSettingRepo)
		repo.On("Get", ctx, "global_settings").Return(&model.Setting{
			Key:   "global_settings",
			Value: `{"delayBetweenActions":2}`,
		}, nil)

		svc := NewSettingsService(repo, "")
		assert.Equal(t, 2*time.Second, svc.DispatchDelay(ctx))
	})

	t.Run("zero delay disables the pause", func(t *testing.T) {
		repo := new(mockSettingRepo)
		repo.On("Get", ctx, "global_settings").Return(&model.Setting{
			Key:   "global_settings",
			Value: `{"delayBetweenActions":0}`,
		}, nil)

		svc := NewSettingsService(repo, "")
		assert.Equal(t, time.Duration(0), svc.DispatchDelay(ctx))
	})
}

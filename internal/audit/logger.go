// Package audit emits structured automation audit events. Events go to the
// process log, not the database; the durable activity trail lives in the log
// entry table and is written by the dispatch engine itself.
package audit

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventCampaignStart    EventType = "campaign_start"
	EventCampaignComplete EventType = "campaign_complete"
	EventCampaignFailed   EventType = "campaign_failed"
	EventRateLimitHit     EventType = "rate_limit_hit"
	EventCooldownCleared  EventType = "cooldown_cleared"
	EventAccountCreate    EventType = "account_create"
	EventAccountDelete    EventType = "account_delete"
	EventLoginFailure     EventType = "login_failure"
)

type Event struct {
	Type       EventType
	AccountID  string
	CampaignID string
	Details    map[string]interface{}
}

func Log(event Event) {
	logger := log.With().
		Str("audit", "automation").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.AccountID != "" {
		logger = logger.With().Str("account_id", event.AccountID).Logger()
	}
	if event.CampaignID != "" {
		logger = logger.With().Str("campaign_id", event.CampaignID).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("automation audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}

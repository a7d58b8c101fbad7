package model

import (
	"encoding/json"
	"time"
)

// LogEntry is the append-only audit record for per-action outcomes and
// campaign-level milestones.
type LogEntry struct {
	ID         string           `db:"id" json:"id"`
	Level      LogLevel         `db:"level" json:"level"`
	Message    string           `db:"message" json:"message"`
	AccountID  *string          `db:"account_id" json:"accountId,omitempty"`
	CampaignID *string          `db:"campaign_id" json:"campaignId,omitempty"`
	Metadata   *json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"createdAt"`
}

type CreateLogEntryParams struct {
	Level      LogLevel
	Message    string
	AccountID  *string
	CampaignID *string
	Metadata   *json.RawMessage
}

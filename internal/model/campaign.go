package model

import (
	"encoding/json"
	"time"
)

type Campaign struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	AccountID    string         `db:"account_id" json:"accountId"`
	TemplateID   *string        `db:"template_id" json:"templateId,omitempty"`
	TargetListID *string        `db:"target_list_id" json:"targetListId,omitempty"`
	TargetsJSON  *string        `db:"targets_json" json:"targetsJson,omitempty"`
	Type         ActionKind     `db:"type" json:"type"`
	Status       CampaignStatus `db:"status" json:"status"`
	SentCount    int            `db:"sent_count" json:"sentCount"`
	SuccessCount int            `db:"success_count" json:"successCount"`
	StartedAt    *time.Time     `db:"started_at" json:"startedAt,omitempty"`
	CompletedAt  *time.Time     `db:"completed_at" json:"completedAt,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
}

// Targets decodes the campaign's serialized target list. A nil or empty
// targets_json yields an empty slice, not an error.
func (c *Campaign) Targets() ([]string, error) {
	if c.TargetsJSON == nil || *c.TargetsJSON == "" {
		return nil, nil
	}
	var targets []string
	if err := json.Unmarshal([]byte(*c.TargetsJSON), &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

type CreateCampaignParams struct {
	Name         string
	AccountID    string
	TemplateID   *string
	TargetListID *string
	TargetsJSON  *string
	Type         ActionKind
	Status       CampaignStatus
}

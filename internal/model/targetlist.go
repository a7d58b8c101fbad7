package model

import (
	"encoding/json"
	"time"
)

type TargetList struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	TargetsJSON string    `db:"targets_json" json:"targetsJson"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

func (l *TargetList) Targets() ([]string, error) {
	if l.TargetsJSON == "" {
		return nil, nil
	}
	var targets []string
	if err := json.Unmarshal([]byte(l.TargetsJSON), &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

type CreateTargetListParams struct {
	Name        string
	Description *string
	TargetsJSON string
}

package model

type AccountStatus string

const (
	AccountStatusActive      AccountStatus = "ACTIVE"
	AccountStatusDisabled    AccountStatus = "DISABLED"
	AccountStatusRateLimited AccountStatus = "RATE_LIMITED"
	AccountStatusBanned      AccountStatus = "BANNED"
	AccountStatusInvalid     AccountStatus = "INVALID"
)

// ActionKind is whether a campaign sends direct messages or public mention-posts.
type ActionKind string

const (
	ActionKindDM   ActionKind = "DM"
	ActionKindPost ActionKind = "POST"
)

func (k ActionKind) Valid() bool {
	return k == ActionKindDM || k == ActionKindPost
}

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "DRAFT"
	CampaignStatusQueued    CampaignStatus = "QUEUED"
	CampaignStatusRunning   CampaignStatus = "RUNNING"
	CampaignStatusPaused    CampaignStatus = "PAUSED"
	CampaignStatusCompleted CampaignStatus = "COMPLETED"
	CampaignStatusFailed    CampaignStatus = "FAILED"
	CampaignStatusCooldown  CampaignStatus = "COOLDOWN"
)

// Terminal reports whether a status permits no further transitions.
func (s CampaignStatus) Terminal() bool {
	switch s {
	case CampaignStatusCompleted, CampaignStatusFailed, CampaignStatusCooldown:
		return true
	}
	return false
}

type LogLevel string

const (
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

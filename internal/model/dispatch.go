package model

// Target is a single recipient for one campaign action, identified by handle
// or by a platform-native DID.
type Target struct {
	Handle      string `json:"handle"`
	DID         string `json:"did,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// RateLimitRule is the effective caps for one account, derived per check from
// account overrides falling back to global defaults. Never persisted.
type RateLimitRule struct {
	MaxPerHour      int
	MaxPerDay       int
	CooldownMinutes int
}

// RateLimitResult is the verdict of a rate-limit check. A denial is a
// structured negative result, not an error.
type RateLimitResult struct {
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason,omitempty"`
	RetryAfter int    `json:"retryAfterSeconds,omitempty"`
}

// DispatchOutcome is the per-target result of one send.
type DispatchOutcome struct {
	Success   bool   `json:"success"`
	Target    Target `json:"target"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DispatchResult is the aggregate returned to the caller after a campaign run.
type DispatchResult struct {
	Success        bool              `json:"success"`
	RateLimited    bool              `json:"rateLimited,omitempty"`
	RetryAfter     int               `json:"retryAfterSeconds,omitempty"`
	Error          string            `json:"error,omitempty"`
	TotalProcessed int               `json:"totalProcessed"`
	SuccessCount   int               `json:"successCount"`
	FailureCount   int               `json:"failureCount"`
	Results        []DispatchOutcome `json:"results,omitempty"`
}

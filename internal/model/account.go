package model

import (
	"time"
)

type Account struct {
	ID                   string        `db:"id" json:"id"`
	Handle               string        `db:"handle" json:"handle"`
	DisplayName          *string       `db:"display_name" json:"displayName,omitempty"`
	Label                *string       `db:"label" json:"label,omitempty"`
	DID                  *string       `db:"did" json:"did,omitempty"`
	EncryptedAppPassword string        `db:"encrypted_app_password" json:"-"`
	Status               AccountStatus `db:"status" json:"status"`
	RateLimitPerHour     *int          `db:"rate_limit_per_hour" json:"rateLimitPerHour,omitempty"`
	RateLimitPerDay      *int          `db:"rate_limit_per_day" json:"rateLimitPerDay,omitempty"`
	CooldownUntil        *time.Time    `db:"cooldown_until" json:"cooldownUntil,omitempty"`
	LastError            *string       `db:"last_error" json:"lastError,omitempty"`
	LastLoginAt          *time.Time    `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt            time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time     `db:"updated_at" json:"updatedAt"`
}

// InCooldown reports whether the account is suspended from dispatching at t.
func (a *Account) InCooldown(t time.Time) bool {
	return a.CooldownUntil != nil && a.CooldownUntil.After(t)
}

type CreateAccountParams struct {
	Handle               string
	DisplayName          *string
	Label                *string
	EncryptedAppPassword string
	RateLimitPerHour     *int
	RateLimitPerDay      *int
}

type UpdateAccountParams struct {
	DisplayName      *string
	Label            *string
	Status           *AccountStatus
	RateLimitPerHour *int
	RateLimitPerDay  *int
}

// AccountCredentials is the decrypted login material for one managed account.
type AccountCredentials struct {
	Account  *Account
	Handle   string
	Password string
}

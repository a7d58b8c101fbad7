package model

import "time"

type Template struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	Type        ActionKind `db:"type" json:"type"`
	Body        string     `db:"body" json:"body"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

type CreateTemplateParams struct {
	Name        string
	Description *string
	Type        ActionKind
	Body        string
}

type UpdateTemplateParams struct {
	Name *string
	Type *ActionKind
	Body *string
}

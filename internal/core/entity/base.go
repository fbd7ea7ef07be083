// Package entity provides the base fields shared by all persisted records.
package entity

import (
	"context"
	"time"

	"gestock/internal/core/id"
)

// Base holds the identity and audit timestamps every row carries.
type Base struct {
	ID        id.ID     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBase creates a Base with a fresh UUIDv7 and current timestamps.
func NewBase() Base {
	now := time.Now().UTC()
	return Base{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch refreshes UpdatedAt.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// Validatable is implemented by entities with invariants of their own.
type Validatable interface {
	Validate(ctx context.Context) error
}

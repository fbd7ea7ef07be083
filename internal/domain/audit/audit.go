// Package audit records workflow transitions (validations, rejections,
// confirmations, stock entries) for traceability.
package audit

import (
	"context"
	"time"

	"gestock/internal/core/id"
)

// Action identifies the recorded transition.
type Action string

const (
	ActionDemandeCreated  Action = "demande.created"
	ActionDemandeValidee  Action = "demande.validee"
	ActionDemandeRefusee  Action = "demande.refusee"
	ActionSortieConfirmee Action = "sortie.confirmee"
	ActionSortieRefusee   Action = "sortie.refusee"
	ActionEntreeCreee     Action = "entree.creee"
)

// Entry is one audit record.
type Entry struct {
	ID           id.ID          `db:"id"`
	EntityType   string         `db:"entity_type"`
	EntityID     id.ID          `db:"entity_id"`
	Action       Action         `db:"action"`
	UserID       id.ID          `db:"user_id"`
	EntrepriseID id.ID          `db:"entreprise_id"`
	Details      map[string]any `db:"-"`
	CreatedAt    time.Time      `db:"created_at"`
}

// Recorder persists audit entries. Recording is best-effort: a failed audit
// write must never fail the business operation it describes.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// NopRecorder discards entries. Used in tests.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(ctx context.Context, entry Entry) error { return nil }

var _ Recorder = NopRecorder{}

package demande

import (
	"context"

	"gestock/internal/core/id"
)

// Repository defines company-scoped persistence for demandes.
// Lookups filter by entreprise; a demande of another company is reported as
// not found. Reads return fully hydrated aggregates (lines with products).
type Repository interface {
	Create(ctx context.Context, d *Demande) error
	SaveLignes(ctx context.Context, demandeID id.ID, lignes []Ligne) error

	// GetByID loads a demande with its lines and their products.
	GetByID(ctx context.Context, entrepriseID, demandeID id.ID) (*Demande, error)

	// GetPendingForUpdate loads a demande currently EN_ATTENTE with its lines,
	// holding a row lock until the surrounding transaction ends.
	// Not found covers absence, other-company rows, and already-processed rows.
	GetPendingForUpdate(ctx context.Context, entrepriseID, demandeID id.ID) (*Demande, error)

	// UpdateStatut flips statut from->to with a guarded update.
	// Returns false when the row no longer matches (already processed).
	UpdateStatut(ctx context.Context, entrepriseID, demandeID id.ID, from, to Statut) (bool, error)

	// ListByUser returns the requester's demandes, most recent first.
	ListByUser(ctx context.Context, entrepriseID, userID id.ID) ([]*Demande, error)

	// ListByEntreprise returns all company demandes, most recent first.
	ListByEntreprise(ctx context.Context, entrepriseID id.ID) ([]*Demande, error)
}

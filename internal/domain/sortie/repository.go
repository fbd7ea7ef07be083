package sortie

import (
	"context"

	"gestock/internal/core/id"
)

// Repository defines persistence for sorties. Implementations scope every
// query by entreprise through the joined product row; a sortie of another
// company behaves as absent.
type Repository interface {
	Create(ctx context.Context, s *SortieStock) error

	// GetPendingWithRefs loads a pending (EN_ATTENTE) sortie with its
	// product and the statut of its demande hydrated, row-locked for the
	// confirmation decision. Returns not found when the sortie does not
	// exist, belongs to another company, or has already been processed.
	GetPendingWithRefs(ctx context.Context, entrepriseID, sortieID id.ID) (*SortieStock, error)

	// UpdateStatutDirection flips the decision state only when the current
	// value matches from. Returns false when the guard fails.
	UpdateStatutDirection(ctx context.Context, entrepriseID, sortieID id.ID, from, to StatutDirection) (bool, error)

	// ListByDemande returns the sorties generated for one demande,
	// in creation order.
	ListByDemande(ctx context.Context, entrepriseID, demandeID id.ID) ([]*SortieStock, error)

	// ListByProduct returns the sorties of one product, most recent first.
	ListByProduct(ctx context.Context, entrepriseID, productID id.ID) ([]*SortieStock, error)

	// ListByEntreprise returns all company sorties, most recent first.
	ListByEntreprise(ctx context.Context, entrepriseID id.ID) ([]*SortieStock, error)

	// ListPending returns the company's sorties awaiting a decision,
	// oldest first.
	ListPending(ctx context.Context, entrepriseID id.ID) ([]*SortieStock, error)
}

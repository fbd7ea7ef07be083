// Package sortie provides the stock exit workflow. A SortieStock is created
// pending when its demande is validated, then confirmed or rejected by the
// direction. Confirmation is the only path that debits stock.
package sortie

import (
	"context"
	"time"

	"gestock/internal/core/apperror"
	"gestock/internal/core/entity"
	"gestock/internal/core/id"
	"gestock/internal/domain/demande"
	"gestock/internal/domain/product"
)

// StatutDirection is the direction's decision state on a sortie.
type StatutDirection string

const (
	StatutEnAttente StatutDirection = "EN_ATTENTE"
	StatutConfirmee StatutDirection = "CONFIRMEE"
	StatutRefusee   StatutDirection = "REFUSEE"
)

// IsTerminal reports whether no further transition is permitted.
func (s StatutDirection) IsTerminal() bool {
	return s == StatutConfirmee || s == StatutRefusee
}

// SortieStock is one pending or processed stock exit, always traceable to
// the demande line that produced it.
type SortieStock struct {
	entity.Base

	NumOrdre        string          `db:"num_ordre" json:"numOrdre"`
	ProductID       id.ID           `db:"product_id" json:"productId"`
	DemandeID       id.ID           `db:"demande_id" json:"demandeId"`
	UserID          id.ID           `db:"user_id" json:"userId"`
	QuantiteSortie  int             `db:"quantite_sortie" json:"quantiteSortie"`
	Destination     *string         `db:"destination" json:"destination,omitempty"`
	Motif           *string         `db:"motif" json:"motif,omitempty"`
	DateSortie      time.Time       `db:"date_sortie" json:"dateSortie"`
	StatutDirection StatutDirection `db:"statut_direction" json:"statutDirection"`

	// Product and DemandeStatut are hydrated by the repository when the
	// confirmation path needs them; never lazily loaded.
	Product       *product.Product `db:"-" json:"product,omitempty"`
	DemandeStatut demande.Statut   `db:"-" json:"-"`
}

// New creates a pending sortie carrying the requester's identity.
func New(numOrdre string, productID, demandeID, userID id.ID, quantite int) *SortieStock {
	return &SortieStock{
		Base:            entity.NewBase(),
		NumOrdre:        numOrdre,
		ProductID:       productID,
		DemandeID:       demandeID,
		UserID:          userID,
		QuantiteSortie:  quantite,
		DateSortie:      time.Now().UTC(),
		StatutDirection: StatutEnAttente,
	}
}

// Validate implements entity.Validatable.
func (s *SortieStock) Validate(ctx context.Context) error {
	if s.NumOrdre == "" {
		return apperror.NewValidation("num_ordre requis").
			WithDetail("field", "num_ordre")
	}
	if id.IsNil(s.ProductID) {
		return apperror.NewValidation("produit requis").
			WithDetail("field", "product_id")
	}
	if id.IsNil(s.DemandeID) {
		return apperror.NewValidation("demande requise").
			WithDetail("field", "demande_id")
	}
	if s.QuantiteSortie < 1 {
		return apperror.NewValidation("quantite_sortie doit être >= 1").
			WithDetail("field", "quantite_sortie")
	}
	return nil
}

var _ entity.Validatable = (*SortieStock)(nil)

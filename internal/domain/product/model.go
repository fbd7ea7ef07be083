// Package product provides the Product aggregate: the company-scoped stock
// item whose on-hand quantity is owned by the stock ledger.
package product

import (
	"context"

	"github.com/shopspring/decimal"

	"gestock/internal/core/apperror"
	"gestock/internal/core/entity"
	"gestock/internal/core/id"
)

// Product is a stock item belonging to one company.
//
// QuantiteStock is mutated only by the stock ledger (credit on confirmed
// entrée, debit on confirmed sortie), never written directly by services.
type Product struct {
	entity.Base

	Nom               string          `db:"nom" json:"nom"`
	Description       *string         `db:"description" json:"description,omitempty"`
	Reference         *string         `db:"reference" json:"reference,omitempty"`
	Prix              decimal.Decimal `db:"prix" json:"prix"`
	QuantiteStock     int             `db:"quantite_stock" json:"quantiteStock"`
	QuantiteMinAlerte int             `db:"quantite_min_alerte" json:"quantiteMinAlerte"`
	Agence            *string         `db:"agence" json:"agence,omitempty"`

	CategorieID   *id.ID `db:"categorie_id" json:"categorieId,omitempty"`
	MarqueID      *id.ID `db:"marque_id" json:"marqueId,omitempty"`
	FournisseurID *id.ID `db:"fournisseur_id" json:"fournisseurId,omitempty"`

	EntrepriseID id.ID `db:"entreprise_id" json:"entrepriseId"`
	OwnerID      id.ID `db:"owner_id" json:"ownerId"`
}

// New creates a Product for the given company and owner.
func New(entrepriseID, ownerID id.ID, nom string) *Product {
	return &Product{
		Base:         entity.NewBase(),
		Nom:          nom,
		EntrepriseID: entrepriseID,
		OwnerID:      ownerID,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if p.Nom == "" {
		return apperror.NewValidation("le nom du produit est requis").
			WithDetail("field", "nom")
	}
	if p.QuantiteStock < 0 {
		return apperror.NewValidation("quantite_stock doit être >= 0").
			WithDetail("field", "quantite_stock")
	}
	if p.QuantiteMinAlerte < 0 {
		return apperror.NewValidation("quantite_min_alerte doit être >= 0").
			WithDetail("field", "quantite_min_alerte")
	}
	if p.Prix.IsNegative() {
		return apperror.NewValidation("prix doit être >= 0").
			WithDetail("field", "prix")
	}
	if id.IsNil(p.EntrepriseID) {
		return apperror.NewValidation("entreprise requise").
			WithDetail("field", "entreprise_id")
	}
	return nil
}

// IsLowStock reports whether on-hand stock is at or below the alert threshold.
// Informational only: the threshold is never a hard limit.
func (p *Product) IsLowStock() bool {
	return p.QuantiteStock <= p.QuantiteMinAlerte
}

var _ entity.Validatable = (*Product)(nil)

// Package stock provides the stock ledger and entrée (receipt) records.
// The ledger owns the invariant: on-hand quantity equals initial quantity
// plus confirmed entrées minus confirmed sorties, and never goes negative.
package stock

import (
	"context"
	"time"

	"gestock/internal/core/apperror"
	"gestock/internal/core/entity"
	"gestock/internal/core/id"

	"gestock/internal/domain/product"
)

// EntreeStock is a stock receipt. It is created directly, without an
// approval step, and credits the ledger immediately.
type EntreeStock struct {
	entity.Base

	ProductID      id.ID     `db:"product_id" json:"productId"`
	UserID         id.ID     `db:"user_id" json:"userId"`
	NumOrdre       *string   `db:"num_ordre" json:"numOrdre,omitempty"`
	QuantiteEntree int       `db:"quantite_entree" json:"quantiteEntree"`
	Fournisseur    *string   `db:"fournisseur" json:"fournisseur,omitempty"`
	DateReception  time.Time `db:"date_reception" json:"dateReception"`

	// Product is hydrated on reads.
	Product *product.Product `db:"-" json:"product,omitempty"`
}

// NewEntree creates an entrée for the given product and recording user.
func NewEntree(productID, userID id.ID, quantite int, dateReception time.Time) *EntreeStock {
	return &EntreeStock{
		Base:           entity.NewBase(),
		ProductID:      productID,
		UserID:         userID,
		QuantiteEntree: quantite,
		DateReception:  dateReception,
	}
}

// FournisseurFromProduct copies the product's supplier reference, when set,
// as the entrée's free-text fournisseur.
func (e *EntreeStock) FournisseurFromProduct(p *product.Product) {
	if p.FournisseurID != nil {
		f := p.FournisseurID.String()
		e.Fournisseur = &f
	}
}

// Validate implements entity.Validatable.
func (e *EntreeStock) Validate(ctx context.Context) error {
	if id.IsNil(e.ProductID) {
		return apperror.NewValidation("produit requis").
			WithDetail("field", "product_id")
	}
	if e.QuantiteEntree < 1 {
		return apperror.NewValidation("quantite_entree doit être >= 1").
			WithDetail("field", "quantite_entree")
	}
	if e.DateReception.IsZero() {
		return apperror.NewValidation("date_reception requise").
			WithDetail("field", "date_reception")
	}
	return nil
}

var _ entity.Validatable = (*EntreeStock)(nil)

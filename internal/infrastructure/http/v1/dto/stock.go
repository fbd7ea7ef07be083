package dto

import (
	"time"

	"gestock/internal/domain/stock"
)

// CreateEntreeRequest records a stock receipt on a product. The product is
// addressed by the route, not the body.
type CreateEntreeRequest struct {
	Quantite      int        `json:"quantite" binding:"required,gt=0"`
	NumOrdre      *string    `json:"numOrdre,omitempty"`
	Fournisseur   *string    `json:"fournisseur,omitempty"`
	DateReception *time.Time `json:"dateReception,omitempty"`
}

// ToInput converts the request to the service input.
func (r *CreateEntreeRequest) ToInput() stock.EntreeInput {
	in := stock.EntreeInput{
		Quantite:    r.Quantite,
		NumOrdre:    r.NumOrdre,
		Fournisseur: r.Fournisseur,
	}
	if r.DateReception != nil {
		in.DateReception = *r.DateReception
	}
	return in
}

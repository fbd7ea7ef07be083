package dto

import (
	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/domain/demande"
)

// CreateDemandeRequest creates a demande with its lines.
type CreateDemandeRequest struct {
	Motif  *string               `json:"motif,omitempty"`
	Agence *string               `json:"agence,omitempty"`
	Lignes []DemandeLigneRequest `json:"lignes" binding:"required,min=1,dive"`
}

// DemandeLigneRequest is one requested line.
type DemandeLigneRequest struct {
	ProductID        string `json:"productId" binding:"required"`
	QuantiteDemandee int    `json:"quantiteDemandee" binding:"required,gt=0"`
}

// ToInputs converts the request lines to service inputs.
func (r *CreateDemandeRequest) ToInputs() ([]demande.LigneInput, error) {
	inputs := make([]demande.LigneInput, 0, len(r.Lignes))
	for i, ligne := range r.Lignes {
		productID, err := id.Parse(ligne.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("productId invalide").
				WithDetail("ligne", i+1).
				WithDetail("productId", ligne.ProductID)
		}
		inputs = append(inputs, demande.LigneInput{
			ProductID:        productID,
			QuantiteDemandee: ligne.QuantiteDemandee,
		})
	}
	return inputs, nil
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/domain/product"
)

// CreateProductRequest creates a product. OnExisting controls what happens
// when a product with the same reference or name already exists:
// "" (conflict), "increment" (merge stock) or "replace" (overwrite fields).
type CreateProductRequest struct {
	Nom               string          `json:"nom" binding:"required"`
	Description       *string         `json:"description,omitempty"`
	Reference         *string         `json:"reference,omitempty"`
	Prix              decimal.Decimal `json:"prix"`
	QuantiteStock     int             `json:"quantiteStock" binding:"gte=0"`
	QuantiteMinAlerte int             `json:"quantiteMinAlerte" binding:"gte=0"`
	Agence            *string         `json:"agence,omitempty"`
	CategorieID       *string         `json:"categorieId,omitempty"`
	MarqueID          *string         `json:"marqueId,omitempty"`
	FournisseurID     *string         `json:"fournisseurId,omitempty"`

	OnExisting    string     `json:"onExisting,omitempty" binding:"omitempty,oneof=increment replace"`
	NumOrdre      *string    `json:"numOrdre,omitempty"`
	DateReception *time.Time `json:"dateReception,omitempty"`
}

// ToEntity builds the product aggregate for the given company and owner.
func (r *CreateProductRequest) ToEntity(entrepriseID, ownerID id.ID) (*product.Product, error) {
	p := product.New(entrepriseID, ownerID, r.Nom)
	p.Description = r.Description
	p.Reference = r.Reference
	p.Prix = r.Prix
	p.QuantiteStock = r.QuantiteStock
	p.QuantiteMinAlerte = r.QuantiteMinAlerte
	p.Agence = r.Agence

	var err error
	if p.CategorieID, err = parseOptionalID(r.CategorieID, "categorieId"); err != nil {
		return nil, err
	}
	if p.MarqueID, err = parseOptionalID(r.MarqueID, "marqueId"); err != nil {
		return nil, err
	}
	if p.FournisseurID, err = parseOptionalID(r.FournisseurID, "fournisseurId"); err != nil {
		return nil, err
	}
	return p, nil
}

// Mode maps the onExisting field to the service enum.
func (r *CreateProductRequest) Mode() product.CreateMode {
	switch r.OnExisting {
	case "increment":
		return product.ModeIncrement
	case "replace":
		return product.ModeReplace
	default:
		return product.ModeReject
	}
}

// Reception builds the optional reception info for increment mode.
func (r *CreateProductRequest) Reception() *product.Reception {
	if r.NumOrdre == nil && r.DateReception == nil {
		return nil
	}
	rec := &product.Reception{NumOrdre: r.NumOrdre}
	if r.DateReception != nil {
		rec.DateReception = *r.DateReception
	}
	return rec
}

// UpdateProductRequest patches a product. Absent fields keep their value;
// quantiteStock is not patchable, stock moves only through entrées and
// sorties.
type UpdateProductRequest struct {
	Nom               *string          `json:"nom,omitempty"`
	Description       *string          `json:"description,omitempty"`
	Reference         *string          `json:"reference,omitempty"`
	Prix              *decimal.Decimal `json:"prix,omitempty"`
	QuantiteMinAlerte *int             `json:"quantiteMinAlerte,omitempty"`
	Agence            *string          `json:"agence,omitempty"`
	CategorieID       *string          `json:"categorieId,omitempty"`
	MarqueID          *string          `json:"marqueId,omitempty"`
	FournisseurID     *string          `json:"fournisseurId,omitempty"`
}

// ApplyTo mutates the product with the present fields.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) error {
	if r.Nom != nil {
		p.Nom = *r.Nom
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.Reference != nil {
		p.Reference = r.Reference
	}
	if r.Prix != nil {
		p.Prix = *r.Prix
	}
	if r.QuantiteMinAlerte != nil {
		p.QuantiteMinAlerte = *r.QuantiteMinAlerte
	}
	if r.Agence != nil {
		p.Agence = r.Agence
	}

	var err error
	if r.CategorieID != nil {
		if p.CategorieID, err = parseOptionalID(r.CategorieID, "categorieId"); err != nil {
			return err
		}
	}
	if r.MarqueID != nil {
		if p.MarqueID, err = parseOptionalID(r.MarqueID, "marqueId"); err != nil {
			return err
		}
	}
	if r.FournisseurID != nil {
		if p.FournisseurID, err = parseOptionalID(r.FournisseurID, "fournisseurId"); err != nil {
			return err
		}
	}
	return nil
}

func parseOptionalID(s *string, field string) (*id.ID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	parsed, err := id.Parse(*s)
	if err != nil {
		return nil, apperror.NewValidation(field + " invalide").WithDetail(field, *s)
	}
	return &parsed, nil
}

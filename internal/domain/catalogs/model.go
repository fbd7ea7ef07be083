// Package catalogs provides the reference entities products point at:
// catégories, marques and fournisseurs. All are company-scoped and share one
// generic repository and service.
package catalogs

import (
	"context"

	"gestock/internal/core/apperror"
	"gestock/internal/core/entity"
	"gestock/internal/core/id"
)

// Item is the contract shared by all catalog entities.
type Item interface {
	entity.Validatable
	ItemID() id.ID
	Company() id.ID
}

// Categorie groups products.
type Categorie struct {
	entity.Base

	Nom          string  `db:"nom" json:"nom"`
	Description  *string `db:"description" json:"description,omitempty"`
	EntrepriseID id.ID   `db:"entreprise_id" json:"entrepriseId"`
}

func NewCategorie(entrepriseID id.ID, nom string) *Categorie {
	return &Categorie{Base: entity.NewBase(), Nom: nom, EntrepriseID: entrepriseID}
}

func (c *Categorie) ItemID() id.ID  { return c.ID }
func (c *Categorie) Company() id.ID { return c.EntrepriseID }

func (c *Categorie) Validate(ctx context.Context) error {
	return validateItem(c.Nom, c.EntrepriseID)
}

// Marque is a product brand.
type Marque struct {
	entity.Base

	Nom          string  `db:"nom" json:"nom"`
	Description  *string `db:"description" json:"description,omitempty"`
	EntrepriseID id.ID   `db:"entreprise_id" json:"entrepriseId"`
}

func NewMarque(entrepriseID id.ID, nom string) *Marque {
	return &Marque{Base: entity.NewBase(), Nom: nom, EntrepriseID: entrepriseID}
}

func (m *Marque) ItemID() id.ID  { return m.ID }
func (m *Marque) Company() id.ID { return m.EntrepriseID }

func (m *Marque) Validate(ctx context.Context) error {
	return validateItem(m.Nom, m.EntrepriseID)
}

// Fournisseur is a supplier.
type Fournisseur struct {
	entity.Base

	Nom          string  `db:"nom" json:"nom"`
	Contact      *string `db:"contact" json:"contact,omitempty"`
	Adresse      *string `db:"adresse" json:"adresse,omitempty"`
	EntrepriseID id.ID   `db:"entreprise_id" json:"entrepriseId"`
}

func NewFournisseur(entrepriseID id.ID, nom string) *Fournisseur {
	return &Fournisseur{Base: entity.NewBase(), Nom: nom, EntrepriseID: entrepriseID}
}

func (f *Fournisseur) ItemID() id.ID  { return f.ID }
func (f *Fournisseur) Company() id.ID { return f.EntrepriseID }

func (f *Fournisseur) Validate(ctx context.Context) error {
	return validateItem(f.Nom, f.EntrepriseID)
}

func validateItem(nom string, entrepriseID id.ID) error {
	if nom == "" {
		return apperror.NewValidation("le nom est requis").WithDetail("field", "nom")
	}
	if id.IsNil(entrepriseID) {
		return apperror.NewValidation("entreprise requise").WithDetail("field", "entreprise_id")
	}
	return nil
}

var (
	_ Item = (*Categorie)(nil)
	_ Item = (*Marque)(nil)
	_ Item = (*Fournisseur)(nil)
)

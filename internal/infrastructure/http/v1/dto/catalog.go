package dto

import (
	"gestock/internal/core/id"
	"gestock/internal/domain/catalogs"
)

// CategorieRequest creates or patches a catégorie.
type CategorieRequest struct {
	Nom         string  `json:"nom" binding:"required"`
	Description *string `json:"description,omitempty"`
}

func (r *CategorieRequest) ToEntity(entrepriseID id.ID) *catalogs.Categorie {
	c := catalogs.NewCategorie(entrepriseID, r.Nom)
	c.Description = r.Description
	return c
}

func (r *CategorieRequest) ApplyTo(c *catalogs.Categorie) {
	c.Nom = r.Nom
	c.Description = r.Description
}

// MarqueRequest creates or patches a marque.
type MarqueRequest struct {
	Nom         string  `json:"nom" binding:"required"`
	Description *string `json:"description,omitempty"`
}

func (r *MarqueRequest) ToEntity(entrepriseID id.ID) *catalogs.Marque {
	m := catalogs.NewMarque(entrepriseID, r.Nom)
	m.Description = r.Description
	return m
}

func (r *MarqueRequest) ApplyTo(m *catalogs.Marque) {
	m.Nom = r.Nom
	m.Description = r.Description
}

// FournisseurRequest creates or patches a fournisseur.
type FournisseurRequest struct {
	Nom     string  `json:"nom" binding:"required"`
	Contact *string `json:"contact,omitempty"`
	Adresse *string `json:"adresse,omitempty"`
}

func (r *FournisseurRequest) ToEntity(entrepriseID id.ID) *catalogs.Fournisseur {
	f := catalogs.NewFournisseur(entrepriseID, r.Nom)
	f.Contact = r.Contact
	f.Adresse = r.Adresse
	return f
}

func (r *FournisseurRequest) ApplyTo(f *catalogs.Fournisseur) {
	f.Nom = r.Nom
	f.Contact = r.Contact
	f.Adresse = r.Adresse
}

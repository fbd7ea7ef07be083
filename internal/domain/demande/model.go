// Package demande provides the request workflow: a Demande moves from
// EN_ATTENTE to exactly one of VALIDEE or REFUSEE, and validation generates
// one pending sortie per line.
package demande

import (
	"context"
	"time"

	"gestock/internal/core/apperror"
	"gestock/internal/core/entity"
	"gestock/internal/core/id"
	"gestock/internal/domain/product"
)

// Statut is the lifecycle state of a Demande.
type Statut string

const (
	StatutEnAttente Statut = "EN_ATTENTE"
	StatutValidee   Statut = "VALIDEE"
	StatutRefusee   Statut = "REFUSEE"
)

// IsTerminal reports whether no further transition is permitted.
func (s Statut) IsTerminal() bool {
	return s == StatutValidee || s == StatutRefusee
}

// Demande is a product request submitted by an employee.
type Demande struct {
	entity.Base

	UserID       id.ID     `db:"user_id" json:"userId"`
	EntrepriseID id.ID     `db:"entreprise_id" json:"entrepriseId"`
	DateDemande  time.Time `db:"date_demande" json:"dateDemande"`
	Statut       Statut    `db:"statut" json:"statut"`
	Motif        *string   `db:"motif" json:"motif,omitempty"`
	Agence       *string   `db:"agence" json:"agence,omitempty"`

	// Lignes are loaded eagerly by the repository, in insertion order.
	Lignes []Ligne `db:"-" json:"lignes"`
}

// Ligne is one line of a Demande: a product and a requested quantity.
type Ligne struct {
	ID                id.ID `db:"id" json:"id"`
	DemandeID         id.ID `db:"demande_id" json:"demandeId"`
	ProductID         id.ID `db:"product_id" json:"productId"`
	QuantiteDemandee  int   `db:"quantite_demandee" json:"quantiteDemandee"`

	// Product is hydrated by the repository for reads; never lazily loaded.
	Product *product.Product `db:"-" json:"product,omitempty"`
}

// New creates a pending Demande for the given requester.
func New(userID, entrepriseID id.ID, motif, agence *string) *Demande {
	return &Demande{
		Base:         entity.NewBase(),
		UserID:       userID,
		EntrepriseID: entrepriseID,
		DateDemande:  time.Now().UTC(),
		Statut:       StatutEnAttente,
		Motif:        motif,
		Agence:       agence,
	}
}

// AddLigne appends a line to the demande.
func (d *Demande) AddLigne(productID id.ID, quantite int) {
	d.Lignes = append(d.Lignes, Ligne{
		ID:               id.New(),
		DemandeID:        d.ID,
		ProductID:        productID,
		QuantiteDemandee: quantite,
	})
}

// Validate implements entity.Validatable: a demande without lines, or with a
// non-positive quantity on any line, is invalid.
func (d *Demande) Validate(ctx context.Context) error {
	if id.IsNil(d.UserID) {
		return apperror.NewValidation("utilisateur requis").
			WithDetail("field", "user_id")
	}
	if id.IsNil(d.EntrepriseID) {
		return apperror.NewValidation("entreprise requise").
			WithDetail("field", "entreprise_id")
	}
	if len(d.Lignes) == 0 {
		return apperror.NewValidation("au moins une ligne est requise").
			WithDetail("field", "lignes")
	}
	for i, ligne := range d.Lignes {
		if id.IsNil(ligne.ProductID) {
			return apperror.NewValidation("produit requis").
				WithDetail("field", "lignes").
				WithDetail("ligne", i+1)
		}
		if ligne.QuantiteDemandee < 1 {
			return apperror.NewValidation("quantite_demandee doit être >= 1").
				WithDetail("field", "lignes").
				WithDetail("ligne", i+1)
		}
	}
	return nil
}

var _ entity.Validatable = (*Demande)(nil)

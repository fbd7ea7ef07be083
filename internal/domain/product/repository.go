package product

import (
	"context"

	"gestock/internal/core/id"
)

// Repository defines company-scoped persistence for products.
// Every lookup filters by entreprise: a row outside the caller's company is
// reported as not found, never as forbidden.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, entrepriseID, productID id.ID) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, entrepriseID, productID id.ID) error

	// FindExisting locates a product by reference (preferred) or exact name.
	// Returns (nil, nil) when no match exists.
	FindExisting(ctx context.Context, entrepriseID id.ID, reference, nom *string) (*Product, error)

	List(ctx context.Context, entrepriseID id.ID, filter ListFilter) ([]*Product, error)
	ListLowStock(ctx context.Context, entrepriseID id.ID) ([]*Product, error)

	// HasSorties reports whether any sortie references the product.
	HasSorties(ctx context.Context, productID id.ID) (bool, error)
}

// ListFilter narrows product listings.
type ListFilter struct {
	Search      string
	CategorieID *id.ID
	MarqueID    *id.ID
	Limit       int
	Offset      int
}

package stock

import (
	"context"

	"gestock/internal/core/id"
)

// Ledger is the only writer of Product.quantite_stock.
//
// Both operations must run inside the transaction that also persists their
// justifying record (the entrée row, or the sortie status flip): a stock
// change without its record is a correctness bug.
type Ledger interface {
	// Credit increments on-hand stock by qty. qty must be > 0.
	Credit(ctx context.Context, entrepriseID, productID id.ID, qty int) error

	// Debit decrements on-hand stock by qty, applied as an atomic conditional
	// update at the storage layer ("decrement only if current >= qty").
	// qty must be > 0. Returns a conflict when the condition fails: callers
	// pre-check stock on the hydrated aggregate, the conditional update is
	// what holds the non-negative invariant under concurrent confirmations.
	Debit(ctx context.Context, entrepriseID, productID id.ID, qty int) error
}

// Repository defines persistence for entrées.
type Repository interface {
	Create(ctx context.Context, e *EntreeStock) error

	// ListByProduct returns entrées of one product, most recent first.
	// Scoped through the product's company.
	ListByProduct(ctx context.Context, entrepriseID, productID id.ID) ([]*EntreeStock, error)

	// ListByEntreprise returns all company entrées, most recent first.
	ListByEntreprise(ctx context.Context, entrepriseID id.ID) ([]*EntreeStock, error)
}

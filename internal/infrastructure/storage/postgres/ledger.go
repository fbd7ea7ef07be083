package postgres

import (
	"context"
	"fmt"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/domain/stock"
)

// LedgerRepo is the PostgreSQL implementation of stock.Ledger. It is the
// only code path that writes products.quantite_stock.
type LedgerRepo struct {
	txManager *TxManager
}

var _ stock.Ledger = (*LedgerRepo)(nil)

func NewLedgerRepo(txManager *TxManager) *LedgerRepo {
	return &LedgerRepo{txManager: txManager}
}

func (r *LedgerRepo) Credit(ctx context.Context, entrepriseID, productID id.ID, qty int) error {
	if qty <= 0 {
		return apperror.NewValidation("la quantité créditée doit être > 0")
	}

	sql := `UPDATE products
	        SET quantite_stock = quantite_stock + $1, updated_at = now()
	        WHERE id = $2 AND entreprise_id = $3`

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, qty, productID, entrepriseID)
	if err != nil {
		return fmt.Errorf("credit stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("Produit")
	}
	return nil
}

// Debit decrements conditionally. The WHERE guard, not the caller's
// pre-check, is what holds quantite_stock >= 0 under concurrent
// confirmations of the same product.
func (r *LedgerRepo) Debit(ctx context.Context, entrepriseID, productID id.ID, qty int) error {
	if qty <= 0 {
		return apperror.NewValidation("la quantité débitée doit être > 0")
	}

	sql := `UPDATE products
	        SET quantite_stock = quantite_stock - $1, updated_at = now()
	        WHERE id = $2 AND entreprise_id = $3 AND quantite_stock >= $1`

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, qty, productID, entrepriseID)
	if err != nil {
		return fmt.Errorf("debit stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		available, err := r.currentStock(ctx, entrepriseID, productID)
		if err != nil {
			return err
		}
		return apperror.NewInsufficientStock(productID.String(), qty, available)
	}
	return nil
}

func (r *LedgerRepo) currentStock(ctx context.Context, entrepriseID, productID id.ID) (int, error) {
	var qty int
	sql := `SELECT quantite_stock FROM products WHERE id = $1 AND entreprise_id = $2`
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, productID, entrepriseID).Scan(&qty)
	if err != nil {
		return 0, apperror.NewNotFound("Produit")
	}
	return qty, nil
}

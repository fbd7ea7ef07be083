package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gestock/internal/core/id"
	"gestock/internal/domain/product"
	"gestock/internal/domain/stock"
)

const entreeTable = "entree_stocks"

// EntreeRepo is the PostgreSQL implementation of stock.Repository.
// Like sorties, entrées are company-scoped through the joined product row.
type EntreeRepo struct {
	txManager   *TxManager
	entreeCols  []string
	productCols []string
}

var _ stock.Repository = (*EntreeRepo)(nil)

func NewEntreeRepo(txManager *TxManager) *EntreeRepo {
	return &EntreeRepo{
		txManager:   txManager,
		entreeCols:  ExtractDBColumns[stock.EntreeStock](),
		productCols: ExtractDBColumns[product.Product](),
	}
}

func (r *EntreeRepo) Create(ctx context.Context, e *stock.EntreeStock) error {
	data := StructToMap(e)

	q := builder().Insert(entreeTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entree: %w", err)
	}
	return nil
}

type entreeRow struct {
	stock.EntreeStock
	Product product.Product `db:"p"`
}

func (r *EntreeRepo) joinedSelect() squirrel.SelectBuilder {
	cols := make([]string, 0, len(r.entreeCols)+len(r.productCols))
	for _, col := range r.entreeCols {
		cols = append(cols, "e."+col)
	}
	for _, col := range r.productCols {
		cols = append(cols, fmt.Sprintf(`p.%s AS "p.%s"`, col, col))
	}

	return builder().
		Select(cols...).
		From(entreeTable + " e").
		Join(productTable + " p ON p.id = e.product_id")
}

func (r *EntreeRepo) ListByProduct(ctx context.Context, entrepriseID, productID id.ID) ([]*stock.EntreeStock, error) {
	q := r.joinedSelect().
		Where(squirrel.Eq{"e.product_id": productID, "p.entreprise_id": entrepriseID}).
		OrderBy("e.date_reception DESC", "e.created_at DESC")
	return r.selectMany(ctx, q)
}

func (r *EntreeRepo) ListByEntreprise(ctx context.Context, entrepriseID id.ID) ([]*stock.EntreeStock, error) {
	q := r.joinedSelect().
		Where(squirrel.Eq{"p.entreprise_id": entrepriseID}).
		OrderBy("e.date_reception DESC", "e.created_at DESC")
	return r.selectMany(ctx, q)
}

func (r *EntreeRepo) selectMany(ctx context.Context, q squirrel.SelectBuilder) ([]*stock.EntreeStock, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []entreeRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list entrees: %w", err)
	}

	items := make([]*stock.EntreeStock, len(rows))
	for i := range rows {
		e := rows[i].EntreeStock
		p := rows[i].Product
		e.Product = &p
		items[i] = &e
	}
	return items, nil
}

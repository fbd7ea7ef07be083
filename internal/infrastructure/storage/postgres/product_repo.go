package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/domain/product"
)

const productTable = "products"

// ProductRepo is the PostgreSQL implementation of product.Repository.
//
// quantite_stock is excluded from Update: the column is written only by the
// stock ledger (LedgerRepo).
type ProductRepo struct {
	txManager  *TxManager
	selectCols []string
	updateCols []string
}

var _ product.Repository = (*ProductRepo)(nil)

func NewProductRepo(txManager *TxManager) *ProductRepo {
	cols := ExtractDBColumns[product.Product]()
	updateCols := make([]string, 0, len(cols))
	for _, col := range cols {
		switch col {
		case "id", "created_at", "quantite_stock":
			continue
		}
		updateCols = append(updateCols, col)
	}
	return &ProductRepo{
		txManager:  txManager,
		selectCols: cols,
		updateCols: updateCols,
	}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	data := StructToMap(p)

	q := builder().Insert(productTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, entrepriseID, productID id.ID) (*product.Product, error) {
	q := builder().
		Select(r.selectCols...).
		From(productTable).
		Where(squirrel.Eq{"id": productID, "entreprise_id": entrepriseID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("Produit")
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	data := StructToMap(p)

	setMap := make(map[string]any, len(r.updateCols))
	for _, col := range r.updateCols {
		if val, ok := data[col]; ok {
			setMap[col] = val
		}
	}

	q := builder().
		Update(productTable).
		SetMap(setMap).
		Where(squirrel.Eq{"id": p.ID, "entreprise_id": p.EntrepriseID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("Produit")
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, entrepriseID, productID id.ID) error {
	q := builder().
		Delete(productTable).
		Where(squirrel.Eq{"id": productID, "entreprise_id": entrepriseID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("Produit")
	}
	return nil
}

func (r *ProductRepo) FindExisting(ctx context.Context, entrepriseID id.ID, reference, nom *string) (*product.Product, error) {
	q := builder().
		Select(r.selectCols...).
		From(productTable).
		Where(squirrel.Eq{"entreprise_id": entrepriseID}).
		Limit(1)

	switch {
	case reference != nil && *reference != "":
		q = q.Where(squirrel.Eq{"reference": *reference})
	case nom != nil && *nom != "":
		q = q.Where(squirrel.Eq{"nom": *nom})
	default:
		return nil, nil
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find existing product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, entrepriseID id.ID, filter product.ListFilter) ([]*product.Product, error) {
	q := builder().
		Select(r.selectCols...).
		From(productTable).
		Where(squirrel.Eq{"entreprise_id": entrepriseID}).
		OrderBy("nom ASC")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"nom": pattern},
			squirrel.ILike{"reference": pattern},
		})
	}
	if filter.CategorieID != nil {
		q = q.Where(squirrel.Eq{"categorie_id": *filter.CategorieID})
	}
	if filter.MarqueID != nil {
		q = q.Where(squirrel.Eq{"marque_id": *filter.MarqueID})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

func (r *ProductRepo) ListLowStock(ctx context.Context, entrepriseID id.ID) ([]*product.Product, error) {
	q := builder().
		Select(r.selectCols...).
		From(productTable).
		Where(squirrel.Eq{"entreprise_id": entrepriseID}).
		Where("quantite_stock <= quantite_min_alerte").
		OrderBy("quantite_stock ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list low stock products: %w", err)
	}
	return items, nil
}

func (r *ProductRepo) HasSorties(ctx context.Context, productID id.ID) (bool, error) {
	q := builder().
		Select("1").
		From(sortieTable).
		Where(squirrel.Eq{"product_id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check sorties: %w", err)
	}
	return true, nil
}

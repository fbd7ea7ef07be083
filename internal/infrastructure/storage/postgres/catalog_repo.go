package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/domain/catalogs"
)

// CatalogRepo is the generic PostgreSQL implementation of
// catalogs.Repository. One instance per catalog table.
type CatalogRepo[T catalogs.Item] struct {
	txManager  *TxManager
	tableName  string
	entityName string
	selectCols []string
	newFn      func() T
}

func NewCategorieRepo(txManager *TxManager) *CatalogRepo[*catalogs.Categorie] {
	return newCatalogRepo(txManager, "categories", "Catégorie", func() *catalogs.Categorie { return &catalogs.Categorie{} })
}

func NewMarqueRepo(txManager *TxManager) *CatalogRepo[*catalogs.Marque] {
	return newCatalogRepo(txManager, "marques", "Marque", func() *catalogs.Marque { return &catalogs.Marque{} })
}

func NewFournisseurRepo(txManager *TxManager) *CatalogRepo[*catalogs.Fournisseur] {
	return newCatalogRepo(txManager, "fournisseurs", "Fournisseur", func() *catalogs.Fournisseur { return &catalogs.Fournisseur{} })
}

func newCatalogRepo[T catalogs.Item](txManager *TxManager, tableName, entityName string, newFn func() T) *CatalogRepo[T] {
	return &CatalogRepo[T]{
		tableName:  tableName,
		entityName: entityName,
		selectCols: ExtractDBColumns[T](),
		newFn:      newFn,
		txManager:  txManager,
	}
}

func (r *CatalogRepo[T]) Create(ctx context.Context, item T) error {
	data := StructToMap(item)

	q := builder().Insert(r.tableName).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

func (r *CatalogRepo[T]) GetByID(ctx context.Context, entrepriseID, itemID id.ID) (T, error) {
	item := r.newFn()

	q := builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"id": itemID, "entreprise_id": entrepriseID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return item, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return item, apperror.NewNotFound(r.entityName)
		}
		return item, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return item, nil
}

func (r *CatalogRepo[T]) Update(ctx context.Context, item T) error {
	data := StructToMap(item)

	setMap := make(map[string]any, len(data))
	for col, val := range data {
		if col == "id" || col == "created_at" {
			continue
		}
		setMap[col] = val
	}

	q := builder().
		Update(r.tableName).
		SetMap(setMap).
		Where(squirrel.Eq{"id": item.ItemID(), "entreprise_id": item.Company()})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName)
	}
	return nil
}

func (r *CatalogRepo[T]) Delete(ctx context.Context, entrepriseID, itemID id.ID) error {
	q := builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": itemID, "entreprise_id": entrepriseID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		// 23503: foreign key violation, products still reference the item.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewConflict("Suppression impossible: des produits référencent cet élément").
				WithDetail("entity", r.tableName).
				WithDetail("id", itemID.String()).
				WithCause(err)
		}
		return fmt.Errorf("delete %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName)
	}
	return nil
}

func (r *CatalogRepo[T]) List(ctx context.Context, entrepriseID id.ID, search string) ([]T, error) {
	q := builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"entreprise_id": entrepriseID}).
		OrderBy("nom ASC")

	if search != "" {
		q = q.Where(squirrel.ILike{"nom": "%" + search + "%"})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return items, nil
}

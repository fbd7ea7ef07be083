package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/domain/demande"
	"gestock/internal/domain/product"
	"gestock/internal/domain/sortie"
)

const sortieTable = "sortie_stocks"

// SortieRepo is the PostgreSQL implementation of sortie.Repository.
// Company scoping goes through the joined product row: sorties have no
// entreprise column of their own.
type SortieRepo struct {
	txManager   *TxManager
	sortieCols  []string
	productCols []string
}

var _ sortie.Repository = (*SortieRepo)(nil)

func NewSortieRepo(txManager *TxManager) *SortieRepo {
	return &SortieRepo{
		txManager:   txManager,
		sortieCols:  ExtractDBColumns[sortie.SortieStock](),
		productCols: ExtractDBColumns[product.Product](),
	}
}

func (r *SortieRepo) Create(ctx context.Context, s *sortie.SortieStock) error {
	data := StructToMap(s)

	q := builder().Insert(sortieTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sortie: %w", err)
	}
	return nil
}

// sortieRow flattens a sortie joined with its product and the statut of its
// demande.
type sortieRow struct {
	sortie.SortieStock
	Product       product.Product `db:"p"`
	DemandeStatut demande.Statut  `db:"demande_statut"`
}

func (r *SortieRepo) joinedSelect() squirrel.SelectBuilder {
	cols := make([]string, 0, len(r.sortieCols)+len(r.productCols)+1)
	for _, col := range r.sortieCols {
		cols = append(cols, "s."+col)
	}
	for _, col := range r.productCols {
		cols = append(cols, fmt.Sprintf(`p.%s AS "p.%s"`, col, col))
	}
	cols = append(cols, "d.statut AS demande_statut")

	return builder().
		Select(cols...).
		From(sortieTable + " s").
		Join(productTable + " p ON p.id = s.product_id").
		Join(demandeTable + " d ON d.id = s.demande_id")
}

func (r *SortieRepo) GetPendingWithRefs(ctx context.Context, entrepriseID, sortieID id.ID) (*sortie.SortieStock, error) {
	q := r.joinedSelect().
		Where(squirrel.Eq{
			"s.id":               sortieID,
			"s.statut_direction": sortie.StatutEnAttente,
			"p.entreprise_id":    entrepriseID,
		}).
		Suffix("FOR UPDATE OF s")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row sortieRow
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFoundMsg("Sortie introuvable ou déjà traitée")
		}
		return nil, fmt.Errorf("get pending sortie: %w", err)
	}
	return row.hydrated(), nil
}

func (r *SortieRepo) UpdateStatutDirection(ctx context.Context, entrepriseID, sortieID id.ID, from, to sortie.StatutDirection) (bool, error) {
	sql := `UPDATE sortie_stocks s
	        SET statut_direction = $1, updated_at = now()
	        FROM products p
	        WHERE s.id = $2 AND s.statut_direction = $3
	          AND p.id = s.product_id AND p.entreprise_id = $4`

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, to, sortieID, from, entrepriseID)
	if err != nil {
		return false, fmt.Errorf("update statut_direction: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *SortieRepo) ListByDemande(ctx context.Context, entrepriseID, demandeID id.ID) ([]*sortie.SortieStock, error) {
	q := r.joinedSelect().
		Where(squirrel.Eq{"s.demande_id": demandeID, "p.entreprise_id": entrepriseID}).
		OrderBy("s.created_at ASC")
	return r.selectMany(ctx, q)
}

func (r *SortieRepo) ListByProduct(ctx context.Context, entrepriseID, productID id.ID) ([]*sortie.SortieStock, error) {
	q := r.joinedSelect().
		Where(squirrel.Eq{"s.product_id": productID, "p.entreprise_id": entrepriseID}).
		OrderBy("s.date_sortie DESC", "s.created_at DESC")
	return r.selectMany(ctx, q)
}

func (r *SortieRepo) ListByEntreprise(ctx context.Context, entrepriseID id.ID) ([]*sortie.SortieStock, error) {
	q := r.joinedSelect().
		Where(squirrel.Eq{"p.entreprise_id": entrepriseID}).
		OrderBy("s.date_sortie DESC", "s.created_at DESC")
	return r.selectMany(ctx, q)
}

func (r *SortieRepo) ListPending(ctx context.Context, entrepriseID id.ID) ([]*sortie.SortieStock, error) {
	q := r.joinedSelect().
		Where(squirrel.Eq{
			"p.entreprise_id":    entrepriseID,
			"s.statut_direction": sortie.StatutEnAttente,
		}).
		OrderBy("s.created_at ASC")
	return r.selectMany(ctx, q)
}

func (r *SortieRepo) selectMany(ctx context.Context, q squirrel.SelectBuilder) ([]*sortie.SortieStock, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []sortieRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list sorties: %w", err)
	}

	items := make([]*sortie.SortieStock, len(rows))
	for i := range rows {
		items[i] = rows[i].hydrated()
	}
	return items, nil
}

func (row *sortieRow) hydrated() *sortie.SortieStock {
	s := row.SortieStock
	p := row.Product
	s.Product = &p
	s.DemandeStatut = row.DemandeStatut
	return &s
}

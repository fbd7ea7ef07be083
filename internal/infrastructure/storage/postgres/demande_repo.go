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
)

const (
	demandeTable = "demandes"
	ligneTable   = "ligne_demandes"
)

// DemandeRepo is the PostgreSQL implementation of demande.Repository.
// Reads return hydrated aggregates: lines in insertion order, each with its
// product row.
type DemandeRepo struct {
	txManager   *TxManager
	demandeCols []string
	productCols []string
}

var _ demande.Repository = (*DemandeRepo)(nil)

func NewDemandeRepo(txManager *TxManager) *DemandeRepo {
	return &DemandeRepo{
		txManager:   txManager,
		demandeCols: ExtractDBColumns[demande.Demande](),
		productCols: ExtractDBColumns[product.Product](),
	}
}

func (r *DemandeRepo) Create(ctx context.Context, d *demande.Demande) error {
	data := StructToMap(d)

	q := builder().Insert(demandeTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert demande: %w", err)
	}
	return nil
}

func (r *DemandeRepo) SaveLignes(ctx context.Context, demandeID id.ID, lignes []demande.Ligne) error {
	if len(lignes) == 0 {
		return nil
	}

	q := builder().
		Insert(ligneTable).
		Columns("id", "demande_id", "product_id", "quantite_demandee")
	for _, ligne := range lignes {
		q = q.Values(ligne.ID, demandeID, ligne.ProductID, ligne.QuantiteDemandee)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lignes: %w", err)
	}
	return nil
}

func (r *DemandeRepo) GetByID(ctx context.Context, entrepriseID, demandeID id.ID) (*demande.Demande, error) {
	d, err := r.getOne(ctx, entrepriseID, demandeID, false)
	if err != nil {
		return nil, err
	}
	if err := r.loadLignes(ctx, []*demande.Demande{d}); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DemandeRepo) GetPendingForUpdate(ctx context.Context, entrepriseID, demandeID id.ID) (*demande.Demande, error) {
	d, err := r.getOne(ctx, entrepriseID, demandeID, true)
	if err != nil {
		return nil, err
	}
	if err := r.loadLignes(ctx, []*demande.Demande{d}); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DemandeRepo) getOne(ctx context.Context, entrepriseID, demandeID id.ID, pendingLocked bool) (*demande.Demande, error) {
	q := builder().
		Select(r.demandeCols...).
		From(demandeTable).
		Where(squirrel.Eq{"id": demandeID, "entreprise_id": entrepriseID})

	if pendingLocked {
		q = q.Where(squirrel.Eq{"statut": demande.StatutEnAttente}).
			Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d demande.Demande
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			if pendingLocked {
				return nil, apperror.NewNotFoundMsg("Demande introuvable ou déjà traitée")
			}
			return nil, apperror.NewNotFound("Demande")
		}
		return nil, fmt.Errorf("get demande: %w", err)
	}
	return &d, nil
}

func (r *DemandeRepo) UpdateStatut(ctx context.Context, entrepriseID, demandeID id.ID, from, to demande.Statut) (bool, error) {
	q := builder().
		Update(demandeTable).
		Set("statut", to).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": demandeID, "entreprise_id": entrepriseID, "statut": from})

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("update statut: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *DemandeRepo) ListByUser(ctx context.Context, entrepriseID, userID id.ID) ([]*demande.Demande, error) {
	return r.list(ctx, squirrel.Eq{"entreprise_id": entrepriseID, "user_id": userID})
}

func (r *DemandeRepo) ListByEntreprise(ctx context.Context, entrepriseID id.ID) ([]*demande.Demande, error) {
	return r.list(ctx, squirrel.Eq{"entreprise_id": entrepriseID})
}

func (r *DemandeRepo) list(ctx context.Context, where squirrel.Eq) ([]*demande.Demande, error) {
	q := builder().
		Select(r.demandeCols...).
		From(demandeTable).
		Where(where).
		OrderBy("date_demande DESC", "created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*demande.Demande
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list demandes: %w", err)
	}
	if err := r.loadLignes(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ligneRow flattens a ligne joined with its product for scanning.
type ligneRow struct {
	demande.Ligne
	Product product.Product `db:"p"`
}

// loadLignes hydrates the lines of the given demandes with one query,
// joining each line's product.
func (r *DemandeRepo) loadLignes(ctx context.Context, demandes []*demande.Demande) error {
	if len(demandes) == 0 {
		return nil
	}

	ids := make([]id.ID, len(demandes))
	byID := make(map[id.ID]*demande.Demande, len(demandes))
	for i, d := range demandes {
		ids[i] = d.ID
		byID[d.ID] = d
		d.Lignes = nil
	}

	cols := []string{"l.id", "l.demande_id", "l.product_id", "l.quantite_demandee"}
	for _, col := range r.productCols {
		cols = append(cols, fmt.Sprintf(`p.%s AS "p.%s"`, col, col))
	}

	q := builder().
		Select(cols...).
		From(ligneTable + " l").
		Join(productTable + " p ON p.id = l.product_id").
		Where(squirrel.Eq{"l.demande_id": ids}).
		OrderBy("l.created_at ASC", "l.id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	var rows []ligneRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return fmt.Errorf("load lignes: %w", err)
	}

	for i := range rows {
		d, ok := byID[rows[i].DemandeID]
		if !ok {
			continue
		}
		ligne := rows[i].Ligne
		p := rows[i].Product
		ligne.Product = &p
		d.Lignes = append(d.Lignes, ligne)
	}
	return nil
}

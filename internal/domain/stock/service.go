package stock

import (
	"context"
	"fmt"
	"time"

	"gestock/internal/core/apperror"
	"gestock/internal/core/appctx"
	"gestock/internal/core/id"
	"gestock/internal/core/role"
	"gestock/internal/core/tx"
	"gestock/internal/domain/audit"
	"gestock/internal/domain/product"
	"gestock/pkg/logger"
)

// EntreeInput describes a stock receipt to record.
type EntreeInput struct {
	Quantite      int
	NumOrdre      *string
	Fournisseur   *string
	DateReception time.Time
}

// Service records stock entrées and exposes movement history.
type Service struct {
	repo      Repository
	products  product.Repository
	ledger    Ledger
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates a stock service.
func NewService(
	repo Repository,
	products product.Repository,
	ledger Ledger,
	txManager tx.Manager,
	recorder audit.Recorder,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		ledger:    ledger,
		txManager: txManager,
		audit:     recorder,
	}
}

// CreateEntree records an entrée on a product of the caller's company and
// credits the ledger. Record and credit commit as one unit.
func (s *Service) CreateEntree(ctx context.Context, productID id.ID, in EntreeInput) (*EntreeStock, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentification requise")
	}
	if !user.Role.Can(role.ActionRecordEntree) {
		return nil, apperror.NewForbidden("Accès refusé")
	}

	p, err := s.products.GetByID(ctx, user.CompanyID, productID)
	if err != nil {
		return nil, err
	}

	dateReception := in.DateReception
	if dateReception.IsZero() {
		dateReception = time.Now().UTC()
	}

	entree := NewEntree(p.ID, user.UserID, in.Quantite, dateReception)
	entree.NumOrdre = in.NumOrdre
	entree.Fournisseur = in.Fournisseur
	if err := entree.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, entree); err != nil {
			return fmt.Errorf("create entree: %w", err)
		}
		return s.ledger.Credit(ctx, user.CompanyID, p.ID, entree.QuantiteEntree)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, entree, user)
	logger.Info(ctx, "entree recorded",
		"entree_id", entree.ID, "product_id", p.ID, "quantite", entree.QuantiteEntree)
	return entree, nil
}

// RecordForProduct implements product.EntreeRecorder: it persists the entrée
// row and credits the ledger inside the caller's transaction. Used when
// product creation merges stock into an existing product.
func (s *Service) RecordForProduct(ctx context.Context, p *product.Product, quantite int, numOrdre *string, dateReception time.Time) error {
	user := appctx.GetUser(ctx)
	if user == nil {
		return apperror.NewUnauthorized("authentification requise")
	}

	entree := NewEntree(p.ID, user.UserID, quantite, dateReception)
	entree.NumOrdre = numOrdre
	entree.FournisseurFromProduct(p)
	if err := entree.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, entree); err != nil {
		return fmt.Errorf("create entree: %w", err)
	}
	return s.ledger.Credit(ctx, p.EntrepriseID, p.ID, quantite)
}

// ListEntreesByProduct returns the entrées of one company product.
func (s *Service) ListEntreesByProduct(ctx context.Context, productID id.ID) ([]*EntreeStock, error) {
	user, err := s.requireViewer(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, user.CompanyID, productID); err != nil {
		return nil, err
	}
	return s.repo.ListByProduct(ctx, user.CompanyID, productID)
}

// ListEntrees returns all entrées of the caller's company.
func (s *Service) ListEntrees(ctx context.Context) ([]*EntreeStock, error) {
	user, err := s.requireViewer(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByEntreprise(ctx, user.CompanyID)
}

func (s *Service) requireViewer(ctx context.Context) (*appctx.UserContext, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentification requise")
	}
	if !user.Role.Can(role.ActionViewStock) {
		return nil, apperror.NewForbidden("Accès refusé")
	}
	return user, nil
}

func (s *Service) recordAudit(ctx context.Context, e *EntreeStock, user *appctx.UserContext) {
	err := s.audit.Record(ctx, audit.Entry{
		EntityType:   "entree_stock",
		EntityID:     e.ID,
		Action:       audit.ActionEntreeCreee,
		UserID:       user.UserID,
		EntrepriseID: user.CompanyID,
		Details:      map[string]any{"product_id": e.ProductID, "quantite": e.QuantiteEntree},
	})
	if err != nil {
		logger.Warn(ctx, "audit record failed", "action", audit.ActionEntreeCreee, "error", err)
	}
}

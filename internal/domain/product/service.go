package product

import (
	"context"
	"fmt"
	"time"

	"gestock/internal/core/apperror"
	"gestock/internal/core/appctx"
	"gestock/internal/core/id"
	"gestock/internal/core/role"
	"gestock/internal/core/tx"
	"gestock/pkg/logger"
)

// CreateMode controls behavior when a product with the same reference or
// name already exists in the company.
type CreateMode string

const (
	// ModeReject refuses the creation with a conflict.
	ModeReject CreateMode = "reject"
	// ModeIncrement records a stock entrée on the existing product.
	ModeIncrement CreateMode = "increment"
	// ModeReplace updates the existing product in place.
	ModeReplace CreateMode = "replace"
)

// Reception describes the entrée recorded when ModeIncrement hits an
// existing product.
type Reception struct {
	NumOrdre      *string
	DateReception time.Time
}

// EntreeRecorder records a stock entrée and credits the ledger atomically.
// Implemented by the stock service; declared here so product does not depend
// on the stock package.
type EntreeRecorder interface {
	RecordForProduct(ctx context.Context, p *Product, quantite int, numOrdre *string, dateReception time.Time) error
}

// Service provides company-scoped product operations.
type Service struct {
	repo      Repository
	entrees   EntreeRecorder
	txManager tx.Manager
}

// NewService creates a product service.
func NewService(repo Repository, entrees EntreeRecorder, txManager tx.Manager) *Service {
	return &Service{repo: repo, entrees: entrees, txManager: txManager}
}

// Create creates a product, or applies the CreateMode when a product with
// the same reference or name already exists.
// Returns the resulting product and whether a new row was created.
func (s *Service) Create(ctx context.Context, p *Product, mode CreateMode, reception *Reception) (*Product, bool, error) {
	user := appctx.GetUser(ctx)
	if user == nil || !user.Role.Can(role.ActionManageProducts) {
		return nil, false, apperror.NewForbidden("Accès refusé")
	}

	p.EntrepriseID = user.CompanyID
	p.OwnerID = user.UserID
	if err := p.Validate(ctx); err != nil {
		return nil, false, err
	}

	existing, err := s.repo.FindExisting(ctx, user.CompanyID, p.Reference, &p.Nom)
	if err != nil {
		return nil, false, fmt.Errorf("find existing product: %w", err)
	}

	if existing == nil {
		if err := s.repo.Create(ctx, p); err != nil {
			return nil, false, fmt.Errorf("create product: %w", err)
		}
		logger.Info(ctx, "product created", "product_id", p.ID, "nom", p.Nom)
		return p, true, nil
	}

	switch mode {
	case ModeReplace:
		applyReplace(existing, p)
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("replace product: %w", err)
		}
		logger.Info(ctx, "product replaced", "product_id", existing.ID)
		return existing, false, nil

	case ModeIncrement:
		if p.QuantiteStock <= 0 {
			return nil, false, apperror.NewValidation("quantite_stock doit être > 0 en mode increment")
		}
		dateReception := time.Now().UTC()
		var numOrdre *string
		if reception != nil {
			numOrdre = reception.NumOrdre
			if !reception.DateReception.IsZero() {
				dateReception = reception.DateReception
			}
		}
		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := s.entrees.RecordForProduct(ctx, existing, p.QuantiteStock, numOrdre, dateReception); err != nil {
				return err
			}
			applyMerge(existing, p)
			return s.repo.Update(ctx, existing)
		})
		if err != nil {
			return nil, false, err
		}
		existing.QuantiteStock += p.QuantiteStock
		logger.Info(ctx, "stock added to existing product",
			"product_id", existing.ID, "quantite", p.QuantiteStock)
		return existing, false, nil

	default:
		return nil, false, apperror.NewConflict("Produit existant. Utilisez on_existing=increment ou on_existing=replace").
			WithDetail("product_id", existing.ID)
	}
}

// GetByID returns a product of the caller's company.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentification requise")
	}
	return s.repo.GetByID(ctx, user.CompanyID, productID)
}

// Update modifies a product of the caller's company. Stock quantity is not
// touched here: only the ledger moves stock.
func (s *Service) Update(ctx context.Context, productID id.ID, apply func(*Product) error) (*Product, error) {
	user := appctx.GetUser(ctx)
	if user == nil || !user.Role.Can(role.ActionManageProducts) {
		return nil, apperror.NewForbidden("Accès refusé")
	}

	p, err := s.repo.GetByID(ctx, user.CompanyID, productID)
	if err != nil {
		return nil, err
	}

	quantite := p.QuantiteStock
	if err := apply(p); err != nil {
		return nil, err
	}
	p.QuantiteStock = quantite
	p.Touch()

	if err := p.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// Delete removes a product. A product already referenced by sorties is kept
// for traceability.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	user := appctx.GetUser(ctx)
	if user == nil || !user.Role.Can(role.ActionManageProducts) {
		return apperror.NewForbidden("Accès refusé")
	}

	p, err := s.repo.GetByID(ctx, user.CompanyID, productID)
	if err != nil {
		return err
	}

	used, err := s.repo.HasSorties(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("check product usage: %w", err)
	}
	if used {
		return apperror.NewConflict("Le produit ne peut plus être supprimé car il a des sorties de stock")
	}

	return s.repo.Delete(ctx, user.CompanyID, p.ID)
}

// List returns products of the caller's company.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentification requise")
	}
	return s.repo.List(ctx, user.CompanyID, filter)
}

// ListAlerts returns products whose stock is at or below the alert threshold.
func (s *Service) ListAlerts(ctx context.Context) ([]*Product, error) {
	user := appctx.GetUser(ctx)
	if user == nil || !user.Role.Can(role.ActionViewStock) {
		return nil, apperror.NewForbidden("Accès refusé")
	}
	return s.repo.ListLowStock(ctx, user.CompanyID)
}

// applyReplace overwrites the descriptive fields. The stock level stays:
// stock only moves through entrées and sorties.
func applyReplace(dst, src *Product) {
	dst.Nom = src.Nom
	dst.Description = src.Description
	dst.Reference = src.Reference
	dst.Prix = src.Prix
	dst.QuantiteMinAlerte = src.QuantiteMinAlerte
	dst.Agence = src.Agence
	dst.CategorieID = src.CategorieID
	dst.MarqueID = src.MarqueID
	dst.FournisseurID = src.FournisseurID
	dst.Touch()
}

// applyMerge keeps the existing stock level (the ledger credits it) and
// refreshes descriptive fields.
func applyMerge(dst, src *Product) {
	dst.Description = src.Description
	dst.Prix = src.Prix
	dst.QuantiteMinAlerte = src.QuantiteMinAlerte
	dst.Agence = src.Agence
	dst.CategorieID = src.CategorieID
	dst.MarqueID = src.MarqueID
	dst.FournisseurID = src.FournisseurID
	dst.Touch()
}

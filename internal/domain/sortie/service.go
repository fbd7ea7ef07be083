package sortie

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
	"gestock/internal/domain/demande"
	"gestock/internal/domain/sequence"
	"gestock/internal/domain/stock"
	"gestock/pkg/logger"
)

// Service is the exit confirmation engine. It also implements
// demande.SortieGenerator.
type Service struct {
	repo      Repository
	demandes  demande.Repository
	ledger    stock.Ledger
	seq       *sequence.Sequencer
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates the exit confirmation engine.
func NewService(
	repo Repository,
	demandes demande.Repository,
	ledger stock.Ledger,
	seq *sequence.Sequencer,
	txManager tx.Manager,
	recorder audit.Recorder,
) *Service {
	return &Service{
		repo:      repo,
		demandes:  demandes,
		ledger:    ledger,
		seq:       seq,
		txManager: txManager,
		audit:     recorder,
	}
}

var _ demande.SortieGenerator = (*Service)(nil)

// GenerateForDemande creates one pending sortie per line of a freshly
// validated demande, inside the caller's transaction. Each sortie receives
// its own order number and carries the requester's identity, not the
// validator's.
func (s *Service) GenerateForDemande(ctx context.Context, d *demande.Demande) error {
	now := time.Now().UTC()
	for _, ligne := range d.Lignes {
		numOrdre, err := s.seq.NextOrderNumber(ctx, d.EntrepriseID, now)
		if err != nil {
			return fmt.Errorf("order number for demande %s: %w", d.ID, err)
		}

		exit := New(numOrdre, ligne.ProductID, d.ID, d.UserID, ligne.QuantiteDemandee)
		exit.Motif = d.Motif
		exit.Destination = d.Agence
		if err := exit.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, exit); err != nil {
			return fmt.Errorf("create sortie: %w", err)
		}
	}
	return nil
}

// Confirm applies the direction's approval to a pending sortie: the product
// stock is debited and the sortie flips to CONFIRMEE, atomically. The debit
// is refused when the demande is no longer VALIDEE or when stock is short.
func (s *Service) Confirm(ctx context.Context, sortieID id.ID) (*SortieStock, error) {
	user, err := s.requireDecider(ctx, role.ActionConfirmSortie)
	if err != nil {
		return nil, err
	}

	var exit *SortieStock
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		exit, err = s.repo.GetPendingWithRefs(ctx, user.CompanyID, sortieID)
		if err != nil {
			return err
		}

		if exit.Product == nil || exit.Product.EntrepriseID != user.CompanyID {
			return apperror.NewForbidden("Accès interdit")
		}
		if exit.DemandeStatut != demande.StatutValidee {
			return apperror.NewConflict("Demande non validée")
		}
		if exit.Product.QuantiteStock < exit.QuantiteSortie {
			return apperror.NewInsufficientStock(
				exit.ProductID.String(), exit.QuantiteSortie, exit.Product.QuantiteStock)
		}

		if err := s.ledger.Debit(ctx, user.CompanyID, exit.ProductID, exit.QuantiteSortie); err != nil {
			return err
		}

		ok, err := s.repo.UpdateStatutDirection(ctx, user.CompanyID, exit.ID, StatutEnAttente, StatutConfirmee)
		if err != nil {
			return fmt.Errorf("update statut_direction: %w", err)
		}
		if !ok {
			return apperror.NewNotFoundMsg("Sortie introuvable ou déjà traitée")
		}

		exit.StatutDirection = StatutConfirmee
		exit.Product.QuantiteStock -= exit.QuantiteSortie
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, exit, audit.ActionSortieConfirmee, user, map[string]any{
		"product_id": exit.ProductID,
		"quantite":   exit.QuantiteSortie,
	})
	logger.Info(ctx, "sortie confirmed",
		"sortie_id", exit.ID, "num_ordre", exit.NumOrdre,
		"product_id", exit.ProductID, "quantite", exit.QuantiteSortie)
	return exit, nil
}

// Reject applies the direction's refusal to a pending sortie. Stock is
// untouched.
func (s *Service) Reject(ctx context.Context, sortieID id.ID) (*SortieStock, error) {
	user, err := s.requireDecider(ctx, role.ActionRejectSortie)
	if err != nil {
		return nil, err
	}

	var exit *SortieStock
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		exit, err = s.repo.GetPendingWithRefs(ctx, user.CompanyID, sortieID)
		if err != nil {
			return err
		}

		ok, err := s.repo.UpdateStatutDirection(ctx, user.CompanyID, exit.ID, StatutEnAttente, StatutRefusee)
		if err != nil {
			return fmt.Errorf("update statut_direction: %w", err)
		}
		if !ok {
			return apperror.NewNotFoundMsg("Sortie introuvable ou déjà traitée")
		}

		exit.StatutDirection = StatutRefusee
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, exit, audit.ActionSortieRefusee, user, nil)
	logger.Info(ctx, "sortie rejected", "sortie_id", exit.ID, "num_ordre", exit.NumOrdre)
	return exit, nil
}

// ListByDemande returns the sorties of one demande, visible to the demande's
// owner and to roles that see company demandes.
func (s *Service) ListByDemande(ctx context.Context, demandeID id.ID) ([]*SortieStock, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentification requise")
	}

	d, err := s.demandes.GetByID(ctx, user.CompanyID, demandeID)
	if err != nil {
		return nil, err
	}
	if d.UserID != user.UserID && !user.Role.Can(role.ActionListCompanyDemandes) {
		return nil, apperror.NewForbidden("Accès interdit")
	}

	return s.repo.ListByDemande(ctx, user.CompanyID, demandeID)
}

// ListByProduct returns the sorties of one company product.
func (s *Service) ListByProduct(ctx context.Context, productID id.ID) ([]*SortieStock, error) {
	user, err := s.requireViewer(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByProduct(ctx, user.CompanyID, productID)
}

// List returns all sorties of the caller's company.
func (s *Service) List(ctx context.Context) ([]*SortieStock, error) {
	user, err := s.requireViewer(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByEntreprise(ctx, user.CompanyID)
}

// ListPending returns the company's sorties awaiting a decision.
func (s *Service) ListPending(ctx context.Context) ([]*SortieStock, error) {
	user, err := s.requireViewer(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPending(ctx, user.CompanyID)
}

func (s *Service) requireDecider(ctx context.Context, action role.Action) (*appctx.UserContext, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentification requise")
	}
	if !user.Role.Can(action) {
		return nil, apperror.NewForbidden("Accès interdit")
	}
	return user, nil
}

func (s *Service) requireViewer(ctx context.Context) (*appctx.UserContext, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentification requise")
	}
	if !user.Role.Can(role.ActionViewStock) {
		return nil, apperror.NewForbidden("Accès interdit")
	}
	return user, nil
}

func (s *Service) record(ctx context.Context, exit *SortieStock, action audit.Action, user *appctx.UserContext, details map[string]any) {
	err := s.audit.Record(ctx, audit.Entry{
		EntityType:   "sortie_stock",
		EntityID:     exit.ID,
		Action:       action,
		UserID:       user.UserID,
		EntrepriseID: user.CompanyID,
		Details:      details,
	})
	if err != nil {
		logger.Warn(ctx, "audit record failed", "action", action, "error", err)
	}
}

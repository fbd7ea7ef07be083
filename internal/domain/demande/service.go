package demande

import (
	"context"
	"fmt"

	"gestock/internal/core/apperror"
	"gestock/internal/core/appctx"
	"gestock/internal/core/id"
	"gestock/internal/core/role"
	"gestock/internal/core/tx"
	"gestock/internal/domain/audit"
	"gestock/internal/domain/product"
	"gestock/pkg/logger"
)

// LigneInput is one requested line at creation time.
type LigneInput struct {
	ProductID        id.ID
	QuantiteDemandee int
}

// SortieGenerator creates the pending sorties for a validated demande,
// one per line, inside the caller's transaction.
// Implemented by the sortie service; declared here so demande does not
// depend on the sortie package.
type SortieGenerator interface {
	GenerateForDemande(ctx context.Context, d *Demande) error
}

// Service is the request workflow engine.
type Service struct {
	repo        Repository
	products    product.Repository
	sorties     SortieGenerator
	txManager   tx.Manager
	audit       audit.Recorder
}

// NewService creates the workflow engine.
func NewService(
	repo Repository,
	products product.Repository,
	sorties SortieGenerator,
	txManager tx.Manager,
	recorder audit.Recorder,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		sorties:   sorties,
		txManager: txManager,
		audit:     recorder,
	}
}

// Create creates a pending demande with its lines for the context user.
// Every referenced product must exist within the requester's company;
// violations surface as validation failures, not workflow failures.
func (s *Service) Create(ctx context.Context, motif, agence *string, lignes []LigneInput) (*Demande, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentification requise")
	}
	if !user.Role.Can(role.ActionCreateDemande) {
		return nil, apperror.NewForbidden("Accès interdit")
	}

	d := New(user.UserID, user.CompanyID, motif, agence)
	for _, in := range lignes {
		d.AddLigne(in.ProductID, in.QuantiteDemandee)
	}
	if err := d.Validate(ctx); err != nil {
		return nil, err
	}

	for i, ligne := range d.Lignes {
		p, err := s.products.GetByID(ctx, user.CompanyID, ligne.ProductID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.NewValidation("produit inconnu").
					WithDetail("field", "lignes").
					WithDetail("ligne", i+1).
					WithDetail("product_id", ligne.ProductID)
			}
			return nil, fmt.Errorf("check product %s: %w", ligne.ProductID, err)
		}
		d.Lignes[i].Product = p
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, d); err != nil {
			return fmt.Errorf("create demande: %w", err)
		}
		if err := s.repo.SaveLignes(ctx, d.ID, d.Lignes); err != nil {
			return fmt.Errorf("save lignes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, d, audit.ActionDemandeCreated, map[string]any{"lignes": len(d.Lignes)})
	logger.Info(ctx, "demande created", "demande_id", d.ID, "lignes", len(d.Lignes))
	return d, nil
}

// Validate transitions a pending demande to VALIDEE and generates one
// pending sortie per line. The status flip and all sortie creations commit
// as one unit.
func (s *Service) Validate(ctx context.Context, demandeID id.ID) (*Demande, error) {
	user, err := s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	var d *Demande
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		d, err = s.repo.GetPendingForUpdate(ctx, user.CompanyID, demandeID)
		if err != nil {
			return err
		}

		ok, err := s.repo.UpdateStatut(ctx, user.CompanyID, d.ID, StatutEnAttente, StatutValidee)
		if err != nil {
			return fmt.Errorf("update statut: %w", err)
		}
		if !ok {
			return apperror.NewNotFoundMsg("Demande introuvable ou déjà traitée")
		}
		d.Statut = StatutValidee

		return s.sorties.GenerateForDemande(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, d, audit.ActionDemandeValidee, map[string]any{"sorties": len(d.Lignes)})
	logger.Info(ctx, "demande validated, sorties created",
		"demande_id", d.ID, "sorties", len(d.Lignes))
	return d, nil
}

// Reject transitions a pending demande to REFUSEE. No sortie is created.
func (s *Service) Reject(ctx context.Context, demandeID id.ID) (*Demande, error) {
	user, err := s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(ctx, user.CompanyID, demandeID)
	if err != nil {
		return nil, err
	}
	if d.Statut.IsTerminal() {
		return nil, apperror.NewConflict("Une demande validée ou refusée ne peut plus être rejetée")
	}

	ok, err := s.repo.UpdateStatut(ctx, user.CompanyID, d.ID, StatutEnAttente, StatutRefusee)
	if err != nil {
		return nil, fmt.Errorf("update statut: %w", err)
	}
	if !ok {
		return nil, apperror.NewConflict("Une demande validée ou refusée ne peut plus être rejetée")
	}
	d.Statut = StatutRefusee

	s.record(ctx, d, audit.ActionDemandeRefusee, nil)
	logger.Info(ctx, "demande rejected", "demande_id", d.ID)
	return d, nil
}

// GetByID returns a demande visible to the caller: the owner sees their own,
// an admin sees any demande of their company. A demande of another company
// is not found; a company demande owned by someone else is forbidden for
// non-admins.
func (s *Service) GetByID(ctx context.Context, demandeID id.ID) (*Demande, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentification requise")
	}

	d, err := s.repo.GetByID(ctx, user.CompanyID, demandeID)
	if err != nil {
		return nil, err
	}

	if d.UserID != user.UserID && !user.Role.Can(role.ActionListCompanyDemandes) {
		return nil, apperror.NewForbidden("Accès interdit")
	}
	return d, nil
}

// ListMine returns the caller's demandes, most recent first.
func (s *Service) ListMine(ctx context.Context) ([]*Demande, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentification requise")
	}
	return s.repo.ListByUser(ctx, user.CompanyID, user.UserID)
}

// ListCompany returns all demandes of the caller's company. Admin only.
func (s *Service) ListCompany(ctx context.Context) ([]*Demande, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentification requise")
	}
	if !user.Role.Can(role.ActionListCompanyDemandes) {
		return nil, apperror.NewForbidden("Accès interdit")
	}
	return s.repo.ListByEntreprise(ctx, user.CompanyID)
}

func (s *Service) requireAdmin(ctx context.Context) (*appctx.UserContext, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentification requise")
	}
	if !user.Role.Can(role.ActionValidateDemande) {
		return nil, apperror.NewForbidden("Accès interdit")
	}
	return user, nil
}

// record writes an audit entry, best-effort.
func (s *Service) record(ctx context.Context, d *Demande, action audit.Action, details map[string]any) {
	entry := audit.Entry{
		EntityType:   "demande",
		EntityID:     d.ID,
		Action:       action,
		EntrepriseID: d.EntrepriseID,
		Details:      details,
	}
	if user := appctx.GetUser(ctx); user != nil {
		entry.UserID = user.UserID
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		logger.Warn(ctx, "audit record failed", "action", action, "error", err)
	}
}

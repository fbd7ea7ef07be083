package catalogs

import (
	"context"

	"gestock/internal/core/apperror"
	"gestock/internal/core/appctx"
	"gestock/internal/core/id"
	"gestock/internal/core/role"
	"gestock/pkg/logger"
)

// Repository defines company-scoped persistence for one catalog entity.
// Lookups filter by entreprise; an item of another company is not found.
type Repository[T Item] interface {
	Create(ctx context.Context, item T) error
	GetByID(ctx context.Context, entrepriseID, itemID id.ID) (T, error)
	Update(ctx context.Context, item T) error

	// Delete fails with a conflict when products still reference the item.
	Delete(ctx context.Context, entrepriseID, itemID id.ID) error

	// List returns the company's items ordered by nom, optionally filtered
	// by a case-insensitive substring of nom.
	List(ctx context.Context, entrepriseID id.ID, search string) ([]T, error)
}

// Service provides CRUD over one catalog entity. Writes require the catalog
// management capability; reads only authentication.
type Service[T Item] struct {
	name string
	repo Repository[T]
}

// NewService creates a catalog service. name appears in log lines and
// not-found messages ("Catégorie introuvable").
func NewService[T Item](name string, repo Repository[T]) *Service[T] {
	return &Service[T]{name: name, repo: repo}
}

func (s *Service[T]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	if _, err := s.requireManager(ctx); err != nil {
		return zero, err
	}
	if err := item.Validate(ctx); err != nil {
		return zero, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return zero, err
	}
	logger.Info(ctx, "catalog item created", "catalog", s.name, "item_id", item.ItemID())
	return item, nil
}

func (s *Service[T]) GetByID(ctx context.Context, itemID id.ID) (T, error) {
	var zero T
	user := appctx.GetUser(ctx)
	if user == nil {
		return zero, apperror.NewUnauthorized("authentification requise")
	}
	return s.repo.GetByID(ctx, user.CompanyID, itemID)
}

// Update loads the item, applies the mutation and persists it.
func (s *Service[T]) Update(ctx context.Context, itemID id.ID, apply func(T)) (T, error) {
	var zero T
	user, err := s.requireManager(ctx)
	if err != nil {
		return zero, err
	}

	item, err := s.repo.GetByID(ctx, user.CompanyID, itemID)
	if err != nil {
		return zero, err
	}

	apply(item)
	if err := item.Validate(ctx); err != nil {
		return zero, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return zero, err
	}
	logger.Info(ctx, "catalog item updated", "catalog", s.name, "item_id", itemID)
	return item, nil
}

func (s *Service[T]) Delete(ctx context.Context, itemID id.ID) error {
	user, err := s.requireManager(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user.CompanyID, itemID); err != nil {
		return err
	}
	logger.Info(ctx, "catalog item deleted", "catalog", s.name, "item_id", itemID)
	return nil
}

func (s *Service[T]) List(ctx context.Context, search string) ([]T, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentification requise")
	}
	return s.repo.List(ctx, user.CompanyID, search)
}

func (s *Service[T]) requireManager(ctx context.Context) (*appctx.UserContext, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentification requise")
	}
	if !user.Role.Can(role.ActionManageCatalogs) {
		return nil, apperror.NewForbidden("Accès interdit")
	}
	return user, nil
}

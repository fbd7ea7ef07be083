package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestock/internal/core/apperror"
	"gestock/internal/core/appctx"
	"gestock/internal/core/id"
	"gestock/internal/core/role"
	"gestock/internal/domain/audit"
	"gestock/internal/domain/product"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	entrees map[id.ID]*EntreeStock
}

func (r *fakeRepo) Create(_ context.Context, e *EntreeStock) error {
	cp := *e
	r.entrees[e.ID] = &cp
	return nil
}

func (r *fakeRepo) ListByProduct(_ context.Context, _, productID id.ID) ([]*EntreeStock, error) {
	var out []*EntreeStock
	for _, e := range r.entrees {
		if e.ProductID == productID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByEntreprise(_ context.Context, _ id.ID) ([]*EntreeStock, error) {
	var out []*EntreeStock
	for _, e := range r.entrees {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

type fakeProductRepo struct {
	products map[id.ID]*product.Product
}

func (r *fakeProductRepo) Create(context.Context, *product.Product) error { return nil }
func (r *fakeProductRepo) GetByID(_ context.Context, entrepriseID, productID id.ID) (*product.Product, error) {
	p, ok := r.products[productID]
	if !ok || p.EntrepriseID != entrepriseID {
		return nil, apperror.NewNotFound("Produit")
	}
	cp := *p
	return &cp, nil
}
func (r *fakeProductRepo) Update(context.Context, *product.Product) error { return nil }
func (r *fakeProductRepo) Delete(context.Context, id.ID, id.ID) error     { return nil }
func (r *fakeProductRepo) FindExisting(context.Context, id.ID, *string, *string) (*product.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) List(context.Context, id.ID, product.ListFilter) ([]*product.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) ListLowStock(context.Context, id.ID) ([]*product.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) HasSorties(context.Context, id.ID) (bool, error) { return false, nil }

type fakeLedger struct {
	products *fakeProductRepo
}

func (l *fakeLedger) Credit(_ context.Context, _, productID id.ID, qty int) error {
	p, ok := l.products.products[productID]
	if !ok {
		return apperror.NewNotFound("Produit")
	}
	p.QuantiteStock += qty
	return nil
}

func (l *fakeLedger) Debit(_ context.Context, _, productID id.ID, qty int) error {
	p, ok := l.products.products[productID]
	if !ok {
		return apperror.NewNotFound("Produit")
	}
	if p.QuantiteStock < qty {
		return apperror.NewInsufficientStock(productID.String(), qty, p.QuantiteStock)
	}
	p.QuantiteStock -= qty
	return nil
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	products *fakeProductRepo
	company  id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := &fakeRepo{entrees: make(map[id.ID]*EntreeStock)}
	products := &fakeProductRepo{products: make(map[id.ID]*product.Product)}
	svc := NewService(repo, products, &fakeLedger{products: products}, fakeTxManager{}, audit.NopRecorder{})
	return &fixture{svc: svc, repo: repo, products: products, company: id.New()}
}

func (f *fixture) addProduct(stock int) *product.Product {
	p := product.New(f.company, id.New(), "Cartouche d'encre")
	p.QuantiteStock = stock
	f.products.products[p.ID] = p
	return p
}

func (f *fixture) ctxAs(r role.Role) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:    id.New(),
		CompanyID: f.company,
		Email:     "user@example.com",
		Role:      r,
	})
}

func TestService_CreateEntree(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(10)

	numOrdre := "BL-2025-007"
	fournisseur := "Sotec SARL"
	ctx := f.ctxAs(role.Admin)
	entree, err := f.svc.CreateEntree(ctx, p.ID, EntreeInput{
		Quantite:    4,
		NumOrdre:    &numOrdre,
		Fournisseur: &fournisseur,
	})
	require.NoError(t, err)

	assert.Equal(t, p.ID, entree.ProductID)
	assert.Equal(t, appctx.GetUser(ctx).UserID, entree.UserID)
	assert.Equal(t, 4, entree.QuantiteEntree)
	assert.False(t, entree.DateReception.IsZero())

	assert.Equal(t, 14, f.products.products[p.ID].QuantiteStock, "ledger credited")
	assert.Contains(t, f.repo.entrees, entree.ID)
}

func TestService_CreateEntree_ExplicitDate(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(0)

	reception := time.Date(2025, 8, 17, 9, 30, 0, 0, time.UTC)
	entree, err := f.svc.CreateEntree(f.ctxAs(role.Admin), p.ID, EntreeInput{
		Quantite:      2,
		DateReception: reception,
	})
	require.NoError(t, err)
	assert.Equal(t, reception, entree.DateReception)
}

func TestService_CreateEntree_RoleGate(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(10)

	for _, r := range []role.Role{role.Direction, role.Controle, role.Agence, role.Agent} {
		_, err := f.svc.CreateEntree(f.ctxAs(r), p.ID, EntreeInput{Quantite: 1})
		require.Error(t, err, "role %s must not record entrées", r)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeForbidden, appErr.Code)
	}
	assert.Equal(t, 10, f.products.products[p.ID].QuantiteStock)
}

func TestService_CreateEntree_UnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateEntree(f.ctxAs(role.Admin), id.New(), EntreeInput{Quantite: 1})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_CreateEntree_OtherCompanyProduct(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(10)

	otherCtx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: id.New(), CompanyID: id.New(), Role: role.Admin,
	})
	_, err := f.svc.CreateEntree(otherCtx, p.ID, EntreeInput{Quantite: 1})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, 10, f.products.products[p.ID].QuantiteStock)
}

func TestService_CreateEntree_InvalidQuantity(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(10)

	_, err := f.svc.CreateEntree(f.ctxAs(role.Admin), p.ID, EntreeInput{Quantite: 0})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, f.repo.entrees)
}

func TestService_RecordForProduct(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(10)
	fournisseurID := id.New()
	p.FournisseurID = &fournisseurID

	numOrdre := "BL-2025-008"
	err := f.svc.RecordForProduct(f.ctxAs(role.Admin), p, 6, &numOrdre, time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, 16, f.products.products[p.ID].QuantiteStock)
	require.Len(t, f.repo.entrees, 1)
	for _, e := range f.repo.entrees {
		assert.Equal(t, p.ID, e.ProductID)
		assert.Equal(t, 6, e.QuantiteEntree)
		require.NotNil(t, e.Fournisseur)
		assert.Equal(t, fournisseurID.String(), *e.Fournisseur)
	}
}

func TestService_ListEntreesByProduct(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(0)
	other := f.addProduct(0)

	_, err := f.svc.CreateEntree(f.ctxAs(role.Admin), p.ID, EntreeInput{Quantite: 3})
	require.NoError(t, err)
	_, err = f.svc.CreateEntree(f.ctxAs(role.Admin), other.ID, EntreeInput{Quantite: 1})
	require.NoError(t, err)

	entrees, err := f.svc.ListEntreesByProduct(f.ctxAs(role.Direction), p.ID)
	require.NoError(t, err)
	require.Len(t, entrees, 1)
	assert.Equal(t, p.ID, entrees[0].ProductID)

	_, err = f.svc.ListEntreesByProduct(f.ctxAs(role.Agent), p.ID)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

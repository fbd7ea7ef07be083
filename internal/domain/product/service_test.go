package product

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestock/internal/core/apperror"
	"gestock/internal/core/appctx"
	"gestock/internal/core/id"
	"gestock/internal/core/role"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	products map[id.ID]*Product
	sorties  map[id.ID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products: make(map[id.ID]*Product),
		sorties:  make(map[id.ID]bool),
	}
}

func (r *fakeRepo) Create(_ context.Context, p *Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, entrepriseID, productID id.ID) (*Product, error) {
	p, ok := r.products[productID]
	if !ok || p.EntrepriseID != entrepriseID {
		return nil, apperror.NewNotFound("Produit")
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) Update(_ context.Context, p *Product) error {
	stored, ok := r.products[p.ID]
	if !ok {
		return apperror.NewNotFound("Produit")
	}
	quantite := stored.QuantiteStock
	cp := *p
	cp.QuantiteStock = quantite
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, entrepriseID, productID id.ID) error {
	p, ok := r.products[productID]
	if !ok || p.EntrepriseID != entrepriseID {
		return apperror.NewNotFound("Produit")
	}
	delete(r.products, productID)
	return nil
}

func (r *fakeRepo) FindExisting(_ context.Context, entrepriseID id.ID, reference, nom *string) (*Product, error) {
	for _, p := range r.products {
		if p.EntrepriseID != entrepriseID {
			continue
		}
		if reference != nil && p.Reference != nil && *p.Reference == *reference {
			cp := *p
			return &cp, nil
		}
		if nom != nil && p.Nom == *nom {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) List(_ context.Context, entrepriseID id.ID, _ ListFilter) ([]*Product, error) {
	var out []*Product
	for _, p := range r.products {
		if p.EntrepriseID == entrepriseID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListLowStock(_ context.Context, entrepriseID id.ID) ([]*Product, error) {
	var out []*Product
	for _, p := range r.products {
		if p.EntrepriseID == entrepriseID && p.IsLowStock() {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRepo) HasSorties(_ context.Context, productID id.ID) (bool, error) {
	return r.sorties[productID], nil
}

// fakeRecorder mimics the stock service: it credits the repo's stored stock
// and records the entrée parameters for assertions.
type fakeRecorder struct {
	repo     *fakeRepo
	recorded []recordedEntree
}

type recordedEntree struct {
	productID id.ID
	quantite  int
	numOrdre  *string
}

func (f *fakeRecorder) RecordForProduct(_ context.Context, p *Product, quantite int, numOrdre *string, _ time.Time) error {
	f.recorded = append(f.recorded, recordedEntree{productID: p.ID, quantite: quantite, numOrdre: numOrdre})
	f.repo.products[p.ID].QuantiteStock += quantite
	return nil
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	recorder *fakeRecorder
	company  id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	recorder := &fakeRecorder{repo: repo}
	return &fixture{
		svc:      NewService(repo, recorder, fakeTxManager{}),
		repo:     repo,
		recorder: recorder,
		company:  id.New(),
	}
}

func (f *fixture) ctxAs(r role.Role) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:    id.New(),
		CompanyID: f.company,
		Email:     "user@example.com",
		Role:      r,
	})
}

func (f *fixture) existingProduct(nom, reference string, stock int) *Product {
	p := New(f.company, id.New(), nom)
	ref := reference
	p.Reference = &ref
	p.QuantiteStock = stock
	f.repo.products[p.ID] = p
	return p
}

func newInput(nom string, reference string, stock int) *Product {
	p := New(id.Nil(), id.Nil(), nom)
	if reference != "" {
		p.Reference = &reference
	}
	p.QuantiteStock = stock
	p.Prix = decimal.NewFromInt(1500)
	return p
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)

	got, created, err := f.svc.Create(f.ctxAs(role.Admin), newInput("Clavier", "CL-01", 5), ModeReject, nil)
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, f.company, got.EntrepriseID)
	assert.Equal(t, 5, got.QuantiteStock)
	assert.Contains(t, f.repo.products, got.ID)
}

func TestService_Create_RoleGate(t *testing.T) {
	f := newFixture(t)

	for _, r := range []role.Role{role.Direction, role.Controle, role.Agence, role.Agent} {
		_, _, err := f.svc.Create(f.ctxAs(r), newInput("Clavier", "CL-01", 5), ModeReject, nil)
		require.Error(t, err, "role %s must not create products", r)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeForbidden, appErr.Code)
	}
	assert.Empty(t, f.repo.products)
}

func TestService_Create_ExistingReject(t *testing.T) {
	f := newFixture(t)
	existing := f.existingProduct("Clavier", "CL-01", 10)

	_, _, err := f.svc.Create(f.ctxAs(role.Admin), newInput("Clavier", "CL-01", 5), ModeReject, nil)
	require.Error(t, err)

	assert.True(t, apperror.IsConflict(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, existing.ID, appErr.Details["product_id"])
	assert.Equal(t, 10, f.repo.products[existing.ID].QuantiteStock)
}

func TestService_Create_ExistingIncrement(t *testing.T) {
	f := newFixture(t)
	existing := f.existingProduct("Clavier", "CL-01", 10)

	numOrdre := "BL-2025-042"
	got, created, err := f.svc.Create(f.ctxAs(role.Admin), newInput("Clavier", "CL-01", 5), ModeIncrement,
		&Reception{NumOrdre: &numOrdre})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, existing.ID, got.ID)
	assert.Equal(t, 15, got.QuantiteStock)
	assert.Equal(t, 15, f.repo.products[existing.ID].QuantiteStock)

	require.Len(t, f.recorder.recorded, 1)
	assert.Equal(t, existing.ID, f.recorder.recorded[0].productID)
	assert.Equal(t, 5, f.recorder.recorded[0].quantite)
	assert.Equal(t, &numOrdre, f.recorder.recorded[0].numOrdre)
}

func TestService_Create_IncrementRequiresQuantity(t *testing.T) {
	f := newFixture(t)
	f.existingProduct("Clavier", "CL-01", 10)

	_, _, err := f.svc.Create(f.ctxAs(role.Admin), newInput("Clavier", "CL-01", 0), ModeIncrement, nil)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, f.recorder.recorded)
}

func TestService_Create_ExistingReplace(t *testing.T) {
	f := newFixture(t)
	existing := f.existingProduct("Clavier", "CL-01", 10)

	input := newInput("Clavier mécanique", "CL-01", 3)
	input.Prix = decimal.NewFromInt(25000)

	got, created, err := f.svc.Create(f.ctxAs(role.Admin), input, ModeReplace, nil)
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, existing.ID, got.ID)
	assert.Equal(t, "Clavier mécanique", got.Nom)
	assert.True(t, got.Prix.Equal(decimal.NewFromInt(25000)))
	assert.Empty(t, f.recorder.recorded, "replace never records an entrée")
}

func TestService_Create_ExistingReplace_PreservesStock(t *testing.T) {
	f := newFixture(t)
	existing := f.existingProduct("Clavier", "CL-01", 10)

	input := newInput("Clavier mécanique", "CL-01", 3)

	got, _, err := f.svc.Create(f.ctxAs(role.Admin), input, ModeReplace, nil)
	require.NoError(t, err)

	assert.Equal(t, 10, got.QuantiteStock, "stock moves only through the ledger")
	assert.Equal(t, 10, f.repo.products[existing.ID].QuantiteStock)
	assert.Equal(t, got.QuantiteStock, f.repo.products[existing.ID].QuantiteStock,
		"response must report the persisted stock")
}

func TestService_Update_PreservesStock(t *testing.T) {
	f := newFixture(t)
	existing := f.existingProduct("Clavier", "CL-01", 10)

	got, err := f.svc.Update(f.ctxAs(role.Admin), existing.ID, func(p *Product) error {
		p.Nom = "Clavier sans fil"
		p.QuantiteStock = 999
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "Clavier sans fil", got.Nom)
	assert.Equal(t, 10, got.QuantiteStock, "stock moves only through the ledger")
	assert.Equal(t, 10, f.repo.products[existing.ID].QuantiteStock)
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	existing := f.existingProduct("Clavier", "CL-01", 10)

	require.NoError(t, f.svc.Delete(f.ctxAs(role.Admin), existing.ID))
	assert.NotContains(t, f.repo.products, existing.ID)
}

func TestService_Delete_WithSorties(t *testing.T) {
	f := newFixture(t)
	existing := f.existingProduct("Clavier", "CL-01", 10)
	f.repo.sorties[existing.ID] = true

	err := f.svc.Delete(f.ctxAs(role.Admin), existing.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Contains(t, f.repo.products, existing.ID, "referenced products are kept")
}

func TestService_Delete_OtherCompany(t *testing.T) {
	f := newFixture(t)
	existing := f.existingProduct("Clavier", "CL-01", 10)

	otherCtx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: id.New(), CompanyID: id.New(), Role: role.Admin,
	})
	err := f.svc.Delete(otherCtx, existing.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Contains(t, f.repo.products, existing.ID)
}

func TestService_ListAlerts(t *testing.T) {
	f := newFixture(t)

	low := f.existingProduct("Stylo", "ST-01", 2)
	low.QuantiteMinAlerte = 5
	ok := f.existingProduct("Cahier", "CA-01", 50)
	ok.QuantiteMinAlerte = 5

	alerts, err := f.svc.ListAlerts(f.ctxAs(role.Direction))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, low.ID, alerts[0].ID)

	_, err = f.svc.ListAlerts(f.ctxAs(role.Agent))
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

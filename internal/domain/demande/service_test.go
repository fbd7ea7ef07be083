package demande

import (
	"context"
	"sync"
	"testing"

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
	mu       sync.Mutex
	demandes map[id.ID]*Demande
	lignes   map[id.ID][]Ligne
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		demandes: make(map[id.ID]*Demande),
		lignes:   make(map[id.ID][]Ligne),
	}
}

func (r *fakeRepo) Create(_ context.Context, d *Demande) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.demandes[d.ID] = &cp
	return nil
}

func (r *fakeRepo) SaveLignes(_ context.Context, demandeID id.ID, lignes []Ligne) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lignes[demandeID] = append([]Ligne(nil), lignes...)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, entrepriseID, demandeID id.ID) (*Demande, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.demandes[demandeID]
	if !ok || d.EntrepriseID != entrepriseID {
		return nil, apperror.NewNotFound("Demande")
	}
	cp := *d
	cp.Lignes = append([]Ligne(nil), r.lignes[demandeID]...)
	return &cp, nil
}

func (r *fakeRepo) GetPendingForUpdate(ctx context.Context, entrepriseID, demandeID id.ID) (*Demande, error) {
	d, err := r.GetByID(ctx, entrepriseID, demandeID)
	if err != nil || d.Statut != StatutEnAttente {
		return nil, apperror.NewNotFoundMsg("Demande introuvable ou déjà traitée")
	}
	return d, nil
}

func (r *fakeRepo) UpdateStatut(_ context.Context, entrepriseID, demandeID id.ID, from, to Statut) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.demandes[demandeID]
	if !ok || d.EntrepriseID != entrepriseID || d.Statut != from {
		return false, nil
	}
	d.Statut = to
	return true, nil
}

func (r *fakeRepo) ListByUser(_ context.Context, entrepriseID, userID id.ID) ([]*Demande, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Demande
	for _, d := range r.demandes {
		if d.EntrepriseID == entrepriseID && d.UserID == userID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByEntreprise(_ context.Context, entrepriseID id.ID) ([]*Demande, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Demande
	for _, d := range r.demandes {
		if d.EntrepriseID == entrepriseID {
			cp := *d
			out = append(out, &cp)
		}
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
	return p, nil
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

// fakeGenerator records which demandes had sorties generated.
type fakeGenerator struct {
	generated []*Demande
	err       error
}

func (g *fakeGenerator) GenerateForDemande(_ context.Context, d *Demande) error {
	if g.err != nil {
		return g.err
	}
	g.generated = append(g.generated, d)
	return nil
}

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	products  *fakeProductRepo
	generator *fakeGenerator
	company   id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	products := &fakeProductRepo{products: make(map[id.ID]*product.Product)}
	generator := &fakeGenerator{}
	svc := NewService(repo, products, generator, fakeTxManager{}, audit.NopRecorder{})
	return &fixture{
		svc:       svc,
		repo:      repo,
		products:  products,
		generator: generator,
		company:   id.New(),
	}
}

func (f *fixture) addProduct() *product.Product {
	p := product.New(f.company, id.New(), "Agrafeuse")
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

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	p1 := f.addProduct()
	p2 := f.addProduct()

	motif := "dotation nouvelle recrue"
	ctx := f.ctxAs(role.Agent)
	d, err := f.svc.Create(ctx, &motif, nil, []LigneInput{
		{ProductID: p1.ID, QuantiteDemandee: 2},
		{ProductID: p2.ID, QuantiteDemandee: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, StatutEnAttente, d.Statut)
	assert.Equal(t, appctx.GetUser(ctx).UserID, d.UserID)
	assert.Equal(t, f.company, d.EntrepriseID)
	require.Len(t, d.Lignes, 2)
	assert.Equal(t, p1.ID, d.Lignes[0].ProductID)
	require.NotNil(t, d.Lignes[0].Product)

	stored, err := f.repo.GetByID(context.Background(), f.company, d.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Lignes, 2)
}

func TestService_Create_UnknownProduct(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct()

	_, err := f.svc.Create(f.ctxAs(role.Agent), nil, nil, []LigneInput{
		{ProductID: p.ID, QuantiteDemandee: 1},
		{ProductID: id.New(), QuantiteDemandee: 3},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, 2, appErr.Details["ligne"])
	assert.Empty(t, f.repo.demandes, "nothing persisted")
}

func TestService_Create_NoLignes(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctxAs(role.Agent), nil, nil, nil)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestService_Validate(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct()

	d, err := f.svc.Create(f.ctxAs(role.Agent), nil, nil, []LigneInput{
		{ProductID: p.ID, QuantiteDemandee: 2},
	})
	require.NoError(t, err)

	got, err := f.svc.Validate(f.ctxAs(role.Admin), d.ID)
	require.NoError(t, err)

	assert.Equal(t, StatutValidee, got.Statut)
	require.Len(t, f.generator.generated, 1)
	assert.Equal(t, d.ID, f.generator.generated[0].ID)
	assert.Equal(t, StatutValidee, f.repo.demandes[d.ID].Statut)
}

func TestService_Validate_AlreadyProcessed(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct()

	d, err := f.svc.Create(f.ctxAs(role.Agent), nil, nil, []LigneInput{
		{ProductID: p.ID, QuantiteDemandee: 2},
	})
	require.NoError(t, err)

	_, err = f.svc.Validate(f.ctxAs(role.Admin), d.ID)
	require.NoError(t, err)

	_, err = f.svc.Validate(f.ctxAs(role.Admin), d.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Demande introuvable ou déjà traitée", appErr.Message)
	assert.Len(t, f.generator.generated, 1, "sorties generated exactly once")
}

func TestService_Validate_RoleGate(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct()

	d, err := f.svc.Create(f.ctxAs(role.Agent), nil, nil, []LigneInput{
		{ProductID: p.ID, QuantiteDemandee: 1},
	})
	require.NoError(t, err)

	for _, r := range []role.Role{role.Direction, role.Controle, role.Agence, role.Agent} {
		_, err := f.svc.Validate(f.ctxAs(r), d.ID)
		require.Error(t, err, "role %s must not validate", r)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeForbidden, appErr.Code)
	}
	assert.Empty(t, f.generator.generated)
}

func TestService_Reject(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct()

	d, err := f.svc.Create(f.ctxAs(role.Agent), nil, nil, []LigneInput{
		{ProductID: p.ID, QuantiteDemandee: 1},
	})
	require.NoError(t, err)

	got, err := f.svc.Reject(f.ctxAs(role.Admin), d.ID)
	require.NoError(t, err)
	assert.Equal(t, StatutRefusee, got.Statut)
	assert.Empty(t, f.generator.generated, "rejection never generates sorties")

	_, err = f.svc.Reject(f.ctxAs(role.Admin), d.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestService_Reject_AfterValidation(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct()

	d, err := f.svc.Create(f.ctxAs(role.Agent), nil, nil, []LigneInput{
		{ProductID: p.ID, QuantiteDemandee: 1},
	})
	require.NoError(t, err)

	_, err = f.svc.Validate(f.ctxAs(role.Admin), d.ID)
	require.NoError(t, err)

	_, err = f.svc.Reject(f.ctxAs(role.Admin), d.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Equal(t, StatutValidee, f.repo.demandes[d.ID].Statut)
}

func TestService_GetByID_Visibility(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct()

	ownerCtx := f.ctxAs(role.Agent)
	d, err := f.svc.Create(ownerCtx, nil, nil, []LigneInput{
		{ProductID: p.ID, QuantiteDemandee: 1},
	})
	require.NoError(t, err)

	// Owner sees their own demande.
	got, err := f.svc.GetByID(ownerCtx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	// Another agent of the same company does not.
	_, err = f.svc.GetByID(f.ctxAs(role.Agent), d.ID)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	// An admin does.
	_, err = f.svc.GetByID(f.ctxAs(role.Admin), d.ID)
	require.NoError(t, err)

	// Another company sees nothing at all.
	otherCtx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: id.New(), CompanyID: id.New(), Role: role.Admin,
	})
	_, err = f.svc.GetByID(otherCtx, d.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_ListCompany_AdminOnly(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct()

	_, err := f.svc.Create(f.ctxAs(role.Agent), nil, nil, []LigneInput{
		{ProductID: p.ID, QuantiteDemandee: 1},
	})
	require.NoError(t, err)

	demandes, err := f.svc.ListCompany(f.ctxAs(role.Admin))
	require.NoError(t, err)
	assert.Len(t, demandes, 1)

	_, err = f.svc.ListCompany(f.ctxAs(role.Agent))
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestService_ListMine(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct()

	ownerCtx := f.ctxAs(role.Agent)
	_, err := f.svc.Create(ownerCtx, nil, nil, []LigneInput{
		{ProductID: p.ID, QuantiteDemandee: 1},
	})
	require.NoError(t, err)
	_, err = f.svc.Create(f.ctxAs(role.Agent), nil, nil, []LigneInput{
		{ProductID: p.ID, QuantiteDemandee: 2},
	})
	require.NoError(t, err)

	mine, err := f.svc.ListMine(ownerCtx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

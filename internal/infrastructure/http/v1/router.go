// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"gestock/internal/core/id"
	"gestock/internal/domain/catalogs"
	"gestock/internal/domain/demande"
	"gestock/internal/domain/product"
	"gestock/internal/domain/sequence"
	"gestock/internal/domain/sortie"
	"gestock/internal/domain/stock"
	"gestock/internal/infrastructure/http/v1/dto"
	"gestock/internal/infrastructure/http/v1/handlers"
	"gestock/internal/infrastructure/http/v1/middleware"
	"gestock/internal/infrastructure/storage/postgres"
	"gestock/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints, no auth required
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Storage layer
	txm := postgres.NewTxManager(cfg.Pool)
	productRepo := postgres.NewProductRepo(txm)
	demandeRepo := postgres.NewDemandeRepo(txm)
	sortieRepo := postgres.NewSortieRepo(txm)
	entreeRepo := postgres.NewEntreeRepo(txm)
	ledger := postgres.NewLedgerRepo(txm)
	sequencer := sequence.NewSequencer(postgres.NewSequenceStore(txm))
	auditStore, err := postgres.NewAuditStore(txm)
	if err != nil {
		return nil, err
	}

	// Domain services
	stockSvc := stock.NewService(entreeRepo, productRepo, ledger, txm, auditStore)
	productSvc := product.NewService(productRepo, stockSvc, txm)
	sortieSvc := sortie.NewService(sortieRepo, demandeRepo, ledger, sequencer, txm, auditStore)
	demandeSvc := demande.NewService(demandeRepo, productRepo, sortieSvc, txm, auditStore)

	categorieSvc := catalogs.NewService("categorie", postgres.NewCategorieRepo(txm))
	marqueSvc := catalogs.NewService("marque", postgres.NewMarqueRepo(txm))
	fournisseurSvc := catalogs.NewService("fournisseur", postgres.NewFournisseurRepo(txm))

	// API v1, JWT protected
	base := handlers.NewBaseHandler()
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))
	{
		handlers.NewDemandeHandler(base, demandeSvc, sortieSvc).RegisterRoutes(api.Group("/demandes"))
		handlers.NewSortieHandler(base, sortieSvc).RegisterRoutes(api.Group("/sorties"))
		handlers.NewProductHandler(base, productSvc, stockSvc, sortieSvc).RegisterRoutes(api.Group("/products"))
		handlers.NewStockHandler(base, stockSvc, sortieSvc).RegisterRoutes(api.Group("/stock"))

		handlers.NewCatalogHandler(base, categorieSvc,
			func(req dto.CategorieRequest, entrepriseID id.ID) *catalogs.Categorie { return req.ToEntity(entrepriseID) },
			func(req dto.CategorieRequest, c *catalogs.Categorie) { req.ApplyTo(c) },
		).RegisterRoutes(api.Group("/categories"))
		handlers.NewCatalogHandler(base, marqueSvc,
			func(req dto.MarqueRequest, entrepriseID id.ID) *catalogs.Marque { return req.ToEntity(entrepriseID) },
			func(req dto.MarqueRequest, m *catalogs.Marque) { req.ApplyTo(m) },
		).RegisterRoutes(api.Group("/marques"))
		handlers.NewCatalogHandler(base, fournisseurSvc,
			func(req dto.FournisseurRequest, entrepriseID id.ID) *catalogs.Fournisseur { return req.ToEntity(entrepriseID) },
			func(req dto.FournisseurRequest, f *catalogs.Fournisseur) { req.ApplyTo(f) },
		).RegisterRoutes(api.Group("/fournisseurs"))
	}

	return router, nil
}

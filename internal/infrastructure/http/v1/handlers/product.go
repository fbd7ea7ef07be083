package handlers

import (
	"github.com/gin-gonic/gin"

	"gestock/internal/core/appctx"
	"gestock/internal/core/role"
	"gestock/internal/domain/product"
	"gestock/internal/domain/sortie"
	"gestock/internal/domain/stock"
	"gestock/internal/infrastructure/http/v1/dto"
	"gestock/internal/infrastructure/http/v1/middleware"
)

// ProductHandler handles product endpoints, including per-product movement
// history.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
	stocks  *stock.Service
	sorties *sortie.Service
}

// NewProductHandler creates a product handler.
func NewProductHandler(base *BaseHandler, service *product.Service, stocks *stock.Service, sorties *sortie.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service, stocks: stocks, sorties: sorties}
}

// RegisterRoutes registers the product endpoints.
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	manage := middleware.RequireAction(role.ActionManageProducts)

	rg.POST("", manage, h.Create)
	rg.GET("", h.List)
	rg.GET("/alertes", h.ListAlerts)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", manage, h.Update)
	rg.DELETE("/:id", manage, h.Delete)
	rg.POST("/:id/entrees", middleware.RequireAction(role.ActionRecordEntree), h.CreateEntree)
	rg.GET("/:id/entrees", h.ListEntrees)
	rg.GET("/:id/sorties", h.ListSorties)
}

// Create handles POST /products. Returns 201 for a new product, 200 when an
// existing one was merged or replaced.
func (h *ProductHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	user := appctx.GetUser(ctx)
	if user == nil {
		h.Error(c, errUnauthorized())
		return
	}

	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := req.ToEntity(user.CompanyID, user.UserID)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, created, err := h.service.Create(ctx, p, req.Mode(), req.Reception())
	if err != nil {
		h.Error(c, err)
		return
	}

	if created {
		h.Created(c, result)
		return
	}
	h.OK(c, result)
}

// GetByID handles GET /products/:id.
func (h *ProductHandler) GetByID(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Update handles PUT /products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Update(c.Request.Context(), productID, req.ApplyTo)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Delete handles DELETE /products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// List handles GET /products.
func (h *ProductHandler) List(c *gin.Context) {
	filter := product.ListFilter{
		Search: c.Query("search"),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if raw := c.Query("categorieId"); raw != "" {
		categorieID, ok := h.parseQueryID(c, raw, "categorieId")
		if !ok {
			return
		}
		filter.CategorieID = &categorieID
	}
	if raw := c.Query("marqueId"); raw != "" {
		marqueID, ok := h.parseQueryID(c, raw, "marqueId")
		if !ok {
			return
		}
		filter.MarqueID = &marqueID
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.BaseHandler.List(c, items, len(items))
}

// ListAlerts handles GET /products/alertes.
func (h *ProductHandler) ListAlerts(c *gin.Context) {
	items, err := h.service.ListAlerts(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.BaseHandler.List(c, items, len(items))
}

// CreateEntree handles POST /products/:id/entrees.
func (h *ProductHandler) CreateEntree(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateEntreeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entree, err := h.stocks.CreateEntree(c.Request.Context(), productID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entree)
}

// ListEntrees handles GET /products/:id/entrees.
func (h *ProductHandler) ListEntrees(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	items, err := h.stocks.ListEntreesByProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.BaseHandler.List(c, items, len(items))
}

// ListSorties handles GET /products/:id/sorties.
func (h *ProductHandler) ListSorties(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	items, err := h.sorties.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.BaseHandler.List(c, items, len(items))
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"gestock/internal/core/appctx"
	"gestock/internal/core/id"
	"gestock/internal/core/role"
	"gestock/internal/domain/catalogs"
	"gestock/internal/infrastructure/http/v1/middleware"
)

// CatalogHandler is the generic handler for catalog entities. One instance
// per catalog, configured with its DTO mapping.
type CatalogHandler[T catalogs.Item, Req any] struct {
	*BaseHandler
	service  *catalogs.Service[T]
	toEntity func(req Req, entrepriseID id.ID) T
	applyTo  func(req Req, item T)
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler[T catalogs.Item, Req any](
	base *BaseHandler,
	service *catalogs.Service[T],
	toEntity func(req Req, entrepriseID id.ID) T,
	applyTo func(req Req, item T),
) *CatalogHandler[T, Req] {
	return &CatalogHandler[T, Req]{
		BaseHandler: base,
		service:     service,
		toEntity:    toEntity,
		applyTo:     applyTo,
	}
}

// RegisterRoutes registers the CRUD endpoints.
func (h *CatalogHandler[T, Req]) RegisterRoutes(rg *gin.RouterGroup) {
	manage := middleware.RequireAction(role.ActionManageCatalogs)

	rg.POST("", manage, h.Create)
	rg.GET("", h.ListItems)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", manage, h.Update)
	rg.DELETE("/:id", manage, h.Delete)
}

func (h *CatalogHandler[T, Req]) Create(c *gin.Context) {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		h.Error(c, errUnauthorized())
		return
	}

	var req Req
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.Create(c.Request.Context(), h.toEntity(req, user.CompanyID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, item)
}

func (h *CatalogHandler[T, Req]) GetByID(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

func (h *CatalogHandler[T, Req]) Update(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req Req
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.Update(c.Request.Context(), itemID, func(item T) {
		h.applyTo(req, item)
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

func (h *CatalogHandler[T, Req]) Delete(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), itemID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

func (h *CatalogHandler[T, Req]) ListItems(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, items, len(items))
}

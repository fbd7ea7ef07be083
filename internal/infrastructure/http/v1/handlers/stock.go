package handlers

import (
	"github.com/gin-gonic/gin"

	"gestock/internal/domain/sortie"
	"gestock/internal/domain/stock"
)

// StockHandler handles the company-wide stock movement views. Entrées are
// recorded through the product routes.
type StockHandler struct {
	*BaseHandler
	stocks  *stock.Service
	sorties *sortie.Service
}

// NewStockHandler creates a stock handler.
func NewStockHandler(base *BaseHandler, stocks *stock.Service, sorties *sortie.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, stocks: stocks, sorties: sorties}
}

// RegisterRoutes registers the stock endpoints.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/entrees", h.ListEntrees)
	rg.GET("/sorties", h.ListSorties)
}

// ListEntrees handles GET /stock/entrees.
func (h *StockHandler) ListEntrees(c *gin.Context) {
	items, err := h.stocks.ListEntrees(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, items, len(items))
}

// ListSorties handles GET /stock/sorties.
func (h *StockHandler) ListSorties(c *gin.Context) {
	items, err := h.sorties.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, items, len(items))
}

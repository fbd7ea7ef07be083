package handlers

import (
	"github.com/gin-gonic/gin"

	"gestock/internal/core/role"
	"gestock/internal/domain/sortie"
	"gestock/internal/infrastructure/http/v1/middleware"
)

// SortieHandler handles the exit decision endpoints.
type SortieHandler struct {
	*BaseHandler
	service *sortie.Service
}

// NewSortieHandler creates a sortie handler.
func NewSortieHandler(base *BaseHandler, service *sortie.Service) *SortieHandler {
	return &SortieHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers the sortie endpoints.
func (h *SortieHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/pending", h.ListPending)
	rg.POST("/:id/confirm", middleware.RequireAction(role.ActionConfirmSortie), h.Confirm)
	rg.POST("/:id/reject", middleware.RequireAction(role.ActionRejectSortie), h.Reject)
}

// Confirm handles POST /sorties/:id/confirm. On success stock has been
// debited and the sortie is CONFIRMEE.
func (h *SortieHandler) Confirm(c *gin.Context) {
	sortieID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	s, err := h.service.Confirm(c.Request.Context(), sortieID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// Reject handles POST /sorties/:id/reject.
func (h *SortieHandler) Reject(c *gin.Context) {
	sortieID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	s, err := h.service.Reject(c.Request.Context(), sortieID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// List handles GET /sorties.
func (h *SortieHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.BaseHandler.List(c, items, len(items))
}

// ListPending handles GET /sorties/pending.
func (h *SortieHandler) ListPending(c *gin.Context) {
	items, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.BaseHandler.List(c, items, len(items))
}

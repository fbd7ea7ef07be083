package handlers

import (
	"github.com/gin-gonic/gin"

	"gestock/internal/core/role"
	"gestock/internal/domain/demande"
	"gestock/internal/domain/sortie"
	"gestock/internal/infrastructure/http/v1/dto"
	"gestock/internal/infrastructure/http/v1/middleware"
)

// DemandeHandler handles the request workflow endpoints.
type DemandeHandler struct {
	*BaseHandler
	service *demande.Service
	sorties *sortie.Service
}

// NewDemandeHandler creates a demande handler.
func NewDemandeHandler(base *BaseHandler, service *demande.Service, sorties *sortie.Service) *DemandeHandler {
	return &DemandeHandler{BaseHandler: base, service: service, sorties: sorties}
}

// RegisterRoutes registers the demande endpoints.
func (h *DemandeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.ListCompany)
	rg.GET("/me", h.ListMine)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/validate", middleware.RequireAction(role.ActionValidateDemande), h.Validate)
	rg.POST("/:id/reject", middleware.RequireAction(role.ActionValidateDemande), h.Reject)
	rg.GET("/:id/sorties", h.ListSorties)
}

// Create handles POST /demandes.
func (h *DemandeHandler) Create(c *gin.Context) {
	var req dto.CreateDemandeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lignes, err := req.ToInputs()
	if err != nil {
		h.Error(c, err)
		return
	}

	d, err := h.service.Create(c.Request.Context(), req.Motif, req.Agence, lignes)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, d)
}

// GetByID handles GET /demandes/:id.
func (h *DemandeHandler) GetByID(c *gin.Context) {
	demandeID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	d, err := h.service.GetByID(c.Request.Context(), demandeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// ListMine handles GET /demandes/me.
func (h *DemandeHandler) ListMine(c *gin.Context) {
	items, err := h.service.ListMine(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, items, len(items))
}

// ListCompany handles GET /demandes.
func (h *DemandeHandler) ListCompany(c *gin.Context) {
	items, err := h.service.ListCompany(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, items, len(items))
}

// Validate handles POST /demandes/:id/validate. On success the demande is
// VALIDEE and its pending sorties exist.
func (h *DemandeHandler) Validate(c *gin.Context) {
	demandeID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	d, err := h.service.Validate(c.Request.Context(), demandeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// Reject handles POST /demandes/:id/reject.
func (h *DemandeHandler) Reject(c *gin.Context) {
	demandeID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	d, err := h.service.Reject(c.Request.Context(), demandeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// ListSorties handles GET /demandes/:id/sorties.
func (h *DemandeHandler) ListSorties(c *gin.Context) {
	demandeID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	items, err := h.sorties.ListByDemande(c.Request.Context(), demandeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, items, len(items))
}

package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/swas/backend/internal/application/catalog"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/interfaces/http/middleware"
)

// CatalogService is the part of catalog.CatalogService the handler needs
type CatalogService interface {
	List(ctx context.Context, serviceType string) ([]catalog.ServiceResponse, error)
	Get(ctx context.Context, serviceID string) (*catalog.ServiceResponse, error)
	Add(ctx context.Context, scope shared.Scope, req catalog.CreateServiceRequest) (*catalog.ServiceResponse, error)
	Quote(ctx context.Context, req catalog.QuoteRequest) (*catalog.QuoteResponse, error)
}

// CatalogHandler handles the repair service catalog
type CatalogHandler struct {
	BaseHandler
	catalogService CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// List godoc
// @ID           listServices
// @Summary      List services
// @Tags         services
// @Produce      json
// @Param        type query string false "Service or Additional"
// @Success      200 {object} APIResponse[[]catalog.ServiceResponse]
// @Security     BearerAuth
// @Router       /services [get]
func (h *CatalogHandler) List(c *gin.Context) {
	services, err := h.catalogService.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessList(&h.BaseHandler, c, services)
}

// Get godoc
// @ID           getService
// @Summary      Get service
// @Tags         services
// @Produce      json
// @Param        id path string true "Service ID"
// @Success      200 {object} APIResponse[catalog.ServiceResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /services/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	svc, err := h.catalogService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, svc)
}

// Add godoc
// @ID           addService
// @Summary      Add service
// @Description  Add a service to the catalog; the next SERVICE-n id is generated
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateServiceRequest true "Service"
// @Success      201 {object} APIResponse[catalog.ServiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /services [post]
func (h *CatalogHandler) Add(c *gin.Context) {
	var req catalog.CreateServiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	svc, err := h.catalogService.Add(c.Request.Context(), middleware.GetScope(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, svc)
}

// Quote godoc
// @ID           quoteServices
// @Summary      Price a line item
// @Description  Subtotal, rush fee and due date for a set of services
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        request body catalog.QuoteRequest true "Services and priority"
// @Success      200 {object} APIResponse[catalog.QuoteResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /services/quote [post]
func (h *CatalogHandler) Quote(c *gin.Context) {
	var req catalog.QuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	quote, err := h.catalogService.Quote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

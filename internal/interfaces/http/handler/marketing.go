package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/swas/backend/internal/application/marketing"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/interfaces/http/middleware"
)

// MarketingService is the part of marketing.MarketingService the handler needs
type MarketingService interface {
	ListAnnouncements(ctx context.Context, scope shared.Scope, branchID string) ([]marketing.AnnouncementResponse, error)
	CreateAnnouncement(ctx context.Context, scope shared.Scope, req marketing.AnnouncementRequest) (*marketing.AnnouncementResponse, error)
	UpdateAnnouncement(ctx context.Context, scope shared.Scope, id string, req marketing.AnnouncementRequest) (*marketing.AnnouncementResponse, error)
	DeleteAnnouncement(ctx context.Context, scope shared.Scope, id string) error
	ListPromos(ctx context.Context, scope shared.Scope, branchID string) ([]marketing.PromoResponse, error)
	ListActivePromos(ctx context.Context, scope shared.Scope, date, branchID string) ([]marketing.PromoResponse, error)
	GetPromo(ctx context.Context, id string) (*marketing.PromoResponse, error)
	CreatePromo(ctx context.Context, scope shared.Scope, req marketing.PromoRequest) (*marketing.PromoResponse, error)
	UpdatePromo(ctx context.Context, scope shared.Scope, id string, req marketing.PromoRequest) (*marketing.PromoResponse, error)
	DeletePromo(ctx context.Context, scope shared.Scope, id string) error
}

// MarketingHandler handles announcements and promos
type MarketingHandler struct {
	BaseHandler
	marketingService MarketingService
}

// NewMarketingHandler creates a new MarketingHandler
func NewMarketingHandler(marketingService MarketingService) *MarketingHandler {
	return &MarketingHandler{marketingService: marketingService}
}

// ListAnnouncements godoc
// @ID           listAnnouncements
// @Summary      List announcements
// @Description  Newest first
// @Tags         announcements
// @Produce      json
// @Param        branch_id query string false "Branch filter"
// @Success      200 {object} APIResponse[[]marketing.AnnouncementResponse]
// @Security     BearerAuth
// @Router       /announcements [get]
func (h *MarketingHandler) ListAnnouncements(c *gin.Context) {
	list, err := h.marketingService.ListAnnouncements(c.Request.Context(), middleware.GetScope(c), c.Query("branch_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessList(&h.BaseHandler, c, list)
}

// CreateAnnouncement godoc
// @ID           createAnnouncement
// @Summary      Create announcement
// @Tags         announcements
// @Accept       json
// @Produce      json
// @Param        request body marketing.AnnouncementRequest true "Announcement"
// @Success      201 {object} APIResponse[marketing.AnnouncementResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /announcements [post]
func (h *MarketingHandler) CreateAnnouncement(c *gin.Context) {
	var req marketing.AnnouncementRequest
	if !h.BindJSON(c, &req) {
		return
	}
	a, err := h.marketingService.CreateAnnouncement(c.Request.Context(), middleware.GetScope(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, a)
}

// UpdateAnnouncement godoc
// @ID           updateAnnouncement
// @Summary      Update announcement
// @Tags         announcements
// @Accept       json
// @Produce      json
// @Param        id path string true "Announcement ID"
// @Param        request body marketing.AnnouncementRequest true "Announcement"
// @Success      200 {object} APIResponse[marketing.AnnouncementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /announcements/{id} [put]
func (h *MarketingHandler) UpdateAnnouncement(c *gin.Context) {
	var req marketing.AnnouncementRequest
	if !h.BindJSON(c, &req) {
		return
	}
	a, err := h.marketingService.UpdateAnnouncement(c.Request.Context(), middleware.GetScope(c), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// DeleteAnnouncement godoc
// @ID           deleteAnnouncement
// @Summary      Delete announcement
// @Tags         announcements
// @Param        id path string true "Announcement ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /announcements/{id} [delete]
func (h *MarketingHandler) DeleteAnnouncement(c *gin.Context) {
	if err := h.marketingService.DeleteAnnouncement(c.Request.Context(), middleware.GetScope(c), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListPromos godoc
// @ID           listPromos
// @Summary      List promos
// @Tags         promos
// @Produce      json
// @Param        branch_id query string false "Branch filter"
// @Success      200 {object} APIResponse[[]marketing.PromoResponse]
// @Security     BearerAuth
// @Router       /promos [get]
func (h *MarketingHandler) ListPromos(c *gin.Context) {
	list, err := h.marketingService.ListPromos(c.Request.Context(), middleware.GetScope(c), c.Query("branch_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessList(&h.BaseHandler, c, list)
}

// ListActivePromos godoc
// @ID           listActivePromos
// @Summary      Promos running on a day
// @Tags         promos
// @Produce      json
// @Param        date query string false "Day (YYYY-MM-DD), defaults to today"
// @Param        branch_id query string false "Branch filter"
// @Success      200 {object} APIResponse[[]marketing.PromoResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /promos/active [get]
func (h *MarketingHandler) ListActivePromos(c *gin.Context) {
	list, err := h.marketingService.ListActivePromos(c.Request.Context(), middleware.GetScope(c), c.Query("date"), c.Query("branch_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessList(&h.BaseHandler, c, list)
}

// GetPromo godoc
// @ID           getPromo
// @Summary      Get promo
// @Tags         promos
// @Produce      json
// @Param        id path string true "Promo ID"
// @Success      200 {object} APIResponse[marketing.PromoResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /promos/{id} [get]
func (h *MarketingHandler) GetPromo(c *gin.Context) {
	p, err := h.marketingService.GetPromo(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// CreatePromo godoc
// @ID           createPromo
// @Summary      Create promo
// @Tags         promos
// @Accept       json
// @Produce      json
// @Param        request body marketing.PromoRequest true "Promo"
// @Success      201 {object} APIResponse[marketing.PromoResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /promos [post]
func (h *MarketingHandler) CreatePromo(c *gin.Context) {
	var req marketing.PromoRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.marketingService.CreatePromo(c.Request.Context(), middleware.GetScope(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// UpdatePromo godoc
// @ID           updatePromo
// @Summary      Update promo
// @Tags         promos
// @Accept       json
// @Produce      json
// @Param        id path string true "Promo ID"
// @Param        request body marketing.PromoRequest true "Promo"
// @Success      200 {object} APIResponse[marketing.PromoResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /promos/{id} [put]
func (h *MarketingHandler) UpdatePromo(c *gin.Context) {
	var req marketing.PromoRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.marketingService.UpdatePromo(c.Request.Context(), middleware.GetScope(c), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// DeletePromo godoc
// @ID           deletePromo
// @Summary      Delete promo
// @Tags         promos
// @Param        id path string true "Promo ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /promos/{id} [delete]
func (h *MarketingHandler) DeletePromo(c *gin.Context) {
	if err := h.marketingService.DeletePromo(c.Request.Context(), middleware.GetScope(c), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

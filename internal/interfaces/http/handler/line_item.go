package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swas/backend/internal/application/order"
	domainorder "github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/interfaces/http/dto"
	"github.com/swas/backend/internal/interfaces/http/middleware"
)

// LineItemService is the line item side of order.OrderService
type LineItemService interface {
	ListLineItems(ctx context.Context, scope shared.Scope, branchID string) ([]order.LineItemResponse, error)
	ListLineItemsByStatus(ctx context.Context, scope shared.Scope, status, branchID string) ([]order.LineItemResponse, error)
	GetLineItem(ctx context.Context, scope shared.Scope, lineItemID string) (*order.LineItemResponse, error)
	GetStatusDates(ctx context.Context, scope shared.Scope, lineItemID string) (*order.StatusDatesResponse, error)
	UpdateLineItemStatus(ctx context.Context, actor order.Actor, req order.UpdateStatusRequest) (*order.UpdateStatusResponse, error)
	UpsertStatusDates(ctx context.Context, scope shared.Scope, req order.UpsertStatusDatesRequest) (*order.StatusDatesResponse, error)
	RequestImageUpload(ctx context.Context, scope shared.Scope, lineItemID string, req order.ImageUploadRequest) (*order.ImageUploadResponse, error)
}

// LineItemHandler handles the per-pair workflow
type LineItemHandler struct {
	BaseHandler
	orderService LineItemService
}

// NewLineItemHandler creates a new LineItemHandler
func NewLineItemHandler(orderService LineItemService) *LineItemHandler {
	return &LineItemHandler{orderService: orderService}
}

// List godoc
// @ID           listLineItems
// @Summary      List open line items
// @Description  Every line item that has not been picked up
// @Tags         line-items
// @Produce      json
// @Param        branch_id query string false "Branch filter"
// @Success      200 {object} APIResponse[[]order.LineItemResponse]
// @Security     BearerAuth
// @Router       /line-items [get]
func (h *LineItemHandler) List(c *gin.Context) {
	items, err := h.orderService.ListLineItems(c.Request.Context(), middleware.GetScope(c), c.Query("branch_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessList(&h.BaseHandler, c, items)
}

// ListByStatus godoc
// @ID           listLineItemsByStatus
// @Summary      List line items in one status
// @Description  An empty result is a 200 with an empty list
// @Tags         line-items
// @Produce      json
// @Param        status path string true "Line item status"
// @Param        branch_id query string false "Branch filter"
// @Success      200 {object} APIResponse[[]order.LineItemResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /line-items/status/{status} [get]
func (h *LineItemHandler) ListByStatus(c *gin.Context) {
	status := c.Param("status")
	if !domainorder.Status(status).IsValid() {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFailed, "Unknown line item status: "+status)
		return
	}
	items, err := h.orderService.ListLineItemsByStatus(c.Request.Context(), middleware.GetScope(c), status, c.Query("branch_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessList(&h.BaseHandler, c, items)
}

// Get godoc
// @ID           getLineItem
// @Summary      Get line item
// @Tags         line-items
// @Produce      json
// @Param        id path string true "Line item ID"
// @Success      200 {object} APIResponse[order.LineItemResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /line-items/{id} [get]
func (h *LineItemHandler) Get(c *gin.Context) {
	item, err := h.orderService.GetLineItem(c.Request.Context(), middleware.GetScope(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// GetStatusDates godoc
// @ID           getLineItemStatusDates
// @Summary      Status dates of a line item
// @Tags         line-items
// @Produce      json
// @Param        id path string true "Line item ID"
// @Success      200 {object} APIResponse[order.StatusDatesResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /line-items/{id}/status-dates [get]
func (h *LineItemHandler) GetStatusDates(c *gin.Context) {
	dates, err := h.orderService.GetStatusDates(c.Request.Context(), middleware.GetScope(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dates)
}

// UpdateStatus godoc
// @ID           updateLineItemStatus
// @Summary      Move line items to a status
// @Description  All transitions are validated first and applied together; one illegal transition fails the batch
// @Tags         line-items
// @Accept       json
// @Produce      json
// @Param        request body order.UpdateStatusRequest true "Line items and target status"
// @Success      200 {object} APIResponse[order.UpdateStatusResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /line-items/status [patch]
func (h *LineItemHandler) UpdateStatus(c *gin.Context) {
	var req order.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.orderService.UpdateLineItemStatus(c.Request.Context(), orderActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpsertStatusDates godoc
// @ID           upsertLineItemStatusDates
// @Summary      Correct status dates
// @Description  Only the dates present in the body change
// @Tags         line-items
// @Accept       json
// @Produce      json
// @Param        id path string true "Line item ID"
// @Param        request body domainorder.StatusDates true "Dates to set"
// @Success      200 {object} APIResponse[order.StatusDatesResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /line-items/{id}/status-dates [put]
func (h *LineItemHandler) UpsertStatusDates(c *gin.Context) {
	var dates domainorder.StatusDates
	if !h.BindJSON(c, &dates) {
		return
	}
	resp, err := h.orderService.UpsertStatusDates(c.Request.Context(), middleware.GetScope(c), order.UpsertStatusDatesRequest{
		LineItemID:  c.Param("id"),
		StatusDates: dates,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RequestImageUpload godoc
// @ID           requestLineItemImageUpload
// @Summary      Presigned photo upload
// @Description  Returns a URL the client PUTs the before or after photo to
// @Tags         line-items
// @Accept       json
// @Produce      json
// @Param        id path string true "Line item ID"
// @Param        request body order.ImageUploadRequest true "Photo kind and content type"
// @Success      200 {object} APIResponse[order.ImageUploadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /line-items/{id}/images [post]
func (h *LineItemHandler) RequestImageUpload(c *gin.Context) {
	var req order.ImageUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.orderService.RequestImageUpload(c.Request.Context(), middleware.GetScope(c), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

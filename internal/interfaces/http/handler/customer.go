package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swas/backend/internal/application/customer"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/interfaces/http/middleware"
)

// CustomerService is the part of customer.CustomerService the handler needs
type CustomerService interface {
	List(ctx context.Context, scope shared.Scope, q customer.ListCustomersQuery) (*shared.Paginated[customer.CustomerResponse], error)
	Get(ctx context.Context, custID string) (*customer.CustomerResponse, error)
	FindByNameAndBirthdate(ctx context.Context, name string, bdate *time.Time) (*customer.CustomerResponse, error)
	Update(ctx context.Context, scope shared.Scope, custID string, req customer.UpdateCustomerRequest) (*customer.CustomerResponse, error)
	Delete(ctx context.Context, scope shared.Scope, custID string) error
}

// CustomerLookupQuery identifies a customer the way intake does
type CustomerLookupQuery struct {
	Name  string `form:"name" binding:"required,max=200"`
	Bdate string `form:"bdate" binding:"omitempty,datetime=2006-01-02"`
}

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	BaseHandler
	customerService CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// List godoc
// @ID           listCustomers
// @Summary      List customers
// @Description  Paginated customers, searchable by name, email or contact
// @Tags         customers
// @Produce      json
// @Param        branch_id query string false "Branch filter"
// @Param        search query string false "Search term"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]customer.CustomerResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	var q customer.ListCustomersQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.customerService.List(c.Request.Context(), middleware.GetScope(c), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(&h.BaseHandler, c, page)
}

// Lookup godoc
// @ID           lookupCustomer
// @Summary      Find customer by name and birthdate
// @Description  Case-insensitive, whitespace-trimmed match used at intake
// @Tags         customers
// @Produce      json
// @Param        name query string true "Customer name"
// @Param        bdate query string false "Birthdate (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[customer.CustomerResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/lookup [get]
func (h *CustomerHandler) Lookup(c *gin.Context) {
	var q CustomerLookupQuery
	if !h.BindQuery(c, &q) {
		return
	}
	bdate, err := customer.ParseBirthdate(q.Bdate)
	if err != nil {
		h.BadRequest(c, "bdate must be YYYY-MM-DD")
		return
	}
	cust, err := h.customerService.FindByNameAndBirthdate(c.Request.Context(), q.Name, bdate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cust)
}

// Get godoc
// @ID           getCustomer
// @Summary      Get customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} APIResponse[customer.CustomerResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	cust, err := h.customerService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cust)
}

// Update godoc
// @ID           updateCustomer
// @Summary      Update customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID"
// @Param        request body customer.UpdateCustomerRequest true "Customer details"
// @Success      200 {object} APIResponse[customer.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	var req customer.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cust, err := h.customerService.Update(c.Request.Context(), middleware.GetScope(c), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cust)
}

// Delete godoc
// @ID           deleteCustomer
// @Summary      Delete customer
// @Description  Refused while the customer has unpaid transactions
// @Tags         customers
// @Param        id path string true "Customer ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.customerService.Delete(c.Request.Context(), middleware.GetScope(c), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swas/backend/internal/application/order"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/interfaces/http/middleware"
)

// IdempotencyKeyHeader lets clients retry a payment without charging twice
const IdempotencyKeyHeader = "Idempotency-Key"

// TransactionService is the transaction side of order.OrderService
type TransactionService interface {
	CreateServiceRequest(ctx context.Context, actor order.Actor, req order.CreateServiceRequestInput) (*order.ServiceRequestResponse, error)
	GetTransaction(ctx context.Context, scope shared.Scope, transactionID string) (*order.ServiceRequestResponse, error)
	ListTransactions(ctx context.Context, scope shared.Scope, q order.ListTransactionsQuery) (*shared.Paginated[order.TransactionResponse], error)
	ApplyPayment(ctx context.Context, actor order.Actor, transactionID string, req order.ApplyPaymentRequest, idempotencyKey string) (*order.ApplyPaymentResponse, error)
	RenderReceipt(ctx context.Context, scope shared.Scope, transactionID string) ([]byte, error)
	ReceiptHTML(ctx context.Context, scope shared.Scope, transactionID string) (string, error)
}

// TransactionHandler handles intake, transactions and payments
type TransactionHandler struct {
	BaseHandler
	orderService TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(orderService TransactionService) *TransactionHandler {
	return &TransactionHandler{orderService: orderService}
}

func orderActor(c *gin.Context) order.Actor {
	return order.Actor{UserID: middleware.GetUserID(c), Scope: middleware.GetScope(c)}
}

// CreateServiceRequest godoc
// @ID           createServiceRequest
// @Summary      Intake a service request
// @Description  Registers or reuses the customer, prices every line item, records the initial payment and queues the shoes
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request body order.CreateServiceRequestInput true "Intake form"
// @Success      201 {object} APIResponse[order.ServiceRequestResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /service-requests [post]
func (h *TransactionHandler) CreateServiceRequest(c *gin.Context) {
	var req order.CreateServiceRequestInput
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.orderService.CreateServiceRequest(c.Request.Context(), orderActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @ID           listTransactions
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Param        branch_id query string false "Branch filter"
// @Param        payment_status query string false "NP, PARTIAL or PAID"
// @Param        cust_id query string false "Customer filter"
// @Param        from query string false "Date in, from (YYYY-MM-DD)"
// @Param        to query string false "Date in, to (YYYY-MM-DD)"
// @Param        search query string false "Transaction id or customer name"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]order.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var q order.ListTransactionsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.orderService.ListTransactions(c.Request.Context(), middleware.GetScope(c), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(&h.BaseHandler, c, page)
}

// Get godoc
// @ID           getTransaction
// @Summary      Get transaction
// @Description  The transaction with its customer and line items
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID"
// @Success      200 {object} APIResponse[order.ServiceRequestResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	resp, err := h.orderService.GetTransaction(c.Request.Context(), middleware.GetScope(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ApplyPayment godoc
// @ID           applyPayment
// @Summary      Apply a payment
// @Description  Records money received at the counter and optionally releases a line item. Replays with the same Idempotency-Key return the first result.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID"
// @Param        Idempotency-Key header string false "Client retry key"
// @Param        request body order.ApplyPaymentRequest true "Payment"
// @Success      200 {object} APIResponse[order.ApplyPaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/payments [post]
func (h *TransactionHandler) ApplyPayment(c *gin.Context) {
	var req order.ApplyPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	key := c.GetHeader(IdempotencyKeyHeader)
	if len(key) > 128 {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}
	resp, err := h.orderService.ApplyPayment(c.Request.Context(), orderActor(c), c.Param("id"), req, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Receipt godoc
// @ID           getReceipt
// @Summary      Transaction receipt
// @Description  PDF receipt; format=html returns the markup for preview
// @Tags         transactions
// @Produce      application/pdf
// @Produce      text/html
// @Param        id path string true "Transaction ID"
// @Param        format query string false "pdf or html" Enums(pdf, html)
// @Success      200 {file} file
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/receipt [get]
func (h *TransactionHandler) Receipt(c *gin.Context) {
	id := c.Param("id")
	scope := middleware.GetScope(c)

	if c.Query("format") == "html" {
		html, err := h.orderService.ReceiptHTML(c.Request.Context(), scope, id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}

	pdf, err := h.orderService.RenderReceipt(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="receipt-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/swas/backend/internal/application/order"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/interfaces/http/dto"
)

type mockTransactionService struct {
	mock.Mock
}

func (m *mockTransactionService) CreateServiceRequest(ctx context.Context, actor order.Actor, req order.CreateServiceRequestInput) (*order.ServiceRequestResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ServiceRequestResponse), args.Error(1)
}

func (m *mockTransactionService) GetTransaction(ctx context.Context, scope shared.Scope, id string) (*order.ServiceRequestResponse, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ServiceRequestResponse), args.Error(1)
}

func (m *mockTransactionService) ListTransactions(ctx context.Context, scope shared.Scope, q order.ListTransactionsQuery) (*shared.Paginated[order.TransactionResponse], error) {
	args := m.Called(ctx, scope, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[order.TransactionResponse]), args.Error(1)
}

func (m *mockTransactionService) ApplyPayment(ctx context.Context, actor order.Actor, id string, req order.ApplyPaymentRequest, key string) (*order.ApplyPaymentResponse, error) {
	args := m.Called(ctx, actor, id, req, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ApplyPaymentResponse), args.Error(1)
}

func (m *mockTransactionService) RenderReceipt(ctx context.Context, scope shared.Scope, id string) ([]byte, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockTransactionService) ReceiptHTML(ctx context.Context, scope shared.Scope, id string) (string, error) {
	args := m.Called(ctx, scope, id)
	return args.String(0), args.Error(1)
}

func transactionRouter(svc *mockTransactionService, who caller) http.Handler {
	h := NewTransactionHandler(svc)
	r := newTestRouter(who)
	r.POST("/service-requests", h.CreateServiceRequest)
	r.GET("/transactions", h.List)
	r.GET("/transactions/:id", h.Get)
	r.POST("/transactions/:id/payments", h.ApplyPayment)
	r.GET("/transactions/:id/receipt", h.Receipt)
	return r
}

func TestTransactionHandler_CreateServiceRequest(t *testing.T) {
	svc := new(mockTransactionService)
	r := transactionRouter(svc, staffCaller)

	body := map[string]any{
		"customer": map[string]any{"cust_name": "Juan Dela Cruz", "cust_bdate": "1990-05-01"},
		"line_items": []map[string]any{{
			"priority": "Rush",
			"services": []map[string]any{{"service_id": "SERVICE-1", "quantity": 1}},
		}},
		"amount_paid":  "100",
		"payment_mode": "Cash",
	}
	svc.On("CreateServiceRequest", mock.Anything,
		order.Actor{UserID: staffCaller.userID, Scope: shared.BranchScope(staffCaller.branchID)},
		mock.MatchedBy(func(in order.CreateServiceRequestInput) bool {
			return len(in.LineItems) == 1 && in.AmountPaid.Equal(decimal.NewFromInt(100))
		}),
	).Return(&order.ServiceRequestResponse{
		Transaction: order.TransactionResponse{TransactionID: "2026-10-00001-SMVAL"},
	}, nil).Once()

	w := doRequest(t, r, http.MethodPost, "/service-requests", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, string(decode(t, w).Data), "2026-10-00001-SMVAL")
	svc.AssertExpectations(t)
}

func TestTransactionHandler_CreateServiceRequest_NoLineItems(t *testing.T) {
	svc := new(mockTransactionService)
	r := transactionRouter(svc, staffCaller)

	body := map[string]any{
		"customer":   map[string]any{"cust_name": "Juan Dela Cruz"},
		"line_items": []map[string]any{},
	}
	w := doRequest(t, r, http.MethodPost, "/service-requests", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeValidationFailed, env.Error.Code)
	svc.AssertNotCalled(t, "CreateServiceRequest", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransactionHandler_List_Meta(t *testing.T) {
	svc := new(mockTransactionService)
	r := transactionRouter(svc, superCaller)

	svc.On("ListTransactions", mock.Anything, shared.AllBranches, order.ListTransactionsQuery{
		PaymentStatus: "PARTIAL", Page: 2, PageSize: 10,
	}).Return(&shared.Paginated[order.TransactionResponse]{
		Items: []order.TransactionResponse{{TransactionID: "a"}},
		Total: 11, Page: 2, PageSize: 10, TotalPages: 2,
	}, nil).Once()

	w := doRequest(t, r, http.MethodGet, "/transactions?payment_status=PARTIAL&page=2&page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(11), env.Meta.Total)
	assert.Equal(t, 2, env.Meta.TotalPages)
}

func TestTransactionHandler_List_BadStatus(t *testing.T) {
	svc := new(mockTransactionService)
	r := transactionRouter(svc, superCaller)

	w := doRequest(t, r, http.MethodGet, "/transactions?payment_status=MAYBE", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionHandler_ApplyPayment_ForwardsIdempotencyKey(t *testing.T) {
	svc := new(mockTransactionService)
	r := transactionRouter(svc, staffCaller)

	svc.On("ApplyPayment", mock.Anything, mock.Anything, "2026-10-00001-SMVAL",
		mock.MatchedBy(func(req order.ApplyPaymentRequest) bool {
			return req.DueNow.Equal(decimal.NewFromInt(200)) && req.CustomerPaid.Equal(decimal.NewFromInt(500))
		}), "retry-123",
	).Return(&order.ApplyPaymentResponse{
		Change:  decimal.NewFromInt(300),
		Balance: decimal.Zero,
	}, nil).Once()

	w := doRequest(t, r, http.MethodPost, "/transactions/2026-10-00001-SMVAL/payments",
		`{"due_now": 200, "customer_paid": 500, "payment_mode": "Cash"}`,
		IdempotencyKeyHeader, "retry-123")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(decode(t, w).Data), `"change":"300"`)
	svc.AssertExpectations(t)
}

func TestTransactionHandler_ApplyPayment_Rejected(t *testing.T) {
	svc := new(mockTransactionService)
	r := transactionRouter(svc, staffCaller)

	svc.On("ApplyPayment", mock.Anything, mock.Anything, "T1", mock.Anything, "").
		Return(nil, shared.NewDomainError("PAYMENT_REJECTED", "Amount exceeds the balance")).Once()

	w := doRequest(t, r, http.MethodPost, "/transactions/T1/payments", `{"due_now": 9999, "customer_paid": 9999}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodePaymentRejected, decode(t, w).Error.Code)
}

func TestTransactionHandler_Receipt(t *testing.T) {
	svc := new(mockTransactionService)
	r := transactionRouter(svc, staffCaller)
	scope := shared.BranchScope(staffCaller.branchID)

	svc.On("RenderReceipt", mock.Anything, scope, "T1").Return([]byte("%PDF-1.4"), nil).Once()
	svc.On("ReceiptHTML", mock.Anything, scope, "T1").Return("<html></html>", nil).Once()

	w := doRequest(t, r, http.MethodGet, "/transactions/T1/receipt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "receipt-T1.pdf")
	assert.Equal(t, "%PDF-1.4", w.Body.String())

	w = doRequest(t, r, http.MethodGet, "/transactions/T1/receipt?format=html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestTransactionHandler_Get_OtherBranchIsForbidden(t *testing.T) {
	svc := new(mockTransactionService)
	r := transactionRouter(svc, staffCaller)

	svc.On("GetTransaction", mock.Anything, mock.Anything, "2026-10-00001-VAL").
		Return(nil, shared.ErrForbidden).Once()

	w := doRequest(t, r, http.MethodGet, "/transactions/2026-10-00001-VAL", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/swas/backend/internal/application/order"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/interfaces/http/dto"
)

type mockLineItemService struct {
	mock.Mock
}

func (m *mockLineItemService) ListLineItems(ctx context.Context, scope shared.Scope, branchID string) ([]order.LineItemResponse, error) {
	args := m.Called(ctx, scope, branchID)
	items, _ := args.Get(0).([]order.LineItemResponse)
	return items, args.Error(1)
}

func (m *mockLineItemService) ListLineItemsByStatus(ctx context.Context, scope shared.Scope, status, branchID string) ([]order.LineItemResponse, error) {
	args := m.Called(ctx, scope, status, branchID)
	items, _ := args.Get(0).([]order.LineItemResponse)
	return items, args.Error(1)
}

func (m *mockLineItemService) GetLineItem(ctx context.Context, scope shared.Scope, id string) (*order.LineItemResponse, error) {
	args := m.Called(ctx, scope, id)
	item, _ := args.Get(0).(*order.LineItemResponse)
	return item, args.Error(1)
}

func (m *mockLineItemService) GetStatusDates(ctx context.Context, scope shared.Scope, id string) (*order.StatusDatesResponse, error) {
	args := m.Called(ctx, scope, id)
	dates, _ := args.Get(0).(*order.StatusDatesResponse)
	return dates, args.Error(1)
}

func (m *mockLineItemService) UpdateLineItemStatus(ctx context.Context, actor order.Actor, req order.UpdateStatusRequest) (*order.UpdateStatusResponse, error) {
	args := m.Called(ctx, actor, req)
	resp, _ := args.Get(0).(*order.UpdateStatusResponse)
	return resp, args.Error(1)
}

func (m *mockLineItemService) UpsertStatusDates(ctx context.Context, scope shared.Scope, req order.UpsertStatusDatesRequest) (*order.StatusDatesResponse, error) {
	args := m.Called(ctx, scope, req)
	dates, _ := args.Get(0).(*order.StatusDatesResponse)
	return dates, args.Error(1)
}

func (m *mockLineItemService) RequestImageUpload(ctx context.Context, scope shared.Scope, id string, req order.ImageUploadRequest) (*order.ImageUploadResponse, error) {
	args := m.Called(ctx, scope, id, req)
	resp, _ := args.Get(0).(*order.ImageUploadResponse)
	return resp, args.Error(1)
}

func lineItemRouter(svc *mockLineItemService, who caller) http.Handler {
	h := NewLineItemHandler(svc)
	r := newTestRouter(who)
	r.GET("/line-items", h.List)
	r.GET("/line-items/status/:status", h.ListByStatus)
	r.PATCH("/line-items/status", h.UpdateStatus)
	r.GET("/line-items/:id", h.Get)
	r.GET("/line-items/:id/status-dates", h.GetStatusDates)
	r.PUT("/line-items/:id/status-dates", h.UpsertStatusDates)
	r.POST("/line-items/:id/images", h.RequestImageUpload)
	return r
}

func TestLineItemHandler_ListByStatus_EmptyIsOK(t *testing.T) {
	svc := new(mockLineItemService)
	r := lineItemRouter(svc, staffCaller)

	svc.On("ListLineItemsByStatus", mock.Anything, mock.Anything, "Ready for Pickup", "").
		Return([]order.LineItemResponse{}, nil).Once()

	w := doRequest(t, r, http.MethodGet, "/line-items/status/Ready%20for%20Pickup", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode(t, w)
	assert.JSONEq(t, `[]`, string(env.Data))
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(0), env.Meta.Total)
	svc.AssertExpectations(t)
}

func TestLineItemHandler_ListByStatus_UnknownStatus(t *testing.T) {
	svc := new(mockLineItemService)
	r := lineItemRouter(svc, staffCaller)

	w := doRequest(t, r, http.MethodGet, "/line-items/status/Lost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidationFailed, decode(t, w).Error.Code)
	svc.AssertNotCalled(t, "ListLineItemsByStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLineItemHandler_UpdateStatus(t *testing.T) {
	svc := new(mockLineItemService)
	r := lineItemRouter(svc, staffCaller)

	req := order.UpdateStatusRequest{
		LineItemIDs: []string{"2026-10-00001-001-SMVAL", "2026-10-00001-002-SMVAL"},
		NewStatus:   "Ready for Delivery",
	}
	svc.On("UpdateLineItemStatus", mock.Anything, mock.Anything, req).Return(&order.UpdateStatusResponse{
		Message: "2 line item(s) updated to Ready for Delivery",
		Updated: 2,
	}, nil).Once()

	w := doRequest(t, r, http.MethodPatch, "/line-items/status", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(decode(t, w).Data), "2 line item(s) updated to Ready for Delivery")
	svc.AssertExpectations(t)
}

func TestLineItemHandler_UpdateStatus_Validation(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"unknown status", map[string]any{"line_item_ids": []string{"a"}, "new_status": "Lost"}},
		{"no ids", map[string]any{"line_item_ids": []string{}, "new_status": "Queued"}},
		{"blank id", map[string]any{"line_item_ids": []string{""}, "new_status": "Queued"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockLineItemService)
			w := doRequest(t, lineItemRouter(svc, staffCaller), http.MethodPatch, "/line-items/status", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLineItemHandler_UpdateStatus_IllegalTransition(t *testing.T) {
	svc := new(mockLineItemService)
	r := lineItemRouter(svc, staffCaller)

	svc.On("UpdateLineItemStatus", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, shared.NewDomainError("INVALID_TRANSITION", "Line item X cannot move from Queued to Picked Up")).Once()

	w := doRequest(t, r, http.MethodPatch, "/line-items/status",
		map[string]any{"line_item_ids": []string{"X"}, "new_status": "Picked Up"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode(t, w)
	assert.Equal(t, dto.ErrCodeInvalidState, env.Error.Code)
	assert.Contains(t, env.Error.Message, "Line item X")
}

func TestLineItemHandler_UpsertStatusDates_UsesPathID(t *testing.T) {
	svc := new(mockLineItemService)
	r := lineItemRouter(svc, staffCaller)

	svc.On("UpsertStatusDates", mock.Anything, mock.Anything, mock.MatchedBy(func(req order.UpsertStatusDatesRequest) bool {
		return req.LineItemID == "LI-1" && req.RdDate != nil && req.SrmDate == nil
	})).Return(&order.StatusDatesResponse{LineItemID: "LI-1"}, nil).Once()

	rd := time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC)
	w := doRequest(t, r, http.MethodPut, "/line-items/LI-1/status-dates", map[string]any{"rd_date": rd})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	svc.AssertExpectations(t)
}

func TestLineItemHandler_RequestImageUpload(t *testing.T) {
	svc := new(mockLineItemService)
	r := lineItemRouter(svc, staffCaller)

	svc.On("RequestImageUpload", mock.Anything, mock.Anything, "LI-1",
		order.ImageUploadRequest{Kind: "before", ContentType: "image/jpeg"},
	).Return(&order.ImageUploadResponse{UploadURL: "https://bucket/put", Key: "k"}, nil).Once()

	w := doRequest(t, r, http.MethodPost, "/line-items/LI-1/images",
		map[string]string{"kind": "before", "content_type": "image/jpeg"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(decode(t, w).Data), "https://bucket/put")

	w = doRequest(t, r, http.MethodPost, "/line-items/LI-1/images",
		map[string]string{"kind": "during", "content_type": "image/jpeg"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

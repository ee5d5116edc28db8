package order

import (
	"context"
	"time"

	customerapp "github.com/swas/backend/internal/application/customer"
	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
)

// GetTransaction returns a transaction with its customer and line items
func (s *OrderService) GetTransaction(ctx context.Context, scope shared.Scope, transactionID string) (*ServiceRequestResponse, error) {
	t, err := s.loadTransaction(ctx, s.transactionRepo, scope, transactionID)
	if err != nil {
		return nil, err
	}

	items, err := s.lineItemRepo.FindAll(ctx, order.LineItemFilter{TransactionID: t.TransactionID})
	if err != nil {
		return nil, err
	}

	resp := &ServiceRequestResponse{
		Transaction: ToTransactionResponse(t),
		LineItems:   make([]LineItemResponse, len(items)),
	}
	for i := range items {
		resp.LineItems[i] = ToLineItemResponse(&items[i])
	}

	c, err := s.customerRepo.FindByCustID(ctx, t.CustID)
	switch {
	case err == nil:
		cr := customerapp.ToCustomerResponse(c)
		resp.Customer = &cr
	case !shared.IsNotFound(err):
		return nil, err
	}
	return resp, nil
}

// ListTransactions returns a page of transactions visible to the caller
func (s *OrderService) ListTransactions(ctx context.Context, scope shared.Scope, q ListTransactionsQuery) (*shared.Paginated[TransactionResponse], error) {
	branchID, err := scope.Resolve(q.BranchID)
	if err != nil {
		return nil, err
	}

	filter := order.TransactionFilter{
		Filter:        shared.DefaultFilter(),
		PaymentStatus: order.PaymentStatus(q.PaymentStatus),
		CustID:        q.CustID,
	}
	filter.BranchID = branchID
	filter.Search = q.Search
	filter.OrderBy = "date_in"
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	if filter.From, err = s.parseDay(q.From); err != nil {
		return nil, err
	}
	if filter.To, err = s.parseDay(q.To); err != nil {
		return nil, err
	}
	if filter.To != nil {
		// inclusive upper bound
		end := filter.To.AddDate(0, 0, 1)
		filter.To = &end
	}

	txns, total, err := s.transactionRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]TransactionResponse, len(txns))
	for i := range txns {
		items[i] = ToTransactionResponse(&txns[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *OrderService) parseDay(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, s.location)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Dates must be YYYY-MM-DD")
	}
	return &t, nil
}

package order

import (
	"context"
	"time"

	"github.com/swas/backend/internal/domain/shared"
)

// TransactionFilter narrows transaction listings
type TransactionFilter struct {
	shared.Filter
	PaymentStatus PaymentStatus
	// Unpaid matches NP and PARTIAL; ignored when PaymentStatus is set
	Unpaid bool
	CustID string
	From   *time.Time
	To     *time.Time
}

// TransactionRepository defines persistence for transactions and their payments
type TransactionRepository interface {
	FindByTransactionID(ctx context.Context, transactionID string) (*Transaction, error)
	FindAll(ctx context.Context, filter TransactionFilter) ([]Transaction, int64, error)
	// Save inserts or updates the transaction and appends payments not yet stored
	Save(ctx context.Context, t *Transaction) error
	// SaveWithLock updates only when the stored version still equals
	// expectedVersion, the version the caller loaded. Otherwise it returns
	// ErrConcurrencyConflict.
	SaveWithLock(ctx context.Context, t *Transaction, expectedVersion int) error
}

// LineItemFilter narrows line item listings
type LineItemFilter struct {
	BranchID        string
	Status          Status
	TransactionID   string
	ExcludeReleased bool
}

// LineItemRepository defines persistence for line items
type LineItemRepository interface {
	FindByLineItemID(ctx context.Context, lineItemID string) (*LineItem, error)
	FindByLineItemIDs(ctx context.Context, lineItemIDs []string) ([]LineItem, error)
	FindAll(ctx context.Context, filter LineItemFilter) ([]LineItem, error)
	SaveBatch(ctx context.Context, items []*LineItem) error
	SaveWithLock(ctx context.Context, li *LineItem, expectedVersion int) error
}

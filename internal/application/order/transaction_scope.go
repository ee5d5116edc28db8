package order

import (
	"context"

	"github.com/swas/backend/internal/domain/customer"
	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
)

// TransactionScope runs intake, payments and bulk status updates atomically.
// If fn returns an error the database transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are the repositories bound to one database transaction
type TransactionalRepositories interface {
	TransactionRepo() order.TransactionRepository
	LineItemRepo() order.LineItemRepository
	CustomerRepo() customer.CustomerRepository
	// Sequences hands out business-id counters inside the same transaction,
	// so a rolled back intake does not burn a number.
	Sequences() shared.SequenceGenerator
}

// NoOpTransactionScope runs fn against plain repositories. Used in tests.
type NoOpTransactionScope struct {
	transactionRepo order.TransactionRepository
	lineItemRepo    order.LineItemRepository
	customerRepo    customer.CustomerRepository
	sequences       shared.SequenceGenerator
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	transactionRepo order.TransactionRepository,
	lineItemRepo order.LineItemRepository,
	customerRepo customer.CustomerRepository,
	sequences shared.SequenceGenerator,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		transactionRepo: transactionRepo,
		lineItemRepo:    lineItemRepo,
		customerRepo:    customerRepo,
		sequences:       sequences,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) TransactionRepo() order.TransactionRepository {
	return s.transactionRepo
}
func (s *NoOpTransactionScope) LineItemRepo() order.LineItemRepository    { return s.lineItemRepo }
func (s *NoOpTransactionScope) CustomerRepo() customer.CustomerRepository { return s.customerRepo }
func (s *NoOpTransactionScope) Sequences() shared.SequenceGenerator       { return s.sequences }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

package order

import (
	"context"
	"time"

	"github.com/swas/backend/internal/domain/branch"
	"github.com/swas/backend/internal/domain/catalog"
	"github.com/swas/backend/internal/domain/customer"
	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Dependencies groups what OrderService needs. Storage, Renderer, Idempotency
// and Metrics are optional.
type Dependencies struct {
	Scope           TransactionScope
	TransactionRepo order.TransactionRepository
	LineItemRepo    order.LineItemRepository
	CustomerRepo    customer.CustomerRepository
	BranchRepo      branch.BranchRepository
	ServiceRepo     catalog.ServiceRepository
	Publisher       shared.EventPublisher
	Idempotency     shared.IdempotencyStore
	IdempotencyTTL  time.Duration
	Storage         ImageStorage
	Renderer        PDFRenderer
	Metrics         Metrics
	ShopName        string
	Location        *time.Location
	Logger          *zap.Logger
}

// OrderService handles service requests: intake, payments and the line item pipeline
type OrderService struct {
	scope           TransactionScope
	transactionRepo order.TransactionRepository
	lineItemRepo    order.LineItemRepository
	customerRepo    customer.CustomerRepository
	branchRepo      branch.BranchRepository
	serviceRepo     catalog.ServiceRepository
	publisher       shared.EventPublisher
	idempotency     shared.IdempotencyStore
	idempotencyTTL  time.Duration
	storage         ImageStorage
	renderer        PDFRenderer
	metrics         Metrics
	shopName        string
	location        *time.Location
	logger          *zap.Logger
	now             func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(deps Dependencies) *OrderService {
	s := &OrderService{
		scope:           deps.Scope,
		transactionRepo: deps.TransactionRepo,
		lineItemRepo:    deps.LineItemRepo,
		customerRepo:    deps.CustomerRepo,
		branchRepo:      deps.BranchRepo,
		serviceRepo:     deps.ServiceRepo,
		publisher:       deps.Publisher,
		idempotency:     deps.Idempotency,
		idempotencyTTL:  deps.IdempotencyTTL,
		storage:         deps.Storage,
		renderer:        deps.Renderer,
		metrics:         deps.Metrics,
		shopName:        deps.ShopName,
		location:        deps.Location,
		logger:          deps.Logger,
		now:             time.Now,
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.idempotencyTTL <= 0 {
		s.idempotencyTTL = shared.DefaultIdempotencyConfig().TTL
	}
	if s.shopName == "" {
		s.shopName = "SWAS"
	}
	return s
}

// publish sends and clears pending events of every aggregate. Failures are
// logged; the state change is already committed.
func (s *OrderService) publish(ctx context.Context, aggs ...shared.AggregateRoot) {
	for _, agg := range aggs {
		if err := shared.PublishAndClear(ctx, s.publisher, agg); err != nil {
			s.logger.Warn("Failed to publish order events", zap.Error(err))
		}
	}
}

// loadTransaction fetches a transaction the caller may see
func (s *OrderService) loadTransaction(ctx context.Context, repo order.TransactionRepository, scope shared.Scope, transactionID string) (*order.Transaction, error) {
	t, err := repo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(t.BranchID) {
		return nil, shared.ErrForbidden
	}
	return t, nil
}

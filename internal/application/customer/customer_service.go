package customer

import (
	"context"
	"time"

	"github.com/swas/backend/internal/domain/customer"
	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerService handles customer-related business operations.
// Customers are created by intake; this service lists, edits and removes them.
type CustomerService struct {
	customerRepo    customer.CustomerRepository
	transactionRepo order.TransactionRepository
	publisher       shared.EventPublisher
	logger          *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo customer.CustomerRepository,
	transactionRepo order.TransactionRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
		publisher:       publisher,
		logger:          logger,
	}
}

// List returns a page of customers visible to the caller
func (s *CustomerService) List(ctx context.Context, scope shared.Scope, q ListCustomersQuery) (*shared.Paginated[CustomerResponse], error) {
	branchID, err := scope.Resolve(q.BranchID)
	if err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	filter.BranchID = branchID
	filter.Search = q.Search
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}

	customers, err := s.customerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.customerRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = ToCustomerResponse(&customers[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get returns one customer. Customers are shared across branches for reads
// because intake at any branch may reuse them.
func (s *CustomerService) Get(ctx context.Context, custID string) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByCustID(ctx, custID)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// FindByNameAndBirthdate looks a customer up the way intake does
func (s *CustomerService) FindByNameAndBirthdate(ctx context.Context, name string, bdate *time.Time) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByNameAndBirthdate(ctx, customer.NormalizeName(name), bdate)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// Update replaces the editable details
func (s *CustomerService) Update(ctx context.Context, scope shared.Scope, custID string, req UpdateCustomerRequest) (*CustomerResponse, error) {
	bdate, err := ParseBirthdate(req.CustBdate)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_BIRTHDATE", "Birthdate must be YYYY-MM-DD")
	}

	c, err := s.load(ctx, scope, custID)
	if err != nil {
		return nil, err
	}
	if err := c.Update(customer.Profile{
		Name:      req.CustName,
		Birthdate: bdate,
		Address:   req.CustAddress,
		Email:     req.CustEmail,
		Contact:   req.CustContact,
	}); err != nil {
		return nil, err
	}
	if err := s.customerRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, c); err != nil {
		s.logger.Warn("Failed to publish customer events", zap.Error(err))
	}

	resp := ToCustomerResponse(c)
	return &resp, nil
}

// Delete removes a customer that has no outstanding balance
func (s *CustomerService) Delete(ctx context.Context, scope shared.Scope, custID string) error {
	if _, err := s.load(ctx, scope, custID); err != nil {
		return err
	}

	filter := order.TransactionFilter{Filter: shared.Filter{Page: 1, PageSize: 1}, CustID: custID, Unpaid: true}
	_, unpaid, err := s.transactionRepo.FindAll(ctx, filter)
	if err != nil {
		return err
	}
	if unpaid > 0 {
		return shared.NewDomainError("INVALID_STATE", "Customer has unpaid transactions and cannot be deleted")
	}

	if err := s.customerRepo.DeleteByCustID(ctx, custID); err != nil {
		return err
	}
	s.logger.Info("Customer deleted", zap.String("cust_id", custID))
	return nil
}

func (s *CustomerService) load(ctx context.Context, scope shared.Scope, custID string) (*customer.Customer, error) {
	c, err := s.customerRepo.FindByCustID(ctx, custID)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(c.BranchID) {
		return nil, shared.ErrForbidden
	}
	return c, nil
}

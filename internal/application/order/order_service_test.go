package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/swas/backend/internal/application/catalog"
	"github.com/swas/backend/internal/domain/branch"
	"github.com/swas/backend/internal/domain/catalog"
	"github.com/swas/backend/internal/domain/customer"
	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// mocks

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*order.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAll(ctx context.Context, filter order.TransactionFilter) ([]order.Transaction, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) Save(ctx context.Context, t *order.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTransactionRepository) SaveWithLock(ctx context.Context, t *order.Transaction, expectedVersion int) error {
	return m.Called(ctx, t, expectedVersion).Error(0)
}

type MockLineItemRepository struct {
	mock.Mock
}

func (m *MockLineItemRepository) FindByLineItemID(ctx context.Context, lineItemID string) (*order.LineItem, error) {
	args := m.Called(ctx, lineItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.LineItem), args.Error(1)
}

func (m *MockLineItemRepository) FindByLineItemIDs(ctx context.Context, lineItemIDs []string) ([]order.LineItem, error) {
	args := m.Called(ctx, lineItemIDs)
	return args.Get(0).([]order.LineItem), args.Error(1)
}

func (m *MockLineItemRepository) FindAll(ctx context.Context, filter order.LineItemFilter) ([]order.LineItem, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.LineItem), args.Error(1)
}

func (m *MockLineItemRepository) SaveBatch(ctx context.Context, items []*order.LineItem) error {
	return m.Called(ctx, items).Error(0)
}

func (m *MockLineItemRepository) SaveWithLock(ctx context.Context, li *order.LineItem, expectedVersion int) error {
	return m.Called(ctx, li, expectedVersion).Error(0)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByCustID(ctx context.Context, custID string) (*customer.Customer, error) {
	args := m.Called(ctx, custID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByNameAndBirthdate(ctx context.Context, name string, bdate *time.Time) (*customer.Customer, error) {
	args := m.Called(ctx, name, bdate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByCustIDs(ctx context.Context, custIDs []string) ([]customer.Customer, error) {
	args := m.Called(ctx, custIDs)
	return args.Get(0).([]customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]customer.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepository) SaveWithLock(ctx context.Context, c *customer.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepository) DeleteByCustID(ctx context.Context, custID string) error {
	return m.Called(ctx, custID).Error(0)
}

type MockBranchRepository struct {
	mock.Mock
}

func (m *MockBranchRepository) FindAll(ctx context.Context) ([]branch.Branch, error) {
	args := m.Called(ctx)
	return args.Get(0).([]branch.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindByBranchID(ctx context.Context, branchID string) (*branch.Branch, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*branch.Branch), args.Error(1)
}

func (m *MockBranchRepository) ExistsByBranchID(ctx context.Context, branchID string) (bool, error) {
	args := m.Called(ctx, branchID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBranchRepository) ExistsByNumber(ctx context.Context, number int) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockBranchRepository) Save(ctx context.Context, b *branch.Branch) error {
	return m.Called(ctx, b).Error(0)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) FindAll(ctx context.Context, serviceType catalog.ServiceType) ([]catalog.Service, error) {
	args := m.Called(ctx, serviceType)
	return args.Get(0).([]catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) FindByServiceID(ctx context.Context, serviceID string) (*catalog.Service, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) FindByServiceIDs(ctx context.Context, serviceIDs []string) ([]catalog.Service, error) {
	args := m.Called(ctx, serviceIDs)
	return args.Get(0).([]catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) MaxServiceNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServiceRepository) Save(ctx context.Context, s *catalog.Service) error {
	return m.Called(ctx, s).Error(0)
}

type MockImageStorage struct {
	mock.Mock
}

func (m *MockImageStorage) PresignUpload(ctx context.Context, key, contentType string) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockImageStorage) PresignDownload(ctx context.Context, key string) (string, time.Time, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	args := m.Called(ctx, html)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type counterSequences struct {
	mu   sync.Mutex
	next map[string]int64
}

func (s *counterSequences) Next(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next == nil {
		s.next = make(map[string]int64)
	}
	s.next[key]++
	return s.next[key], nil
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type recordingMetrics struct {
	intakes     int
	payments    int
	transitions []string
}

func (m *recordingMetrics) RecordIntake(context.Context, string, int, float64) { m.intakes++ }
func (m *recordingMetrics) RecordPayment(context.Context, string, string, float64) {
	m.payments++
}
func (m *recordingMetrics) RecordStatusTransition(_ context.Context, _ string, from, to string) {
	m.transitions = append(m.transitions, from+"->"+to)
}

type memoryIdempotency struct {
	mu      sync.Mutex
	claimed map[string]bool
	results map[string][]byte
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{claimed: map[string]bool{}, results: map[string][]byte{}}
}

func (s *memoryIdempotency) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimed[key] {
		return false, nil
	}
	s.claimed[key] = true
	return true, nil
}

func (s *memoryIdempotency) SaveResult(_ context.Context, key string, payload []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[key] = payload
	return nil
}

func (s *memoryIdempotency) GetResult(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.results[key]
	return p, ok, nil
}

func (s *memoryIdempotency) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claimed, key)
	delete(s.results, key)
	return nil
}

func (s *memoryIdempotency) Close() error { return nil }

// fixtures

var fixedNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	txRepo    *MockTransactionRepository
	liRepo    *MockLineItemRepository
	custRepo  *MockCustomerRepository
	branch    *MockBranchRepository
	services  *MockServiceRepository
	storage   *MockImageStorage
	renderer  *MockPDFRenderer
	publisher *recordingPublisher
	metrics   *recordingMetrics
	idem      *memoryIdempotency
	svc       *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		txRepo:    new(MockTransactionRepository),
		liRepo:    new(MockLineItemRepository),
		custRepo:  new(MockCustomerRepository),
		branch:    new(MockBranchRepository),
		services:  new(MockServiceRepository),
		storage:   new(MockImageStorage),
		renderer:  new(MockPDFRenderer),
		publisher: &recordingPublisher{},
		metrics:   &recordingMetrics{},
		idem:      newMemoryIdempotency(),
	}
	env.svc = NewOrderService(Dependencies{
		Scope:           NewNoOpTransactionScope(env.txRepo, env.liRepo, env.custRepo, &counterSequences{}),
		TransactionRepo: env.txRepo,
		LineItemRepo:    env.liRepo,
		CustomerRepo:    env.custRepo,
		BranchRepo:      env.branch,
		ServiceRepo:     env.services,
		Publisher:       env.publisher,
		Idempotency:     env.idem,
		Storage:         env.storage,
		Renderer:        env.renderer,
		Metrics:         env.metrics,
		Logger:          zap.NewNop(),
	})
	env.svc.now = func() time.Time { return fixedNow }
	return env
}

func testBranch(t *testing.T) *branch.Branch {
	t.Helper()
	b, err := branch.NewBranch("SMVAL-B-NCR", 1, "SMVAL", "SM Valenzuela", "Valenzuela City", "NCR", branch.BranchTypeBranch)
	require.NoError(t, err)
	return b
}

func testServices(t *testing.T) []catalog.Service {
	t.Helper()
	basic, err := catalog.NewService("SERVICE-1", "Basic Cleaning", decimal.NewFromInt(325), 5, catalog.ServiceTypeService)
	require.NoError(t, err)
	unyellow, err := catalog.NewService("SERVICE-4", "Unyellowing", decimal.NewFromInt(125), 3, catalog.ServiceTypeAdditional)
	require.NoError(t, err)
	return []catalog.Service{*basic, *unyellow}
}

func newTestTransaction(t *testing.T, total int64, pairs int) *order.Transaction {
	t.Helper()
	txn, err := order.NewTransaction("SMVAL-B-NCR", "2026-10-00001-SMVAL", "CUST-1-1", "SMVAL-STAFF-1",
		fixedNow.AddDate(0, 0, -5), pairs, decimal.NewFromInt(total), decimal.Zero, order.PaymentModeCash)
	require.NoError(t, err)
	txn.ClearDomainEvents()
	return txn
}

func newTestLineItem(t *testing.T, txn *order.Transaction, n int, status order.Status) *order.LineItem {
	t.Helper()
	li, err := order.NewLineItem(txn.BranchID, order.FormatLineItemID(txn.TransactionID, n), txn.TransactionID, txn.CustID,
		catalog.PriorityNormal, []catalog.ServiceLine{{ServiceID: "SERVICE-1", Quantity: 1}}, "White sneakers",
		fixedNow.AddDate(0, 0, 2), fixedNow.AddDate(0, 0, -5))
	require.NoError(t, err)
	for li.CurrentStatus != status {
		next := order.Statuses()[indexOf(li.CurrentStatus)+1]
		require.NoError(t, li.TransitionTo(next, true, fixedNow.AddDate(0, 0, -1)))
	}
	li.ClearDomainEvents()
	return li
}

func indexOf(s order.Status) int {
	for i, st := range order.Statuses() {
		if st == s {
			return i
		}
	}
	return -1
}

func staffActor() Actor {
	return Actor{UserID: "SMVAL-STAFF-1", Scope: shared.BranchScope("SMVAL-B-NCR")}
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	de, ok := shared.AsDomainError(err)
	require.True(t, ok, "expected a domain error, got %v", err)
	return de.Code
}

func intakeRequest() CreateServiceRequestInput {
	return CreateServiceRequestInput{
		Customer: CustomerInput{CustName: "juan dela cruz", CustBdate: "1990-05-17", CustContact: "09171234567"},
		LineItems: []LineItemInput{
			{Priority: "Rush", Shoes: "White sneakers", Services: []catalogapp.ServiceLineRequest{{ServiceID: "SERVICE-1", Quantity: 1}, {ServiceID: "SERVICE-4", Quantity: 1}}},
			{Priority: "Normal", Shoes: "Leather boots", Services: []catalogapp.ServiceLineRequest{{ServiceID: "SERVICE-1", Quantity: 1}}},
		},
		AmountPaid:  decimal.NewFromInt(200),
		PaymentMode: "Cash",
	}
}

// intake

func TestOrderService_CreateServiceRequest_NewCustomer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.branch.On("FindByBranchID", ctx, "SMVAL-B-NCR").Return(testBranch(t), nil)
	env.services.On("FindByServiceIDs", ctx, []string{"SERVICE-1", "SERVICE-4"}).Return(testServices(t), nil)
	env.custRepo.On("FindByNameAndBirthdate", ctx, "juan dela cruz", mock.Anything).Return(nil, shared.ErrNotFound)
	env.txRepo.On("Save", ctx, mock.AnythingOfType("*order.Transaction")).Return(nil)
	env.liRepo.On("SaveBatch", ctx, mock.AnythingOfType("[]*order.LineItem")).Return(nil)
	env.custRepo.On("Save", ctx, mock.AnythingOfType("*customer.Customer")).Return(nil)

	resp, err := env.svc.CreateServiceRequest(ctx, staffActor(), intakeRequest())
	require.NoError(t, err)

	// 325 + 125 + 150 rush, plus 325
	assert.Equal(t, "925.00", resp.Transaction.TotalAmount.StringFixed(2))
	assert.Equal(t, "725.00", resp.Transaction.Balance.StringFixed(2))
	assert.Equal(t, "PARTIAL", resp.Transaction.PaymentStatus)
	assert.Equal(t, "2026-10-00001-SMVAL", resp.Transaction.TransactionID)
	require.Len(t, resp.Transaction.Payments, 1)
	assert.Equal(t, "PAY-1-SMVAL", resp.Transaction.Payments[0].PaymentID)

	require.Len(t, resp.LineItems, 2)
	assert.Equal(t, "2026-10-00001-001-SMVAL", resp.LineItems[0].LineItemID)
	assert.Equal(t, "2026-10-00001-002-SMVAL", resp.LineItems[1].LineItemID)
	for _, li := range resp.LineItems {
		assert.Equal(t, "Queued", li.CurrentStatus)
	}

	require.NotNil(t, resp.Customer)
	assert.Equal(t, "CUST-1-1", resp.Customer.CustID)
	assert.Equal(t, 1, resp.Customer.TotalServices)

	assert.Contains(t, env.publisher.types(), order.EventTypeTransactionCreated)
	assert.Contains(t, env.publisher.types(), order.EventTypeLineItemCreated)
	assert.Equal(t, 1, env.metrics.intakes)
	assert.Equal(t, 1, env.metrics.payments)
}

func TestOrderService_CreateServiceRequest_ReusesCustomer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	existing, err := customer.NewCustomer("VAL-B-NCR", "CUST-2-7", customer.Profile{Name: "Juan Dela Cruz"})
	require.NoError(t, err)

	env.branch.On("FindByBranchID", ctx, "SMVAL-B-NCR").Return(testBranch(t), nil)
	env.services.On("FindByServiceIDs", ctx, mock.Anything).Return(testServices(t), nil)
	env.custRepo.On("FindByNameAndBirthdate", ctx, "juan dela cruz", mock.Anything).Return(existing, nil)
	env.txRepo.On("Save", ctx, mock.Anything).Return(nil)
	env.liRepo.On("SaveBatch", ctx, mock.Anything).Return(nil)
	env.custRepo.On("SaveWithLock", ctx, existing).Return(nil)

	req := intakeRequest()
	req.AmountPaid = decimal.Zero
	resp, err := env.svc.CreateServiceRequest(ctx, staffActor(), req)

	require.NoError(t, err)
	assert.Equal(t, "CUST-2-7", resp.Transaction.CustID)
	assert.Equal(t, "NP", resp.Transaction.PaymentStatus)
	assert.Equal(t, "925.00", existing.TotalExpenditure.StringFixed(2))
	assert.Empty(t, resp.Transaction.Payments)
	env.custRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOrderService_CreateServiceRequest_ConcurrentCustomerUpdateConflicts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	existing, err := customer.NewCustomer("SMVAL-B-NCR", "CUST-1-3", customer.Profile{Name: "Juan Dela Cruz"})
	require.NoError(t, err)
	loadedAt := existing.Version

	env.branch.On("FindByBranchID", ctx, "SMVAL-B-NCR").Return(testBranch(t), nil)
	env.services.On("FindByServiceIDs", ctx, mock.Anything).Return(testServices(t), nil)
	env.custRepo.On("FindByNameAndBirthdate", ctx, "juan dela cruz", mock.Anything).Return(existing, nil)
	env.txRepo.On("Save", ctx, mock.Anything).Return(nil)
	env.liRepo.On("SaveBatch", ctx, mock.Anything).Return(nil)
	// another counter already bumped this customer's totals
	env.custRepo.On("SaveWithLock", ctx, existing).
		Return(shared.NewDomainError(shared.ErrConcurrencyConflict.Code, "The customer record has been modified by another request"))

	_, err = env.svc.CreateServiceRequest(ctx, staffActor(), intakeRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Equal(t, loadedAt+1, existing.Version, "one increment since load, checked against the loaded version")
	env.custRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Empty(t, env.publisher.types())
	assert.Zero(t, env.metrics.intakes)
}

func TestOrderService_CreateServiceRequest_Rejections(t *testing.T) {
	ctx := context.Background()
	wrongTotal := decimal.NewFromInt(900)

	tests := []struct {
		name   string
		mutate func(*CreateServiceRequestInput)
		code   string
	}{
		{"total mismatch", func(r *CreateServiceRequestInput) { r.TotalAmount = &wrongTotal }, "VALIDATION_FAILED"},
		{"overpaid", func(r *CreateServiceRequestInput) { r.AmountPaid = decimal.NewFromInt(1000) }, "PAYMENT_REJECTED"},
		{"negative paid", func(r *CreateServiceRequestInput) { r.AmountPaid = decimal.NewFromInt(-1) }, "PAYMENT_REJECTED"},
		{"no line items", func(r *CreateServiceRequestInput) { r.LineItems = nil }, "NO_LINE_ITEMS"},
		{"line item without services", func(r *CreateServiceRequestInput) { r.LineItems[1].Services = nil }, "NO_SERVICES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.branch.On("FindByBranchID", ctx, "SMVAL-B-NCR").Return(testBranch(t), nil)
			env.services.On("FindByServiceIDs", ctx, mock.Anything).Return(testServices(t), nil)

			req := intakeRequest()
			tt.mutate(&req)
			_, err := env.svc.CreateServiceRequest(ctx, staffActor(), req)

			require.Error(t, err)
			assert.Equal(t, tt.code, domainCode(t, err))
			env.txRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_CreateServiceRequest_UnknownService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.branch.On("FindByBranchID", ctx, "SMVAL-B-NCR").Return(testBranch(t), nil)
	env.services.On("FindByServiceIDs", ctx, mock.Anything).Return(testServices(t)[:1], nil)

	_, err := env.svc.CreateServiceRequest(ctx, staffActor(), intakeRequest())
	assert.Equal(t, "UNKNOWN_SERVICE", domainCode(t, err))
}

func TestOrderService_CreateServiceRequest_OtherBranchForbidden(t *testing.T) {
	env := newTestEnv(t)
	req := intakeRequest()
	req.BranchID = "VAL-B-NCR"

	_, err := env.svc.CreateServiceRequest(context.Background(), staffActor(), req)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

// payments

func TestOrderService_ApplyPayment_PaysAndPicksUp(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 325, 1)
	li := newTestLineItem(t, txn, 1, order.StatusReadyForPickup)
	txnVersion, liVersion := txn.Version, li.Version

	env.txRepo.On("FindByTransactionID", ctx, txn.TransactionID).Return(txn, nil)
	env.liRepo.On("FindByLineItemID", ctx, li.LineItemID).Return(li, nil)
	env.liRepo.On("SaveWithLock", ctx, li, liVersion).Return(nil)
	env.txRepo.On("SaveWithLock", ctx, txn, txnVersion).Return(nil)

	resp, err := env.svc.ApplyPayment(ctx, staffActor(), txn.TransactionID, ApplyPaymentRequest{
		DueNow:       decimal.NewFromInt(325),
		CustomerPaid: decimal.NewFromInt(500),
		LineItemID:   li.LineItemID,
		MarkPickedUp: true,
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "175.00", resp.Change.StringFixed(2))
	assert.True(t, resp.Balance.IsZero())
	assert.Equal(t, "PAID", resp.Transaction.PaymentStatus)
	require.NotNil(t, resp.LineItem)
	assert.Equal(t, "Picked Up", resp.LineItem.CurrentStatus)
	assert.NotNil(t, resp.Transaction.DateOut)
	assert.Equal(t, 1, resp.Transaction.NoReleased)
	assert.Equal(t, []string{"Ready for Pickup->Picked Up"}, env.metrics.transitions)
	env.txRepo.AssertExpectations(t)
	env.liRepo.AssertExpectations(t)
}

func TestOrderService_ApplyPayment_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		req  ApplyPaymentRequest
		code string
	}{
		{"exceeds balance", ApplyPaymentRequest{DueNow: decimal.NewFromInt(400), CustomerPaid: decimal.NewFromInt(400)}, "PAYMENT_REJECTED"},
		{"zero due", ApplyPaymentRequest{DueNow: decimal.Zero, CustomerPaid: decimal.NewFromInt(100)}, "PAYMENT_REJECTED"},
		{"customer paid too little", ApplyPaymentRequest{DueNow: decimal.NewFromInt(100), CustomerPaid: decimal.NewFromInt(50)}, "PAYMENT_REJECTED"},
		{"pickup without item", ApplyPaymentRequest{DueNow: decimal.NewFromInt(100), CustomerPaid: decimal.NewFromInt(100), MarkPickedUp: true}, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			txn := newTestTransaction(t, 325, 1)
			env.txRepo.On("FindByTransactionID", ctx, txn.TransactionID).Return(txn, nil)

			_, err := env.svc.ApplyPayment(ctx, staffActor(), txn.TransactionID, tt.req, "")
			require.Error(t, err)
			assert.Equal(t, tt.code, domainCode(t, err))
			env.txRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_ApplyPayment_PickupBeforeFullyPaid(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 325, 1)
	li := newTestLineItem(t, txn, 1, order.StatusReadyForPickup)
	env.txRepo.On("FindByTransactionID", ctx, txn.TransactionID).Return(txn, nil)
	env.liRepo.On("FindByLineItemID", ctx, li.LineItemID).Return(li, nil)

	_, err := env.svc.ApplyPayment(ctx, staffActor(), txn.TransactionID, ApplyPaymentRequest{
		DueNow:       decimal.NewFromInt(100),
		CustomerPaid: decimal.NewFromInt(100),
		LineItemID:   li.LineItemID,
		MarkPickedUp: true,
	}, "")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestOrderService_ApplyPayment_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 325, 1)
	env.txRepo.On("FindByTransactionID", ctx, txn.TransactionID).Return(txn, nil).Once()
	env.txRepo.On("SaveWithLock", ctx, txn, mock.Anything).Return(nil).Once()

	req := ApplyPaymentRequest{DueNow: decimal.NewFromInt(100), CustomerPaid: decimal.NewFromInt(100)}
	first, err := env.svc.ApplyPayment(ctx, staffActor(), txn.TransactionID, req, "key-1")
	require.NoError(t, err)
	second, err := env.svc.ApplyPayment(ctx, staffActor(), txn.TransactionID, req, "key-1")
	require.NoError(t, err)

	assert.Equal(t, first.Transaction.TransactionID, second.Transaction.TransactionID)
	assert.True(t, first.Balance.Equal(second.Balance))
	assert.Len(t, second.Transaction.Payments, 1)
	assert.Len(t, txn.Payments, 1)
	assert.Equal(t, 1, env.metrics.payments)
	env.txRepo.AssertExpectations(t)
}

func TestOrderService_ApplyPayment_FailedAttemptReleasesKey(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 325, 1)
	env.txRepo.On("FindByTransactionID", ctx, txn.TransactionID).Return(txn, nil)
	env.txRepo.On("SaveWithLock", ctx, txn, mock.Anything).Return(shared.ErrConcurrencyConflict).Once()
	env.txRepo.On("SaveWithLock", ctx, txn, mock.Anything).Return(nil).Once()

	req := ApplyPaymentRequest{DueNow: decimal.NewFromInt(100), CustomerPaid: decimal.NewFromInt(100)}
	_, err := env.svc.ApplyPayment(ctx, staffActor(), txn.TransactionID, req, "key-2")
	require.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	// a fresh transaction, since the mock kept the failed attempt's mutation
	fresh := newTestTransaction(t, 325, 1)
	env.txRepo.ExpectedCalls = nil
	env.txRepo.On("FindByTransactionID", ctx, fresh.TransactionID).Return(fresh, nil)
	env.txRepo.On("SaveWithLock", ctx, fresh, mock.Anything).Return(nil)

	resp, err := env.svc.ApplyPayment(ctx, staffActor(), fresh.TransactionID, req, "key-2")
	require.NoError(t, err)
	assert.Equal(t, "225.00", resp.Balance.StringFixed(2))
}

func TestOrderService_ApplyPayment_InFlightKey(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	claimed, err := env.idem.MarkProcessed(ctx, "payment:2026-10-00001-SMVAL:key-3", time.Hour)
	require.NoError(t, err)
	require.True(t, claimed)

	_, err = env.svc.ApplyPayment(ctx, staffActor(), "2026-10-00001-SMVAL", ApplyPaymentRequest{}, "key-3")
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

// line items

func TestOrderService_UpdateLineItemStatus(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 650, 2)
	a := newTestLineItem(t, txn, 1, order.StatusQueued)
	b := newTestLineItem(t, txn, 2, order.StatusQueued)
	ids := []string{a.LineItemID, b.LineItemID}

	env.liRepo.On("FindByLineItemIDs", ctx, ids).Return([]order.LineItem{*a, *b}, nil)
	env.txRepo.On("FindByTransactionID", ctx, txn.TransactionID).Return(txn, nil)
	env.liRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*order.LineItem"), a.Version).Return(nil).Twice()

	resp, err := env.svc.UpdateLineItemStatus(ctx, staffActor(), UpdateStatusRequest{
		LineItemIDs: []string{a.LineItemID, b.LineItemID, a.LineItemID},
		NewStatus:   "Ready for Delivery",
	})
	require.NoError(t, err)

	assert.Equal(t, "2 line item(s) updated to Ready for Delivery", resp.Message)
	assert.Equal(t, 2, resp.Updated)
	for _, li := range resp.LineItems {
		assert.Equal(t, "Ready for Delivery", li.CurrentStatus)
	}
	assert.Len(t, env.metrics.transitions, 2)
	env.txRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	env.liRepo.AssertExpectations(t)
}

func TestOrderService_UpdateLineItemStatus_OneIllegalFailsBatch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 650, 2)
	a := newTestLineItem(t, txn, 1, order.StatusQueued)
	b := newTestLineItem(t, txn, 2, order.StatusInProcess)
	ids := []string{a.LineItemID, b.LineItemID}

	env.liRepo.On("FindByLineItemIDs", ctx, ids).Return([]order.LineItem{*a, *b}, nil)
	env.txRepo.On("FindByTransactionID", ctx, txn.TransactionID).Return(txn, nil)

	_, err := env.svc.UpdateLineItemStatus(ctx, staffActor(), UpdateStatusRequest{LineItemIDs: ids, NewStatus: "Ready for Delivery"})

	require.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Contains(t, err.Error(), b.LineItemID)
	env.liRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_UpdateLineItemStatus_PickedUpClosesTransaction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 325, 1)
	_, err := txn.AddPayment("PAY-1-SMVAL", decimal.NewFromInt(325), order.PaymentModeCash, fixedNow)
	require.NoError(t, err)
	txn.ClearDomainEvents()
	li := newTestLineItem(t, txn, 1, order.StatusReadyForPickup)
	txnVersion := txn.Version

	env.liRepo.On("FindByLineItemIDs", ctx, []string{li.LineItemID}).Return([]order.LineItem{*li}, nil)
	env.txRepo.On("FindByTransactionID", ctx, txn.TransactionID).Return(txn, nil)
	env.liRepo.On("SaveWithLock", ctx, mock.Anything, li.Version).Return(nil)
	env.txRepo.On("SaveWithLock", ctx, txn, txnVersion).Return(nil)

	resp, err := env.svc.UpdateLineItemStatus(ctx, staffActor(), UpdateStatusRequest{LineItemIDs: []string{li.LineItemID}, NewStatus: "Picked Up"})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Updated)
	require.NotNil(t, txn.DateOut)
	assert.Equal(t, 1, txn.NoReleased)
	env.txRepo.AssertExpectations(t)
}

func TestOrderService_UpdateLineItemStatus_PickedUpUnpaid(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 325, 1)
	li := newTestLineItem(t, txn, 1, order.StatusReadyForPickup)
	env.liRepo.On("FindByLineItemIDs", ctx, []string{li.LineItemID}).Return([]order.LineItem{*li}, nil)
	env.txRepo.On("FindByTransactionID", ctx, txn.TransactionID).Return(txn, nil)

	_, err := env.svc.UpdateLineItemStatus(ctx, staffActor(), UpdateStatusRequest{LineItemIDs: []string{li.LineItemID}, NewStatus: "Picked Up"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestOrderService_UpdateLineItemStatus_NoneFound(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.liRepo.On("FindByLineItemIDs", ctx, []string{"nope"}).Return([]order.LineItem{}, nil)

	_, err := env.svc.UpdateLineItemStatus(ctx, staffActor(), UpdateStatusRequest{LineItemIDs: []string{"nope"}, NewStatus: "Queued"})
	assert.True(t, shared.IsNotFound(err))
}

func TestOrderService_UpdateLineItemStatus_OtherBranch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 325, 1)
	li := newTestLineItem(t, txn, 1, order.StatusQueued)
	env.liRepo.On("FindByLineItemIDs", ctx, []string{li.LineItemID}).Return([]order.LineItem{*li}, nil)

	actor := Actor{UserID: "VAL-STAFF-1", Scope: shared.BranchScope("VAL-B-NCR")}
	_, err := env.svc.UpdateLineItemStatus(ctx, actor, UpdateStatusRequest{LineItemIDs: []string{li.LineItemID}, NewStatus: "Ready for Delivery"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestOrderService_ListLineItemsByStatus_Empty(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.liRepo.On("FindAll", ctx, order.LineItemFilter{BranchID: "SMVAL-B-NCR", Status: order.StatusInProcess}).Return([]order.LineItem{}, nil)

	items, err := env.svc.ListLineItemsByStatus(ctx, shared.BranchScope("SMVAL-B-NCR"), "In Process", "")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestOrderService_ListLineItemsByStatus_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.ListLineItemsByStatus(context.Background(), shared.AllBranches, "Lost", "")
	assert.Equal(t, "INVALID_STATUS", domainCode(t, err))
}

func TestOrderService_ListLineItems_ExcludesReleased(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.liRepo.On("FindAll", ctx, order.LineItemFilter{ExcludeReleased: true}).Return([]order.LineItem{}, nil)

	_, err := env.svc.ListLineItems(ctx, shared.AllBranches, "")
	require.NoError(t, err)
	env.liRepo.AssertExpectations(t)
}

func TestOrderService_UpsertStatusDates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 325, 1)
	li := newTestLineItem(t, txn, 1, order.StatusToWarehouse)
	env.liRepo.On("FindByLineItemID", ctx, li.LineItemID).Return(li, nil)
	env.liRepo.On("SaveWithLock", ctx, li, li.Version).Return(nil)

	corrected := time.Date(2026, 10, 10, 15, 0, 0, 0, time.UTC)
	resp, err := env.svc.UpsertStatusDates(ctx, staffActor().Scope, UpsertStatusDatesRequest{
		LineItemID:  li.LineItemID,
		StatusDates: order.StatusDates{IbdDate: &corrected},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.IbdDate)
	assert.True(t, resp.IbdDate.Equal(corrected))
	assert.NotNil(t, resp.SrmDate)
}

func TestOrderService_UpsertStatusDates_Empty(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.UpsertStatusDates(context.Background(), shared.AllBranches, UpsertStatusDatesRequest{LineItemID: "x"})
	assert.Equal(t, "INVALID_INPUT", domainCode(t, err))
}

func TestOrderService_RequestImageUpload(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 325, 1)
	li := newTestLineItem(t, txn, 1, order.StatusQueued)
	expires := fixedNow.Add(15 * time.Minute)

	env.liRepo.On("FindByLineItemID", ctx, li.LineItemID).Return(li, nil)
	env.storage.On("PresignUpload", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "line-items/SMVAL-B-NCR/"+li.LineItemID+"/before-") && strings.HasSuffix(key, ".png")
	}), "image/png").Return("https://bucket.example/upload", expires, nil)
	env.liRepo.On("SaveWithLock", ctx, li, li.Version).Return(nil)

	resp, err := env.svc.RequestImageUpload(ctx, staffActor().Scope, li.LineItemID, ImageUploadRequest{Kind: "before", ContentType: "image/png"})
	require.NoError(t, err)

	assert.Equal(t, "https://bucket.example/upload", resp.UploadURL)
	assert.Equal(t, resp.Key, li.BeforeImg)
	assert.Equal(t, expires, resp.ExpiresAt)
}

func TestOrderService_RequestImageUpload_PresignFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 325, 1)
	li := newTestLineItem(t, txn, 1, order.StatusQueued)
	env.liRepo.On("FindByLineItemID", ctx, li.LineItemID).Return(li, nil)
	env.storage.On("PresignUpload", ctx, mock.Anything, "image/jpeg").Return("", time.Time{}, errors.New("no credentials"))

	_, err := env.svc.RequestImageUpload(ctx, staffActor().Scope, li.LineItemID, ImageUploadRequest{Kind: "after", ContentType: "image/jpeg"})
	require.Error(t, err)
	assert.Empty(t, li.AfterImg)
}

// receipts

func TestOrderService_RenderReceipt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 325, 1)
	li := newTestLineItem(t, txn, 1, order.StatusQueued)
	c, err := customer.NewCustomer("SMVAL-B-NCR", "CUST-1-1", customer.Profile{Name: "maria santos"})
	require.NoError(t, err)
	svc := testServices(t)[0]

	env.txRepo.On("FindByTransactionID", ctx, txn.TransactionID).Return(txn, nil)
	env.liRepo.On("FindAll", ctx, order.LineItemFilter{TransactionID: txn.TransactionID}).Return([]order.LineItem{*li}, nil)
	env.branch.On("FindByBranchID", ctx, "SMVAL-B-NCR").Return(testBranch(t), nil)
	env.services.On("FindByServiceID", ctx, "SERVICE-1").Return(&svc, nil)
	env.custRepo.On("FindByCustID", ctx, "CUST-1-1").Return(c, nil)
	env.renderer.On("RenderPDF", ctx, mock.MatchedBy(func(html string) bool {
		return strings.Contains(html, txn.TransactionID) &&
			strings.Contains(html, "Maria Santos") &&
			strings.Contains(html, "1 x Basic Cleaning") &&
			strings.Contains(html, "325.00")
	})).Return([]byte("%PDF-1.4"), nil)

	pdf, err := env.svc.RenderReceipt(ctx, staffActor().Scope, txn.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), pdf)
	env.renderer.AssertExpectations(t)
}

func TestOrderService_ReceiptHTML_ItemizesRushFee(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 800, 2)
	rush, err := order.NewLineItem(txn.BranchID, order.FormatLineItemID(txn.TransactionID, 1), txn.TransactionID, txn.CustID,
		catalog.PriorityRush, []catalog.ServiceLine{{ServiceID: "SERVICE-1", Quantity: 1}}, "White sneakers",
		fixedNow.AddDate(0, 0, 1), fixedNow.AddDate(0, 0, -5))
	require.NoError(t, err)
	normal := newTestLineItem(t, txn, 2, order.StatusQueued)
	svc := testServices(t)[0]

	env.txRepo.On("FindByTransactionID", ctx, txn.TransactionID).Return(txn, nil)
	env.liRepo.On("FindAll", ctx, order.LineItemFilter{TransactionID: txn.TransactionID}).
		Return([]order.LineItem{*rush, *normal}, nil)
	env.branch.On("FindByBranchID", ctx, "SMVAL-B-NCR").Return(testBranch(t), nil)
	env.services.On("FindByServiceID", ctx, "SERVICE-1").Return(&svc, nil)
	env.custRepo.On("FindByCustID", ctx, "CUST-1-1").Return(nil, shared.ErrNotFound)

	html, err := env.svc.ReceiptHTML(ctx, staffActor().Scope, txn.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(html, "Rush fee"), "only the rush pair carries the fee")
	assert.Contains(t, html, `<td>Rush fee</td><td class="amt">150.00</td>`)
	assert.Equal(t, 2, strings.Count(html, "1 x Basic Cleaning"))

	rushAt := strings.Index(html, rush.LineItemID)
	normalAt := strings.Index(html, normal.LineItemID)
	feeAt := strings.Index(html, "Rush fee")
	assert.True(t, rushAt < feeAt && feeAt < normalAt, "fee is listed under the rush item")
}

func TestOrderService_RenderReceipt_Disabled(t *testing.T) {
	env := newTestEnv(t)
	env.svc.renderer = nil
	_, err := env.svc.RenderReceipt(context.Background(), shared.AllBranches, "x")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

// transactions

func TestOrderService_GetTransaction_OtherBranch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 325, 1)
	env.txRepo.On("FindByTransactionID", ctx, txn.TransactionID).Return(txn, nil)

	_, err := env.svc.GetTransaction(ctx, shared.BranchScope("VAL-B-NCR"), txn.TransactionID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestOrderService_ListTransactions_InclusiveDateRange(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txn := newTestTransaction(t, 325, 1)

	env.txRepo.On("FindAll", ctx, mock.MatchedBy(func(f order.TransactionFilter) bool {
		return f.BranchID == "SMVAL-B-NCR" &&
			f.From != nil && f.From.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)) &&
			f.To != nil && f.To.Equal(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)) &&
			f.PaymentStatus == order.PaymentStatusUnpaid
	})).Return([]order.Transaction{*txn}, int64(1), nil)

	page, err := env.svc.ListTransactions(ctx, shared.BranchScope("SMVAL-B-NCR"), ListTransactionsQuery{
		From:          "2026-10-01",
		To:            "2026-10-14",
		PaymentStatus: "NP",
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Total)
}

func TestOrderService_ListTransactions_BadDate(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.ListTransactions(context.Background(), shared.AllBranches, ListTransactionsQuery{From: "14/10/2026"})
	assert.Equal(t, "INVALID_INPUT", domainCode(t, err))
}

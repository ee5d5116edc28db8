//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	analyticsapp "github.com/swas/backend/internal/application/analytics"
	catalogapp "github.com/swas/backend/internal/application/catalog"
	orderapp "github.com/swas/backend/internal/application/order"
	"github.com/swas/backend/internal/domain/branch"
	"github.com/swas/backend/internal/domain/catalog"
	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/infrastructure/event"
	"github.com/swas/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

type flowFixture struct {
	orders    *orderapp.OrderService
	analytics *analyticsapp.AnalyticsService
	txns      *persistence.GormTransactionRepository
	actor     orderapp.Actor
	branchID  string
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()
	tdb := NewSharedTestDB(t)
	tdb.CleanTables()
	ctx := context.Background()

	branchRepo := persistence.NewGormBranchRepository(tdb.DB)
	serviceRepo := persistence.NewGormServiceRepository(tdb.DB)
	txnRepo := persistence.NewGormTransactionRepository(tdb.DB)

	b, err := branch.NewBranch("", 1, "SMVAL", "SM Valenzuela", "Valenzuela City", "NCR", branch.BranchTypeBranch)
	require.NoError(t, err)
	require.NoError(t, branchRepo.Save(ctx, b))
	for _, s := range catalog.DefaultServices() {
		s := s
		require.NoError(t, serviceRepo.Save(ctx, &s))
	}

	log := zap.NewNop()
	return &flowFixture{
		orders: orderapp.NewOrderService(orderapp.Dependencies{
			Scope:           persistence.NewGormTransactionScope(tdb.DB),
			TransactionRepo: txnRepo,
			LineItemRepo:    persistence.NewGormLineItemRepository(tdb.DB),
			CustomerRepo:    persistence.NewGormCustomerRepository(tdb.DB),
			BranchRepo:      branchRepo,
			ServiceRepo:     serviceRepo,
			Publisher:       event.NewInMemoryEventBus(log),
			Logger:          log,
		}),
		analytics: analyticsapp.NewAnalyticsService(
			persistence.NewGormAnalyticsRepository(tdb.DB), serviceRepo,
			analyticsapp.Config{ForecastWindow: 7, ForecastHorizon: 7}, log),
		txns:     txnRepo,
		actor:    orderapp.Actor{UserID: "staff-smval", Scope: shared.BranchScope(b.BranchID)},
		branchID: b.BranchID,
	}
}

func (f *flowFixture) intake(t *testing.T, paid int64) *orderapp.ServiceRequestResponse {
	t.Helper()
	resp, err := f.orders.CreateServiceRequest(context.Background(), f.actor, orderapp.CreateServiceRequestInput{
		Customer: orderapp.CustomerInput{
			CustName:    "Juan Dela Cruz",
			CustContact: "09171234567",
		},
		LineItems: []orderapp.LineItemInput{{
			Priority: "Normal",
			Services: []catalogapp.ServiceLineRequest{{ServiceID: catalog.FormatServiceID(1), Quantity: 1}},
			Shoes:    "White sneakers",
		}},
		AmountPaid:  decimal.NewFromInt(paid),
		PaymentMode: "Cash",
	})
	require.NoError(t, err)
	require.Len(t, resp.LineItems, 1)
	return resp
}

func TestServiceRequestFlow_IntakeToPickup(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	created := f.intake(t, 100)
	txn := created.Transaction
	item := created.LineItems[0]

	assert.Equal(t, f.branchID, txn.BranchID)
	assert.Equal(t, string(order.PaymentStatusPartial), txn.PaymentStatus)
	assert.Equal(t, string(order.StatusQueued), item.CurrentStatus)
	require.True(t, txn.Balance.IsPositive())

	// Picking up an unpaid item is refused
	_, err := f.orders.UpdateLineItemStatus(ctx, f.actor, orderapp.UpdateStatusRequest{
		LineItemIDs: []string{item.LineItemID},
		NewStatus:   string(order.StatusPickedUp),
	})
	require.Error(t, err)

	for _, next := range []order.Status{
		order.StatusReadyForDelivery,
		order.StatusToWarehouse,
		order.StatusInProcess,
		order.StatusReturningToBranch,
		order.StatusReadyForPickup,
	} {
		resp, err := f.orders.UpdateLineItemStatus(ctx, f.actor, orderapp.UpdateStatusRequest{
			LineItemIDs: []string{item.LineItemID},
			NewStatus:   string(next),
		})
		require.NoError(t, err, "transition to %s", next)
		assert.Equal(t, 1, resp.Updated)
	}

	dates, err := f.orders.GetStatusDates(ctx, f.actor.Scope, item.LineItemID)
	require.NoError(t, err)
	assert.NotNil(t, dates.StatusDates.IsDate)

	paid, err := f.orders.ApplyPayment(ctx, f.actor, txn.TransactionID, orderapp.ApplyPaymentRequest{
		DueNow:       txn.Balance,
		CustomerPaid: txn.Balance.Add(decimal.NewFromInt(50)),
		PaymentMode:  "Cash",
		LineItemID:   item.LineItemID,
		MarkPickedUp: true,
	}, "")
	require.NoError(t, err)
	assert.True(t, paid.Change.Equal(decimal.NewFromInt(50)))
	assert.True(t, paid.Balance.IsZero())
	assert.Equal(t, string(order.PaymentStatusPaid), paid.Transaction.PaymentStatus)
	require.NotNil(t, paid.LineItem)
	assert.Equal(t, string(order.StatusPickedUp), paid.LineItem.CurrentStatus)

	stored, err := f.orders.GetTransaction(ctx, f.actor.Scope, txn.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Transaction.NoReleased)
	assert.NotNil(t, stored.Transaction.DateOut)
	assert.Len(t, stored.Transaction.Payments, 2)

	result, err := f.analytics.RefreshRollups(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Days)
	assert.Equal(t, 1, result.Months)
}

func TestServiceRequestFlow_OtherBranchIsForbidden(t *testing.T) {
	f := newFlowFixture(t)
	created := f.intake(t, 0)

	other := orderapp.Actor{UserID: "staff-other", Scope: shared.BranchScope("OTHER-B-NCR")}
	_, err := f.orders.GetTransaction(context.Background(), other.Scope, created.Transaction.TransactionID)
	require.Error(t, err)
}

func TestServiceRequestFlow_StaleSaveConflicts(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()
	created := f.intake(t, 0)

	first, err := f.txns.FindByTransactionID(ctx, created.Transaction.TransactionID)
	require.NoError(t, err)
	stale, err := f.txns.FindByTransactionID(ctx, created.Transaction.TransactionID)
	require.NoError(t, err)

	loaded := first.Version
	_, err = first.ApplyPayment("PAY-1-SMVAL", decimal.NewFromInt(10), decimal.NewFromInt(10), order.PaymentModeCash, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.txns.SaveWithLock(ctx, first, loaded))

	_, err = stale.ApplyPayment("PAY-2-SMVAL", decimal.NewFromInt(10), decimal.NewFromInt(10), order.PaymentModeCash, time.Now())
	require.NoError(t, err)
	err = f.txns.SaveWithLock(ctx, stale, loaded)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestServiceRequestFlow_RepeatCustomerCountersAccumulate(t *testing.T) {
	f := newFlowFixture(t)

	first := f.intake(t, 0)
	second := f.intake(t, 0)

	require.NotNil(t, second.Customer)
	assert.Equal(t, first.Customer.CustID, second.Customer.CustID)
	assert.Equal(t, 2, second.Customer.TotalServices)
	assert.True(t, second.Customer.TotalExpenditure.Equal(
		first.Transaction.TotalAmount.Add(second.Transaction.TotalAmount)))
}

package order

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	catalogapp "github.com/swas/backend/internal/application/catalog"
	customerapp "github.com/swas/backend/internal/application/customer"
	"github.com/swas/backend/internal/domain/catalog"
	"github.com/swas/backend/internal/domain/customer"
	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// pricedItem is a validated line item waiting for its id
type pricedItem struct {
	input LineItemInput
	lines []catalog.ServiceLine
	quote catalog.Quote
}

// CreateServiceRequest runs intake: customer resolution, pricing, the
// transaction, its line items and the optional initial payment, all in one
// database transaction.
func (s *OrderService) CreateServiceRequest(ctx context.Context, actor Actor, req CreateServiceRequestInput) (*ServiceRequestResponse, error) {
	branchID, err := actor.Scope.Resolve(req.BranchID)
	if err != nil {
		return nil, err
	}
	if branchID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "branch_id is required")
	}
	b, err := s.branchRepo.FindByBranchID(ctx, branchID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Branch "+branchID+" does not exist")
		}
		return nil, err
	}

	if len(req.LineItems) == 0 {
		return nil, shared.NewDomainError("NO_LINE_ITEMS", "A service request needs at least one line item")
	}
	bdate, err := customerapp.ParseBirthdate(req.Customer.CustBdate)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_BIRTHDATE", "Birthdate must be YYYY-MM-DD")
	}
	profile := customer.Profile{
		Name:      req.Customer.CustName,
		Birthdate: bdate,
		Address:   req.Customer.CustAddress,
		Email:     req.Customer.CustEmail,
		Contact:   req.Customer.CustContact,
	}

	// Price everything before touching the database
	var allLines []catalog.ServiceLine
	for i, li := range req.LineItems {
		if len(li.Services) == 0 {
			return nil, shared.NewDomainError("NO_SERVICES", fmt.Sprintf("Line item %d needs at least one service", i+1))
		}
		allLines = append(allLines, catalogapp.ToServiceLines(li.Services)...)
	}
	services, err := catalogapp.LoadServices(ctx, s.serviceRepo, allLines)
	if err != nil {
		return nil, err
	}

	dateIn := s.now().In(s.location)
	gross := decimal.Zero
	priced := make([]pricedItem, len(req.LineItems))
	for i, li := range req.LineItems {
		lines := catalogapp.ToServiceLines(li.Services)
		q, err := catalog.QuoteLineItem(lines, catalog.Priority(li.Priority), services, dateIn)
		if err != nil {
			return nil, err
		}
		priced[i] = pricedItem{input: li, lines: lines, quote: q}
		gross = gross.Add(q.Total)
	}

	total := gross.Sub(req.DiscountAmount).Round(2)
	if req.TotalAmount != nil && !req.TotalAmount.Round(2).Equal(total) {
		return nil, shared.NewDomainError("VALIDATION_FAILED",
			fmt.Sprintf("total_amount %s does not match the computed total %s", req.TotalAmount.StringFixed(2), total.StringFixed(2)))
	}
	if req.AmountPaid.IsNegative() {
		return nil, shared.NewDomainError("PAYMENT_REJECTED", "Amount paid cannot be negative")
	}
	if req.AmountPaid.GreaterThan(total) {
		return nil, shared.NewDomainError("PAYMENT_REJECTED", "Amount paid cannot exceed the total amount")
	}
	mode := order.PaymentMode(req.PaymentMode)

	var (
		txn   *order.Transaction
		cust  *customer.Customer
		items []*order.LineItem
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var (
			err      error
			existing bool
		)
		cust, existing, err = s.resolveCustomer(ctx, repos, b.BranchID, b.BranchNumber, profile)
		if err != nil {
			return err
		}

		seq, err := repos.Sequences().Next(ctx, order.TransactionSequenceKey(dateIn, b.BranchCode))
		if err != nil {
			return fmt.Errorf("allocate transaction id: %w", err)
		}
		txnID := order.FormatTransactionID(dateIn, seq, b.BranchCode)

		txn, err = order.NewTransaction(b.BranchID, txnID, cust.CustID, actor.UserID, dateIn, len(priced), gross, req.DiscountAmount, mode)
		if err != nil {
			return err
		}
		if req.AmountPaid.IsPositive() {
			paySeq, err := repos.Sequences().Next(ctx, order.PaymentSequenceKey(b.BranchCode))
			if err != nil {
				return fmt.Errorf("allocate payment id: %w", err)
			}
			if _, err := txn.AddPayment(order.FormatPaymentID(paySeq, b.BranchCode), req.AmountPaid, mode, dateIn); err != nil {
				return err
			}
		}
		if err := repos.TransactionRepo().Save(ctx, txn); err != nil {
			return err
		}

		items = make([]*order.LineItem, len(priced))
		for i, p := range priced {
			li, err := order.NewLineItem(b.BranchID, order.FormatLineItemID(txnID, i+1), txnID, cust.CustID,
				catalog.Priority(p.input.Priority), p.lines, p.input.Shoes, p.quote.DueDate, dateIn)
			if err != nil {
				return err
			}
			items[i] = li
		}
		if err := repos.LineItemRepo().SaveBatch(ctx, items); err != nil {
			return err
		}

		cust.RecordServiceRequest(txn.TotalAmount)
		if existing {
			return repos.CustomerRepo().SaveWithLock(ctx, cust)
		}
		return repos.CustomerRepo().Save(ctx, cust)
	})
	if err != nil {
		s.logger.Warn("Service request intake failed", zap.String("branch_id", branchID), zap.Error(err))
		return nil, err
	}

	aggs := []shared.AggregateRoot{cust, txn}
	for _, li := range items {
		aggs = append(aggs, li)
	}
	s.publish(ctx, aggs...)

	total64, _ := txn.TotalAmount.Float64()
	s.metrics.RecordIntake(ctx, txn.BranchID, txn.NoPairs, total64)
	if txn.AmountPaid.IsPositive() {
		paid64, _ := txn.AmountPaid.Float64()
		s.metrics.RecordPayment(ctx, txn.BranchID, string(txn.PaymentMode), paid64)
	}

	s.logger.Info("Service request created",
		zap.String("transaction_id", txn.TransactionID),
		zap.String("cust_id", cust.CustID),
		zap.Int("no_pairs", txn.NoPairs),
		zap.String("total_amount", txn.TotalAmount.StringFixed(2)),
		zap.String("received_by", actor.UserID))

	custResp := customerapp.ToCustomerResponse(cust)
	return &ServiceRequestResponse{
		Transaction: ToTransactionResponse(txn),
		Customer:    &custResp,
		LineItems:   toLineItemResponses(items),
	}, nil
}

// resolveCustomer reuses a customer with the same name and birthdate or
// registers a new one. existing is true when the customer was loaded, so its
// counters must be written back under the version it was read at.
func (s *OrderService) resolveCustomer(ctx context.Context, repos TransactionalRepositories, branchID string, branchNumber int, p customer.Profile) (c *customer.Customer, existing bool, err error) {
	found, err := repos.CustomerRepo().FindByNameAndBirthdate(ctx, customer.NormalizeName(p.Name), p.Birthdate)
	if err == nil {
		return found, true, nil
	}
	if !shared.IsNotFound(err) {
		return nil, false, err
	}

	seq, err := repos.Sequences().Next(ctx, "cust:"+strconv.Itoa(branchNumber))
	if err != nil {
		return nil, false, fmt.Errorf("allocate customer id: %w", err)
	}
	c, err = customer.NewCustomer(branchID, customer.FormatCustID(branchNumber, seq), p)
	if err != nil {
		return nil, false, err
	}
	return c, false, nil
}

package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/shared"
)

// PaymentStatus of a transaction, derived from its balance
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "NP"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// IsValid reports whether s is a known payment status
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// PaymentMode is how a customer paid
type PaymentMode string

const (
	PaymentModeCash  PaymentMode = "Cash"
	PaymentModeCard  PaymentMode = "Card"
	PaymentModeGCash PaymentMode = "GCash"
	PaymentModeOther PaymentMode = "Other"
)

// IsValid reports whether m is a known payment mode
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeCard, PaymentModeGCash, PaymentModeOther:
		return true
	}
	return false
}

// DerivePaymentStatus maps a total and the amount paid to a status
func DerivePaymentStatus(total, paid decimal.Decimal) PaymentStatus {
	balance := total.Sub(paid)
	switch {
	case !balance.IsPositive():
		return PaymentStatusPaid
	case balance.Equal(total):
		return PaymentStatusUnpaid
	default:
		return PaymentStatusPartial
	}
}

// Payment is a single amount received against a transaction
type Payment struct {
	ID            uuid.UUID
	PaymentID     string
	TransactionID string
	Amount        decimal.Decimal
	Mode          PaymentMode
	PaidAt        time.Time
}

// Transaction is one customer visit, covering one or more pairs of shoes
type Transaction struct {
	shared.BranchAggregateRoot
	TransactionID  string
	CustID         string
	DateIn         time.Time
	ReceivedBy     string
	DateOut        *time.Time
	NoPairs        int
	NoReleased     int
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	AmountPaid     decimal.Decimal
	PaymentStatus  PaymentStatus
	PaymentMode    PaymentMode
	Payments       []Payment
}

// NewTransaction opens a transaction. grossAmount is the sum of line totals
// before discount.
func NewTransaction(branchID, transactionID, custID, receivedBy string, dateIn time.Time, noPairs int, grossAmount, discount decimal.Decimal, mode PaymentMode) (*Transaction, error) {
	if transactionID == "" {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_ID", "Transaction id cannot be empty")
	}
	if custID == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer id cannot be empty")
	}
	if noPairs <= 0 {
		return nil, shared.NewDomainError("NO_LINE_ITEMS", "A transaction needs at least one line item")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	total := grossAmount.Sub(discount).Round(2)
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the total amount")
	}
	if mode == "" {
		mode = PaymentModeCash
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_MODE", "Payment mode must be Cash, Card, GCash or Other")
	}

	t := &Transaction{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		TransactionID:       transactionID,
		CustID:              custID,
		DateIn:              dateIn,
		ReceivedBy:          receivedBy,
		NoPairs:             noPairs,
		TotalAmount:         total,
		DiscountAmount:      discount.Round(2),
		AmountPaid:          decimal.Zero,
		PaymentMode:         mode,
		Payments:            make([]Payment, 0),
	}
	t.PaymentStatus = DerivePaymentStatus(t.TotalAmount, t.AmountPaid)
	t.AddDomainEvent(NewTransactionCreatedEvent(t))
	return t, nil
}

// Balance is what the customer still owes
func (t *Transaction) Balance() decimal.Decimal {
	b := t.TotalAmount.Sub(t.AmountPaid)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

// IsPaid reports whether nothing is owed
func (t *Transaction) IsPaid() bool {
	return t.PaymentStatus == PaymentStatusPaid
}

// IsCompleted reports whether every pair has been released
func (t *Transaction) IsCompleted() bool {
	return t.DateOut != nil
}

// AddPayment records amount against the balance
func (t *Transaction) AddPayment(paymentID string, amount decimal.Decimal, mode PaymentMode, at time.Time) (*Payment, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("PAYMENT_REJECTED", "Payment amount must be greater than zero")
	}
	if t.IsPaid() {
		return nil, shared.NewDomainError("PAYMENT_REJECTED", "Transaction is already fully paid")
	}
	if amount.GreaterThan(t.Balance()) {
		return nil, shared.NewDomainError("PAYMENT_REJECTED",
			fmt.Sprintf("Payment of %s exceeds the balance of %s", amount.StringFixed(2), t.Balance().StringFixed(2)))
	}
	if mode == "" {
		mode = t.PaymentMode
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_MODE", "Payment mode must be Cash, Card, GCash or Other")
	}

	p := Payment{
		ID:            uuid.New(),
		PaymentID:     paymentID,
		TransactionID: t.TransactionID,
		Amount:        amount,
		Mode:          mode,
		PaidAt:        at,
	}
	t.Payments = append(t.Payments, p)
	t.AmountPaid = t.AmountPaid.Add(amount)
	t.PaymentMode = mode
	t.PaymentStatus = DerivePaymentStatus(t.TotalAmount, t.AmountPaid)
	t.UpdatedAt = at
	t.IncrementVersion()
	t.AddDomainEvent(NewPaymentAppliedEvent(t, p))
	return &p, nil
}

// ApplyPayment takes dueNow out of what the customer handed over and returns
// the change owed back.
func (t *Transaction) ApplyPayment(paymentID string, dueNow, customerPaid decimal.Decimal, mode PaymentMode, at time.Time) (decimal.Decimal, error) {
	if !dueNow.IsPositive() {
		return decimal.Zero, shared.NewDomainError("PAYMENT_REJECTED", "Amount due now must be greater than zero")
	}
	if customerPaid.LessThan(dueNow) {
		return decimal.Zero, shared.NewDomainError("PAYMENT_REJECTED", "Customer payment is less than the amount due now")
	}
	if _, err := t.AddPayment(paymentID, dueNow, mode, at); err != nil {
		return decimal.Zero, err
	}
	return customerPaid.Sub(dueNow).Round(2), nil
}

// RecordRelease counts one pair handed back. The last one closes the
// transaction.
func (t *Transaction) RecordRelease(at time.Time) {
	if t.NoReleased < t.NoPairs {
		t.NoReleased++
	}
	if t.NoReleased >= t.NoPairs && t.DateOut == nil {
		out := at
		t.DateOut = &out
	}
	t.UpdatedAt = at
	t.IncrementVersion()
}

package order

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeTransaction = "Transaction"
	AggregateTypeLineItem    = "LineItem"
)

// Event type constants
const (
	EventTypeTransactionCreated    = "TransactionCreated"
	EventTypePaymentApplied        = "PaymentApplied"
	EventTypeLineItemCreated       = "LineItemCreated"
	EventTypeLineItemStatusChanged = "LineItemStatusChanged"
)

// TransactionCreatedEvent is raised at intake
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	TransactionID string          `json:"transaction_id"`
	CustID        string          `json:"cust_id"`
	NoPairs       int             `json:"no_pairs"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewTransactionCreatedEvent creates a TransactionCreatedEvent
func NewTransactionCreatedEvent(t *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionCreated, AggregateTypeTransaction, t.ID, t.BranchID),
		TransactionID:   t.TransactionID,
		CustID:          t.CustID,
		NoPairs:         t.NoPairs,
		TotalAmount:     t.TotalAmount,
		PaymentStatus:   t.PaymentStatus,
	}
}

// PaymentAppliedEvent is raised for every payment recorded
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	TransactionID string          `json:"transaction_id"`
	PaymentID     string          `json:"payment_id"`
	Amount        decimal.Decimal `json:"payment_amount"`
	Mode          PaymentMode     `json:"payment_mode"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewPaymentAppliedEvent creates a PaymentAppliedEvent
func NewPaymentAppliedEvent(t *Transaction, p Payment) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypeTransaction, t.ID, t.BranchID),
		TransactionID:   t.TransactionID,
		PaymentID:       p.PaymentID,
		Amount:          p.Amount,
		Mode:            p.Mode,
		AmountPaid:      t.AmountPaid,
		PaymentStatus:   t.PaymentStatus,
	}
}

// LineItemCreatedEvent is raised when a line item is taken in
type LineItemCreatedEvent struct {
	shared.BaseDomainEvent
	LineItemID    string `json:"line_item_id"`
	TransactionID string `json:"transaction_id"`
	Status        Status `json:"current_status"`
	Location      string `json:"current_location"`
}

// NewLineItemCreatedEvent creates a LineItemCreatedEvent
func NewLineItemCreatedEvent(li *LineItem) *LineItemCreatedEvent {
	return &LineItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLineItemCreated, AggregateTypeLineItem, li.ID, li.BranchID),
		LineItemID:      li.LineItemID,
		TransactionID:   li.TransactionID,
		Status:          li.CurrentStatus,
		Location:        li.CurrentLocation,
	}
}

// LineItemStatusChangedEvent is raised on every status transition
type LineItemStatusChangedEvent struct {
	shared.BaseDomainEvent
	LineItemID    string    `json:"line_item_id"`
	TransactionID string    `json:"transaction_id"`
	FromStatus    Status    `json:"from_status"`
	ToStatus      Status    `json:"current_status"`
	Location      string    `json:"current_location"`
	LatestUpdate  time.Time `json:"latest_update"`
}

// NewLineItemStatusChangedEvent creates a LineItemStatusChangedEvent
func NewLineItemStatusChangedEvent(li *LineItem, from Status) *LineItemStatusChangedEvent {
	return &LineItemStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLineItemStatusChanged, AggregateTypeLineItem, li.ID, li.BranchID),
		LineItemID:      li.LineItemID,
		TransactionID:   li.TransactionID,
		FromStatus:      from,
		ToStatus:        li.CurrentStatus,
		Location:        li.CurrentLocation,
		LatestUpdate:    li.LatestUpdate,
	}
}

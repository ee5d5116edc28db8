package customer

import "github.com/swas/backend/internal/domain/shared"

// AggregateTypeCustomer is the aggregate type for customers
const AggregateTypeCustomer = "Customer"

const (
	EventTypeCustomerCreated = "CustomerCreated"
	EventTypeCustomerUpdated = "CustomerUpdated"
)

// CustomerEvent is published when a customer record changes
type CustomerEvent struct {
	shared.BaseDomainEvent
	CustID string `json:"cust_id"`
	Name   string `json:"cust_name"`
}

// NewCustomerEvent creates a CustomerEvent
func NewCustomerEvent(eventType string, c *Customer) *CustomerEvent {
	return &CustomerEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeCustomer, c.ID, c.BranchID),
		CustID:          c.CustID,
		Name:            c.Name,
	}
}

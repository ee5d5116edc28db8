package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/shared"
)

// Priority of a line item
type Priority string

const (
	PriorityNormal Priority = "Normal"
	PriorityRush   Priority = "Rush"
)

// IsValid reports whether p is a known priority
func (p Priority) IsValid() bool {
	return p == PriorityNormal || p == PriorityRush
}

// Pricing constants applied at intake
var (
	RushFee = decimal.NewFromInt(150)
)

const (
	// RushReductionDays is how many days a rush order shaves off the due date
	RushReductionDays = 2
	// MinTurnaroundDays is the shortest possible turnaround
	MinTurnaroundDays = 1
)

// ServiceLine is one requested service with its quantity
type ServiceLine struct {
	ServiceID string
	Quantity  int
}

// Quote is the priced result for one line item
type Quote struct {
	Subtotal decimal.Decimal
	RushFee  decimal.Decimal
	Total    decimal.Decimal
	DueDate  time.Time
}

// QuoteLineItem prices the services of a single pair of shoes. services must
// contain every id referenced by lines.
func QuoteLineItem(lines []ServiceLine, priority Priority, services map[string]Service, dateIn time.Time) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, shared.NewDomainError("NO_SERVICES", "A line item needs at least one service")
	}
	if !priority.IsValid() {
		return Quote{}, shared.NewDomainError("INVALID_PRIORITY", "Priority must be Rush or Normal")
	}

	subtotal := decimal.Zero
	days := 0
	for _, l := range lines {
		if l.Quantity <= 0 {
			return Quote{}, shared.NewDomainError("INVALID_QUANTITY", "Service quantity must be positive")
		}
		s, ok := services[l.ServiceID]
		if !ok {
			return Quote{}, shared.NewDomainError("UNKNOWN_SERVICE", "Unknown service: "+l.ServiceID)
		}
		subtotal = subtotal.Add(s.BasePrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		days += s.DurationDays
	}

	q := Quote{Subtotal: subtotal.Round(2), RushFee: decimal.Zero}
	if priority == PriorityRush {
		q.RushFee = RushFee
	}
	q.Total = q.Subtotal.Add(q.RushFee)
	q.DueDate = DueDate(dateIn, days, priority)
	return q, nil
}

// DueDate computes dateIn + turnaround days, never less than one day out
func DueDate(dateIn time.Time, durationDays int, priority Priority) time.Time {
	days := durationDays
	if days < MinTurnaroundDays {
		days = MinTurnaroundDays
	}
	if priority == PriorityRush {
		days -= RushReductionDays
	}
	if days < MinTurnaroundDays {
		days = MinTurnaroundDays
	}
	return dateIn.AddDate(0, 0, days)
}

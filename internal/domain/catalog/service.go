package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/shared"
)

// ServiceType distinguishes main services from add-ons
type ServiceType string

const (
	ServiceTypeService    ServiceType = "Service"
	ServiceTypeAdditional ServiceType = "Additional"
)

// IsValid reports whether t is a known service type
func (t ServiceType) IsValid() bool {
	return t == ServiceTypeService || t == ServiceTypeAdditional
}

// Service is a priced repair or cleaning offering
type Service struct {
	shared.BaseAggregateRoot
	ServiceID    string
	Name         string
	BasePrice    decimal.Decimal
	DurationDays int
	Type         ServiceType
}

// FormatServiceID builds SERVICE-<n>
func FormatServiceID(seq int64) string {
	return fmt.Sprintf("SERVICE-%d", seq)
}

// ParseServiceNumber extracts n from SERVICE-<n>
func ParseServiceNumber(serviceID string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimPrefix(serviceID, "SERVICE-"), 10, 64)
	if err != nil || !strings.HasPrefix(serviceID, "SERVICE-") {
		return 0, false
	}
	return n, true
}

// NewService creates a catalog service
func NewService(serviceID, name string, price decimal.Decimal, durationDays int, serviceType ServiceType) (*Service, error) {
	if _, ok := ParseServiceNumber(serviceID); !ok {
		return nil, shared.NewDomainError("INVALID_SERVICE_ID", "Service id must look like SERVICE-<n>")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_SERVICE_NAME", "Service name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Service price cannot be negative")
	}
	if durationDays < 0 {
		return nil, shared.NewDomainError("INVALID_DURATION", "Service duration cannot be negative")
	}
	if !serviceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SERVICE_TYPE", "Service type must be Service or Additional")
	}
	return &Service{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ServiceID:         serviceID,
		Name:              strings.TrimSpace(name),
		BasePrice:         price.Round(2),
		DurationDays:      durationDays,
		Type:              serviceType,
	}, nil
}

// Reprice changes the base price
func (s *Service) Reprice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Service price cannot be negative")
	}
	s.BasePrice = price.Round(2)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// DefaultServices is the catalog a fresh installation is seeded with
func DefaultServices() []Service {
	type row struct {
		name     string
		price    int64
		duration int
		kind     ServiceType
	}
	rows := []row{
		{"Basic Cleaning", 325, 5, ServiceTypeService},
		{"Minor Reglue", 450, 5, ServiceTypeService},
		{"Full Reglue", 575, 5, ServiceTypeService},
		{"Unyellowing", 125, 1, ServiceTypeAdditional},
		{"Minor Restoration", 125, 1, ServiceTypeAdditional},
		{"Minor Retouch", 225, 2, ServiceTypeAdditional},
		{"Add Layer", 150, 1, ServiceTypeAdditional},
		{"Color Renewal (2 colors)", 275, 3, ServiceTypeAdditional},
		{"Color Renewal (3 colors)", 375, 3, ServiceTypeAdditional},
	}
	out := make([]Service, 0, len(rows))
	for i, r := range rows {
		s, _ := NewService(FormatServiceID(int64(i+1)), r.name, decimal.NewFromInt(r.price), r.duration, r.kind)
		out = append(out, *s)
	}
	return out
}

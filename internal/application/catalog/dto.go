package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/catalog"
)

// CreateServiceRequest adds a service to the catalog; the id is generated
type CreateServiceRequest struct {
	ServiceName      string          `json:"service_name" binding:"required,max=100"`
	ServiceBasePrice decimal.Decimal `json:"service_base_price"`
	ServiceDuration  int             `json:"service_duration" binding:"min=0,max=60"`
	ServiceType      string          `json:"service_type" binding:"required,oneof=Service Additional"`
}

// ServiceLineRequest is one requested service on a line item
type ServiceLineRequest struct {
	ServiceID string `json:"service_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// QuoteRequest prices a single line item
type QuoteRequest struct {
	Services []ServiceLineRequest `json:"services" binding:"required,min=1,dive"`
	Priority string               `json:"priority" binding:"required,oneof=Rush Normal"`
	DateIn   *time.Time           `json:"date_in"`
}

// ServiceResponse is the API view of a catalog service
type ServiceResponse struct {
	ServiceID        string          `json:"service_id"`
	ServiceName      string          `json:"service_name"`
	ServiceBasePrice decimal.Decimal `json:"service_base_price"`
	ServiceDuration  int             `json:"service_duration"`
	ServiceType      string          `json:"service_type"`
}

// QuoteResponse is the priced line item
type QuoteResponse struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	RushFee  decimal.Decimal `json:"rush_fee"`
	Total    decimal.Decimal `json:"total"`
	DueDate  time.Time       `json:"due_date"`
}

// ToServiceResponse converts a domain service
func ToServiceResponse(s *catalog.Service) ServiceResponse {
	return ServiceResponse{
		ServiceID:        s.ServiceID,
		ServiceName:      s.Name,
		ServiceBasePrice: s.BasePrice,
		ServiceDuration:  s.DurationDays,
		ServiceType:      string(s.Type),
	}
}

// ToServiceLines converts request lines to domain lines
func ToServiceLines(reqs []ServiceLineRequest) []catalog.ServiceLine {
	out := make([]catalog.ServiceLine, len(reqs))
	for i, r := range reqs {
		out[i] = catalog.ServiceLine{ServiceID: r.ServiceID, Quantity: r.Quantity}
	}
	return out
}

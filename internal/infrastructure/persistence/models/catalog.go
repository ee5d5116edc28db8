package models

import (
	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/catalog"
)

// ServiceModel is the persistence model for catalog services.
// ServiceNumber is the n of SERVICE-<n>, kept for ordering and id allocation.
type ServiceModel struct {
	AggregateModel
	ServiceID     string              `gorm:"type:varchar(32);not null;uniqueIndex"`
	ServiceNumber int64               `gorm:"not null;index"`
	Name          string              `gorm:"type:varchar(100);not null"`
	BasePrice     decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	DurationDays  int                 `gorm:"not null;default:0"`
	Type          catalog.ServiceType `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (ServiceModel) TableName() string {
	return "services"
}

// ToDomain converts to the domain Service
func (m *ServiceModel) ToDomain() *catalog.Service {
	return &catalog.Service{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ServiceID:         m.ServiceID,
		Name:              m.Name,
		BasePrice:         m.BasePrice,
		DurationDays:      m.DurationDays,
		Type:              m.Type,
	}
}

// ServiceModelFromDomain creates a persistence model from a domain Service
func ServiceModelFromDomain(s *catalog.Service) *ServiceModel {
	n, _ := catalog.ParseServiceNumber(s.ServiceID)
	m := &ServiceModel{
		ServiceID:     s.ServiceID,
		ServiceNumber: n,
		Name:          s.Name,
		BasePrice:     s.BasePrice,
		DurationDays:  s.DurationDays,
		Type:          s.Type,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

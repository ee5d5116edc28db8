package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/customer"
)

// CustomerModel is the persistence model for customers.
// NameKey is the normalized name used for intake matching.
type CustomerModel struct {
	BranchAggregateModel
	CustID           string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	Name             string          `gorm:"type:varchar(200);not null"`
	NameKey          string          `gorm:"type:varchar(200);not null;index:idx_customer_match,priority:1"`
	Birthdate        *time.Time      `gorm:"type:date;index:idx_customer_match,priority:2"`
	Address          string          `gorm:"type:text"`
	Email            string          `gorm:"type:varchar(200);index"`
	Contact          string          `gorm:"type:varchar(50)"`
	TotalServices    int             `gorm:"not null;default:0"`
	TotalExpenditure decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts to the domain Customer
func (m *CustomerModel) ToDomain() *customer.Customer {
	return &customer.Customer{
		BranchAggregateRoot: m.ToBranchAggregateRoot(),
		CustID:              m.CustID,
		Name:                m.Name,
		Birthdate:           m.Birthdate,
		Address:             m.Address,
		Email:               m.Email,
		Contact:             m.Contact,
		TotalServices:       m.TotalServices,
		TotalExpenditure:    m.TotalExpenditure,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *customer.Customer) *CustomerModel {
	m := &CustomerModel{
		CustID:           c.CustID,
		Name:             c.Name,
		NameKey:          customer.NormalizeName(c.Name),
		Birthdate:        c.Birthdate,
		Address:          c.Address,
		Email:            c.Email,
		Contact:          c.Contact,
		TotalServices:    c.TotalServices,
		TotalExpenditure: c.TotalExpenditure,
	}
	m.FromDomainBranchAggregateRoot(c.BranchAggregateRoot)
	return m
}

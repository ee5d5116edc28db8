package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/catalog"
	"github.com/swas/backend/internal/domain/order"
)

// TransactionModel is the persistence model for transactions
type TransactionModel struct {
	BranchAggregateModel
	TransactionID  string              `gorm:"type:varchar(64);not null;uniqueIndex"`
	CustID         string              `gorm:"type:varchar(32);not null;index"`
	DateIn         time.Time           `gorm:"not null;index"`
	ReceivedBy     string              `gorm:"type:varchar(100)"`
	DateOut        *time.Time          `gorm:"index"`
	NoPairs        int                 `gorm:"not null"`
	NoReleased     int                 `gorm:"not null;default:0"`
	TotalAmount    decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	DiscountAmount decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPaid     decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentStatus  order.PaymentStatus `gorm:"type:varchar(10);not null;index"`
	PaymentMode    order.PaymentMode   `gorm:"type:varchar(10);not null"`
	Payments       []PaymentModel      `gorm:"foreignKey:TransactionID;references:TransactionID"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts to the domain Transaction
func (m *TransactionModel) ToDomain() *order.Transaction {
	t := &order.Transaction{
		BranchAggregateRoot: m.ToBranchAggregateRoot(),
		TransactionID:       m.TransactionID,
		CustID:              m.CustID,
		DateIn:              m.DateIn,
		ReceivedBy:          m.ReceivedBy,
		DateOut:             m.DateOut,
		NoPairs:             m.NoPairs,
		NoReleased:          m.NoReleased,
		TotalAmount:         m.TotalAmount,
		DiscountAmount:      m.DiscountAmount,
		AmountPaid:          m.AmountPaid,
		PaymentStatus:       m.PaymentStatus,
		PaymentMode:         m.PaymentMode,
		Payments:            make([]order.Payment, len(m.Payments)),
	}
	for i := range m.Payments {
		t.Payments[i] = m.Payments[i].ToDomain()
	}
	return t
}

// TransactionModelFromDomain creates a persistence model from a domain
// Transaction. Payments are not copied; they are stored separately.
func TransactionModelFromDomain(t *order.Transaction) *TransactionModel {
	m := &TransactionModel{
		TransactionID:  t.TransactionID,
		CustID:         t.CustID,
		DateIn:         t.DateIn,
		ReceivedBy:     t.ReceivedBy,
		DateOut:        t.DateOut,
		NoPairs:        t.NoPairs,
		NoReleased:     t.NoReleased,
		TotalAmount:    t.TotalAmount,
		DiscountAmount: t.DiscountAmount,
		AmountPaid:     t.AmountPaid,
		PaymentStatus:  t.PaymentStatus,
		PaymentMode:    t.PaymentMode,
	}
	m.FromDomainBranchAggregateRoot(t.BranchAggregateRoot)
	return m
}

// PaymentModel is one payment row of a transaction. Rows are append-only.
type PaymentModel struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	PaymentID     string            `gorm:"type:varchar(64);not null;uniqueIndex"`
	TransactionID string            `gorm:"type:varchar(64);not null;index"`
	Amount        decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Mode          order.PaymentMode `gorm:"type:varchar(10);not null"`
	PaidAt        time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts to the domain Payment
func (m *PaymentModel) ToDomain() order.Payment {
	return order.Payment{
		ID:            m.ID,
		PaymentID:     m.PaymentID,
		TransactionID: m.TransactionID,
		Amount:        m.Amount,
		Mode:          m.Mode,
		PaidAt:        m.PaidAt,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p order.Payment) *PaymentModel {
	return &PaymentModel{
		ID:            p.ID,
		PaymentID:     p.PaymentID,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Mode:          p.Mode,
		PaidAt:        p.PaidAt,
	}
}

// ServiceLineJSON is the stored form of one requested service
type ServiceLineJSON struct {
	ServiceID string `json:"service_id"`
	Quantity  int    `json:"quantity"`
}

// LineItemModel is the persistence model for line items. The requested
// services are kept as a JSON column.
type LineItemModel struct {
	BranchAggregateModel
	LineItemID      string            `gorm:"type:varchar(80);not null;uniqueIndex"`
	TransactionID   string            `gorm:"type:varchar(64);not null;index"`
	CustID          string            `gorm:"type:varchar(32);not null;index"`
	Priority        catalog.Priority  `gorm:"type:varchar(10);not null"`
	Services        []ServiceLineJSON `gorm:"type:text;serializer:json"`
	StorageFee      decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	Shoes           string            `gorm:"type:varchar(200)"`
	CurrentLocation string            `gorm:"type:varchar(10);not null"`
	CurrentStatus   order.Status      `gorm:"type:varchar(30);not null;index"`
	DueDate         *time.Time
	LatestUpdate    time.Time `gorm:"not null;index"`
	BeforeImg       string    `gorm:"type:varchar(500)"`
	AfterImg        string    `gorm:"type:varchar(500)"`
	SrmDate         *time.Time
	RdDate          *time.Time
	IbdDate         *time.Time
	WhDate          *time.Time
	RbDate          *time.Time
	IsDate          *time.Time
	RpuDate         *time.Time
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "line_items"
}

// ToDomain converts to the domain LineItem
func (m *LineItemModel) ToDomain() *order.LineItem {
	services := make([]catalog.ServiceLine, len(m.Services))
	for i, s := range m.Services {
		services[i] = catalog.ServiceLine{ServiceID: s.ServiceID, Quantity: s.Quantity}
	}
	return &order.LineItem{
		BranchAggregateRoot: m.ToBranchAggregateRoot(),
		LineItemID:          m.LineItemID,
		TransactionID:       m.TransactionID,
		CustID:              m.CustID,
		Priority:            m.Priority,
		Services:            services,
		StorageFee:          m.StorageFee,
		Shoes:               m.Shoes,
		CurrentLocation:     m.CurrentLocation,
		CurrentStatus:       m.CurrentStatus,
		DueDate:             m.DueDate,
		LatestUpdate:        m.LatestUpdate,
		BeforeImg:           m.BeforeImg,
		AfterImg:            m.AfterImg,
		Dates: order.StatusDates{
			SrmDate: m.SrmDate,
			RdDate:  m.RdDate,
			IbdDate: m.IbdDate,
			WhDate:  m.WhDate,
			RbDate:  m.RbDate,
			IsDate:  m.IsDate,
			RpuDate: m.RpuDate,
		},
	}
}

// LineItemModelFromDomain creates a persistence model from a domain LineItem
func LineItemModelFromDomain(li *order.LineItem) *LineItemModel {
	services := make([]ServiceLineJSON, len(li.Services))
	for i, s := range li.Services {
		services[i] = ServiceLineJSON{ServiceID: s.ServiceID, Quantity: s.Quantity}
	}
	m := &LineItemModel{
		LineItemID:      li.LineItemID,
		TransactionID:   li.TransactionID,
		CustID:          li.CustID,
		Priority:        li.Priority,
		Services:        services,
		StorageFee:      li.StorageFee,
		Shoes:           li.Shoes,
		CurrentLocation: li.CurrentLocation,
		CurrentStatus:   li.CurrentStatus,
		DueDate:         li.DueDate,
		LatestUpdate:    li.LatestUpdate,
		BeforeImg:       li.BeforeImg,
		AfterImg:        li.AfterImg,
		SrmDate:         li.Dates.SrmDate,
		RdDate:          li.Dates.RdDate,
		IbdDate:         li.Dates.IbdDate,
		WhDate:          li.Dates.WhDate,
		RbDate:          li.Dates.RbDate,
		IsDate:          li.Dates.IsDate,
		RpuDate:         li.Dates.RpuDate,
	}
	m.FromDomainBranchAggregateRoot(li.BranchAggregateRoot)
	return m
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyRevenueModel is one branch's revenue on one day. A day's total is the
// sum of its rows.
type DailyRevenueModel struct {
	Date     time.Time       `gorm:"type:date;primaryKey"`
	BranchID string          `gorm:"type:varchar(32);primaryKey"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (DailyRevenueModel) TableName() string {
	return "daily_revenue"
}

// MonthlyRevenueModel is one branch's revenue in one calendar month
type MonthlyRevenueModel struct {
	Year     int             `gorm:"primaryKey;autoIncrement:false"`
	Month    int             `gorm:"primaryKey;autoIncrement:false"`
	BranchID string          `gorm:"type:varchar(32);primaryKey"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (MonthlyRevenueModel) TableName() string {
	return "monthly_revenue"
}

// RevenueForecastModel is one predicted day
type RevenueForecastModel struct {
	Date      time.Time       `gorm:"type:date;primaryKey"`
	Total     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Lower     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Upper     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RevenueForecastModel) TableName() string {
	return "revenue_forecast"
}

// AllModels lists every model in migration order
func AllModels() []any {
	return []any{
		&BranchModel{},
		&CustomerModel{},
		&ServiceModel{},
		&UserModel{},
		&TransactionModel{},
		&PaymentModel{},
		&LineItemModel{},
		&AppointmentModel{},
		&UnavailabilityModel{},
		&AnnouncementModel{},
		&PromoModel{},
		&SequenceModel{},
		&DailyRevenueModel{},
		&MonthlyRevenueModel{},
		&RevenueForecastModel{},
	}
}

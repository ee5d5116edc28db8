package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/analytics"
	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAnalyticsRepository reads revenue facts from transactions and line
// items and stores the rollup tables. Grouping happens in Go so the same
// queries run on postgres and sqlite.
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewGormAnalyticsRepository creates a new GormAnalyticsRepository
func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

type revenueRow struct {
	BranchID   string
	DateOut    time.Time
	AmountPaid decimal.Decimal
}

// CompletedRevenue returns amount paid of each completed transaction on its date_out day
func (r *GormAnalyticsRepository) CompletedRevenue(ctx context.Context) ([]analytics.RevenueEntry, error) {
	var rows []revenueRow
	err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Select("branch_id, date_out, amount_paid").
		Where("date_out IS NOT NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]analytics.RevenueEntry, len(rows))
	for i, row := range rows {
		out[i] = analytics.RevenueEntry{Day: row.DateOut, BranchID: row.BranchID, Amount: row.AmountPaid}
	}
	return out, nil
}

// ServiceUsage returns the requested services of line items in the given branches
func (r *GormAnalyticsRepository) ServiceUsage(ctx context.Context, branchIDs []string) ([]analytics.ServiceUsage, error) {
	query := r.db.WithContext(ctx).Model(&models.LineItemModel{}).Select("services, latest_update")
	if len(branchIDs) > 0 {
		query = query.Where("branch_id IN ?", branchIDs)
	}
	var rows []models.LineItemModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]analytics.ServiceUsage, len(rows))
	for i, row := range rows {
		q := make(map[string]int, len(row.Services))
		for _, s := range row.Services {
			q[s.ServiceID] += s.Quantity
		}
		out[i] = analytics.ServiceUsage{Quantities: q, LatestUpdate: row.LatestUpdate}
	}
	return out, nil
}

type paymentSummaryRow struct {
	PaymentStatus order.PaymentStatus
	TotalAmount   decimal.Decimal
	AmountPaid    decimal.Decimal
	DateIn        time.Time
}

// PaymentSummaries returns the payment state of transactions in the given branches
func (r *GormAnalyticsRepository) PaymentSummaries(ctx context.Context, branchIDs []string) ([]analytics.PaymentSummary, error) {
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Select("payment_status, total_amount, amount_paid, date_in")
	if len(branchIDs) > 0 {
		query = query.Where("branch_id IN ?", branchIDs)
	}
	var rows []paymentSummaryRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]analytics.PaymentSummary, len(rows))
	for i, row := range rows {
		out[i] = analytics.PaymentSummary{
			PaymentStatus: string(row.PaymentStatus),
			TotalAmount:   row.TotalAmount,
			AmountPaid:    row.AmountPaid,
			DateIn:        row.DateIn,
		}
	}
	return out, nil
}

// ReplaceDaily swaps the daily rollup for rows
func (r *GormAnalyticsRepository) ReplaceDaily(ctx context.Context, rows []analytics.DailyRevenue) error {
	records := make([]models.DailyRevenueModel, 0, len(rows))
	for _, d := range rows {
		for branchID, amount := range d.ByBranch {
			records = append(records, models.DailyRevenueModel{Date: d.Date, BranchID: branchID, Amount: amount.Round(2)})
		}
	}
	return r.replace(ctx, &models.DailyRevenueModel{}, records)
}

// ReplaceMonthly swaps the monthly rollup for rows
func (r *GormAnalyticsRepository) ReplaceMonthly(ctx context.Context, rows []analytics.MonthlyRevenue) error {
	records := make([]models.MonthlyRevenueModel, 0, len(rows))
	for _, m := range rows {
		for branchID, amount := range m.ByBranch {
			records = append(records, models.MonthlyRevenueModel{
				Year: m.Year, Month: int(m.Month), BranchID: branchID, Amount: amount.Round(2),
			})
		}
	}
	return r.replace(ctx, &models.MonthlyRevenueModel{}, records)
}

// ReplaceForecast swaps the stored forecast for points
func (r *GormAnalyticsRepository) ReplaceForecast(ctx context.Context, points []analytics.ForecastPoint) error {
	now := time.Now().UTC()
	records := make([]models.RevenueForecastModel, len(points))
	for i, p := range points {
		records[i] = models.RevenueForecastModel{Date: p.Date, Total: p.Total, Lower: p.Lower, Upper: p.Upper, CreatedAt: now}
	}
	return r.replace(ctx, &models.RevenueForecastModel{}, records)
}

// replace deletes every row of table and inserts records in one transaction
func (r *GormAnalyticsRepository) replace(ctx context.Context, table any, records any) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(records, 500).Error
	})
}

// LoadDaily rebuilds the daily rollup from its table
func (r *GormAnalyticsRepository) LoadDaily(ctx context.Context) ([]analytics.DailyRevenue, error) {
	var rows []models.DailyRevenueModel
	if err := r.db.WithContext(ctx).Order("date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]analytics.RevenueEntry, len(rows))
	for i, row := range rows {
		entries[i] = analytics.RevenueEntry{Day: row.Date, BranchID: row.BranchID, Amount: row.Amount}
	}
	return analytics.BuildDailyRevenue(entries), nil
}

// LoadMonthly rebuilds the monthly rollup from its table
func (r *GormAnalyticsRepository) LoadMonthly(ctx context.Context) ([]analytics.MonthlyRevenue, error) {
	var rows []models.MonthlyRevenueModel
	if err := r.db.WithContext(ctx).Order("year ASC").Order("month ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	byKey := make(map[int]*analytics.MonthlyRevenue)
	for _, row := range rows {
		key := row.Year*100 + row.Month
		m, ok := byKey[key]
		if !ok {
			m = &analytics.MonthlyRevenue{
				Year: row.Year, Month: time.Month(row.Month),
				ByBranch: make(map[string]decimal.Decimal), Total: decimal.Zero,
			}
			byKey[key] = m
		}
		m.ByBranch[row.BranchID] = m.ByBranch[row.BranchID].Add(row.Amount)
		m.Total = m.Total.Add(row.Amount)
	}
	keys := make([]int, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]analytics.MonthlyRevenue, len(keys))
	for i, k := range keys {
		out[i] = *byKey[k]
	}
	return out, nil
}

// LoadForecast returns the stored forecast in date order
func (r *GormAnalyticsRepository) LoadForecast(ctx context.Context) ([]analytics.ForecastPoint, error) {
	var rows []models.RevenueForecastModel
	if err := r.db.WithContext(ctx).Order("date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]analytics.ForecastPoint, len(rows))
	for i, row := range rows {
		out[i] = analytics.ForecastPoint{Date: row.Date, Total: row.Total, Lower: row.Lower, Upper: row.Upper}
	}
	return out, nil
}

// Ensure GormAnalyticsRepository implements Repository
var _ analytics.Repository = (*GormAnalyticsRepository)(nil)

package analytics

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/analytics"
	"github.com/swas/backend/internal/domain/catalog"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxForecastHorizon = 365

// Config tunes the forecast. Location is the shop time zone revenue days
// are counted in; nil means UTC.
type Config struct {
	ForecastWindow  int
	ForecastHorizon int
	Location        *time.Location
}

// RefreshResult summarizes one rollup rebuild
type RefreshResult struct {
	Days           int           `json:"days"`
	Months         int           `json:"months"`
	ForecastPoints int           `json:"forecast_points"`
	Duration       time.Duration `json:"duration"`
}

// AnalyticsService rebuilds and serves the revenue rollups and dashboard charts
type AnalyticsService struct {
	repo     analytics.Repository
	services catalog.ServiceRepository
	window   int
	horizon  int
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(repo analytics.Repository, services catalog.ServiceRepository, cfg Config, logger *zap.Logger) *AnalyticsService {
	if cfg.ForecastWindow <= 0 {
		cfg.ForecastWindow = analytics.DefaultForecastWindow
	}
	if cfg.ForecastHorizon <= 0 {
		cfg.ForecastHorizon = analytics.DefaultForecastHorizon
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		repo:     repo,
		services: services,
		window:   cfg.ForecastWindow,
		horizon:  cfg.ForecastHorizon,
		location: cfg.Location,
		logger:   logger,
		now:      time.Now,
	}
}

// RefreshRollups recomputes daily and monthly revenue and the forecast from
// completed transactions, then replaces the stored tables.
func (s *AnalyticsService) RefreshRollups(ctx context.Context) (*RefreshResult, error) {
	start := s.now()

	entries, err := s.repo.CompletedRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("load completed revenue: %w", err)
	}
	daily := analytics.BuildDailyRevenue(analytics.InLocation(entries, s.location))
	monthly := analytics.BuildMonthlyRevenue(daily)
	forecast := analytics.BuildForecast(daily, s.window, s.horizon)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.repo.ReplaceDaily(gctx, daily) })
	g.Go(func() error { return s.repo.ReplaceMonthly(gctx, monthly) })
	g.Go(func() error { return s.repo.ReplaceForecast(gctx, forecast) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("store rollups: %w", err)
	}

	result := &RefreshResult{
		Days:           len(daily),
		Months:         len(monthly),
		ForecastPoints: len(forecast),
		Duration:       s.now().Sub(start),
	}
	s.logger.Info("Analytics rollups refreshed",
		zap.Int("days", result.Days),
		zap.Int("months", result.Months),
		zap.Int("forecast_points", result.ForecastPoints),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// DailyRevenue returns the stored daily rollup, oldest first. Branch-scoped
// callers only see their own branch.
func (s *AnalyticsService) DailyRevenue(ctx context.Context, scope shared.Scope) ([]analytics.DailyRevenue, error) {
	rows, err := s.repo.LoadDaily(ctx)
	if err != nil {
		return nil, err
	}
	if scope.Superadmin {
		return nonNil(rows), nil
	}
	out := make([]analytics.DailyRevenue, 0, len(rows))
	for _, r := range rows {
		amt, ok := r.ByBranch[scope.BranchID]
		if !ok {
			continue
		}
		out = append(out, analytics.DailyRevenue{
			Date:     r.Date,
			ByBranch: map[string]decimal.Decimal{scope.BranchID: amt},
			Total:    amt,
		})
	}
	return out, nil
}

// MonthlyRevenue returns the stored monthly rollup, oldest first
func (s *AnalyticsService) MonthlyRevenue(ctx context.Context, scope shared.Scope) ([]analytics.MonthlyRevenue, error) {
	rows, err := s.repo.LoadMonthly(ctx)
	if err != nil {
		return nil, err
	}
	if scope.Superadmin {
		return nonNil(rows), nil
	}
	out := make([]analytics.MonthlyRevenue, 0, len(rows))
	for _, r := range rows {
		amt, ok := r.ByBranch[scope.BranchID]
		if !ok {
			continue
		}
		out = append(out, analytics.MonthlyRevenue{
			Year:     r.Year,
			Month:    r.Month,
			ByBranch: map[string]decimal.Decimal{scope.BranchID: amt},
			Total:    amt,
		})
	}
	return out, nil
}

// Forecast predicts total revenue for the next days. The stored forecast is
// served when it covers the configured horizon; other horizons and scoped
// callers are computed from the daily rollup.
func (s *AnalyticsService) Forecast(ctx context.Context, scope shared.Scope, days int) ([]analytics.ForecastPoint, error) {
	if days <= 0 {
		days = s.horizon
	}
	if days > maxForecastHorizon {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("Forecast horizon cannot exceed %d days", maxForecastHorizon))
	}

	if scope.Superadmin && days == s.horizon {
		stored, err := s.repo.LoadForecast(ctx)
		if err != nil {
			return nil, err
		}
		if len(stored) > 0 {
			return stored, nil
		}
	}

	daily, err := s.DailyRevenue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return nonNil(analytics.BuildForecast(daily, s.window, days)), nil
}

// TopServices counts service usage for the selected branches ("1,3", "4" = all)
func (s *AnalyticsService) TopServices(ctx context.Context, scope shared.Scope, branches string) (*analytics.TopServicesReport, error) {
	usage, err := s.repo.ServiceUsage(ctx, s.branchFilter(scope, branches))
	if err != nil {
		return nil, err
	}
	catalogServices, err := s.services.FindAll(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(catalogServices))
	for _, svc := range catalogServices {
		names[svc.ServiceID] = svc.Name
	}
	report := analytics.BuildTopServices(usage, names)
	return &report, nil
}

// SalesBreakdown totals transactions per payment status for the selected branches
func (s *AnalyticsService) SalesBreakdown(ctx context.Context, scope shared.Scope, branches string) (*analytics.SalesBreakdownReport, error) {
	txns, err := s.repo.PaymentSummaries(ctx, s.branchFilter(scope, branches))
	if err != nil {
		return nil, err
	}
	report := analytics.BuildSalesBreakdown(txns)
	return &report, nil
}

// ExportDailyRevenueCSV writes the daily rollup as CSV: date, one column per
// branch, total.
func (s *AnalyticsService) ExportDailyRevenueCSV(ctx context.Context, scope shared.Scope, w io.Writer) error {
	rows, err := s.DailyRevenue(ctx, scope)
	if err != nil {
		return err
	}
	branchIDs := analytics.Branches(rows)

	cw := csv.NewWriter(w)
	header := append([]string{"date"}, branchIDs...)
	if err := cw.Write(append(header, "total")); err != nil {
		return err
	}
	for _, r := range rows {
		record := make([]string, 0, len(branchIDs)+2)
		record = append(record, r.Date.Format(analytics.DateLayout))
		for _, b := range branchIDs {
			record = append(record, r.ByBranch[b].StringFixed(2))
		}
		record = append(record, r.Total.StringFixed(2))
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// branchFilter restricts scoped callers to their branch regardless of the query
func (s *AnalyticsService) branchFilter(scope shared.Scope, branches string) []string {
	if !scope.Superadmin {
		return []string{scope.BranchID}
	}
	return analytics.ParseBranchSelection(branches)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

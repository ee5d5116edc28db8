package analytics

import "context"

// Repository reads source facts and stores computed rollups
type Repository interface {
	// CompletedRevenue sums amount paid of completed transactions by date_out day and branch
	CompletedRevenue(ctx context.Context) ([]RevenueEntry, error)
	ServiceUsage(ctx context.Context, branchIDs []string) ([]ServiceUsage, error)
	PaymentSummaries(ctx context.Context, branchIDs []string) ([]PaymentSummary, error)

	ReplaceDaily(ctx context.Context, rows []DailyRevenue) error
	ReplaceMonthly(ctx context.Context, rows []MonthlyRevenue) error
	ReplaceForecast(ctx context.Context, points []ForecastPoint) error

	LoadDaily(ctx context.Context) ([]DailyRevenue, error)
	LoadMonthly(ctx context.Context) ([]MonthlyRevenue, error)
	LoadForecast(ctx context.Context) ([]ForecastPoint, error)
}

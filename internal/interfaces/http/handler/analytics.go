package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	appanalytics "github.com/swas/backend/internal/application/analytics"
	"github.com/swas/backend/internal/domain/analytics"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/interfaces/http/middleware"
)

// AnalyticsService is the part of appanalytics.AnalyticsService the handler needs
type AnalyticsService interface {
	RefreshRollups(ctx context.Context) (*appanalytics.RefreshResult, error)
	DailyRevenue(ctx context.Context, scope shared.Scope) ([]analytics.DailyRevenue, error)
	MonthlyRevenue(ctx context.Context, scope shared.Scope) ([]analytics.MonthlyRevenue, error)
	Forecast(ctx context.Context, scope shared.Scope, days int) ([]analytics.ForecastPoint, error)
	TopServices(ctx context.Context, scope shared.Scope, branches string) (*analytics.TopServicesReport, error)
	SalesBreakdown(ctx context.Context, scope shared.Scope, branches string) (*analytics.SalesBreakdownReport, error)
	ExportDailyRevenueCSV(ctx context.Context, scope shared.Scope, w io.Writer) error
}

// AnalyticsHandler serves the dashboard charts
type AnalyticsHandler struct {
	BaseHandler
	analyticsService AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// DailyRevenue godoc
// @ID           getDailyRevenue
// @Summary      Daily revenue
// @Description  One row per day with a column per branch and the total
// @Tags         analytics
// @Produce      json
// @Success      200 {object} APIResponse[[]map[string]any]
// @Security     BearerAuth
// @Router       /analytics/daily-revenue [get]
func (h *AnalyticsHandler) DailyRevenue(c *gin.Context) {
	rows, err := h.analyticsService.DailyRevenue(c.Request.Context(), middleware.GetScope(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// MonthlyRevenue godoc
// @ID           getMonthlyRevenue
// @Summary      Monthly revenue
// @Tags         analytics
// @Produce      json
// @Success      200 {object} APIResponse[[]map[string]any]
// @Security     BearerAuth
// @Router       /analytics/monthly-revenue [get]
func (h *AnalyticsHandler) MonthlyRevenue(c *gin.Context) {
	rows, err := h.analyticsService.MonthlyRevenue(c.Request.Context(), middleware.GetScope(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Forecast godoc
// @ID           getRevenueForecast
// @Summary      Revenue forecast
// @Description  Trend plus weekday seasonality with a 95% band
// @Tags         analytics
// @Produce      json
// @Param        days query int false "Horizon in days" default(30)
// @Success      200 {object} APIResponse[[]map[string]any]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /analytics/forecast [get]
func (h *AnalyticsHandler) Forecast(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.BadRequest(c, "days must be a positive integer")
			return
		}
		days = n
	}
	points, err := h.analyticsService.Forecast(c.Request.Context(), middleware.GetScope(c), days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, points)
}

// TopServices godoc
// @ID           getTopServices
// @Summary      Service usage
// @Tags         analytics
// @Produce      json
// @Param        branches query string false "Comma list: 1 SM Valenzuela, 2 Valenzuela, 3 SM Grand, 4 all"
// @Success      200 {object} APIResponse[analytics.TopServicesReport]
// @Security     BearerAuth
// @Router       /analytics/top-services [get]
func (h *AnalyticsHandler) TopServices(c *gin.Context) {
	report, err := h.analyticsService.TopServices(c.Request.Context(), middleware.GetScope(c), c.Query("branches"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// SalesBreakdown godoc
// @ID           getSalesBreakdown
// @Summary      Sales by payment status
// @Tags         analytics
// @Produce      json
// @Param        branches query string false "Comma list: 1 SM Valenzuela, 2 Valenzuela, 3 SM Grand, 4 all"
// @Success      200 {object} APIResponse[analytics.SalesBreakdownReport]
// @Security     BearerAuth
// @Router       /analytics/sales-breakdown [get]
func (h *AnalyticsHandler) SalesBreakdown(c *gin.Context) {
	report, err := h.analyticsService.SalesBreakdown(c.Request.Context(), middleware.GetScope(c), c.Query("branches"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ExportDailyRevenue godoc
// @ID           exportDailyRevenue
// @Summary      Daily revenue CSV
// @Tags         analytics
// @Produce      text/csv
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /analytics/daily-revenue/export [get]
func (h *AnalyticsHandler) ExportDailyRevenue(c *gin.Context) {
	// Buffered so a failure still gets a JSON error instead of a truncated file
	var buf bytes.Buffer
	if err := h.analyticsService.ExportDailyRevenueCSV(c.Request.Context(), middleware.GetScope(c), &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	filename := fmt.Sprintf("daily-revenue-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Refresh godoc
// @ID           refreshAnalytics
// @Summary      Rebuild rollups
// @Description  Recomputes daily and monthly revenue and the forecast now instead of waiting for the nightly run
// @Tags         analytics
// @Produce      json
// @Success      200 {object} APIResponse[appanalytics.RefreshResult]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /analytics/refresh [post]
func (h *AnalyticsHandler) Refresh(c *gin.Context) {
	result, err := h.analyticsService.RefreshRollups(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

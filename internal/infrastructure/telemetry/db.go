package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing
type DBTracingConfig struct {
	DBSystem        string // "postgresql" or "sqlite"
	LogFullSQL      bool   // include bound variables in spans (dev only)
	SlowQueryThresh time.Duration
}

type startKey struct{}

// RegisterDBTracing installs otelgorm on db and flags slow statements on their span
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm: %w", err)
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, startKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { markSlow(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	type hook struct {
		name     string
		register func(string, func(*gorm.DB)) error
	}
	for _, h := range []hook{
		{"swas_timing:before_create", cb.Create().Before("gorm:create").Register},
		{"swas_timing:before_query", cb.Query().Before("gorm:query").Register},
		{"swas_timing:before_update", cb.Update().Before("gorm:update").Register},
		{"swas_timing:before_delete", cb.Delete().Before("gorm:delete").Register},
		{"swas_timing:before_row", cb.Row().Before("gorm:row").Register},
		{"swas_timing:before_raw", cb.Raw().Before("gorm:raw").Register},
	} {
		if err := h.register(h.name, before); err != nil {
			return err
		}
	}
	for _, h := range []hook{
		{"swas_slow:create", cb.Create().After("gorm:create").Register},
		{"swas_slow:query", cb.Query().After("gorm:query").Register},
		{"swas_slow:update", cb.Update().After("gorm:update").Register},
		{"swas_slow:delete", cb.Delete().After("gorm:delete").Register},
		{"swas_slow:row", cb.Row().After("gorm:row").Register},
		{"swas_slow:raw", cb.Raw().After("gorm:raw").Register},
	} {
		if err := h.register(h.name, after); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func markSlow(tx *gorm.DB, thresh time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(startKey{}).(time.Time)
	if !ok {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if elapsed := time.Since(start); elapsed > thresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}

// RegisterDBPoolMetrics exports connection pool gauges read from sqlDB on each collection
func RegisterDBPoolMetrics(meter metric.Meter, sqlDB *sql.DB) (metric.Registration, error) {
	open, err := meter.Int64ObservableGauge("db.client.connections.open",
		metric.WithDescription("Open connections"))
	if err != nil {
		return nil, err
	}
	inUse, err := meter.Int64ObservableGauge("db.client.connections.in_use",
		metric.WithDescription("Connections in use"))
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter("db.client.connections.waits",
		metric.WithDescription("Total waits for a connection"))
	if err != nil {
		return nil, err
	}
	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := sqlDB.Stats()
		o.ObserveInt64(open, int64(s.OpenConnections))
		o.ObserveInt64(inUse, int64(s.InUse))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, open, inUse, waits)
}

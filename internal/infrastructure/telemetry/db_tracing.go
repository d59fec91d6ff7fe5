package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables in spans
	SlowQueryThresh time.Duration // default 200ms
	DBSystem        string        // postgresql or sqlite
}

// DBTracingPlugin registers otelgorm and annotates its spans with row counts,
// table names, errors and slow query markers.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh == 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type queryStartKey struct{}

// RegisterOtelGorm installs the otelgorm plugin and the annotation callbacks on db.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	cb := db.Callback()
	registrations := []struct {
		name string
		fn   func() error
	}{
		{"create", func() error {
			if err := cb.Create().Before("gorm:create").Register("stockflow:before_create", before); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("stockflow:after_create", p.annotate)
		}},
		{"query", func() error {
			if err := cb.Query().Before("gorm:query").Register("stockflow:before_query", before); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("stockflow:after_query", p.annotate)
		}},
		{"update", func() error {
			if err := cb.Update().Before("gorm:update").Register("stockflow:before_update", before); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("stockflow:after_update", p.annotate)
		}},
		{"delete", func() error {
			if err := cb.Delete().Before("gorm:delete").Register("stockflow:before_delete", before); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("stockflow:after_delete", p.annotate)
		}},
		{"row", func() error {
			if err := cb.Row().Before("gorm:row").Register("stockflow:before_row", before); err != nil {
				return err
			}
			return cb.Row().After("gorm:row").Register("stockflow:after_row", p.annotate)
		}},
		{"raw", func() error {
			if err := cb.Raw().Before("gorm:raw").Register("stockflow:before_raw", before); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register("stockflow:after_raw", p.annotate)
		}},
	}
	for _, r := range registrations {
		if err := r.fn(); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

func (p *DBTracingPlugin) annotate(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}

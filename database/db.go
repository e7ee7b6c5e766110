package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/resilience"
)

// DB is an open GORM handle plus the pool beneath it.
type DB struct {
	GormDB *gorm.DB
	sql    *sql.DB
	log    *logger.Logger
	cfg    Config

	closeOnce sync.Once
	closeErr  error
}

// Open validates cfg and connects with the dialector for cfg.Driver.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	return Connect(ctx, dialector, cfg, log)
}

// Connect opens and pings through dialector. Failed attempts are retried
// with backoff from 1s to 5s, cfg.MaxRetries attempts in total.
func Connect(ctx context.Context, dialector gorm.Dialector, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	slow, _ := time.ParseDuration(cfg.SlowQueryThreshold)
	gormCfg := &gorm.Config{Logger: newGormLogger(log, slow, parseLogLevel(cfg.LogLevel))}

	policy := resilience.RetryConfig{
		MaxAttempts:    cfg.MaxRetries,
		InitialBackoff: time.Second,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			log.Warn("Database not reachable, retrying", logger.Fields(
				"attempt", attempt, logger.FieldError, err, "backoff", wait.String()))
		},
	}
	gdb, err := resilience.Retry(ctx, policy, func() (*gorm.DB, error) {
		return dial(ctx, dialector, gormCfg)
	})
	if err != nil {
		return nil, fmt.Errorf("database unreachable after %d attempts: %w", cfg.MaxRetries, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	configurePool(sqlDB, cfg)

	log.Info("Database connection established", logger.Fields("driver", cfg.Driver))
	return &DB{GormDB: gdb, sql: sqlDB, log: log, cfg: cfg}, nil
}

func dial(ctx context.Context, dialector gorm.Dialector, gormCfg *gorm.Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return gdb, nil
}

// configurePool applies the pool limits. SQLite is pinned to a single
// connection that is never recycled, since an in-memory database lives and
// dies with its connection.
func configurePool(sqlDB *sql.DB, cfg Config) {
	if cfg.Driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		return
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if d, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
		sqlDB.SetConnMaxLifetime(d)
	}
	if d, err := time.ParseDuration(cfg.ConnMaxIdleTime); err == nil {
		sqlDB.SetConnMaxIdleTime(d)
	}
}

func (d *DB) Driver() string { return d.cfg.Driver }

// Close releases the pool. Later calls return the first result.
func (d *DB) Close() error {
	d.closeOnce.Do(func() {
		d.log.Info("Closing database connection")
		d.closeErr = d.sql.Close()
	})
	return d.closeErr
}

func (d *DB) PingContext(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// WithContext returns a session bound to ctx.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}

// AutoMigrate creates or alters tables for models.
func (d *DB) AutoMigrate(models ...any) error {
	if err := d.GormDB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	d.log.Info("Auto-migration completed", logger.Fields("models", len(models)))
	return nil
}

package database

import (
	"context"
	"fmt"

	"github.com/kbukum/scribe/component"
	"github.com/kbukum/scribe/logger"
)

// Migrator applies a schema to an open database.
type Migrator func(ctx context.Context, db *DB) error

// Component wraps DB and implements component.Component for lifecycle management.
type Component struct {
	db       *DB
	cfg      Config
	log      *logger.Logger
	models   []interface{}
	migrator Migrator
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a database component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("database")}
}

// WithModels registers models for auto-migration on SQLite.
func (c *Component) WithModels(models ...interface{}) *Component {
	c.models = append(c.models, models...)
	return c
}

// WithMigrator sets the schema migration run on PostgreSQL when
// cfg.Migrate is enabled.
func (c *Component) WithMigrator(m Migrator) *Component {
	c.migrator = m
	return c
}

// DB returns the underlying *DB, or nil if not started.
func (c *Component) DB() *DB { return c.db }

// Name returns the component name.
func (c *Component) Name() string { return "database" }

// Start connects to the database and prepares the schema.
func (c *Component) Start(ctx context.Context) error {
	db, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	c.db = db

	if err := c.prepareSchema(ctx); err != nil {
		_ = db.Close()
		c.db = nil
		return err
	}
	return nil
}

func (c *Component) prepareSchema(ctx context.Context) error {
	switch {
	case c.cfg.Driver == DriverSQLite && len(c.models) > 0:
		if err := c.db.AutoMigrate(c.models...); err != nil {
			return fmt.Errorf("database auto-migrate: %w", err)
		}
	case c.cfg.Migrate && c.migrator != nil:
		if err := c.migrator(ctx, c.db); err != nil {
			return fmt.Errorf("database migrate: %w", err)
		}
	}
	return nil
}

// Stop gracefully closes the database connection.
func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// IsAvailable reports whether the connection answers a ping.
func (c *Component) IsAvailable(ctx context.Context) bool {
	return c.db != nil && c.db.PingContext(ctx) == nil
}

// Health returns the current health status of the database.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "database not initialized"}
	}
	stats, err := c.db.Check(ctx)
	if err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: stats.String()}
}

// Describe returns infrastructure summary info for the bootstrap display.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("driver=%s pool=%d/%d", c.cfg.Driver, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns)
	if c.cfg.Migrate {
		details += " migrate=on"
	}
	return component.Description{Name: "Database", Type: "database", Details: details}
}

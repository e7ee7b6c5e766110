package database

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/kbukum/scribe/component"
	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func sqliteConfig() Config {
	return Config{Driver: DriverSQLite, DSN: ":memory:", MaxRetries: 1, LogLevel: "silent"}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), sqliteConfig(), logger.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	cfg := Config{DSN: "postgres://localhost/scribe"}
	cfg.ApplyDefaults()
	if cfg.Driver != DriverPostgres || cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 5 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"missing dsn", func(c *Config) { c.DSN = "" }},
		{"bad driver", func(c *Config) { c.Driver = "mysql" }},
		{"idle above open", func(c *Config) { c.MaxIdleConns = 50 }},
		{"bad duration", func(c *Config) { c.ConnMaxLifetime = "forever" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			tt.mut(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestOpen_SQLiteMemory(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.WithContext(ctx).Create(&widget{Name: "a"}).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	var count int64
	db.WithContext(ctx).Model(&widget{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
	stats, err := db.Check(ctx)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if stats.Open < 1 || !strings.HasPrefix(stats.String(), "open=") {
		t.Errorf("unexpected pool stats %+v", stats)
	}
	if db.Driver() != DriverSQLite {
		t.Errorf("unexpected driver %q", db.Driver())
	}
}

func TestClose_Idempotent(t *testing.T) {
	db, err := Open(context.Background(), sqliteConfig(), logger.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestFromDatabase(t *testing.T) {
	if FromDatabase(nil, "Note", "") != nil {
		t.Error("nil error should map to nil")
	}
	nf := FromDatabase(gorm.ErrRecordNotFound, "Note", "abc")
	if nf.Code != apperrors.ErrCodeNotFound || nf.Message != "Note not found" {
		t.Errorf("unexpected not found mapping %+v", nf)
	}
	conn := FromDatabase(stderrors.New("dial tcp: connection refused"), "Note", "")
	if conn.HTTPStatus != http.StatusServiceUnavailable || !conn.Retryable {
		t.Errorf("unexpected connection mapping %+v", conn)
	}
	generic := FromDatabase(stderrors.New("syntax error"), "Note", "")
	if generic.Code != apperrors.ErrCodeDatabaseError {
		t.Errorf("unexpected generic mapping %+v", generic)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	c := NewComponent(sqliteConfig(), logger.Nop()).WithModels(&widget{})

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !c.DB().GormDB.Migrator().HasTable(&widget{}) {
		t.Error("expected auto-migrated table")
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %+v", h)
	}
	if !c.IsAvailable(ctx) {
		t.Error("expected available")
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestComponent_MigratorOnlyWhenEnabled(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig()
	cfg.Migrate = true
	called := 0
	c := NewComponent(cfg, logger.Nop()).WithMigrator(func(_ context.Context, _ *DB) error {
		called++
		return nil
	})
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Stop(ctx)
	if called != 1 {
		t.Errorf("expected migrator called once, got %d", called)
	}
}

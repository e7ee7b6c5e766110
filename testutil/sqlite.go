package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/scribe/database"
	"github.com/kbukum/scribe/logger"
)

// SQLite opens an in-memory SQLite database, migrates models and closes it
// when the test ends. Each call gets an isolated database.
func SQLite(t *testing.T, models ...interface{}) *database.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Driver: database.DriverSQLite, DSN: ":memory:"}, logger.Nop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate sqlite: %v", err)
		}
	}
	return db
}

// Package database manages the GORM connection: driver selection
// (PostgreSQL through lib/pq, or SQLite), connection retry and pooling,
// query logging through the service logger, schema setup and the
// component lifecycle.
//
// PostgreSQL schemas are applied from embedded SQL with golang-migrate
// (see the migration subpackage). SQLite, used in development and tests,
// is migrated with GORM AutoMigrate.
package database

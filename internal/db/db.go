// Package db is the SQLite catalogue of endpoint runs: one row per run
// with its finder parameters, and one row per track with the endpoints
// that run produced.
package db

import (
	"database/sql"
	"fmt"

	"github.com/banshee-data/matcha/internal/monitoring"
	"github.com/banshee-data/matcha/internal/timeutil"
	_ "modernc.org/sqlite"
)

// DB is an open catalogue connection with its migrations applied.
type DB struct {
	*sql.DB
	// Clock stamps runs recorded without an explicit creation time.
	Clock timeutil.Clock
}

// Open opens (creating if needed) the catalogue at path and applies all
// pending migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas below and :memory: databases are per connection.
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	db := &DB{DB: sqlDB, Clock: timeutil.RealClock{}}
	if err := db.MigrateUp(MigrationsFS()); err != nil {
		sqlDB.Close()
		return nil, err
	}

	version, _, err := db.MigrateVersion(MigrationsFS())
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	monitoring.Logf("opened endpoint catalogue %s at schema version %d", path, version)
	return db, nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver "pgx"
	_ "modernc.org/sqlite"             // Pure Go SQLite driver
)

// Dialect selects placeholder style and column types.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "pgx"
)

// Open connects to driver ("sqlite" or "pgx") and creates the schema.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, Dialect, error) {
	d := Dialect(driver)
	switch d {
	case DialectSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, "", fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	case DialectPostgres:
	default:
		return nil, "", fmt.Errorf("storage: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if d == DialectSQLite {
		// One connection keeps in-memory databases shared and writes serialized.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to ping %s database: %w", driver, err)
	}
	if err := Migrate(ctx, db, d); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to create schemas: %w", err)
	}
	return db, d, nil
}

// Migrate creates the tables when missing.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	seq := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if d == DialectPostgres {
		seq = "BIGSERIAL PRIMARY KEY"
	}
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS campaigns (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			game_date TEXT NOT NULL,
			document TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bills (
			campaign_id TEXT NOT NULL,
			id TEXT NOT NULL,
			level TEXT NOT NULL,
			status TEXT NOT NULL,
			current_stage TEXT NOT NULL,
			stage_scheduled_for TEXT NOT NULL,
			record TEXT NOT NULL,
			archived BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (campaign_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			seq ` + seq + `,
			id TEXT NOT NULL UNIQUE,
			campaign_id TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			event_type TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			game_date TEXT NOT NULL,
			message TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_campaign ON events(campaign_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(campaign_id, event_type)`,
		`CREATE INDEX IF NOT EXISTS idx_events_date ON events(campaign_id, game_date)`,
	}
	for _, q := range schemas {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $n for PostgreSQL.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/errors"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 2

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Init initializes the SQLite database at baseDir/origami.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.origami.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Pragmas in the DSN apply to every pooled connection.
	dbPath := filepath.Join(baseDir, "origami.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func WithTx(ctx context.Context, database *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: designs and their part contents
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS designs (
		  id           TEXT PRIMARY KEY,
		  name_raw     TEXT NOT NULL,
		  name_norm    TEXT NOT NULL,
		  title        TEXT,
		  scaffold     INTEGER,
		  helix_count  INTEGER NOT NULL DEFAULT 0,
		  strand_count INTEGER NOT NULL DEFAULT 0,
		  oligo_count  INTEGER NOT NULL DEFAULT 0,
		  created_at   INTEGER NOT NULL,
		  updated_at   INTEGER NOT NULL,
		  deleted_at   INTEGER
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_designs_name_norm
		ON designs(name_norm)
		WHERE deleted_at IS NULL;

		CREATE INDEX IF NOT EXISTS idx_designs_updated
		ON designs(updated_at DESC)
		WHERE deleted_at IS NULL;

		CREATE TABLE IF NOT EXISTS helices (
		  design_id  TEXT NOT NULL REFERENCES designs(id) ON DELETE CASCADE,
		  id         INTEGER NOT NULL,
		  min_idx    INTEGER NOT NULL,
		  max_idx    INTEGER NOT NULL,
		  name       TEXT,
		  props_json TEXT,
		  PRIMARY KEY (design_id, id)
		);

		CREATE TABLE IF NOT EXISTS strands (
		  design_id TEXT NOT NULL REFERENCES designs(id) ON DELETE CASCADE,
		  id        INTEGER NOT NULL,
		  helix     INTEGER NOT NULL,
		  direction INTEGER NOT NULL,
		  low_idx   INTEGER NOT NULL,
		  high_idx  INTEGER NOT NULL,
		  conn_5p   INTEGER,
		  conn_3p   INTEGER,
		  PRIMARY KEY (design_id, id)
		);

		CREATE INDEX IF NOT EXISTS idx_strands_position
		ON strands(design_id, helix, direction, low_idx);

		CREATE TABLE IF NOT EXISTS oligos (
		  design_id    TEXT NOT NULL REFERENCES designs(id) ON DELETE CASCADE,
		  id           INTEGER NOT NULL,
		  strands_json TEXT NOT NULL,
		  sequence     TEXT,
		  color        TEXT NOT NULL,
		  circular     INTEGER NOT NULL DEFAULT 0,
		  PRIMARY KEY (design_id, id)
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Migration 1 -> 2: id counters so reloads never reuse removed ids
	if version < 2 {
		stmts := []string{
			`ALTER TABLE designs ADD COLUMN last_strand INTEGER NOT NULL DEFAULT 0`,
			`ALTER TABLE designs ADD COLUMN last_oligo INTEGER NOT NULL DEFAULT 0`,
		}
		for _, stmt := range stmts {
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("migration 2 failed: %w", err)
			}
		}
		if err := SetUserVersion(db, 2); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

type Config struct {
	Path        string // database file path, or ":memory:"
	DialTimeout time.Duration
}

// Open opens the SQLite database and creates the schema if needed.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Path == "" {
		cfg.Path = "invoiceai.db"
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}
	logger.Info("opening database", "path", cfg.Path)

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, err
	}
	// modernc sqlite serializes writes; one writer connection avoids
	// SQLITE_BUSY under concurrent runs.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		_ = db.Close()
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		logger.Error("failed to create schema", "error", err)
		_ = db.Close()
		return nil, err
	}
	logger.Info("database ready", "path", cfg.Path)
	return db, nil
}

// Close closes the database connection gracefully.
func Close(db *sql.DB, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing database")
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}

// HealthCheck pings the database with a timeout.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		return err
	}
	return nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS document_run (
	id              TEXT PRIMARY KEY,
	source_path     TEXT NOT NULL,
	status          TEXT NOT NULL,
	ocr_used        INTEGER NOT NULL DEFAULT 0,
	page_count      INTEGER NOT NULL DEFAULT 0,
	candidate_count INTEGER NOT NULL DEFAULT 0,
	parse_json      TEXT,
	error_message   TEXT,
	created_at      TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS invoice_record (
	id             TEXT PRIMARY KEY,
	run_id         TEXT NOT NULL REFERENCES document_run(id),
	invoice_date   TEXT NOT NULL DEFAULT '',
	invoice_number TEXT NOT NULL DEFAULT '',
	address        TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	amount         TEXT NOT NULL DEFAULT '',
	vendor_code    TEXT NOT NULL DEFAULT 'UNKNOWN',
	created_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_invoice_record_run ON invoice_record(run_id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB holds the database connection
var DB *sql.DB

const schema = `
	CREATE TABLE IF NOT EXISTS print_jobs (
		id             UUID PRIMARY KEY,
		order_id       TEXT NOT NULL,
		customer_email TEXT NOT NULL DEFAULT '',
		documents      JSONB NOT NULL DEFAULT '[]',
		page_count     INTEGER NOT NULL DEFAULT 0,
		placed_items   INTEGER NOT NULL DEFAULT 0,
		failed_items   INTEGER NOT NULL DEFAULT 0,
		failures       JSONB NOT NULL DEFAULT '[]',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS print_jobs_order_id_idx ON print_jobs (order_id);
	CREATE INDEX IF NOT EXISTS print_jobs_created_at_idx ON print_jobs (created_at DESC);
`

// InitDB opens the database connection and makes sure the print_jobs table exists
func InitDB(ctx context.Context, connStr string) error {
	if connStr == "" {
		return fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}

	var err error
	DB, err = sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	// Test the connection
	if err := DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Printf("✓ Database connection established successfully")
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

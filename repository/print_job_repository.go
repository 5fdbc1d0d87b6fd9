package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"sticker-studio/models"
)

// PrintJobRepository handles database operations for print jobs
// Implements PrintJobRepositoryInterface
type PrintJobRepository struct {
	db *sql.DB
}

// NewPrintJobRepository creates a new PrintJobRepository
func NewPrintJobRepository(db *sql.DB) *PrintJobRepository {
	return &PrintJobRepository{db: db}
}

// Ensure PrintJobRepository implements PrintJobRepositoryInterface
var _ PrintJobRepositoryInterface = (*PrintJobRepository)(nil)

const selectPrintJobs = `
	SELECT id, order_id, customer_email, documents, page_count,
	       placed_items, failed_items, failures, created_at
	FROM print_jobs
`

// Insert records a fulfillment run; documents and failures are stored as JSONB
func (r *PrintJobRepository) Insert(ctx context.Context, job *models.PrintJob) error {
	log.Printf("💾 Repository.Insert called for print job %s (order %s)", job.ID, job.OrderID)

	documents, err := json.Marshal(job.Documents)
	if err != nil {
		return fmt.Errorf("failed to encode documents: %w", err)
	}
	failures, err := json.Marshal(job.Failures)
	if err != nil {
		return fmt.Errorf("failed to encode failures: %w", err)
	}

	query := `
		INSERT INTO print_jobs (
			id, order_id, customer_email, documents, page_count,
			placed_items, failed_items, failures, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		job.ID,
		job.OrderID,
		job.CustomerEmail,
		documents,
		job.PageCount,
		job.PlacedItems,
		job.FailedItems,
		failures,
		job.CreatedAt,
	)
	if err != nil {
		log.Printf("❌ Database INSERT error for print job %s: %v", job.ID, err)
		return fmt.Errorf("failed to insert print job: %w", err)
	}

	log.Printf("💾 Database: Successfully inserted print job %s", job.ID)
	return nil
}

// GetByOrderID returns every print job of an order, newest first
func (r *PrintJobRepository) GetByOrderID(ctx context.Context, orderID string) ([]models.PrintJob, error) {
	log.Printf("🔍 Fetching print jobs for order: %s", orderID)

	rows, err := r.db.QueryContext(ctx, selectPrintJobs+`WHERE order_id = $1 ORDER BY created_at DESC`, orderID)
	if err != nil {
		log.Printf("❌ Error fetching print jobs for order %s: %v", orderID, err)
		return nil, fmt.Errorf("failed to get print jobs: %w", err)
	}
	defer rows.Close()

	return scanPrintJobs(rows)
}

// ListRecent returns the most recent print jobs
func (r *PrintJobRepository) ListRecent(ctx context.Context, limit int) ([]models.PrintJob, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, selectPrintJobs+`ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		log.Printf("❌ Error listing recent print jobs: %v", err)
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	defer rows.Close()

	return scanPrintJobs(rows)
}

func scanPrintJobs(rows *sql.Rows) ([]models.PrintJob, error) {
	jobs := []models.PrintJob{}
	for rows.Next() {
		var job models.PrintJob
		var documents, failures []byte
		if err := rows.Scan(
			&job.ID,
			&job.OrderID,
			&job.CustomerEmail,
			&documents,
			&job.PageCount,
			&job.PlacedItems,
			&job.FailedItems,
			&failures,
			&job.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan print job: %w", err)
		}
		if err := json.Unmarshal(documents, &job.Documents); err != nil {
			return nil, fmt.Errorf("failed to decode documents of print job %s: %w", job.ID, err)
		}
		if err := json.Unmarshal(failures, &job.Failures); err != nil {
			return nil, fmt.Errorf("failed to decode failures of print job %s: %w", job.ID, err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating print jobs: %w", err)
	}
	return jobs, nil
}

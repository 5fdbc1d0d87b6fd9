package repository

import (
	"context"

	"sticker-studio/models"
)

// PrintJobRepositoryInterface defines the contract for fulfillment record operations
type PrintJobRepositoryInterface interface {
	Insert(ctx context.Context, job *models.PrintJob) error
	GetByOrderID(ctx context.Context, orderID string) ([]models.PrintJob, error)
	ListRecent(ctx context.Context, limit int) ([]models.PrintJob, error)
}

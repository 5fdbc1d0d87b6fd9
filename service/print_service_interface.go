package service

import (
	"context"

	"sticker-studio/models"
)

// PrintServiceInterface defines the print operations used by controllers and commands
type PrintServiceInterface interface {
	PrepareSheet(ctx context.Context, items []models.StickerItem, label string) (*Sheet, error)
	BuildSheet(ctx context.Context, items []models.StickerItem, label string) (*BuildResult, error)
	Fulfill(ctx context.Context, req models.PrintJobRequest) (*models.PrintJob, error)
}

var _ PrintServiceInterface = (*PrintService)(nil)

package service

import (
	"context"

	"sticker-studio/models"
)

// PDFPrinterInterface defines the contract for turning a rendered sheet into PDF bytes
type PDFPrinterInterface interface {
	PrintPDF(ctx context.Context, htmlContent string, format models.PageFormat) ([]byte, error)
}

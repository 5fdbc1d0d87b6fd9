package service

import "context"

// DocumentStoreInterface defines the contract for persisting print-ready documents.
// Save returns a URL for the stored document when the store can expose one.
type DocumentStoreInterface interface {
	Save(ctx context.Context, docPath string, data []byte, contentType string) (string, error)
}

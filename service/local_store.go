package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore stores print-ready documents below a directory on disk
// Implements DocumentStoreInterface
type LocalStore struct {
	rootDir       string
	publicBaseURL string
}

// NewLocalStore creates a LocalStore; publicBaseURL may be empty when documents are not served
func NewLocalStore(rootDir string, publicBaseURL string) *LocalStore {
	return &LocalStore{
		rootDir:       rootDir,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// Ensure LocalStore implements DocumentStoreInterface
var _ DocumentStoreInterface = (*LocalStore)(nil)

// RootDir returns the directory documents are written below
func (s *LocalStore) RootDir() string {
	return s.rootDir
}

// Save writes data to docPath below the root directory, overwriting any previous version
func (s *LocalStore) Save(ctx context.Context, docPath string, data []byte, contentType string) (string, error) {
	clean := path.Clean("/" + docPath)[1:]
	if clean == "" || clean != strings.TrimPrefix(docPath, "/") {
		return "", fmt.Errorf("invalid document path: %q", docPath)
	}

	filePath := filepath.Join(s.rootDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create document directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}

	log.Printf("✓ Document stored: %s (%d bytes)", filePath, len(data))
	if s.publicBaseURL == "" {
		return "", nil
	}
	return s.publicBaseURL + "/" + clean, nil
}

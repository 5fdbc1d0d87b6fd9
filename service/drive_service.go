package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const driveFolderMimeType = "application/vnd.google-apps.folder"

// DriveStore stores print-ready documents in a Google Drive folder tree
// Implements DocumentStoreInterface
type DriveStore struct {
	client       *drive.Service
	rootFolderID string
}

// NewDriveStore creates a new DriveStore instance
// credentialsPath should be the path to the Service Account JSON file
func NewDriveStore(ctx context.Context, credentialsPath string, rootFolderID string) (*DriveStore, error) {
	if rootFolderID == "" {
		return nil, fmt.Errorf("drive root folder id is required")
	}

	// option.WithCredentialsFile automatically handles Service Account authentication
	driveService, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath), option.WithScopes(drive.DriveFileScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveStore{
		client:       driveService,
		rootFolderID: rootFolderID,
	}, nil
}

// Ensure DriveStore implements DocumentStoreInterface
var _ DocumentStoreInterface = (*DriveStore)(nil)

// escapeQueryValue escapes a value for use inside a quoted Drive query string
func escapeQueryValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}

// findChild returns the id of a non-trashed child of parentID with the given name, or "" if none
func (ds *DriveStore) findChild(ctx context.Context, parentID string, name string, folder bool) (string, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false",
		escapeQueryValue(name), escapeQueryValue(parentID))
	if folder {
		query += fmt.Sprintf(" and mimeType = '%s'", driveFolderMimeType)
	}

	r, err := ds.client.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to list files: %w", err)
	}
	if len(r.Files) == 0 {
		return "", nil
	}
	return r.Files[0].Id, nil
}

// ensureFolder walks dir below the root folder, creating missing folders
func (ds *DriveStore) ensureFolder(ctx context.Context, dir string) (string, error) {
	parentID := ds.rootFolderID
	for _, name := range strings.Split(dir, "/") {
		if name == "" || name == "." {
			continue
		}
		id, err := ds.findChild(ctx, parentID, name, true)
		if err != nil {
			return "", err
		}
		if id == "" {
			created, err := ds.client.Files.Create(&drive.File{
				Name:     name,
				MimeType: driveFolderMimeType,
				Parents:  []string{parentID},
			}).Fields("id").Context(ctx).Do()
			if err != nil {
				return "", fmt.Errorf("failed to create folder %s: %w", name, err)
			}
			log.Printf("📁 Drive: created folder %s (%s)", name, created.Id)
			id = created.Id
		}
		parentID = id
	}
	return parentID, nil
}

// Save uploads data to docPath, replacing an existing file with the same name,
// and returns the file's web view link
func (ds *DriveStore) Save(ctx context.Context, docPath string, data []byte, contentType string) (string, error) {
	folderID, err := ds.ensureFolder(ctx, path.Dir(docPath))
	if err != nil {
		return "", err
	}

	name := path.Base(docPath)
	existingID, err := ds.findChild(ctx, folderID, name, false)
	if err != nil {
		return "", err
	}

	var file *drive.File
	if existingID != "" {
		file, err = ds.client.Files.Update(existingID, &drive.File{}).
			Media(bytes.NewReader(data)).
			Fields("id, webViewLink").
			Context(ctx).
			Do()
	} else {
		file, err = ds.client.Files.Create(&drive.File{
			Name:     name,
			MimeType: contentType,
			Parents:  []string{folderID},
		}).Media(bytes.NewReader(data)).
			Fields("id, webViewLink").
			Context(ctx).
			Do()
	}
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", docPath, err)
	}

	log.Printf("✓ Drive: stored %s (%s, %d bytes)", docPath, file.Id, len(data))
	return file.WebViewLink, nil
}

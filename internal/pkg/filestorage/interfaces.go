package filestorage

import (
	"context"
	"io"
)

// StoredFile represents a file accepted by a storage provider
type StoredFile struct {
	URL      string // Public URL of the stored file
	PublicID string // Provider id used to delete the file later
	Filename string // Original filename
	Size     int64  // Size in bytes
	MimeType string // MIME type of the file
}

// Upload is a validated file ready to be stored
type Upload struct {
	Body     io.Reader
	Filename string
	Size     int64
	MimeType string
}

// Provider defines the upload provider used for assignment attachments
type Provider interface {
	// Store saves the upload and returns where it can be fetched
	Store(ctx context.Context, upload Upload) (*StoredFile, error)

	// Delete removes a stored file. It reports false when the provider
	// had nothing to delete.
	Delete(ctx context.Context, publicID string) (bool, error)
}

package storage

import (
	"context"
	"io"
	"time"
)

// FileStorage is the attachment store. Paths are relative, slash separated keys.
type FileStorage interface {
	// Upload writes file under path and returns the cleaned key
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Delete removes a file; deleting a missing file is not an error
	Delete(ctx context.Context, path string) error

	// GetURL returns a URL the client can fetch the file from
	GetURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

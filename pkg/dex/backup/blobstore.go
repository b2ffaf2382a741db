package backup

import (
	"context"
	"errors"
)

var (
	// ErrBlobNotFound reports that no snapshot exists on the transport.
	ErrBlobNotFound = errors.New("backup blob not found")

	errNoBackupConfig = errors.New("no backup transport configured")
)

// BlobStore is the durable transport holding one snapshot blob.
type BlobStore interface {
	Upload(ctx context.Context, data []byte) error
	Download(ctx context.Context) ([]byte, error)
	Delete(ctx context.Context) error
}

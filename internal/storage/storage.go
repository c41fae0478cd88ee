package storage

import (
	"context"
	"io"
)

// ObjectInfo carries the metadata a download handler needs to set headers.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// ObjectStore abstracts the object backend so services stay testable
// without a running MinIO instance.
type ObjectStore interface {
	Upload(ctx context.Context, path string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, path string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, path string) error
}

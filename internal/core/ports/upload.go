package ports

import (
	"context"
	"io"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

// ObjectStore stores uploaded media.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, size int64, body io.Reader) error
	URL(key string) string
}

// UploadInput describes one uploaded file.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult locates a stored file.
type UploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// UploadService validates and stores media files.
type UploadService interface {
	Upload(ctx context.Context, actor domain.Actor, in UploadInput) (*UploadResult, error)
}

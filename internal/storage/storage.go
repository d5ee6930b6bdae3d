package storage

import (
	"context"
	"time"
)

// DefaultPresignedURLExpiry bounds how long an upload URL stays valid.
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage stores class images in an object store.
type FileStorage interface {
	// GeneratePresignedUploadURL returns a URL the browser can PUT the object to.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
	// PublicURL is the permanent address of an uploaded object.
	PublicURL(objectKey string) string
}

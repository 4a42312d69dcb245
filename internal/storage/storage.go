package storage

import (
	"context"
	"errors"
)

var ErrInvalidKey = errors.New("invalid blob key")

// BlobStore persists uploaded files and returns the URL clients use to fetch them.
type BlobStore interface {
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
	// Delete removes a saved blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

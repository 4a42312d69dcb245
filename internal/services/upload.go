package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ecotrack/backend/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Upload is an image received with a request, already checked for size and type.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// savedUpload identifies a stored blob so a failed write can remove it again.
type savedUpload struct {
	Key string
	URL string
}

func saveUpload(ctx context.Context, blobs storage.BlobStore, prefix string, up *Upload, now time.Time) (*savedUpload, error) {
	if blobs == nil {
		return nil, fmt.Errorf("no blob store configured")
	}
	ext := strings.ToLower(filepath.Ext(up.Filename))
	key := fmt.Sprintf("%s-%d-%s%s", prefix, now.UnixMilli(), uuid.NewString()[:8], ext)
	url, err := blobs.Save(ctx, key, up.ContentType, up.Data)
	if err != nil {
		return nil, err
	}
	return &savedUpload{Key: key, URL: url}, nil
}

// discardUpload removes a blob whose owning record was never written.
func discardUpload(ctx context.Context, blobs storage.BlobStore, saved *savedUpload, log *zap.SugaredLogger) {
	if saved == nil {
		return
	}
	if err := blobs.Delete(ctx, saved.Key); err != nil {
		log.Warnw("failed to remove orphaned upload", "key", saved.Key, "error", err)
	}
}

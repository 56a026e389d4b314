package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voltaic/energy-cms/internal/pkg/metrics"
	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/core/ports"
)

// imageExtensions maps accepted media types to the extension used in object keys.
var imageExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
}

// UploadService stores admin-uploaded images in an object store.
type UploadService struct {
	store    ports.ObjectStore
	activity ports.ActivityRecorder
	maxBytes int64
	now      func() time.Time
	log      zerolog.Logger
}

func NewUploadService(store ports.ObjectStore, activity ports.ActivityRecorder, maxBytes int64, log zerolog.Logger) *UploadService {
	if activity == nil {
		activity = DiscardActivity{}
	}
	return &UploadService{
		store:    store,
		activity: activity,
		maxBytes: maxBytes,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// Upload validates the file and writes it under uploads/YYYY/MM/<uuid><ext>.
func (s *UploadService) Upload(ctx context.Context, actor domain.Actor, in ports.UploadInput) (*ports.UploadResult, error) {
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(in.ContentType, ";", 2)[0]))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, domain.NewValidationError("unsupported file type %q", in.ContentType)
	}
	if in.Size <= 0 {
		return nil, domain.NewValidationError("file is empty")
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return nil, domain.NewValidationError("file exceeds %d bytes", s.maxBytes)
	}

	now := s.now()
	key := fmt.Sprintf("uploads/%04d/%02d/%s%s", now.Year(), now.Month(), uuid.NewString(), ext)

	if err := s.store.Put(ctx, key, contentType, in.Size, in.Body); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("failed to store upload")
		return nil, fmt.Errorf("upload: %w: %w", domain.ErrUnavailable, err)
	}

	metrics.UploadedBytesTotal.Add(float64(in.Size))
	s.activity.Record(domain.ActivityEvent{
		Actor:      actor.Email,
		Action:     domain.ActionUpload,
		Detail:     path.Base(in.Filename) + " -> " + key,
		IP:         actor.IP,
		OccurredAt: now,
	})
	s.log.Info().Str("key", key).Int64("size", in.Size).Msg("upload stored")

	return &ports.UploadResult{Key: key, URL: s.store.URL(key)}, nil
}

package ports

import (
	"context"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

// ActivityRecorder accepts audit events. Implementations must not block the caller
// on slow storage.
type ActivityRecorder interface {
	Record(event domain.ActivityEvent)
}

// ActivityRepository persists and queries the activity trail.
type ActivityRepository interface {
	Insert(ctx context.Context, event domain.ActivityEvent) error
	Recent(ctx context.Context, limit int) ([]domain.ActivityEvent, error)
}

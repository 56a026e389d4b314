package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/voltaic/energy-cms/internal/pkg/metrics"
	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/core/ports"
	"github.com/voltaic/energy-cms/internal/pkg/validate"
)

const maxListLimit = 100

// defaulter is implemented by records that fill in fields left empty on write.
type defaulter interface {
	ApplyDefaults(now time.Time)
}

// ContentService is the generic read/write service for one content kind.
// Reads may substitute fallback data; writes always surface failures.
type ContentService[T any] struct {
	kind     domain.ContentKind
	repo     ports.ContentRepository[T]
	activity ports.ActivityRecorder
	now      func() time.Time
	log      zerolog.Logger
}

// NewContentService returns a ContentService for kind backed by repo.
func NewContentService[T any](
	kind domain.ContentKind,
	repo ports.ContentRepository[T],
	activity ports.ActivityRecorder,
	log zerolog.Logger,
) *ContentService[T] {
	if activity == nil {
		activity = DiscardActivity{}
	}
	return &ContentService[T]{
		kind:     kind,
		repo:     repo,
		activity: activity,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("kind", string(kind)).Logger(),
	}
}

func (s *ContentService[T]) Kind() domain.ContentKind { return s.kind }

// List returns the records matching in.Filter in store order.
func (s *ContentService[T]) List(ctx context.Context, in ports.ListInput) (*ports.ListResult[T], error) {
	filter := in.Filter
	if filter.Limit < 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		if in.Fallback {
			s.fallback("list", err)
			return &ports.ListResult[T]{Items: []T{}, Fallback: true}, nil
		}
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	if items == nil {
		items = []T{}
	}
	return &ports.ListResult[T]{Items: items}, nil
}

// Get returns a single record by ID, or by slug when in.Slug is set.
// A missing record is always domain.ErrNotFound, even with Fallback.
func (s *ContentService[T]) Get(ctx context.Context, in ports.GetInput) (*ports.GetResult[T], error) {
	var (
		item *T
		err  error
	)
	if in.Slug != "" {
		item, err = s.repo.FindBySlug(ctx, in.Slug, in.ActiveOnly)
	} else {
		if in.ID <= 0 {
			return nil, domain.NewValidationError("id must be a positive integer")
		}
		item, err = s.repo.FindByID(ctx, in.ID, in.ActiveOnly)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if in.Fallback {
			s.fallback("get", err)
			return &ports.GetResult[T]{Fallback: true}, nil
		}
		return nil, fmt.Errorf("get %s: %w", s.kind, err)
	}
	return &ports.GetResult[T]{Item: item}, nil
}

// Create validates and persists rec.
func (s *ContentService[T]) Create(ctx context.Context, actor domain.Actor, rec T) (*T, error) {
	if err := s.prepare(&rec); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		s.mutationFailed("create", err)
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}

	s.mutated(actor, domain.ActionCreate, idOf(created))
	return created, nil
}

// Update replaces the writable fields of record id with those of rec.
func (s *ContentService[T]) Update(ctx context.Context, actor domain.Actor, id int64, rec T) (*T, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id must be a positive integer")
	}
	if err := s.prepare(&rec); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, rec)
	if err != nil {
		s.mutationFailed("update", err)
		return nil, fmt.Errorf("update %s %d: %w", s.kind, id, err)
	}

	s.mutated(actor, domain.ActionUpdate, id)
	return updated, nil
}

// Delete removes record id.
func (s *ContentService[T]) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if id <= 0 {
		return domain.NewValidationError("id must be a positive integer")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.mutationFailed("delete", err)
		return fmt.Errorf("delete %s %d: %w", s.kind, id, err)
	}

	s.mutated(actor, domain.ActionDelete, id)
	return nil
}

func (s *ContentService[T]) prepare(rec *T) error {
	if d, ok := any(rec).(defaulter); ok {
		d.ApplyDefaults(s.now())
	}
	if err := validate.Struct(rec); err != nil {
		return &domain.ValidationError{Msg: err.Error()}
	}
	return nil
}

func (s *ContentService[T]) fallback(op string, err error) {
	metrics.ContentFallbackTotal.WithLabelValues(string(s.kind), op).Inc()
	s.log.Warn().Err(err).Str("op", op).Msg("content store read failed, serving fallback data")
}

func (s *ContentService[T]) mutationFailed(op string, err error) {
	metrics.ContentMutationsTotal.WithLabelValues(string(s.kind), op, "error").Inc()
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
		return
	}
	s.log.Error().Err(err).Str("op", op).Msg("content mutation failed")
}

func (s *ContentService[T]) mutated(actor domain.Actor, action domain.ActivityAction, id int64) {
	metrics.ContentMutationsTotal.WithLabelValues(string(s.kind), string(action), "ok").Inc()
	s.log.Info().Str("op", string(action)).Int64("id", id).Str("actor", actor.Email).Msg("content mutated")
	s.activity.Record(domain.ActivityEvent{
		Actor:      actor.Email,
		Action:     action,
		Kind:       string(s.kind),
		EntityID:   id,
		IP:         actor.IP,
		OccurredAt: s.now(),
	})
}

func idOf[T any](rec *T) int64 {
	if m := domain.MetaOf(rec); m != nil {
		return m.ID
	}
	return 0
}

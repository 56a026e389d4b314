package ports

import (
	"context"
)

// ListFilter narrows a content listing. Zero values mean "no restriction".
type ListFilter struct {
	ActiveOnly bool
	Category   string // ignored by kinds without a category column
	Featured   bool   // ignored by kinds without a featured column
	Limit      int
}

// ContentRepository is the store boundary for one content kind. Failures other
// than domain.ErrNotFound and domain.ErrConflict wrap domain.ErrUnavailable.
type ContentRepository[T any] interface {
	List(ctx context.Context, filter ListFilter) ([]T, error)
	FindByID(ctx context.Context, id int64, activeOnly bool) (*T, error)
	// FindBySlug returns domain.ErrNotFound for kinds without a slug column.
	FindBySlug(ctx context.Context, slug string, activeOnly bool) (*T, error)
	Create(ctx context.Context, rec T) (*T, error)
	Update(ctx context.Context, id int64, rec T) (*T, error)
	Delete(ctx context.Context, id int64) error
}

package ports

import (
	"context"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

// ListInput carries the parameters of a content listing.
type ListInput struct {
	Filter ListFilter
	// Fallback substitutes an empty result for store failures. Public reads set it.
	Fallback bool
}

// ListResult is returned by ContentService.List. Items is never nil.
type ListResult[T any] struct {
	Items    []T
	Fallback bool
}

// GetInput identifies a single record by ID or by slug.
type GetInput struct {
	ID         int64
	Slug       string
	ActiveOnly bool
	Fallback   bool
}

// GetResult is returned by ContentService.Get. Item is nil only when Fallback is set.
type GetResult[T any] struct {
	Item     *T
	Fallback bool
}

// ContentService exposes reads that degrade gracefully and writes that never do.
type ContentService[T any] interface {
	Kind() domain.ContentKind
	List(ctx context.Context, in ListInput) (*ListResult[T], error)
	Get(ctx context.Context, in GetInput) (*GetResult[T], error)
	Create(ctx context.Context, actor domain.Actor, rec T) (*T, error)
	Update(ctx context.Context, actor domain.Actor, id int64, rec T) (*T, error)
	Delete(ctx context.Context, actor domain.Actor, id int64) error
}

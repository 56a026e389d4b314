package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/core/ports"
	"github.com/voltaic/energy-cms/internal/pkg/validate"
)

// ContentRepository implements ports.ContentRepository[T] over the table
// described by a Schema.
type ContentRepository[T any] struct {
	db      DBTX
	schema  Schema[T]
	timeout time.Duration

	selectSQL string
	insertSQL string
	updateSQL string
	deleteSQL string
}

// NewContentRepository builds the statements for schema once.
func NewContentRepository[T any](db DBTX, schema Schema[T], queryTimeout time.Duration) *ContentRepository[T] {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}

	all := append(append([]string{}, metaColumns...), schema.Columns...)
	writable := append([]string{"is_active", "position"}, schema.Columns...)

	placeholders := make([]string, len(writable))
	assignments := make([]string, len(writable))
	for i, col := range writable {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}

	return &ContentRepository[T]{
		db:        db,
		schema:    schema,
		timeout:   queryTimeout,
		selectSQL: fmt.Sprintf("SELECT %s FROM %s", strings.Join(all, ", "), schema.Table),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id, created_at, updated_at",
			schema.Table, strings.Join(writable, ", "), strings.Join(placeholders, ", ")),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s, updated_at = now() WHERE id = $%d RETURNING id, created_at, updated_at",
			schema.Table, strings.Join(assignments, ", "), len(writable)+1),
		deleteSQL: fmt.Sprintf("DELETE FROM %s WHERE id = $1", schema.Table),
	}
}

func (r *ContentRepository[T]) List(ctx context.Context, filter ports.ListFilter) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		conds []string
		args  []any
	)
	if filter.ActiveOnly {
		conds = append(conds, "is_active = TRUE")
	}
	if filter.Category != "" && r.schema.HasCategory {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Featured && r.schema.HasFeatured {
		conds = append(conds, "featured = TRUE")
	}

	var q strings.Builder
	q.WriteString(r.selectSQL)
	if len(conds) > 0 {
		q.WriteString(" WHERE ")
		q.WriteString(strings.Join(conds, " AND "))
	}
	q.WriteString(" ORDER BY ")
	q.WriteString(r.schema.OrderBy)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&q, " LIMIT $%d", len(args))
	}

	op := "list " + r.schema.Table
	rows, err := r.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		var rec T
		if err := r.scan(op, rows, &rec); err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return items, nil
}

func (r *ContentRepository[T]) FindByID(ctx context.Context, id int64, activeOnly bool) (*T, error) {
	q := r.selectSQL + " WHERE id = $1"
	if activeOnly {
		q += " AND is_active = TRUE"
	}
	return r.findOne(ctx, "find "+r.schema.Table, q, id)
}

func (r *ContentRepository[T]) FindBySlug(ctx context.Context, slug string, activeOnly bool) (*T, error) {
	if !r.schema.HasSlug {
		return nil, fmt.Errorf("find %s by slug: %w", r.schema.Table, domain.ErrNotFound)
	}
	q := r.selectSQL + " WHERE slug = $1"
	if activeOnly {
		q += " AND is_active = TRUE"
	}
	return r.findOne(ctx, "find "+r.schema.Table+" by slug", q, slug)
}

func (r *ContentRepository[T]) Create(ctx context.Context, rec T) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	meta := domain.MetaOf(&rec)
	err := r.db.QueryRowContext(ctx, r.insertSQL, r.writeArgs(&rec)...).
		Scan(&meta.ID, &meta.CreatedAt, &meta.UpdatedAt)
	if err != nil {
		return nil, wrapErr("insert "+r.schema.Table, err)
	}
	return &rec, nil
}

func (r *ContentRepository[T]) Update(ctx context.Context, id int64, rec T) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	meta := domain.MetaOf(&rec)
	args := append(r.writeArgs(&rec), id)
	err := r.db.QueryRowContext(ctx, r.updateSQL, args...).
		Scan(&meta.ID, &meta.CreatedAt, &meta.UpdatedAt)
	if err != nil {
		return nil, wrapErr("update "+r.schema.Table, err)
	}
	return &rec, nil
}

func (r *ContentRepository[T]) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	op := "delete " + r.schema.Table
	res, err := r.db.ExecContext(ctx, r.deleteSQL, id)
	if err != nil {
		return wrapErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func (r *ContentRepository[T]) findOne(ctx context.Context, op, query string, arg any) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var rec T
	if err := r.scan(op, r.db.QueryRowContext(ctx, query, arg), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// scan reads one row into rec and validates it. A row that fails validation
// is reported as unavailable so callers never see a partial record.
func (r *ContentRepository[T]) scan(op string, row scanner, rec *T) error {
	meta := domain.MetaOf(rec)
	dest := append([]any{&meta.ID, &meta.IsActive, &meta.Position, &meta.CreatedAt, &meta.UpdatedAt}, r.schema.Fields(rec)...)
	if err := row.Scan(dest...); err != nil {
		return wrapErr(op, err)
	}
	if err := validate.Struct(rec); err != nil {
		return fmt.Errorf("%s: %w: %w: row %d: %v", op, domain.ErrUnavailable, domain.ErrMalformedRecord, meta.ID, err)
	}
	return nil
}

func (r *ContentRepository[T]) writeArgs(rec *T) []any {
	meta := domain.MetaOf(rec)
	return append([]any{meta.IsActive, meta.Position}, r.schema.Fields(rec)...)
}

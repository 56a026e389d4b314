package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voltaic/energy-cms/internal/api/middleware"
	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/core/ports"
)

const defaultPublicLimit = 100

// ContentHandler serves one content kind. Public endpoints fall back to
// empty data when the store fails; admin endpoints report the failure.
type ContentHandler[T any] struct {
	svc ports.ContentService[T]
}

func NewContentHandler[T any](svc ports.ContentService[T]) *ContentHandler[T] {
	return &ContentHandler[T]{svc: svc}
}

// Register mounts the public routes on public and the CRUD routes on admin,
// both under /<kind>. sluggable adds /<kind>/slug/:slug.
func (h *ContentHandler[T]) Register(public, admin *echo.Group, sluggable bool) {
	base := "/" + string(h.svc.Kind())

	public.GET(base, h.PublicList)
	public.GET(base+"/:id", h.PublicGet)
	if sluggable {
		public.GET(base+"/slug/:slug", h.PublicGetBySlug)
	}

	admin.GET(base, h.AdminList)
	admin.POST(base, h.Create)
	admin.GET(base+"/:id", h.AdminGet)
	admin.PUT(base+"/:id", h.Update)
	admin.DELETE(base+"/:id", h.Delete)
}

// PublicList returns active records. Supports ?category=, ?featured=true and ?limit=.
func (h *ContentHandler[T]) PublicList(c echo.Context) error {
	filter, err := listFilter(c)
	if err != nil {
		return err
	}
	filter.ActiveOnly = true
	if filter.Limit == 0 {
		filter.Limit = defaultPublicLimit
	}

	res, err := h.svc.List(c.Request().Context(), ports.ListInput{Filter: filter, Fallback: true})
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, res.Items, res.Fallback)
}

// PublicGet returns an active record by ID, or data:null with the fallback
// marker when the store is unavailable.
func (h *ContentHandler[T]) PublicGet(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return h.get(c, ports.GetInput{ID: id, ActiveOnly: true, Fallback: true})
}

func (h *ContentHandler[T]) PublicGetBySlug(c echo.Context) error {
	slug := c.Param("slug")
	if slug == "" {
		return domain.NewValidationError("slug is required")
	}
	return h.get(c, ports.GetInput{Slug: slug, ActiveOnly: true, Fallback: true})
}

// AdminList returns every record, inactive ones included unless ?active=true.
func (h *ContentHandler[T]) AdminList(c echo.Context) error {
	filter, err := listFilter(c)
	if err != nil {
		return err
	}
	if filter.ActiveOnly, err = queryBool(c, "active"); err != nil {
		return err
	}

	res, err := h.svc.List(c.Request().Context(), ports.ListInput{Filter: filter})
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, res.Items, false)
}

func (h *ContentHandler[T]) AdminGet(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return h.get(c, ports.GetInput{ID: id})
}

// Create stores a new record. is_active defaults to true when omitted.
func (h *ContentHandler[T]) Create(c echo.Context) error {
	var rec T
	if m := domain.MetaOf(&rec); m != nil {
		m.IsActive = true
	}
	if err := c.Bind(&rec); err != nil {
		return domain.NewValidationError("invalid payload")
	}

	created, err := h.svc.Create(c.Request().Context(), middleware.ActorFrom(c), rec)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, created, "")
}

// Update applies the request body on top of the stored record, so omitted
// fields keep their current values.
func (h *ContentHandler[T]) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	current, err := h.svc.Get(c.Request().Context(), ports.GetInput{ID: id})
	if err != nil {
		return err
	}
	rec := *current.Item
	if err := c.Bind(&rec); err != nil {
		return domain.NewValidationError("invalid payload")
	}

	updated, err := h.svc.Update(c.Request().Context(), middleware.ActorFrom(c), id, rec)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, updated, "")
}

func (h *ContentHandler[T]) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), middleware.ActorFrom(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "deleted")
}

func (h *ContentHandler[T]) get(c echo.Context, in ports.GetInput) error {
	res, err := h.svc.Get(c.Request().Context(), in)
	if err != nil {
		return err
	}
	if res.Fallback {
		return respond(c, http.StatusOK, nil, fallbackMessage)
	}
	return respond(c, http.StatusOK, res.Item, "")
}

func listFilter(c echo.Context) (ports.ListFilter, error) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return ports.ListFilter{}, err
	}
	featured, err := queryBool(c, "featured")
	if err != nil {
		return ports.ListFilter{}, err
	}
	return ports.ListFilter{
		Category: c.QueryParam("category"),
		Featured: featured,
		Limit:    limit,
	}, nil
}

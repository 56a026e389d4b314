package postgres

import (
	"github.com/voltaic/energy-cms/internal/core/domain"
)

// metaColumns are shared by every content table and always come first in a
// SELECT, matching the scan order of domain.ContentMeta.
var metaColumns = []string{"id", "is_active", "position", "created_at", "updated_at"}

// Schema maps a content record type onto its table. Columns lists the
// kind-specific columns in the order Fields returns pointers to them.
type Schema[T any] struct {
	Kind        domain.ContentKind
	Table       string
	Columns     []string
	Fields      func(*T) []any
	HasSlug     bool
	HasCategory bool
	HasFeatured bool
	OrderBy     string
}

const defaultOrder = "position, id"

var ProductSchema = Schema[domain.Product]{
	Kind:  domain.KindProducts,
	Table: "products",
	Columns: []string{
		"name", "slug", "category", "summary", "description",
		"image_url", "capacity", "voltage", "specifications", "featured",
	},
	Fields: func(p *domain.Product) []any {
		return []any{
			&p.Name, &p.Slug, &p.Category, &p.Summary, &p.Description,
			&p.ImageURL, &p.Capacity, &p.Voltage, &p.Specifications, &p.Featured,
		}
	},
	HasSlug:     true,
	HasCategory: true,
	HasFeatured: true,
	OrderBy:     defaultOrder,
}

var NewsSchema = Schema[domain.NewsArticle]{
	Kind:    domain.KindNews,
	Table:   "news_articles",
	Columns: []string{"title", "slug", "category", "excerpt", "content", "image_url", "author", "published_at"},
	Fields: func(n *domain.NewsArticle) []any {
		return []any{&n.Title, &n.Slug, &n.Category, &n.Excerpt, &n.Content, &n.ImageURL, &n.Author, &n.PublishedAt}
	},
	HasSlug:     true,
	HasCategory: true,
	OrderBy:     "published_at DESC, id DESC",
}

var SolutionSchema = Schema[domain.Solution]{
	Kind:    domain.KindSolutions,
	Table:   "solutions",
	Columns: []string{"title", "slug", "summary", "description", "image_url", "icon"},
	Fields: func(s *domain.Solution) []any {
		return []any{&s.Title, &s.Slug, &s.Summary, &s.Description, &s.ImageURL, &s.Icon}
	},
	HasSlug: true,
	OrderBy: defaultOrder,
}

var CaseStudySchema = Schema[domain.CaseStudy]{
	Kind:  domain.KindCaseStudies,
	Table: "case_studies",
	Columns: []string{
		"title", "slug", "client", "location", "industry",
		"summary", "content", "image_url", "capacity",
	},
	Fields: func(c *domain.CaseStudy) []any {
		return []any{
			&c.Title, &c.Slug, &c.Client, &c.Location, &c.Industry,
			&c.Summary, &c.Content, &c.ImageURL, &c.Capacity,
		}
	},
	HasSlug: true,
	OrderBy: defaultOrder,
}

var HeroSlideSchema = Schema[domain.HeroSlide]{
	Kind:    domain.KindHeroSlides,
	Table:   "hero_slides",
	Columns: []string{"title", "subtitle", "image_url", "link_url", "button_text"},
	Fields: func(h *domain.HeroSlide) []any {
		return []any{&h.Title, &h.Subtitle, &h.ImageURL, &h.LinkURL, &h.ButtonText}
	},
	OrderBy: defaultOrder,
}

var LabEquipmentSchema = Schema[domain.LabEquipment]{
	Kind:    domain.KindLabEquipment,
	Table:   "lab_equipment",
	Columns: []string{"name", "model", "category", "description", "image_url", "specifications"},
	Fields: func(l *domain.LabEquipment) []any {
		return []any{&l.Name, &l.Model, &l.Category, &l.Description, &l.ImageURL, &l.Specifications}
	},
	HasCategory: true,
	OrderBy:     defaultOrder,
}

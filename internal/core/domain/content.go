package domain

import "time"

// ContentKind names a manageable content collection. The value doubles as its route segment.
type ContentKind string

const (
	KindProducts     ContentKind = "products"
	KindNews         ContentKind = "news"
	KindSolutions    ContentKind = "solutions"
	KindCaseStudies  ContentKind = "case-studies"
	KindHeroSlides   ContentKind = "hero-slides"
	KindLabEquipment ContentKind = "lab-equipment"
)

// ContentMeta holds the columns every content table shares.
type ContentMeta struct {
	ID        int64     `json:"id"`
	IsActive  bool      `json:"is_active"`
	Position  int       `json:"position" validate:"gte=0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Meta exposes the shared columns of any record embedding ContentMeta.
func (m *ContentMeta) Meta() *ContentMeta { return m }

// MetaOf returns the shared columns of a content record pointer, or nil
// when rec does not embed ContentMeta.
func MetaOf(rec any) *ContentMeta {
	if m, ok := rec.(interface{ Meta() *ContentMeta }); ok {
		return m.Meta()
	}
	return nil
}

// Product is a storage product shown in the catalogue.
type Product struct {
	ContentMeta
	Name           string `json:"name" validate:"required,max=200"`
	Slug           string `json:"slug" validate:"required,slug,max=200"`
	Category       string `json:"category" validate:"max=100"`
	Summary        string `json:"summary" validate:"max=500"`
	Description    string `json:"description"`
	ImageURL       string `json:"image_url" validate:"omitempty,uri"`
	Capacity       string `json:"capacity" validate:"max=100"`
	Voltage        string `json:"voltage" validate:"max=100"`
	Specifications string `json:"specifications"`
	Featured       bool   `json:"featured"`
}

// NewsArticle is a company news post.
type NewsArticle struct {
	ContentMeta
	Title       string    `json:"title" validate:"required,max=300"`
	Slug        string    `json:"slug" validate:"required,slug,max=200"`
	Category    string    `json:"category" validate:"max=100"`
	Excerpt     string    `json:"excerpt" validate:"max=1000"`
	Content     string    `json:"content"`
	ImageURL    string    `json:"image_url" validate:"omitempty,uri"`
	Author      string    `json:"author" validate:"max=200"`
	PublishedAt time.Time `json:"published_at"`
}

// ApplyDefaults stamps PublishedAt for articles submitted without one.
func (a *NewsArticle) ApplyDefaults(now time.Time) {
	if a.PublishedAt.IsZero() {
		a.PublishedAt = now
	}
}

// Solution describes an application area (grid, commercial, residential...).
type Solution struct {
	ContentMeta
	Title       string `json:"title" validate:"required,max=300"`
	Slug        string `json:"slug" validate:"required,slug,max=200"`
	Summary     string `json:"summary" validate:"max=1000"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url" validate:"omitempty,uri"`
	Icon        string `json:"icon" validate:"max=100"`
}

// CaseStudy is a reference installation.
type CaseStudy struct {
	ContentMeta
	Title    string `json:"title" validate:"required,max=300"`
	Slug     string `json:"slug" validate:"required,slug,max=200"`
	Client   string `json:"client" validate:"max=200"`
	Location string `json:"location" validate:"max=200"`
	Industry string `json:"industry" validate:"max=100"`
	Summary  string `json:"summary" validate:"max=1000"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url" validate:"omitempty,uri"`
	Capacity string `json:"capacity" validate:"max=100"`
}

// HeroSlide is one frame of the home page carousel.
type HeroSlide struct {
	ContentMeta
	Title      string `json:"title" validate:"required,max=300"`
	Subtitle   string `json:"subtitle" validate:"max=500"`
	ImageURL   string `json:"image_url" validate:"required,uri"`
	LinkURL    string `json:"link_url" validate:"omitempty,uri"`
	ButtonText string `json:"button_text" validate:"max=100"`
}

// LabEquipment is an item of the testing laboratory inventory.
type LabEquipment struct {
	ContentMeta
	Name           string `json:"name" validate:"required,max=200"`
	Model          string `json:"model" validate:"max=200"`
	Category       string `json:"category" validate:"max=100"`
	Description    string `json:"description"`
	ImageURL       string `json:"image_url" validate:"omitempty,uri"`
	Specifications string `json:"specifications"`
}

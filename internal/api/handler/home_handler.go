package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/core/ports"
)

const (
	homeFeaturedProducts = 6
	homeLatestNews       = 3
)

// HomeHandler assembles the landing page payload.
type HomeHandler struct {
	slides   ports.ContentService[domain.HeroSlide]
	products ports.ContentService[domain.Product]
	news     ports.ContentService[domain.NewsArticle]
}

func NewHomeHandler(
	slides ports.ContentService[domain.HeroSlide],
	products ports.ContentService[domain.Product],
	news ports.ContentService[domain.NewsArticle],
) *HomeHandler {
	return &HomeHandler{slides: slides, products: products, news: news}
}

type homeResponse struct {
	HeroSlides       []domain.HeroSlide   `json:"hero_slides"`
	FeaturedProducts []domain.Product     `json:"featured_products"`
	LatestNews       []domain.NewsArticle `json:"latest_news"`
	// FallbackSections names the sections served from fallback data.
	FallbackSections []string `json:"fallback_sections,omitempty"`
}

// Home returns hero slides, featured products and the latest news. Each
// section falls back on its own.
//
// @Summary      Home page content
// @Tags         public
// @Produce      json
// @Success      200  {object}  envelope{data=homeResponse}
// @Router       /api/home [get]
func (h *HomeHandler) Home(c echo.Context) error {
	ctx := c.Request().Context()
	var resp homeResponse

	slides, err := h.slides.List(ctx, ports.ListInput{Filter: ports.ListFilter{ActiveOnly: true}, Fallback: true})
	if err != nil {
		return err
	}
	resp.HeroSlides = slides.Items
	if slides.Fallback {
		resp.FallbackSections = append(resp.FallbackSections, "hero_slides")
	}

	products, err := h.products.List(ctx, ports.ListInput{
		Filter:   ports.ListFilter{ActiveOnly: true, Featured: true, Limit: homeFeaturedProducts},
		Fallback: true,
	})
	if err != nil {
		return err
	}
	resp.FeaturedProducts = products.Items
	if products.Fallback {
		resp.FallbackSections = append(resp.FallbackSections, "featured_products")
	}

	news, err := h.news.List(ctx, ports.ListInput{
		Filter:   ports.ListFilter{ActiveOnly: true, Limit: homeLatestNews},
		Fallback: true,
	})
	if err != nil {
		return err
	}
	resp.LatestNews = news.Items
	if news.Fallback {
		resp.FallbackSections = append(resp.FallbackSections, "latest_news")
	}

	msg := ""
	if len(resp.FallbackSections) > 0 {
		msg = fallbackMessage
	}
	return respond(c, http.StatusOK, resp, msg)
}

package api

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/voltaic/energy-cms/docs"
	"github.com/voltaic/energy-cms/internal/api/handler"
	"github.com/voltaic/energy-cms/internal/api/middleware"
	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/core/ports"
)

// multipartOverhead is allowed on top of the upload size limit for form framing.
const multipartOverhead = 1 << 20

// Dependencies groups everything the router wires into handlers. Optional
// features are disabled by leaving their field nil.
type Dependencies struct {
	Auth         ports.AuthService
	SessionTTL   time.Duration
	SecureCookie bool

	Products     ports.ContentService[domain.Product]
	News         ports.ContentService[domain.NewsArticle]
	Solutions    ports.ContentService[domain.Solution]
	CaseStudies  ports.ContentService[domain.CaseStudy]
	HeroSlides   ports.ContentService[domain.HeroSlide]
	LabEquipment ports.ContentService[domain.LabEquipment]

	Activity       ports.ActivityRepository
	Uploads        ports.UploadService
	UploadMaxBytes int64

	Postgres *sql.DB
	Redis    *redis.Client
	Mongo    *mongo.Client

	AdminStaticDir string
	Log            zerolog.Logger

	// Metrics replaces the default Prometheus registry for HTTP metrics.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Metrics != nil {
		registerer, gatherer = deps.Metrics, deps.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "cms",
		Registerer: registerer,
	}))

	// --- Health probes and ops (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Postgres, deps.Redis, deps.Mongo)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.SessionTTL, deps.SecureCookie)
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/logout", authHandler.Logout)
	e.GET("/api/auth/session", authHandler.Session)

	// --- Content: public reads fall back, admin routes require a session ---
	public := e.Group("/api")
	admin := e.Group("/api/admin", middleware.RequireSession(deps.Auth))

	public.GET("/home", handler.NewHomeHandler(deps.HeroSlides, deps.Products, deps.News).Home)

	handler.NewContentHandler(deps.Products).Register(public, admin, true)
	handler.NewContentHandler(deps.News).Register(public, admin, true)
	handler.NewContentHandler(deps.Solutions).Register(public, admin, true)
	handler.NewContentHandler(deps.CaseStudies).Register(public, admin, true)
	handler.NewContentHandler(deps.HeroSlides).Register(public, admin, false)
	handler.NewContentHandler(deps.LabEquipment).Register(public, admin, false)

	admin.GET("/activity", handler.NewActivityHandler(deps.Activity).Recent)

	uploadLimit := deps.UploadMaxBytes + multipartOverhead
	admin.POST("/uploads", handler.NewUploadHandler(deps.Uploads).Upload,
		echomiddleware.BodyLimit(strconv.FormatInt(uploadLimit, 10)))

	// --- Admin pages ---
	if deps.AdminStaticDir != "" {
		pages := e.Group(middleware.AdminPrefix, middleware.PageGuard(deps.Auth))
		pages.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
			Root:  deps.AdminStaticDir,
			HTML5: true,
		}))
	}

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

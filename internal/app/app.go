// Package app wires configuration, stores and services into a runnable server.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voltaic/energy-cms/internal/api"
	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/core/ports"
	"github.com/voltaic/energy-cms/internal/core/service"
	"github.com/voltaic/energy-cms/internal/infrastructure/config"
	mongodb "github.com/voltaic/energy-cms/internal/infrastructure/db/mongo"
	"github.com/voltaic/energy-cms/internal/infrastructure/db/postgres"
	redisdb "github.com/voltaic/energy-cms/internal/infrastructure/db/redis"
	"github.com/voltaic/energy-cms/internal/infrastructure/queue"
	s3store "github.com/voltaic/energy-cms/internal/infrastructure/storage/s3"
	"github.com/voltaic/energy-cms/internal/seed"
)

const startupPingTimeout = 5 * time.Second

// Services holds the domain services built by New. Uploads and Activity are
// nil when their backing store is not configured.
type Services struct {
	Auth         *service.AuthService
	Products     *service.ContentService[domain.Product]
	News         *service.ContentService[domain.NewsArticle]
	Solutions    *service.ContentService[domain.Solution]
	CaseStudies  *service.ContentService[domain.CaseStudy]
	HeroSlides   *service.ContentService[domain.HeroSlide]
	LabEquipment *service.ContentService[domain.LabEquipment]
	Uploads      ports.UploadService
	Activity     ports.ActivityRepository
}

// App owns every connection opened at startup.
type App struct {
	cfg      *config.Config
	log      zerolog.Logger
	db       *sql.DB
	redis    *redis.Client
	mongo    *mongo.Client
	services Services

	dispatcher  *queue.Dispatcher
	stopWorkers context.CancelFunc
}

// New opens the stores and builds the services. Postgres is required to be
// configured but not reachable: an unreachable database is logged and the
// public site serves fallback data. Redis, MongoDB and S3 are optional and a
// failure to reach them disables their feature.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	db, err := postgres.Open(postgres.Config{
		DSN:          cfg.Postgres.URL,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Postgres.MaxIdleConns,
		QueryTimeout: cfg.Postgres.QueryTimeout,
	})
	if err != nil {
		return nil, err
	}
	a.db = db
	if err := postgres.Ping(ctx, db, startupPingTimeout); err != nil {
		log.Warn().Err(err).Msg("postgres unreachable at startup, public reads will fall back")
	}

	var limiter ports.LoginLimiter
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, login throttling disabled")
		} else {
			a.redis = rdb
			limiter = redisdb.NewLoginLimiter(rdb, cfg.Redis.LoginMaxAttempts, cfg.Redis.LoginWindow)
		}
	}

	var recorder ports.ActivityRecorder
	if cfg.Mongo.URI != "" {
		client, mdb, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Warn().Err(err).Msg("mongodb unavailable, activity trail disabled")
		} else {
			a.mongo = client
			repo := mongodb.NewActivityRepository(mdb)
			if err := repo.EnsureIndexes(ctx); err != nil {
				log.Warn().Err(err).Msg("activity indexes not created")
			}
			a.services.Activity = repo

			workerCtx, stop := context.WithCancel(context.Background())
			a.dispatcher = queue.NewDispatcher(cfg.Mongo.Workers, repo, log.With().Str("component", "activity").Logger())
			a.dispatcher.Start(workerCtx)
			a.stopWorkers = stop
			recorder = a.dispatcher
		}
	}

	if cfg.S3.Bucket != "" {
		store, err := s3store.New(ctx, s3store.Config{
			Bucket:        cfg.S3.Bucket,
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("object store unavailable, uploads disabled")
		} else {
			a.services.Uploads = service.NewUploadService(store, recorder, cfg.S3.MaxBytes, log)
		}
	}

	timeout := cfg.Postgres.QueryTimeout
	a.services.Auth = service.NewAuthService(
		postgres.NewAuthRepository(db, timeout), limiter, recorder, cfg.JWTSecret, cfg.SessionTTL, log,
	)
	a.services.Products = service.NewContentService[domain.Product](domain.KindProducts,
		postgres.NewContentRepository(db, postgres.ProductSchema, timeout), recorder, log)
	a.services.News = service.NewContentService[domain.NewsArticle](domain.KindNews,
		postgres.NewContentRepository(db, postgres.NewsSchema, timeout), recorder, log)
	a.services.Solutions = service.NewContentService[domain.Solution](domain.KindSolutions,
		postgres.NewContentRepository(db, postgres.SolutionSchema, timeout), recorder, log)
	a.services.CaseStudies = service.NewContentService[domain.CaseStudy](domain.KindCaseStudies,
		postgres.NewContentRepository(db, postgres.CaseStudySchema, timeout), recorder, log)
	a.services.HeroSlides = service.NewContentService[domain.HeroSlide](domain.KindHeroSlides,
		postgres.NewContentRepository(db, postgres.HeroSlideSchema, timeout), recorder, log)
	a.services.LabEquipment = service.NewContentService[domain.LabEquipment](domain.KindLabEquipment,
		postgres.NewContentRepository(db, postgres.LabEquipmentSchema, timeout), recorder, log)

	return a, nil
}

func (a *App) DB() *sql.DB { return a.db }

func (a *App) Services() Services { return a.services }

// Seeder returns a seeder writing through the content services.
func (a *App) Seeder() *seed.Seeder {
	s := a.services
	return seed.New(s.Auth, a.log,
		seed.Kind[domain.Product](s.Products),
		seed.Kind[domain.NewsArticle](s.News),
		seed.Kind[domain.Solution](s.Solutions),
		seed.Kind[domain.CaseStudy](s.CaseStudies),
		seed.Kind[domain.HeroSlide](s.HeroSlides),
		seed.Kind[domain.LabEquipment](s.LabEquipment),
	)
}

func (a *App) routerDependencies() api.Dependencies {
	s := a.services
	return api.Dependencies{
		Auth:           s.Auth,
		SessionTTL:     a.cfg.SessionTTL,
		SecureCookie:   a.cfg.IsProduction(),
		Products:       s.Products,
		News:           s.News,
		Solutions:      s.Solutions,
		CaseStudies:    s.CaseStudies,
		HeroSlides:     s.HeroSlides,
		LabEquipment:   s.LabEquipment,
		Activity:       s.Activity,
		Uploads:        s.Uploads,
		UploadMaxBytes: a.cfg.S3.MaxBytes,
		Postgres:       a.db,
		Redis:          a.redis,
		Mongo:          a.mongo,
		AdminStaticDir: a.cfg.AdminStaticDir,
		Log:            a.log,
	}
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured shutdown timeout.
func (a *App) Serve(ctx context.Context) error {
	e := api.NewRouter(a.routerDependencies())

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.Port).Str("env", a.cfg.Env).Msg("http server listening")
		if err := e.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close flushes queued activity events and closes every connection.
func (a *App) Close() {
	if a.dispatcher != nil {
		a.stopWorkers()
		a.dispatcher.Wait()
	}
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), startupPingTimeout)
		if err := a.mongo.Disconnect(ctx); err != nil {
			a.log.Warn().Err(err).Msg("mongodb disconnect")
		}
		cancel()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("redis close")
		}
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn().Err(err).Msg("postgres close")
	}
}

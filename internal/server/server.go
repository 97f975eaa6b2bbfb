// Package server assembles the HTTP application from configuration.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gifstore/docs"
	"gifstore/internal/auth"
	"gifstore/internal/config"
	"gifstore/internal/database"
	"gifstore/internal/database/migration"
	handlers "gifstore/internal/http/handler"
	"gifstore/internal/http/middleware"
	"gifstore/internal/metrics"
	"gifstore/internal/repository"
	"gifstore/internal/repository/memory"
	"gifstore/internal/repository/postgres"
	"gifstore/internal/service"
	"gifstore/internal/storage"
)

// multipart framing on top of the file itself
const bodyOverhead = 1 << 20

// Server owns the Fiber app and the resources behind it.
type Server struct {
	cfg *config.AppConfig
	log *slog.Logger
	app *fiber.App
	db  *sql.DB
}

type repositories struct {
	items repository.ItemRepository
	tags  repository.TagRepository
	users repository.UserRepository
}

// OpenDatabase connects and migrates PostgreSQL.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := database.NewPostgres(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Host); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func openRepositories(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (repositories, *sql.DB, error) {
	switch strings.ToLower(cfg.Driver) {
	case "memory":
		logger.Warn("using in-memory repositories; data is lost on exit")
		mem := memory.New()
		return repositories{items: mem.Items(), tags: mem.Tags(), users: mem.Users()}, nil, nil
	case "postgres", "":
		db, err := OpenDatabase(ctx, cfg, logger)
		if err != nil {
			return repositories{}, nil, err
		}
		return repositories{
			items: postgres.NewItemPostgres(db),
			tags:  postgres.NewTagPostgres(db),
			users: postgres.NewUserPostgres(db),
		}, db, nil
	default:
		return repositories{}, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func openStorage(cfg config.StorageConfig) (storage.Storage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "minio":
		return storage.NewMinIO(cfg.MinIO)
	case "local", "":
		return storage.NewLocal(cfg.LocalRoot)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// New wires repositories, storage, services and routes.
func New(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Server, error) {
	repos, db, err := openRepositories(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, log: logger, db: db}

	ok := false
	defer func() {
		if !ok {
			s.closeDB()
		}
	}()

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	uploads, err := metrics.NewUploads(reg)
	if err != nil {
		return nil, err
	}
	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, err
	}

	maxUpload := uploadLimit(cfg.Upload)
	itemSvc := service.NewItemService(repos.items, repos.tags, store,
		service.WithMaxUploadBytes(maxUpload),
		service.WithUploadObserver(uploads),
		service.WithLogger(logger.With("component", "items")),
	)
	userSvc := service.NewUserService(repos.users, tokens, logger.With("component", "users"))

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(maxUpload) + bodyOverhead,
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(prom.Handler())
	app.Use(cors.New(cors.Config{
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
		ExposeHeaders: middleware.RequestIDHeader,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}
	handlers.RegisterRoutes(app, handlers.Services{
		Items:  itemSvc,
		Users:  userSvc,
		Tokens: tokens,
		DB:     pinger,
	})

	s.app = app
	ok = true
	return s, nil
}

// App exposes the Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve listens on the configured port until ctx is cancelled, then drains
// in-flight requests for up to ten seconds.
func (s *Server) Serve(ctx context.Context) error {
	defer s.closeDB()

	addr := ":" + s.cfg.Port
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(shutdownCtx)
}

func (s *Server) closeDB() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		s.log.Error("closing database", "error", err.Error())
	}
	s.db = nil
}

// uploadLimit is the effective per-file cap shared by the service and the
// fiber body limit. Non-positive values fall back to the service default.
func uploadLimit(cfg config.UploadConfig) int64 {
	if cfg.MaxBytes <= 0 {
		return service.DefaultMaxUploadBytes
	}
	return cfg.MaxBytes
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	api "github.com/docforge/docforge/internal/api/http"
	"github.com/docforge/docforge/internal/auth"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/db"
	"github.com/docforge/docforge/internal/registry"
	"github.com/docforge/docforge/internal/render"
	"github.com/docforge/docforge/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()

	logger, err := buildLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	start := time.Now()

	// --- Stores ---
	templates, err := storage.NewTemplateStore(cfg.TemplatesDir)
	if err != nil {
		logger.Fatal("template store", zap.Error(err))
	}

	repo, cleanup, err := openRegistry(cfg, logger)
	if err != nil {
		logger.Fatal("registry", zap.Error(err))
	}
	defer cleanup()

	// --- Renderers ---
	deps := api.RenderDeps{
		Docx:            render.NewDocxRenderer(templates),
		HTML:            render.NewHTMLRenderer(),
		Log:             logger,
		DefaultLanguage: cfg.DefaultLanguage,
		DefaultTheme:    cfg.DefaultTheme,
	}

	authSvc := auth.NewService(cfg.APIKey, cfg.APIKeyHash, logger)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/", api.RootHandler(cfg.Version))
	r.Get("/health", api.HealthHandler(start, cfg.Environment, cfg.Version))

	r.Route("/api", func(pr chi.Router) {
		pr.Use(auth.Middleware(authSvc))

		pr.Post("/generate-docx", api.GenerateDocxHandler(deps))
		pr.Post("/generate-exercise", api.GenerateExerciseHandler(deps))
		pr.Post("/validate-exercise", api.ValidateExerciseHandler(deps))
		pr.Get("/exercise-template", api.ExerciseTemplateHandler())

		pr.Get("/templates", api.ListTemplatesHandler(templates, logger))
		pr.Post("/templates", api.UploadTemplateHandler(templates, cfg.MaxTemplateSize, logger))

		pr.Get("/exercise-categories", api.ListCategoriesHandler(repo, logger))
		pr.Post("/exercise-categories", api.CreateCategoryHandler(repo, logger))
		pr.Get("/exercise-topics", api.ListTopicsHandler(repo, logger))
		pr.Post("/exercise-topics", api.CreateTopicHandler(repo, logger))

		pr.Get("/supported-languages", api.SupportedLanguagesHandler())
		pr.Get("/exercise-stats", api.ExerciseStatsHandler(repo, logger))
		pr.Get("/search-exercises", api.SearchExercisesHandler(repo, logger))
	})

	r.NotFound(api.NotFoundHandler())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("env", cfg.Environment),
			zap.String("registry", cfg.RegistryDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func buildLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// openRegistry picks the category/topic backend. Memory is the default;
// sqlite and postgres reuse the same SQL repo with driver-specific DSNs.
func openRegistry(cfg config.Config, logger *zap.Logger) (registry.Repo, func(), error) {
	switch cfg.RegistryDriver {
	case "", "memory":
		return registry.NewMemoryRepo(), func() {}, nil
	case "sqlite", "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		dbh, err := db.Open(ctx, db.Driver(cfg.RegistryDriver), cfg.RegistryDSN)
		if err != nil {
			return nil, nil, err
		}
		repo := registry.NewSQLRepo(dbh)
		if err := repo.SeedIfEmpty(ctx); err != nil {
			dbh.Close()
			return nil, nil, err
		}
		logger.Info("registry backed by sql", zap.String("driver", cfg.RegistryDriver))
		return repo, func() { dbh.Close() }, nil
	default:
		return nil, nil, errors.New("unknown registry driver " + cfg.RegistryDriver)
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/social-insights/internal/config"
	httpcontroller "github.com/vadim/social-insights/internal/controller/http"
	"github.com/vadim/social-insights/internal/database"
	"github.com/vadim/social-insights/internal/domain/analytics/dao"
	"github.com/vadim/social-insights/internal/domain/analytics/engine"
	analyticsentity "github.com/vadim/social-insights/internal/domain/analytics/entity"
	analyticspolicy "github.com/vadim/social-insights/internal/domain/analytics/policy"
	"github.com/vadim/social-insights/internal/domain/analytics/service"
	contentpolicy "github.com/vadim/social-insights/internal/domain/content/policy"
	"github.com/vadim/social-insights/internal/httpx/response"
	"github.com/vadim/social-insights/internal/httpx/upstream/instagram"
	"github.com/vadim/social-insights/internal/httpx/upstream/pipeline"
	"github.com/vadim/social-insights/internal/metrics"
	"github.com/vadim/social-insights/internal/storage"
)

// App is the main application container
type App struct {
	cfg        config.Config
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger

	// Infrastructure
	pool    *pgxpool.Pool // nil when running on the in-memory repository
	posts   dao.PostRepository
	metrics *metrics.Collector
	assets  *storage.AssetStore // nil when S3 is disabled

	// Domain policies (interfaces for HTTP handlers)
	analyticsPolicy *analyticspolicy.Policy
	importer        *analyticspolicy.Importer
	contentPolicy   *contentpolicy.Policy
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	app := &App{
		cfg:    cfg,
		router: r,
		logger: logger,
	}

	if err := app.initInfrastructure(ctx); err != nil {
		return nil, fmt.Errorf("initializing infrastructure: %w", err)
	}

	if err := app.initDomains(ctx); err != nil {
		return nil, fmt.Errorf("initializing domains: %w", err)
	}

	if err := app.registerRoutes(); err != nil {
		return nil, fmt.Errorf("registering routes: %w", err)
	}

	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// initInfrastructure initializes storage, object storage and metrics
func (a *App) initInfrastructure(ctx context.Context) error {
	a.metrics = metrics.New(a.cfg.Metrics.Namespace)

	if a.cfg.Database.PostgresDSN != "" {
		pool, err := database.NewPostgresPool(ctx, a.cfg.Database)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		a.pool = pool
		a.posts = dao.NewPostPostgres(pool)
	} else {
		a.logger.Warn("DATABASE_URL not set, serving in-memory sample posts")
		a.posts = dao.NewPostMemory(dao.SamplePosts()...)
	}

	if a.cfg.S3.Enabled {
		a.assets = storage.NewAssetStore(storage.S3Config{
			Endpoint:        a.cfg.S3.Endpoint,
			AccessKeyID:     a.cfg.S3.AccessKeyID,
			SecretAccessKey: a.cfg.S3.SecretAccessKey,
			Bucket:          a.cfg.S3.Bucket,
			Region:          a.cfg.S3.Region,
			PublicURL:       a.cfg.S3.PublicURL,
			Prefix:          a.cfg.S3.Prefix,
		})
	}

	return nil
}

// initDomains initializes domain layers (DAO, Service, Policy)
func (a *App) initDomains(ctx context.Context) error {
	eng := engine.New(engine.Config{
		Margin:         a.cfg.Analytics.Margin,
		ExcludeSubject: a.cfg.Analytics.ExcludeSubject,
	})
	svc := service.New(a.posts, eng, a.cfg.Analytics.BatchLimit)
	a.analyticsPolicy = analyticspolicy.New(svc, a.metrics, a.logger)

	igClient := instagram.New(
		instagram.WithBaseURL(a.cfg.Instagram.BaseURL),
		instagram.WithAPIVersion(a.cfg.Instagram.APIVersion),
		instagram.WithHTTPClient(&http.Client{Timeout: a.cfg.Instagram.Timeout}),
	)
	a.importer = analyticspolicy.NewImporter(&instagramSourceAdapter{client: igClient}, a.analyticsPolicy, a.logger)

	var generator contentpolicy.Generator = disabledGenerator{}
	if a.cfg.Pipeline.Enabled() {
		client := pipeline.New(
			pipeline.WithBaseURL(a.cfg.Pipeline.BaseURL),
			pipeline.WithAPIVersion(a.cfg.Pipeline.APIVersion),
			pipeline.WithAPIKey(a.cfg.Pipeline.APIKey),
			pipeline.WithHTTPClient(&http.Client{Timeout: a.cfg.Pipeline.Timeout}),
			pipeline.WithRateLimit(a.cfg.Pipeline.RPS, a.cfg.Pipeline.Burst),
			pipeline.WithBreaker(pipeline.BreakerSettings{
				MaxFailures: a.cfg.Pipeline.MaxFailures,
				OpenTimeout: a.cfg.Pipeline.OpenTimeout,
			}),
		)
		generator = &pipelineGeneratorAdapter{client: client}
	} else {
		a.logger.Warn("PIPELINE_BASE_URL not set, content generation disabled")
	}

	var mirror contentpolicy.AssetMirror
	if a.assets != nil {
		mirror = &assetMirrorAdapter{store: a.assets}
	}

	a.contentPolicy = contentpolicy.New(generator, mirror, a.metrics, a.logger)

	return nil
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() error {
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)
	a.router.Handle("/metrics", a.metrics.Handler())

	docs, err := httpcontroller.NewDocsHandler("Social Insights API", OpenAPISpec)
	if err != nil {
		return err
	}
	docs.RegisterRoutes(a.router)

	a.router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(a.cfg.Server.RequestTimeout))
			httpcontroller.NewAnalyticsHandler(a.analyticsPolicy).RegisterRoutes(r)
			httpcontroller.NewPostHandler(a.analyticsPolicy).RegisterRoutes(r)
		})

		// Imports page through the Graph API
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(a.cfg.Instagram.Timeout * 4))
			httpcontroller.NewImportHandler(a.importer).RegisterRoutes(r)
		})

		// Generation waits on the pipeline runtime
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(a.cfg.Pipeline.Timeout + 5*time.Second))
			httpcontroller.NewContentHandler(a.contentPolicy).RegisterRoutes(r)
		})
	})

	return nil
}

// healthHandler handles liveness requests
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// readyHandler reports ready once the database answers a ping
func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	if a.pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := a.pool.Ping(ctx); err != nil {
			a.logger.WarnContext(ctx, "readiness check failed", "error", err)
			response.ServiceUnavailable(w, "database unavailable")
			return
		}
	}

	response.OK(w, map[string]string{"status": "ready"})
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Address())
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	if a.pool != nil {
		a.pool.Close()
	}

	a.logger.Info("shutdown complete")
	return nil
}

// pipelineGeneratorAdapter adapts pipeline.Client to contentpolicy.Generator
type pipelineGeneratorAdapter struct {
	client *pipeline.Client
}

func (a *pipelineGeneratorAdapter) Generate(ctx context.Context, in contentpolicy.GenerateInput) (*contentpolicy.GenerateOutput, error) {
	out, err := a.client.GenerateSocialContent(ctx, in.Company, in.Options)
	if errors.Is(err, pipeline.ErrCircuitOpen) {
		return nil, fmt.Errorf("%w: %v", contentpolicy.ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return &contentpolicy.GenerateOutput{
		RunID:    out.RunID,
		Content:  out.Content,
		Research: out.Research,
		Assets:   out.Assets,
	}, nil
}

// instagramSourceAdapter adapts instagram.Client to analyticspolicy.MediaSource
type instagramSourceAdapter struct {
	client *instagram.Client
}

func (a *instagramSourceAdapter) FetchPosts(ctx context.Context, in analyticspolicy.FetchInput) ([]analyticsentity.PostMetrics, error) {
	return a.client.FetchPostMetrics(ctx, instagram.FetchPostMetricsInput{
		UserID:      in.UserID,
		AccessToken: in.AccessToken,
		Topic:       in.Topic,
		Limit:       in.Limit,
	})
}

// disabledGenerator answers every request with ErrUnavailable
type disabledGenerator struct{}

func (disabledGenerator) Generate(context.Context, contentpolicy.GenerateInput) (*contentpolicy.GenerateOutput, error) {
	return nil, fmt.Errorf("%w: pipeline runtime not configured", contentpolicy.ErrUnavailable)
}

// assetMirrorAdapter adapts storage.AssetStore to contentpolicy.AssetMirror
type assetMirrorAdapter struct {
	store *storage.AssetStore
}

func (a *assetMirrorAdapter) Mirror(ctx context.Context, sourceURL string) (string, error) {
	out, err := a.store.Mirror(ctx, sourceURL)
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

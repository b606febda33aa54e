package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/logger"
	"github.com/kishorebabuysk/VF-Backend/common/telemetry"
	"github.com/kishorebabuysk/VF-Backend/internal/application"
	"github.com/kishorebabuysk/VF-Backend/internal/auth"
	"github.com/kishorebabuysk/VF-Backend/internal/config"
	"github.com/kishorebabuysk/VF-Backend/internal/contact"
	"github.com/kishorebabuysk/VF-Backend/internal/csr"
	"github.com/kishorebabuysk/VF-Backend/internal/db"
	"github.com/kishorebabuysk/VF-Backend/internal/events"
	"github.com/kishorebabuysk/VF-Backend/internal/health"
	"github.com/kishorebabuysk/VF-Backend/internal/job"
	appmetrics "github.com/kishorebabuysk/VF-Backend/internal/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/middleware"
	"github.com/kishorebabuysk/VF-Backend/internal/onboarding"
	"github.com/kishorebabuysk/VF-Backend/internal/ratelimit"
	"github.com/kishorebabuysk/VF-Backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
)

const (
	ServiceName         = "vf-backend"
	healthCheckInterval = 15 * time.Second
)

type App struct {
	config     *config.Config
	router     chi.Router
	server     *http.Server
	grpcServer *grpc.Server
	database   *bun.DB
	telemetry  *telemetry.Telemetry
	publisher  events.Publisher
	redis      *ratelimit.RedisLimiter
	checker    *health.Checker
	cancel     context.CancelFunc
	logger     *slog.Logger
}

// New wires config, storage, database and every HTTP module into one router.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := logger.NewWithServiceContext(ServiceName, Version, cfg.Env)
	slog.SetDefault(slogLogger)
	slogLogger.Info("initializing application", "env", cfg.Env)

	tel, err := telemetry.Init(ctx, cfg.Telemetry.Enabled, telemetry.Options{
		ServiceName:    ServiceName,
		ServiceVersion: Version,
		Env:            cfg.Env,
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
	}, slogLogger)
	if err != nil {
		return nil, err
	}
	meter := otel.Meter(ServiceName)

	domainMetrics, err := appmetrics.New(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize domain metrics: %w", err)
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := tel.Metrics.Database.RegisterDB(database.DB, meter); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}
	if err := tel.Metrics.Health.RegisterDependencies(meter, []string{health.DependencyPostgres}); err != nil {
		slogLogger.Warn("failed to register dependency metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, database, models(), indexes()...); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store, err := storage.NewOS(cfg.Storage.BaseDir, slogLogger)
	if err != nil {
		database.Close()
		return nil, err
	}

	publisher, err := events.New(cfg.Events, slogLogger, tel.Metrics)
	if err != nil {
		slogLogger.Warn("failed to initialize event publisher, events disabled", "driver", cfg.Events.Driver, "error", err)
		publisher = events.NewNoop()
	}

	app := &App{
		config:    cfg,
		router:    chi.NewRouter(),
		database:  database,
		telemetry: tel,
		publisher: publisher,
		logger:    slogLogger,
	}

	proxies, err := ratelimit.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		database.Close()
		return nil, err
	}
	limiter := app.newLimiter(ctx)
	limit := ratelimit.Middleware(limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window(), proxies, slogLogger)

	issuer, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm, cfg.Auth.TokenTTL())
	if err != nil {
		database.Close()
		return nil, err
	}
	adminRepo := auth.NewRepository(database, tel.Metrics)
	guard := auth.Guard(issuer, adminRepo, slogLogger)

	maxUpload := cfg.Server.MaxUploadMB << 20

	app.router.Use(chimw.RequestID)
	app.router.Use(chimw.Recoverer)
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	app.router.Use(middleware.RequestLogger(slogLogger))
	app.router.Use(tel.Metrics.HTTP.Middleware)

	// Health endpoints (no auth required)
	app.checker = health.NewChecker(database, tel.Metrics, slogLogger)
	health.NewHandler(app.checker).RegisterRoutes(app.router)

	app.router.Handle("/uploads/*", http.StripPrefix("/uploads", http.FileServer(store.FileSystem())))

	authService := auth.NewService(adminRepo, issuer, publisher, slogLogger, auth.Options{
		OTPTTL:   cfg.Auth.OTPTTL(),
		ResetTTL: cfg.Auth.ResetTTL(),
	})
	auth.NewHandler(authService, slogLogger, domainMetrics).RegisterRoutes(app.router, guard, limit)

	jobRepo := job.NewRepository(database, tel.Metrics)
	job.NewHandler(job.NewService(jobRepo), slogLogger, domainMetrics).RegisterRoutes(app.router, guard, limit)

	applicationService := application.NewService(
		application.NewRepository(database, tel.Metrics), jobRepo, store, publisher, slogLogger)
	application.NewHandler(applicationService, slogLogger, domainMetrics, maxUpload).RegisterRoutes(app.router, guard, limit)

	onboardingService := onboarding.NewService(
		onboarding.NewRepository(database, tel.Metrics), store, publisher, slogLogger)
	onboarding.NewHandler(onboardingService, slogLogger, domainMetrics, maxUpload).RegisterRoutes(app.router, guard, limit)

	csrService := csr.NewService(csr.NewRepository(database, tel.Metrics), store, slogLogger)
	csr.NewHandler(csrService, slogLogger, domainMetrics, maxUpload).RegisterRoutes(app.router, guard, limit)

	contactService := contact.NewService(contact.NewRepository(database, tel.Metrics), publisher, slogLogger)
	contact.NewHandler(contactService, slogLogger, domainMetrics).RegisterRoutes(app.router, guard, limit)

	if cfg.Grpc.HealthPort != "" {
		app.grpcServer = health.NewGRPCServer(app.checker)
	}

	slogLogger.Info("application initialized successfully")
	return app, nil
}

// newLimiter uses Redis when configured and reachable, otherwise process memory.
func (a *App) newLimiter(ctx context.Context) ratelimit.Limiter {
	if a.config.Redis.URL == "" {
		return ratelimit.NewMemoryLimiter()
	}
	limiter, err := ratelimit.NewRedisFromURL(ctx, a.config.Redis.URL)
	if err != nil {
		a.logger.Warn("redis unavailable, using in-memory rate limiter", "error", err)
		return ratelimit.NewMemoryLimiter()
	}
	a.redis = limiter
	a.logger.Info("redis rate limiter initialized")
	return limiter
}

// Handler exposes the assembled router.
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) Run() error {
	healthCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go a.checker.StartHealthChecks(healthCtx, healthCheckInterval)

	if a.grpcServer != nil {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", a.config.Grpc.HealthPort))
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		go func() {
			a.logger.Info("gRPC health server starting", "port", a.config.Grpc.HealthPort)
			if err := a.grpcServer.Serve(lis); err != nil {
				a.logger.Error("gRPC health server error", "error", err)
			}
		}()
	}

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if a.grpcServer != nil {
		a.grpcServer.GracefulStop()
	}
	if a.cancel != nil {
		a.cancel()
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Error("event publisher close error", "error", err)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", "error", err)
		}
	}
	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		errs = append(errs, err)
	}
	db.Close(a.database)

	return errors.Join(errs...)
}

func models() []interface{} {
	return []interface{}{
		(*auth.Admin)(nil),
		(*job.Job)(nil),
		(*application.Application)(nil),
		(*application.Education)(nil),
		(*application.Experience)(nil),
		(*onboarding.Onboarding)(nil),
		(*onboarding.Document)(nil),
		(*onboarding.Nominee)(nil),
		(*onboarding.FamilyMember)(nil),
		(*onboarding.Bank)(nil),
		(*onboarding.Reference)(nil),
		(*onboarding.Checklist)(nil),
		(*onboarding.ExperienceDetails)(nil),
		(*csr.Section)(nil),
		(*contact.Contact)(nil),
	}
}

func indexes() []db.Index {
	return []db.Index{
		{Table: "applications", Column: "job_id"},
		{Table: "applications", Column: "status"},
		{Table: "application_education", Column: "application_id"},
		{Table: "application_experience", Column: "application_id"},
		{Table: "onboarding_documents", Column: "onboarding_id"},
		{Table: "onboarding_nominees", Column: "onboarding_id"},
		{Table: "onboarding_family", Column: "onboarding_id"},
		{Table: "onboarding_bank", Column: "onboarding_id"},
		{Table: "onboarding_references", Column: "onboarding_id"},
		{Table: "onboarding_checklist", Column: "onboarding_id"},
		{Table: "onboarding_experience_details", Column: "onboarding_id"},
		{Table: "csr_sections", Column: "posted_at"},
	}
}

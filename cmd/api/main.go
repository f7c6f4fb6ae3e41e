package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/invoiceledger/docs/swagger"
	"github.com/ghuser/invoiceledger/pkg/app"
	"github.com/ghuser/invoiceledger/pkg/cache"
	"github.com/ghuser/invoiceledger/pkg/config"
	"github.com/ghuser/invoiceledger/pkg/database"
	"github.com/ghuser/invoiceledger/pkg/events"
	"github.com/ghuser/invoiceledger/pkg/httpx"
	"github.com/ghuser/invoiceledger/pkg/logger"
	"github.com/ghuser/invoiceledger/pkg/telemetry"
	invoiceApi "github.com/ghuser/invoiceledger/services/invoice/application/api"
	appsvcs "github.com/ghuser/invoiceledger/services/invoice/application/services"
	"github.com/ghuser/invoiceledger/services/invoice/infrastructure/persistence/postgres"
	"github.com/ghuser/invoiceledger/web"
)

// shutdownGrace bounds how long in-flight requests may run after a signal.
const shutdownGrace = 30 * time.Second

// @title					Invoice Ledger API
// @version				1.0
// @description			Invoice ledger: invoices, line items and derived totals.
// @termsOfService			http://swagger.io/terms/
// @contact.name			API Support
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry: OTel tracing + metrics
	otelProviders, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelProviders.Shutdown(context.Background()) //nolint:errcheck

	// Crash reporting: Sentry (optional, log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	db, err := database.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer db.Close() //nolint:errcheck
	log.Info("database connected", "dialect", db.Dialect())

	appConfig := &app.Application{
		Config: cfg,
		Db:     db,
		Logger: log,
	}

	switch db.Dialect() {
	case database.DialectSQLite:
		// SQLite stores have no goose history; the schema comes from the row models.
		if err := postgres.AutoMigrate(ctx, db); err != nil {
			log.Error("failed to migrate sqlite schema", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		log.Info("sqlite schema ready, event bus disabled")
	default:
		eventBus, err := events.NewEventBus(db.DB(), events.Options{UseForwarder: true}, log)
		if err != nil {
			log.Error("failed to setup event bus", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer eventBus.Close() //nolint:errcheck

		if err := eventBus.StartForwarder(ctx); err != nil {
			log.Error("failed to start event forwarder", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		appConfig.EventBus = eventBus
	}

	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure
		}
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected", "invoice_cache_ttl", cfg.InvoiceCacheTTL)
		appConfig.Redis = redisClient
	} else {
		log.Info("REDIS_URL empty, invoice cache disabled")
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimit:          cfg.RateLimitPerMinute,
		},
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
		logger.Middleware(log),
	)

	r.Get("/health", httpx.HealthHandler(appConfig.HealthChecks()...))
	r.Method(http.MethodGet, "/metrics", otelProviders.MetricsHandler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var svcs *appsvcs.Services
	r.Route("/api", func(r chi.Router) {
		svcs = registerRoutes(r, appConfig)
	})
	r.Handle("/*", web.Handler())

	if cfg.SeedDemoData {
		seeded, err := svcs.Invoice.SeedDemo(ctx)
		if err != nil {
			log.Error("failed to seed demo data", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		log.Info("demo data checked", "seeded", seeded)
	}

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		log.Error("failed to listen", "addr", cfg.HTTPAddr, "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("server listening", "addr", ln.Addr().String(), "env", cfg.Environment)
	if err := httpx.Serve(ctx, httpx.NewServer(cfg.HTTPAddr, r), ln, shutdownGrace); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("server stopped")
}

// registerRoutes mounts all service routes under /api.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application) *appsvcs.Services {
	return invoiceApi.InvoiceRoutes(r, a)
}

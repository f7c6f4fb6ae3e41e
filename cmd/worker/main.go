package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/invoiceledger/pkg/app"
	"github.com/ghuser/invoiceledger/pkg/cache"
	"github.com/ghuser/invoiceledger/pkg/config"
	"github.com/ghuser/invoiceledger/pkg/database"
	"github.com/ghuser/invoiceledger/pkg/events"
	"github.com/ghuser/invoiceledger/pkg/logger"
	"github.com/ghuser/invoiceledger/pkg/telemetry"
	"github.com/ghuser/invoiceledger/pkg/workflows"
	appsvcs "github.com/ghuser/invoiceledger/services/invoice/application/services"
	invoiceWorkflows "github.com/ghuser/invoiceledger/services/invoice/application/workflows"
	invoiceEvents "github.com/ghuser/invoiceledger/services/invoice/domain/events"
)

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

	otelProviders, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelProviders.Shutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	db, err := database.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer db.Close() //nolint:errcheck
	log.Info("database connected", "dialect", db.Dialect())

	appConfig := &app.Application{
		Config: cfg,
		Db:     db,
		Logger: log,
	}

	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")
		appConfig.Redis = redisClient
	}

	svcs := appsvcs.New(appConfig)

	// The outbox lives in PostgreSQL; SQLite deployments run without events.
	if db.Dialect() == database.DialectPostgres {
		eventBus, err := events.NewEventBus(db.DB(), events.Options{
			ConsumerGroup: cfg.ServiceName + "-worker",
		}, log)
		if err != nil {
			log.Error("failed to setup event bus", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer eventBus.Close() //nolint:errcheck
		appConfig.EventBus = eventBus

		if err := registerSubscribers(ctx, appConfig, svcs); err != nil {
			log.Error("failed to register subscribers", "error", err)
			os.Exit(1) //nolint:gocritic
		}
	} else {
		log.Info("event bus disabled", "dialect", db.Dialect())
	}

	if cfg.TemporalEnabled {
		temporalClient, err := workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer temporalClient.Close()
		appConfig.TemporalClient = temporalClient

		if err := startReconciler(ctx, appConfig, svcs); err != nil {
			log.Error("failed to start reconciliation worker", "error", err)
			os.Exit(1) //nolint:gocritic
		}
	}

	<-ctx.Done()
	log.Info("shutting down worker...")

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application, svcs *appsvcs.Services) error {
	handlers := map[string]events.Handler{
		invoiceEvents.TopicInvoiceCreated:   handleInvoiceCreated(a, svcs),
		invoiceEvents.TopicInvoiceItemAdded: handleInvoiceItemAdded(a, svcs),
		invoiceEvents.TopicInvoiceDeleted:   handleInvoiceDeleted(a, svcs),
	}

	topics := make([]string, 0, len(handlers))
	for topic, handler := range handlers {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handler)
		if err != nil {
			return err
		}

		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
				telemetry.CaptureError(ctx, err)
			}
		}(topic)
		topics = append(topics, topic)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// handleInvoiceCreated warms the read cache for a new invoice.
// Handlers must be idempotent; EventBus retries up to 3x on failure.
func handleInvoiceCreated(a *app.Application, svcs *appsvcs.Services) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt invoiceEvents.InvoiceCreatedEvent
		if err := events.DecodeJSON(msg, &evt); err != nil {
			return err
		}
		warm(ctx, a, svcs, evt.InvoiceID, invoiceEvents.TopicInvoiceCreated)
		return nil
	}
}

// handleInvoiceItemAdded refreshes the cached invoice so it carries the new item and total.
func handleInvoiceItemAdded(a *app.Application, svcs *appsvcs.Services) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt invoiceEvents.InvoiceItemAddedEvent
		if err := events.DecodeJSON(msg, &evt); err != nil {
			return err
		}
		a.Logger.InfoContext(ctx, "invoice item added",
			"invoice_id", evt.InvoiceID, "item_id", evt.ItemID, "total_amount", evt.TotalAmount)
		warm(ctx, a, svcs, evt.InvoiceID, invoiceEvents.TopicInvoiceItemAdded)
		return nil
	}
}

// handleInvoiceDeleted evicts the deleted invoice from the read cache.
func handleInvoiceDeleted(a *app.Application, svcs *appsvcs.Services) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt invoiceEvents.InvoiceDeletedEvent
		if err := events.DecodeJSON(msg, &evt); err != nil {
			return err
		}
		// Eviction errors are returned so the bus retries them.
		if err := svcs.Invoice.EvictCache(ctx, evt.InvoiceID); err != nil {
			return err
		}
		a.Logger.InfoContext(ctx, "invoice evicted from cache",
			"invoice_id", evt.InvoiceID, "items_deleted", evt.ItemsDeleted)
		return nil
	}
}

// warm is best-effort; a failure is logged but does not fail the handler.
func warm(ctx context.Context, a *app.Application, svcs *appsvcs.Services, id int64, topic string) {
	if err := svcs.Invoice.WarmCache(ctx, id); err != nil {
		a.Logger.WarnContext(ctx, "cache warm failed", "topic", topic, "invoice_id", id, "error", err)
		return
	}
	a.Logger.InfoContext(ctx, "cache warmed", "topic", topic, "invoice_id", id)
}

// startReconciler registers the reconciliation workflow on a Temporal worker,
// ensures its schedule exists and runs the worker until ctx is cancelled.
func startReconciler(ctx context.Context, a *app.Application, svcs *appsvcs.Services) error {
	w := a.TemporalClient.NewWorker(a.Config.TemporalTaskQueue)
	invoiceWorkflows.Register(w, &invoiceWorkflows.Activities{Invoices: svcs.Invoice})

	if err := w.Start(); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return a.TemporalClient.EnsureSchedule(ctx, workflows.Schedule{
		ID:        invoiceWorkflows.ReconcileWorkflowID,
		TaskQueue: a.Config.TemporalTaskQueue,
		Cron:      a.Config.ReconcileCron,
		Workflow:  invoiceWorkflows.ReconcileTotalsWorkflow,
		Args:      []any{invoiceWorkflows.ReconcileResult{}},
	})
}

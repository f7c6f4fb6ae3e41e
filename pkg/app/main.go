// Package app holds the infrastructure shared by the ledger's services.
package app

import (
	"github.com/ghuser/invoiceledger/pkg/cache"
	"github.com/ghuser/invoiceledger/pkg/config"
	"github.com/ghuser/invoiceledger/pkg/database"
	"github.com/ghuser/invoiceledger/pkg/events"
	"github.com/ghuser/invoiceledger/pkg/httpx"
	"github.com/ghuser/invoiceledger/pkg/logger"
	"github.com/ghuser/invoiceledger/pkg/workflows"
)

// Application is built once per binary and handed to every service
// constructor. Config, Db and Logger are always set. EventBus is nil on SQLite
// stores, Redis when REDIS_URL is empty and TemporalClient when Temporal is
// disabled.
//
// Log inside requests and jobs with the Context methods so trace, request
// and invoice ids are attached:
//
//	a.Logger.InfoContext(ctx, "item added", "invoice_id", id)
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient
}

// HealthChecks lists the probes for /health. Unconfigured dependencies are
// included with a nil Pinger so they report as disabled.
func (a *Application) HealthChecks() []httpx.Check {
	checks := []httpx.Check{
		{Name: "database", Pinger: a.Db},
		{Name: "redis"},
		{Name: "event_bus"},
	}
	if a.Redis != nil {
		checks[1].Pinger = a.Redis
	}
	if a.EventBus != nil {
		checks[2].Pinger = a.EventBus
	}
	return checks
}

package services

import (
	"github.com/ghuser/invoiceledger/pkg/app"
	"github.com/ghuser/invoiceledger/pkg/cache"
	"github.com/ghuser/invoiceledger/services/invoice/infrastructure/pdf"
	"github.com/ghuser/invoiceledger/services/invoice/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Invoice *InvoiceService
}

// New wires all invoice application services with infrastructure from the Application container.
// The read cache is attached only when Redis is configured.
func New(a *app.Application) *Services {
	repo := postgres.NewInvoiceRepository(a.Db, a.EventBus)

	var invoiceCache InvoiceCache
	if a.Redis != nil {
		invoiceCache = cache.NewInvoiceCache(a.Redis, a.Config.InvoiceCacheTTL)
	}

	return &Services{
		Invoice: NewInvoiceService(repo, invoiceCache, pdf.NewRenderer(a.Config.ServiceName), a.Logger),
	}
}

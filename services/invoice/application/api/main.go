package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/invoiceledger/pkg/app"
	"github.com/ghuser/invoiceledger/pkg/errhttp"
	"github.com/ghuser/invoiceledger/pkg/logger"
	"github.com/ghuser/invoiceledger/services/invoice/application/handlers"
	appsvcs "github.com/ghuser/invoiceledger/services/invoice/application/services"
)

// InvoiceRoutes registers invoice endpoints on the provided chi router and
// returns the services it wired so callers can reuse them (seeding, workers).
func InvoiceRoutes(r chi.Router, a *app.Application) *appsvcs.Services {
	svcs := appsvcs.New(a)
	errs := errhttp.NewResponder(a.Logger, a.Config.IsProduction())

	r.Route("/invoice", func(r chi.Router) {
		r.Get("/", handlers.NewListInvoicesHandler(svcs, errs).Execute)
		r.Post("/", handlers.NewPostInvoiceHandler(svcs, errs).Execute)
		r.Route("/{"+handlers.IDParam+"}", func(r chi.Router) {
			r.Use(logger.TagURLParam(handlers.IDParam, "invoice_id"))
			r.Get("/", handlers.NewGetInvoiceHandler(svcs, errs).Execute)
			r.Delete("/", handlers.NewDeleteInvoiceHandler(svcs, errs).Execute)
			r.Post("/items", handlers.NewPostInvoiceItemHandler(svcs, errs).Execute)
			r.Post("/recompute", handlers.NewPostRecomputeHandler(svcs, errs).Execute)
			r.Get("/pdf", handlers.NewGetInvoicePDFHandler(svcs, errs).Execute)
		})
	})
	return svcs
}

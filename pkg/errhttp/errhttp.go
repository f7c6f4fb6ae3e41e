// Package errhttp turns invoice domain errors into JSON error responses.
package errhttp

import (
	"net/http"

	"github.com/ghuser/invoiceledger/pkg/httpx"
	"github.com/ghuser/invoiceledger/pkg/logger"
	"github.com/ghuser/invoiceledger/pkg/telemetry"
	invoicedomain "github.com/ghuser/invoiceledger/services/invoice/domain"
)

// Status returns the HTTP status for err. Wrapped sentinels are matched with
// errors.Is; anything unrecognized is a 500.
func Status(err error) int {
	switch {
	case invoicedomain.IsNotFound(err):
		return http.StatusNotFound
	case invoicedomain.IsInvalidArgument(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Responder writes error responses for the invoice handlers.
type Responder struct {
	log        logger.Logger
	production bool
}

// NewResponder returns a Responder. In production, 500 messages are replaced
// by the status text.
func NewResponder(log logger.Logger, production bool) *Responder {
	return &Responder{log: log, production: production}
}

// Write sends err as {"error": "..."} with its mapped status. Server errors
// are logged with the request context and reported to Sentry.
func (p *Responder) Write(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	if status >= http.StatusInternalServerError {
		p.log.ErrorContext(r.Context(), "request failed", "error", err)
		telemetry.CaptureError(r.Context(), err)
	}
	httpx.JSONError(w, status, httpx.SafeError(err, status, p.production))
}

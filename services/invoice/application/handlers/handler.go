// Package handlers exposes the invoice application services over HTTP.
// Each endpoint lives in its own file with its swag annotations.
package handlers

import (
	"net/http"

	"github.com/ghuser/invoiceledger/pkg/errhttp"
	"github.com/ghuser/invoiceledger/pkg/httpx"
	appsvcs "github.com/ghuser/invoiceledger/services/invoice/application/services"
)

// IDParam is the chi URL parameter holding an invoice id.
const IDParam = "id"

// base carries what every invoice handler needs.
type base struct {
	svc  *appsvcs.Services
	errs *errhttp.Responder
}

func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	b.errs.Write(w, r, err)
}

// invoiceID parses the {id} URL parameter, writing a 400 when it is not a positive integer.
func invoiceID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := httpx.PositiveIDParam(r, IDParam)
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid invoice id"})
		return 0, false
	}
	return id, true
}

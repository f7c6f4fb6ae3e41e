package handlers

import (
	"net/http"

	"github.com/ghuser/invoiceledger/pkg/errhttp"
	"github.com/ghuser/invoiceledger/pkg/httpx"
	appsvcs "github.com/ghuser/invoiceledger/services/invoice/application/services"
)

// GetInvoiceHandler handles GET /invoice/{id} requests.
type GetInvoiceHandler struct{ base }

// NewGetInvoiceHandler returns a GetInvoiceHandler backed by the given services.
func NewGetInvoiceHandler(svc *appsvcs.Services, errs *errhttp.Responder) *GetInvoiceHandler {
	return &GetInvoiceHandler{base{svc: svc, errs: errs}}
}

// Execute returns a single invoice.
//
//	@Summary		Get invoice
//	@Description	Returns the invoice with its items
//	@Tags			invoices
//	@Produce		json
//	@Param			id	path		int	true	"Invoice ID"
//	@Success		200	{object}	InvoiceResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/invoice/{id} [get]
func (h *GetInvoiceHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	inv, err := h.svc.Invoice.GetInvoice(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toInvoiceResponse(inv))
}

package handlers

import (
	"net/http"

	"github.com/ghuser/invoiceledger/pkg/errhttp"
	"github.com/ghuser/invoiceledger/pkg/httpx"
	appsvcs "github.com/ghuser/invoiceledger/services/invoice/application/services"
)

// ListInvoicesHandler handles GET /invoice requests.
type ListInvoicesHandler struct{ base }

// NewListInvoicesHandler returns a ListInvoicesHandler backed by the given services.
func NewListInvoicesHandler(svc *appsvcs.Services, errs *errhttp.Responder) *ListInvoicesHandler {
	return &ListInvoicesHandler{base{svc: svc, errs: errs}}
}

// Execute lists every invoice with its items.
//
//	@Summary		List invoices
//	@Description	Returns every invoice with its items, ordered by id. Responds 404 when no invoice exists.
//	@Tags			invoices
//	@Produce		json
//	@Success		200	{array}		InvoiceResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/invoice [get]
func (h *ListInvoicesHandler) Execute(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.Invoice.ListInvoices(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		resp[i] = toInvoiceResponse(inv)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

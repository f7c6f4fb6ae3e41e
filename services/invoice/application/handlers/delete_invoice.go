package handlers

import (
	"fmt"
	"net/http"

	"github.com/ghuser/invoiceledger/pkg/errhttp"
	"github.com/ghuser/invoiceledger/pkg/httpx"
	appsvcs "github.com/ghuser/invoiceledger/services/invoice/application/services"
)

// DeleteInvoiceHandler handles DELETE /invoice/{id} requests.
type DeleteInvoiceHandler struct{ base }

// NewDeleteInvoiceHandler returns a DeleteInvoiceHandler backed by the given services.
func NewDeleteInvoiceHandler(svc *appsvcs.Services, errs *errhttp.Responder) *DeleteInvoiceHandler {
	return &DeleteInvoiceHandler{base{svc: svc, errs: errs}}
}

// Execute deletes an invoice together with its items.
//
//	@Summary		Delete invoice
//	@Description	Deletes the invoice and all of its items
//	@Tags			invoices
//	@Produce		json
//	@Param			id	path		int	true	"Invoice ID"
//	@Success		200	{object}	MessageResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/invoice/{id} [delete]
func (h *DeleteInvoiceHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Invoice.DeleteInvoice(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Invoice with ID %d deleted successfully", id),
	})
}

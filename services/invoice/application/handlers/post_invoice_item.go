package handlers

import (
	"net/http"

	"github.com/ghuser/invoiceledger/pkg/errhttp"
	"github.com/ghuser/invoiceledger/pkg/httpx"
	pkgvalidator "github.com/ghuser/invoiceledger/pkg/validator"
	appsvcs "github.com/ghuser/invoiceledger/services/invoice/application/services"
)

// PostInvoiceItemHandler handles POST /invoice/{id}/items requests.
type PostInvoiceItemHandler struct{ base }

// NewPostInvoiceItemHandler returns a PostInvoiceItemHandler backed by the given services.
func NewPostInvoiceItemHandler(svc *appsvcs.Services, errs *errhttp.Responder) *PostInvoiceItemHandler {
	return &PostInvoiceItemHandler{base{svc: svc, errs: errs}}
}

// Execute adds an item to an invoice and returns the invoice with its new total.
//
//	@Summary		Add item
//	@Description	Adds a line item and recomputes the invoice total in the same transaction
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Invoice ID"
//	@Param			request	body		AddItemRequest	true	"Item to add"
//	@Success		200		{object}	InvoiceResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/invoice/{id}/items [post]
func (h *PostInvoiceItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[AddItemRequest](w, r)
	if !ok {
		return
	}

	inv, err := h.svc.Invoice.AddItem(r.Context(), id, req.Name, req.Price, req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toInvoiceResponse(inv))
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ghuser/invoiceledger/pkg/errhttp"
	"github.com/ghuser/invoiceledger/pkg/httpx"
	pkgvalidator "github.com/ghuser/invoiceledger/pkg/validator"
	appsvcs "github.com/ghuser/invoiceledger/services/invoice/application/services"
)

// PostInvoiceHandler handles POST /invoice requests.
type PostInvoiceHandler struct{ base }

// NewPostInvoiceHandler returns a PostInvoiceHandler backed by the given services.
func NewPostInvoiceHandler(svc *appsvcs.Services, errs *errhttp.Responder) *PostInvoiceHandler {
	return &PostInvoiceHandler{base{svc: svc, errs: errs}}
}

// Execute creates a new, empty invoice.
//
//	@Summary		Create invoice
//	@Description	Creates an invoice with no items and a zero total
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateInvoiceRequest	true	"Invoice creation request"
//	@Success		201		{object}	InvoiceResponse
//	@Header			201		{string}	Location	"URL of the new invoice"
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/invoice [post]
func (h *PostInvoiceHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateInvoiceRequest](w, r)
	if !ok {
		return
	}

	inv, err := h.svc.Invoice.CreateInvoice(r.Context(), req.CustomerName)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+strconv.FormatInt(inv.ID, 10))
	httpx.JSON(w, http.StatusCreated, toInvoiceResponse(inv))
}

package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/ghuser/invoiceledger/pkg/errhttp"
	"github.com/ghuser/invoiceledger/pkg/httpx"
	appsvcs "github.com/ghuser/invoiceledger/services/invoice/application/services"
)

// GetInvoicePDFHandler handles GET /invoice/{id}/pdf requests.
type GetInvoicePDFHandler struct{ base }

// NewGetInvoicePDFHandler returns a GetInvoicePDFHandler backed by the given services.
func NewGetInvoicePDFHandler(svc *appsvcs.Services, errs *errhttp.Responder) *GetInvoicePDFHandler {
	return &GetInvoicePDFHandler{base{svc: svc, errs: errs}}
}

// Execute renders the invoice as a PDF download.
//
//	@Summary		Download invoice PDF
//	@Description	Renders the invoice and its items as an A4 PDF document
//	@Tags			invoices
//	@Produce		application/pdf
//	@Param			id	path		int	true	"Invoice ID"
//	@Success		200	{file}		binary
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/invoice/{id}/pdf [get]
func (h *GetInvoicePDFHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	// Render fully before writing so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.svc.Invoice.RenderPDF(r.Context(), id, &buf); err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.Attachment(w, "application/pdf", fmt.Sprintf("invoice-%d.pdf", id), buf.Bytes())
}

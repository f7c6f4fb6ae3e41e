package handlers

import (
	"net/http"

	"github.com/ghuser/invoiceledger/pkg/errhttp"
	"github.com/ghuser/invoiceledger/pkg/httpx"
	appsvcs "github.com/ghuser/invoiceledger/services/invoice/application/services"
)

// PostRecomputeHandler handles POST /invoice/{id}/recompute requests.
type PostRecomputeHandler struct{ base }

// NewPostRecomputeHandler returns a PostRecomputeHandler backed by the given services.
func NewPostRecomputeHandler(svc *appsvcs.Services, errs *errhttp.Responder) *PostRecomputeHandler {
	return &PostRecomputeHandler{base{svc: svc, errs: errs}}
}

// Execute re-derives the stored total from the invoice's items.
//
//	@Summary		Recompute total
//	@Description	Recomputes the stored total from the items and reports whether it had drifted
//	@Tags			invoices
//	@Produce		json
//	@Param			id	path		int	true	"Invoice ID"
//	@Success		200	{object}	RecomputeResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/invoice/{id}/recompute [post]
func (h *PostRecomputeHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	inv, drifted, err := h.svc.Invoice.RecomputeTotal(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, RecomputeResponse{
		Invoice: toInvoiceResponse(inv),
		Drifted: drifted,
	})
}

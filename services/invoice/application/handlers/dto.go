package handlers

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghuser/invoiceledger/services/invoice/domain/models"
)

// InvoiceItemResponse is the JSON shape of one invoice line.
type InvoiceItemResponse struct {
	ID       int64       `json:"id"       example:"1"`
	Name     string      `json:"name"     example:"Widget A"`
	Price    json.Number `json:"price"    example:"19.99" swaggertype:"number"`
	Quantity int         `json:"quantity" example:"2"`
} // @name InvoiceItem

// InvoiceResponse is the JSON shape of an invoice with its items.
type InvoiceResponse struct {
	ID           int64                 `json:"id"           example:"1"`
	CustomerName string                `json:"customerName" example:"John Doe"`
	CreatedAt    time.Time             `json:"createdAt"    example:"2024-01-15T10:30:00Z"`
	TotalAmount  json.Number           `json:"totalAmount"  example:"79.97" swaggertype:"number"`
	Items        []InvoiceItemResponse `json:"items"`
} // @name Invoice

// CreateInvoiceRequest is the request body for POST /invoice.
type CreateInvoiceRequest struct {
	CustomerName string `json:"customerName" validate:"notblank,max=100" example:"John Doe"`
} // @name CreateInvoiceRequest

// AddItemRequest is the request body for POST /invoice/{id}/items.
// Name and price are checked by the service after the invoice is found, so a
// missing invoice reports 404 ahead of an invalid item. A missing or
// non-positive quantity is stored as 1.
type AddItemRequest struct {
	Name     string          `json:"name"     example:"Widget A"`
	Price    decimal.Decimal `json:"price"    swaggertype:"number" example:"19.99"`
	Quantity int             `json:"quantity" example:"2"`
} // @name AddItemRequest

// RecomputeResponse is returned by POST /invoice/{id}/recompute.
type RecomputeResponse struct {
	Invoice InvoiceResponse `json:"invoice"`
	Drifted bool            `json:"drifted" example:"false"`
} // @name RecomputeResponse

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message" example:"Invoice with ID 1 deleted successfully"`
} // @name MessageResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"invoice not found"`
} // @name ErrorResponse

func toInvoiceResponse(inv *models.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:           inv.ID,
		CustomerName: inv.CustomerName.String(),
		CreatedAt:    inv.CreatedAt,
		TotalAmount:  money(inv.TotalAmount),
		Items:        make([]InvoiceItemResponse, len(inv.Items)),
	}
	for i, item := range inv.Items {
		resp.Items[i] = InvoiceItemResponse{
			ID:       item.ID,
			Name:     item.Name.String(),
			Price:    money(item.Price),
			Quantity: item.Quantity,
		}
	}
	return resp
}

// money renders d as a JSON number with two fractional digits.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(models.PriceScale))
}

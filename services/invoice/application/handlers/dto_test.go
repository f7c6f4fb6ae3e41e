package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghuser/invoiceledger/services/invoice/domain/models"
)

func TestToInvoiceResponse_JSONShape(t *testing.T) {
	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	inv := &models.Invoice{
		ID:           7,
		CustomerName: "Jane Doe",
		CreatedAt:    created,
		TotalAmount:  decimal.RequireFromString("39.98"),
		Items: []*models.InvoiceItem{
			{ID: 3, InvoiceID: 7, Name: "Widget", Price: decimal.RequireFromString("19.99"), Quantity: 2},
		},
	}

	b, err := json.Marshal(toInvoiceResponse(inv))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":7,"customerName":"Jane Doe","createdAt":"2024-01-15T10:30:00Z","totalAmount":39.98,` +
		`"items":[{"id":3,"name":"Widget","price":19.99,"quantity":2}]}`
	if string(b) != want {
		t.Errorf("json =\n%s\nwant\n%s", b, want)
	}
}

func TestMoney_FixedScale(t *testing.T) {
	tests := map[string]string{
		"0":       "0.00",
		"10":      "10.00",
		"19.9":    "19.90",
		"8743.21": "8743.21",
	}
	for in, want := range tests {
		if got := money(decimal.RequireFromString(in)); string(got) != want {
			t.Errorf("money(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestToInvoiceResponse_EmptyItemsIsArray(t *testing.T) {
	b, err := json.Marshal(toInvoiceResponse(&models.Invoice{ID: 1, CustomerName: "X"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw["items"]) != "[]" {
		t.Errorf("items = %s, want []", raw["items"])
	}
}

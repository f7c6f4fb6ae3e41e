package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghuser/invoiceledger/services/invoice/domain/models"
)

func TestValidateInvoiceForCreation(t *testing.T) {
	valid := func() *models.Invoice { return models.NewInvoice("Jane Doe") }

	tests := []struct {
		name    string
		mutate  func(*models.Invoice) *models.Invoice
		wantErr bool
	}{
		{"valid invoice", func(i *models.Invoice) *models.Invoice { return i }, false},
		{"nil invoice", func(*models.Invoice) *models.Invoice { return nil }, true},
		{"blank customer", func(i *models.Invoice) *models.Invoice { i.CustomerName = "  "; return i }, true},
		{"already persisted", func(i *models.Invoice) *models.Invoice { i.ID = 7; return i }, true},
		{"zero timestamp", func(i *models.Invoice) *models.Invoice { i.CreatedAt = time.Time{}; return i }, true},
		{"has items", func(i *models.Invoice) *models.Invoice {
			i.Items = append(i.Items, &models.InvoiceItem{})
			return i
		}, true},
		{"non-zero total", func(i *models.Invoice) *models.Invoice { i.TotalAmount = decimal.NewFromInt(1); return i }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInvoiceForCreation(tt.mutate(valid()))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateItemForAddition(t *testing.T) {
	price := decimal.RequireFromString("5.00")
	valid := func() *models.InvoiceItem {
		return &models.InvoiceItem{InvoiceID: 3, Name: "Widget", Price: price, Quantity: 1}
	}

	tests := []struct {
		name      string
		invoiceID int64
		mutate    func(*models.InvoiceItem) *models.InvoiceItem
		wantErr   bool
	}{
		{"valid item", 3, func(i *models.InvoiceItem) *models.InvoiceItem { return i }, false},
		{"nil item", 3, func(*models.InvoiceItem) *models.InvoiceItem { return nil }, true},
		{"wrong owner", 4, func(i *models.InvoiceItem) *models.InvoiceItem { return i }, true},
		{"zero invoice id", 0, func(i *models.InvoiceItem) *models.InvoiceItem { i.InvoiceID = 0; return i }, true},
		{"blank name", 3, func(i *models.InvoiceItem) *models.InvoiceItem { i.Name = ""; return i }, true},
		{"zero price", 3, func(i *models.InvoiceItem) *models.InvoiceItem { i.Price = decimal.Zero; return i }, true},
		{"zero quantity", 3, func(i *models.InvoiceItem) *models.InvoiceItem { i.Quantity = 0; return i }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItemForAddition(tt.invoiceID, tt.mutate(valid()))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckTotal(t *testing.T) {
	inv := &models.Invoice{
		ID:          1,
		TotalAmount: decimal.RequireFromString("39.98"),
		Items: []*models.InvoiceItem{
			{Name: "Widget", Price: decimal.RequireFromString("19.99"), Quantity: 2},
		},
	}
	if err := CheckTotal(inv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inv.TotalAmount = decimal.RequireFromString("19.99")
	if err := CheckTotal(inv); err == nil {
		t.Fatal("expected drift to be reported")
	}
}

package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the aggregate root: an invoice together with the items it owns.
// TotalAmount is derived and always equals the sum of the items' line totals
// once RecomputeTotal has run.
type Invoice struct {
	ID           int64
	CustomerName CustomerName
	CreatedAt    time.Time
	TotalAmount  decimal.Decimal
	Items        []*InvoiceItem
}

// NewInvoice returns an empty invoice for name, stamped with the current UTC time.
func NewInvoice(name CustomerName) *Invoice {
	return &Invoice{
		CustomerName: name,
		CreatedAt:    time.Now().UTC(),
		TotalAmount:  decimal.Zero,
		Items:        []*InvoiceItem{},
	}
}

// ComputeTotal sums price × quantity over the current items.
func (inv *Invoice) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range inv.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// RecomputeTotal re-derives TotalAmount from the items and reports whether the
// stored value had drifted from the true sum.
func (inv *Invoice) RecomputeTotal() bool {
	total := inv.ComputeTotal()
	drifted := !total.Equal(inv.TotalAmount)
	inv.TotalAmount = total
	return drifted
}

// AppendItem adds item to the aggregate and re-derives TotalAmount from the
// full item set. It fails with ErrAmountOutOfRange, leaving inv unchanged,
// when the new total would exceed MaxAmount.
func (inv *Invoice) AppendItem(item *InvoiceItem) error {
	if total := inv.ComputeTotal().Add(item.LineTotal()); total.GreaterThan(MaxAmount) {
		return fmt.Errorf("invoice total %s: %w", total.StringFixed(PriceScale), ErrAmountOutOfRange)
	}
	item.InvoiceID = inv.ID
	inv.Items = append(inv.Items, item)
	inv.RecomputeTotal()
	return nil
}

package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DefaultQuantity replaces any non-positive quantity supplied for a new item.
const DefaultQuantity = 1

// MaxQuantity is the largest quantity the INTEGER column can hold.
const MaxQuantity = math.MaxInt32

// PriceScale is the number of fractional digits kept for prices and totals.
const PriceScale = 2

// MaxAmount is the largest price, line total or invoice total NUMERIC(12,2) can hold.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// ErrAmountOutOfRange is returned when a price or total exceeds MaxAmount.
var ErrAmountOutOfRange = fmt.Errorf("amount exceeds %s", MaxAmount.StringFixed(PriceScale))

// InvoiceItem is a line on an invoice. Its lifecycle is bound to the owning Invoice.
type InvoiceItem struct {
	ID        int64
	InvoiceID int64
	Name      ItemName
	Price     decimal.Decimal
	Quantity  int
}

// NewInvoiceItem builds an item for invoiceID. price is rounded to PriceScale
// and must then be strictly positive; a quantity <= 0 is normalised to DefaultQuantity.
// The quantity and the line total must fit the store.
func NewInvoiceItem(invoiceID int64, name ItemName, price decimal.Decimal, quantity int) (*InvoiceItem, error) {
	price = price.Round(PriceScale)
	if !price.IsPositive() {
		return nil, errors.New("price must be at least 0.01")
	}
	if quantity > MaxQuantity {
		return nil, fmt.Errorf("quantity must not exceed %d", MaxQuantity)
	}
	item := &InvoiceItem{
		InvoiceID: invoiceID,
		Name:      name,
		Price:     price,
		Quantity:  NormalizeQuantity(quantity),
	}
	if item.LineTotal().GreaterThan(MaxAmount) {
		return nil, fmt.Errorf("line total: %w", ErrAmountOutOfRange)
	}
	return item, nil
}

// NormalizeQuantity returns q, or DefaultQuantity when q is not positive.
func NormalizeQuantity(q int) int {
	if q <= 0 {
		return DefaultQuantity
	}
	return q
}

// LineTotal is price × quantity.
func (i *InvoiceItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

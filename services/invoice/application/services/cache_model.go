package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ghuser/invoiceledger/pkg/cache"
	"github.com/ghuser/invoiceledger/services/invoice/domain/models"
)

func toCachedInvoice(inv *models.Invoice) *cache.CachedInvoice {
	c := &cache.CachedInvoice{
		ID:           inv.ID,
		CustomerName: inv.CustomerName.String(),
		CreatedAt:    inv.CreatedAt,
		TotalAmount:  inv.TotalAmount.String(),
		Items:        make([]cache.CachedInvoiceItem, len(inv.Items)),
	}
	for i, item := range inv.Items {
		c.Items[i] = cache.CachedInvoiceItem{
			ID:       item.ID,
			Name:     item.Name.String(),
			Price:    item.Price.String(),
			Quantity: item.Quantity,
		}
	}
	return c
}

func fromCachedInvoice(c *cache.CachedInvoice) (*models.Invoice, error) {
	total, err := decimal.NewFromString(c.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("cached total: %w", err)
	}
	inv := &models.Invoice{
		ID:           c.ID,
		CustomerName: models.CustomerName(c.CustomerName),
		CreatedAt:    c.CreatedAt,
		TotalAmount:  total,
		Items:        make([]*models.InvoiceItem, len(c.Items)),
	}
	for i, it := range c.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, fmt.Errorf("cached price of item %d: %w", it.ID, err)
		}
		inv.Items[i] = &models.InvoiceItem{
			ID:        it.ID,
			InvoiceID: c.ID,
			Name:      models.ItemName(it.Name),
			Price:     price,
			Quantity:  it.Quantity,
		}
	}
	return inv, nil
}

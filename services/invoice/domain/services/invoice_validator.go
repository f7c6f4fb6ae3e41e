// Package services contains stateless domain services for the invoice bounded context.
// They enforce rules over fully-constructed domain types and depend only on
// stdlib and the domain layer.
package services

import (
	"errors"
	"fmt"

	"github.com/ghuser/invoiceledger/services/invoice/domain/models"
)

// ValidateInvoiceForCreation checks a freshly built Invoice before it is persisted:
// it must be empty, unsaved, timestamped and carry a zero total.
func ValidateInvoiceForCreation(inv *models.Invoice) error {
	if inv == nil {
		return errors.New("invoice cannot be nil")
	}
	if _, err := models.NewCustomerName(inv.CustomerName.String()); err != nil {
		return err
	}
	if inv.ID != 0 {
		return fmt.Errorf("new invoice must not have an id (got %d)", inv.ID)
	}
	if inv.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	if len(inv.Items) != 0 {
		return errors.New("new invoice must not have items")
	}
	if !inv.TotalAmount.IsZero() {
		return errors.New("new invoice must have a zero total")
	}
	return nil
}

// ValidateItemForAddition checks an item about to be attached to invoiceID.
func ValidateItemForAddition(invoiceID int64, item *models.InvoiceItem) error {
	if item == nil {
		return errors.New("item cannot be nil")
	}
	if invoiceID <= 0 || item.InvoiceID != invoiceID {
		return fmt.Errorf("item must reference invoice %d (got %d)", invoiceID, item.InvoiceID)
	}
	if _, err := models.NewItemName(item.Name.String()); err != nil {
		return err
	}
	if !item.Price.IsPositive() {
		return errors.New("price must be greater than zero")
	}
	if item.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	return nil
}

// CheckTotal verifies the derived-total invariant on a loaded aggregate.
func CheckTotal(inv *models.Invoice) error {
	if want := inv.ComputeTotal(); !want.Equal(inv.TotalAmount) {
		return fmt.Errorf("invoice %d total %s does not match item sum %s", inv.ID, inv.TotalAmount, want)
	}
	if inv.TotalAmount.IsNegative() {
		return fmt.Errorf("invoice %d total is negative", inv.ID)
	}
	return nil
}

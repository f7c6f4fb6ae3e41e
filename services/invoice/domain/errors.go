package domain

import "errors"

// Sentinel errors for the invoice domain. Use errors.Is() to check these.
var (
	// ErrInvoiceNotFound indicates the referenced invoice does not exist.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrNoInvoices is returned when listing an empty store.
	ErrNoInvoices = errors.New("no invoices found")

	// ErrInvalidCustomerName indicates the customer name violates domain constraints.
	ErrInvalidCustomerName = errors.New("invalid customer name")

	// ErrInvalidItem indicates an item name, price or quantity violates domain constraints.
	ErrInvalidItem = errors.New("invalid invoice item")
)

// IsNotFound reports whether err means a referenced entity is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInvoiceNotFound) || errors.Is(err, ErrNoInvoices)
}

// IsInvalidArgument reports whether err means caller-supplied data failed a precondition.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidCustomerName) || errors.Is(err, ErrInvalidItem)
}

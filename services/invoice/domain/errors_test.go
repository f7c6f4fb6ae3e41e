package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_Messages(t *testing.T) {
	tests := map[error]string{
		ErrInvoiceNotFound:     "invoice not found",
		ErrNoInvoices:          "no invoices found",
		ErrInvalidCustomerName: "invalid customer name",
		ErrInvalidItem:         "invalid invoice item",
	}
	for err, want := range tests {
		if err.Error() != want {
			t.Errorf("unexpected message: got %q, want %q", err.Error(), want)
		}
	}
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		notFound    bool
		invalidArgs bool
	}{
		{"invoice not found", ErrInvoiceNotFound, true, false},
		{"no invoices", ErrNoInvoices, true, false},
		{"wrapped not found", fmt.Errorf("get invoice: %w", ErrInvoiceNotFound), true, false},
		{"customer name", ErrInvalidCustomerName, false, true},
		{"double-wrapped item", fmt.Errorf("%w: %w", ErrInvalidItem, errors.New("price must be positive")), false, true},
		{"storage failure", errors.New("connection reset"), false, false},
		{"nil", nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound = %v, want %v", got, tt.notFound)
			}
			if got := IsInvalidArgument(tt.err); got != tt.invalidArgs {
				t.Errorf("IsInvalidArgument = %v, want %v", got, tt.invalidArgs)
			}
		})
	}
}

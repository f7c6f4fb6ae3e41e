package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the upper bound, in characters, for customer and item names.
const MaxNameLength = 100

// CustomerName is a value object holding a trimmed, non-empty customer name
// of at most MaxNameLength characters.
type CustomerName string

// NewCustomerName trims s and enforces the name constraints.
func NewCustomerName(s string) (CustomerName, error) {
	v, err := boundedName("customer name", s)
	return CustomerName(v), err
}

// String returns the underlying string value.
func (n CustomerName) String() string {
	return string(n)
}

// ItemName is a value object holding a trimmed, non-empty item name of at
// most MaxNameLength characters.
type ItemName string

// NewItemName trims s and enforces the name constraints.
func NewItemName(s string) (ItemName, error) {
	v, err := boundedName("item name", s)
	return ItemName(v), err
}

// String returns the underlying string value.
func (n ItemName) String() string {
	return string(n)
}

func boundedName(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	if n := utf8.RuneCountInString(s); n > MaxNameLength {
		return "", fmt.Errorf("%s must not exceed %d characters (got %d)", field, MaxNameLength, n)
	}
	return s, nil
}

package models

import (
	"strings"
	"testing"
)

func TestNewCustomerName(t *testing.T) {
	t.Run("valid name", func(t *testing.T) {
		n, err := NewCustomerName("Jane Doe")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.String() != "Jane Doe" {
			t.Fatalf("expected %q, got %q", "Jane Doe", n.String())
		}
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		n, err := NewCustomerName("  Jane Doe\t")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.String() != "Jane Doe" {
			t.Fatalf("expected trimmed name, got %q", n.String())
		}
	})

	t.Run("empty string returns error", func(t *testing.T) {
		if _, err := NewCustomerName(""); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("whitespace only returns error", func(t *testing.T) {
		if _, err := NewCustomerName("   "); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("100 characters is accepted", func(t *testing.T) {
		if _, err := NewCustomerName(strings.Repeat("x", 100)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("101 characters returns error", func(t *testing.T) {
		if _, err := NewCustomerName(strings.Repeat("x", 101)); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("length counts characters not bytes", func(t *testing.T) {
		if _, err := NewCustomerName(strings.Repeat("é", 100)); err != nil {
			t.Fatalf("100 two-byte characters should be accepted: %v", err)
		}
	})
}

func TestNewItemName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", "Widget", "Widget", false},
		{"trimmed", " Widget ", "Widget", false},
		{"empty", "", "", true},
		{"blank", "\t \n", "", true},
		{"too long", strings.Repeat("w", 101), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewItemName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewItemName(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if got.String() != tt.want {
				t.Fatalf("NewItemName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

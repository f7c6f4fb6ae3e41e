package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Watermill topics published by the invoice repository inside the mutating transaction.
const (
	TopicInvoiceCreated   = "invoice.created"
	TopicInvoiceItemAdded = "invoice.item_added"
	TopicInvoiceDeleted   = "invoice.deleted"
)

// SchemaVersion is the current version of every invoice event payload.
const SchemaVersion = 1

// Envelope carries the fields common to every invoice event.
type Envelope struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	InvoiceID  int64     `json:"invoice_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEnvelope stamps a fresh event id and the current UTC time for invoiceID.
func NewEnvelope(invoiceID int64) Envelope {
	return Envelope{
		EventID:    uuid.New(),
		Version:    SchemaVersion,
		InvoiceID:  invoiceID,
		OccurredAt: time.Now().UTC(),
	}
}

// InvoiceCreatedEvent is published after a new Invoice is persisted.
type InvoiceCreatedEvent struct {
	Envelope
	CustomerName string `json:"customer_name"`
}

// InvoiceItemAddedEvent is published after an item is attached and the total recomputed.
type InvoiceItemAddedEvent struct {
	Envelope
	ItemID      int64           `json:"item_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// InvoiceDeletedEvent is published after an invoice and its items are removed.
type InvoiceDeletedEvent struct {
	Envelope
	ItemsDeleted int64 `json:"items_deleted"`
}

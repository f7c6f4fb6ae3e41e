package repositories

import (
	"context"

	"github.com/ghuser/invoiceledger/services/invoice/domain/models"
)

// InvoiceRepository is the persistence port for the Invoice aggregate.
// The domain layer owns this interface; infrastructure implements it.
// Every mutating method is atomic: it either fully applies or leaves no trace.
type InvoiceRepository interface {
	// List returns every invoice with its items, ordered by id.
	List(ctx context.Context) ([]*models.Invoice, error)

	// ListIDs returns up to limit invoice ids greater than afterID, ascending.
	ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)

	// GetByID returns the aggregate or ErrInvoiceNotFound.
	GetByID(ctx context.Context, id int64) (*models.Invoice, error)

	// Exists reports whether an invoice with the given id exists.
	Exists(ctx context.Context, id int64) (bool, error)

	// Create persists a new, empty invoice and assigns its ID.
	Create(ctx context.Context, inv *models.Invoice) error

	// AddItem persists item under item.InvoiceID, recomputes the stored total
	// from all items in the same transaction and returns the updated aggregate.
	// Returns ErrInvoiceNotFound if the invoice is absent.
	AddItem(ctx context.Context, item *models.InvoiceItem) (*models.Invoice, error)

	// RecomputeTotal re-derives the stored total from the items, returning the
	// aggregate and whether the stored total had drifted.
	RecomputeTotal(ctx context.Context, id int64) (*models.Invoice, bool, error)

	// Delete removes the invoice and all its items. Returns ErrInvoiceNotFound if absent.
	Delete(ctx context.Context, id int64) error
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ghuser/invoiceledger/pkg/database"
	"github.com/ghuser/invoiceledger/pkg/events"
	invoicedomain "github.com/ghuser/invoiceledger/services/invoice/domain"
	domainevents "github.com/ghuser/invoiceledger/services/invoice/domain/events"
	"github.com/ghuser/invoiceledger/services/invoice/domain/models"
)

// pgForeignKeyViolation is the SQLSTATE raised when an item references a missing invoice.
const pgForeignKeyViolation = "23503"

// InvoiceRepository implements repositories.InvoiceRepository with GORM.
type InvoiceRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewInvoiceRepository returns an InvoiceRepository backed by db. When bus is
// non-nil, every mutation publishes its domain event inside the same transaction.
func NewInvoiceRepository(db *database.Database, bus *events.EventBus) *InvoiceRepository {
	return &InvoiceRepository{db: db, bus: bus}
}

// List returns every invoice with its items, ordered by id.
func (r *InvoiceRepository) List(ctx context.Context) ([]*models.Invoice, error) {
	var recs []invoiceRecord
	if err := withItems(r.db.Gorm(ctx)).Order("invoice_id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	invoices := make([]*models.Invoice, len(recs))
	for i := range recs {
		invoices[i] = recordToInvoice(&recs[i])
	}
	return invoices, nil
}

// ListIDs returns up to limit invoice ids greater than afterID, ascending.
func (r *InvoiceRepository) ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	var ids []int64
	if err := r.db.Gorm(ctx).Model(&invoiceRecord{}).
		Where("invoice_id > ?", afterID).
		Order("invoice_id").
		Limit(limit).
		Pluck("invoice_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("query invoice ids: %w", err)
	}
	return ids, nil
}

// GetByID returns the invoice with its items. Returns ErrInvoiceNotFound if absent.
func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*models.Invoice, error) {
	var rec invoiceRecord
	if err := withItems(r.db.Gorm(ctx)).Take(&rec, "invoice_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoicedomain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("query invoice %d: %w", id, err)
	}
	return recordToInvoice(&rec), nil
}

// Exists reports whether an invoice with the given id exists.
func (r *InvoiceRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.Gorm(ctx).Model(&invoiceRecord{}).Where("invoice_id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check invoice exists: %w", err)
	}
	return n > 0, nil
}

// Create inserts inv, assigns its generated id and publishes an InvoiceCreatedEvent.
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	rec := &invoiceRecord{
		CustomerName: inv.CustomerName.String(),
		InvoiceDate:  inv.CreatedAt,
		TotalAmount:  inv.TotalAmount,
	}
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		inv.ID = rec.ID

		event := domainevents.InvoiceCreatedEvent{
			Envelope:     domainevents.NewEnvelope(inv.ID),
			CustomerName: inv.CustomerName.String(),
		}
		if err := r.publish(ctx, tx, domainevents.TopicInvoiceCreated, event.Envelope, event); err != nil {
			return fmt.Errorf("publish invoice created: %w", err)
		}
		return nil
	})
}

// AddItem inserts item and rewrites the invoice total from the full item set
// while holding the invoice row lock, so concurrent additions cannot lose updates.
// A total beyond models.MaxAmount is rejected as ErrInvalidItem before the insert.
func (r *InvoiceRepository) AddItem(ctx context.Context, item *models.InvoiceItem) (*models.Invoice, error) {
	var inv *models.Invoice
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		rec, err := lockInvoice(tx, item.InvoiceID)
		if err != nil {
			return err
		}
		if err := loadItems(tx, rec); err != nil {
			return err
		}
		inv = recordToInvoice(rec)
		if err := inv.AppendItem(item); err != nil {
			return fmt.Errorf("%w: %w", invoicedomain.ErrInvalidItem, err)
		}

		row := itemToRecord(item)
		if err := tx.Create(row).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
				return invoicedomain.ErrInvoiceNotFound
			}
			return fmt.Errorf("insert item: %w", err)
		}
		item.ID = row.ID

		if err := writeTotal(tx, inv); err != nil {
			return err
		}

		event := domainevents.InvoiceItemAddedEvent{
			Envelope:    domainevents.NewEnvelope(inv.ID),
			ItemID:      item.ID,
			Name:        item.Name.String(),
			Price:       item.Price,
			Quantity:    item.Quantity,
			TotalAmount: inv.TotalAmount,
		}
		if err := r.publish(ctx, tx, domainevents.TopicInvoiceItemAdded, event.Envelope, event); err != nil {
			return fmt.Errorf("publish item added: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// RecomputeTotal re-derives the stored total from the items under the row lock.
func (r *InvoiceRepository) RecomputeTotal(ctx context.Context, id int64) (*models.Invoice, bool, error) {
	var (
		inv     *models.Invoice
		drifted bool
	)
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		rec, err := lockInvoice(tx, id)
		if err != nil {
			return err
		}
		inv, drifted, err = syncTotal(tx, rec)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return inv, drifted, nil
}

// Delete removes the invoice and its items in one transaction and publishes an
// InvoiceDeletedEvent. Returns ErrInvoiceNotFound if no invoice row was removed.
func (r *InvoiceRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		items := tx.Where("invoice_id = ?", id).Delete(&invoiceItemRecord{})
		if items.Error != nil {
			return fmt.Errorf("delete items of invoice %d: %w", id, items.Error)
		}

		res := tx.Where("invoice_id = ?", id).Delete(&invoiceRecord{})
		if res.Error != nil {
			return fmt.Errorf("delete invoice %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return invoicedomain.ErrInvoiceNotFound
		}

		event := domainevents.InvoiceDeletedEvent{
			Envelope:     domainevents.NewEnvelope(id),
			ItemsDeleted: items.RowsAffected,
		}
		if err := r.publish(ctx, tx, domainevents.TopicInvoiceDeleted, event.Envelope, event); err != nil {
			return fmt.Errorf("publish invoice deleted: %w", err)
		}
		return nil
	})
}

// publish writes event to topic inside tx. No-op without a bus.
func (r *InvoiceRepository) publish(ctx context.Context, tx *gorm.DB, topic string, env domainevents.Envelope, event any) error {
	if r.bus == nil {
		return nil
	}
	sqlTx, err := database.SQLTx(tx)
	if err != nil {
		return err
	}
	msg, err := events.NewJSONMessage(event)
	if err != nil {
		return err
	}
	msg.Metadata.Set("event_id", env.EventID.String())
	msg.Metadata.Set("event_version", strconv.Itoa(env.Version))
	msg.Metadata.Set("invoice_id", strconv.FormatInt(env.InvoiceID, 10))
	return r.bus.PublishInTx(ctx, sqlTx, topic, msg)
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(q *gorm.DB) *gorm.DB {
		return q.Order("item_id")
	})
}

// lockInvoice loads the invoice row FOR UPDATE. Returns ErrInvoiceNotFound if absent.
func lockInvoice(tx *gorm.DB, id int64) (*invoiceRecord, error) {
	var rec invoiceRecord
	if err := database.ForUpdate(tx).Take(&rec, "invoice_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoicedomain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("lock invoice %d: %w", id, err)
	}
	return &rec, nil
}

// syncTotal reloads the items of rec, recomputes the total and writes it back
// when it differs from the stored value.
func syncTotal(tx *gorm.DB, rec *invoiceRecord) (*models.Invoice, bool, error) {
	if err := loadItems(tx, rec); err != nil {
		return nil, false, err
	}
	inv := recordToInvoice(rec)
	if !inv.RecomputeTotal() {
		return inv, false, nil
	}
	if err := writeTotal(tx, inv); err != nil {
		return nil, false, err
	}
	return inv, true, nil
}

func loadItems(tx *gorm.DB, rec *invoiceRecord) error {
	if err := tx.Where("invoice_id = ?", rec.ID).Order("item_id").Find(&rec.Items).Error; err != nil {
		return fmt.Errorf("load items of invoice %d: %w", rec.ID, err)
	}
	return nil
}

func writeTotal(tx *gorm.DB, inv *models.Invoice) error {
	if err := tx.Model(&invoiceRecord{}).
		Where("invoice_id = ?", inv.ID).
		Update("total_amount", inv.TotalAmount).Error; err != nil {
		return fmt.Errorf("update total of invoice %d: %w", inv.ID, err)
	}
	return nil
}

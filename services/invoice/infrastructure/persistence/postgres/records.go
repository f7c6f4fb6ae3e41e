package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghuser/invoiceledger/pkg/database"
	"github.com/ghuser/invoiceledger/services/invoice/domain/models"
)

// invoiceRecord is the GORM row model for the invoices table.
type invoiceRecord struct {
	ID           int64               `gorm:"column:invoice_id;primaryKey;autoIncrement"`
	CustomerName string              `gorm:"column:customer_name;type:varchar(100);not null"`
	InvoiceDate  time.Time           `gorm:"column:invoice_date;not null"`
	TotalAmount  decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Items        []invoiceItemRecord `gorm:"foreignKey:InvoiceID;references:ID;constraint:OnDelete:CASCADE"`
}

func (invoiceRecord) TableName() string { return "invoices" }

// invoiceItemRecord is the GORM row model for the invoice_items table.
type invoiceItemRecord struct {
	ID        int64           `gorm:"column:item_id;primaryKey;autoIncrement"`
	InvoiceID int64           `gorm:"column:invoice_id;not null;index"`
	Name      string          `gorm:"column:name;type:varchar(100);not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
}

func (invoiceItemRecord) TableName() string { return "invoice_items" }

// AutoMigrate creates the invoice tables from the row models. It is used for
// SQLite stores; PostgreSQL schemas are owned by the goose migrations.
func AutoMigrate(ctx context.Context, db *database.Database) error {
	if err := db.Gorm(ctx).AutoMigrate(&invoiceRecord{}, &invoiceItemRecord{}); err != nil {
		return fmt.Errorf("auto-migrate invoices: %w", err)
	}
	return nil
}

func recordToInvoice(rec *invoiceRecord) *models.Invoice {
	inv := &models.Invoice{
		ID:           rec.ID,
		CustomerName: models.CustomerName(rec.CustomerName),
		CreatedAt:    rec.InvoiceDate.UTC(),
		TotalAmount:  rec.TotalAmount,
		Items:        make([]*models.InvoiceItem, len(rec.Items)),
	}
	for i := range rec.Items {
		inv.Items[i] = recordToItem(&rec.Items[i])
	}
	return inv
}

func recordToItem(rec *invoiceItemRecord) *models.InvoiceItem {
	return &models.InvoiceItem{
		ID:        rec.ID,
		InvoiceID: rec.InvoiceID,
		Name:      models.ItemName(rec.Name),
		Price:     rec.Price,
		Quantity:  rec.Quantity,
	}
}

func itemToRecord(item *models.InvoiceItem) *invoiceItemRecord {
	return &invoiceItemRecord{
		InvoiceID: item.InvoiceID,
		Name:      item.Name.String(),
		Price:     item.Price,
		Quantity:  item.Quantity,
	}
}

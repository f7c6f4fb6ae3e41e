// Package pdf renders invoices as printable A4 documents.
package pdf

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/ghuser/invoiceledger/services/invoice/domain/models"
)

const (
	dateLayout = "2006-01-02 15:04 MST"
	rowHeight  = 8.0
)

// column widths in mm; they add up to the A4 printable width with 10mm margins.
var colWidths = [4]float64{90, 30, 30, 40}

// Renderer turns an Invoice aggregate into PDF bytes.
type Renderer struct {
	issuer string
}

// NewRenderer returns a Renderer that prints issuer in each document header.
func NewRenderer(issuer string) *Renderer {
	return &Renderer{issuer: issuer}
}

// Render produces a single-page (or overflowing) PDF listing the invoice's
// customer, date, items and total.
func (r *Renderer) Render(inv *models.Invoice) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(10, 10, 10)
	doc.SetTitle(fmt.Sprintf("Invoice %d", inv.ID), true)
	doc.SetCreator(r.issuer, true)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	doc.SetFont("Arial", "B", 16)
	doc.CellFormat(0, 10, tr(fmt.Sprintf("Invoice #%d", inv.ID)), "", 1, "L", false, 0, "")

	doc.SetFont("Arial", "", 11)
	doc.CellFormat(0, 6, tr("Customer: "+inv.CustomerName.String()), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, "Date: "+inv.CreatedAt.UTC().Format(dateLayout), "", 1, "L", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Arial", "B", 11)
	doc.SetFillColor(230, 230, 230)
	for i, h := range []string{"Item", "Unit price", "Qty", "Line total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		doc.CellFormat(colWidths[i], rowHeight, h, "1", 0, align, true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Arial", "", 11)
	for _, item := range inv.Items {
		doc.CellFormat(colWidths[0], rowHeight, tr(item.Name.String()), "1", 0, "L", false, 0, "")
		doc.CellFormat(colWidths[1], rowHeight, item.Price.StringFixed(models.PriceScale), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[2], rowHeight, strconv.Itoa(item.Quantity), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[3], rowHeight, item.LineTotal().StringFixed(models.PriceScale), "1", 0, "R", false, 0, "")
		doc.Ln(-1)
	}

	doc.SetFont("Arial", "B", 12)
	doc.CellFormat(colWidths[0]+colWidths[1]+colWidths[2], rowHeight, "Total", "1", 0, "R", false, 0, "")
	doc.CellFormat(colWidths[3], rowHeight, inv.TotalAmount.StringFixed(models.PriceScale), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %d pdf: %w", inv.ID, err)
	}
	return buf.Bytes(), nil
}

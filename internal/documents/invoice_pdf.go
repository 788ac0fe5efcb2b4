// Package documents renders invoices as printable PDFs.
package documents

import (
	"bytes"
	"fmt"
	"time"

	"stock-backend/internal/models"
	"stock-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
)

// Field is one labelled header value
type Field struct {
	Label string
	Value string
}

// Line is one printed item row
type Line struct {
	Product       string
	Quantity      decimal.Decimal
	UnitOfMeasure string
	UnitPrice     decimal.Decimal
	Discount      decimal.Decimal
	VATAmount     decimal.Decimal
	TotalPrice    decimal.Decimal
}

// Invoice is the printable view of either invoice kind
type Invoice struct {
	Title        string
	Number       string
	Date         time.Time
	Fields       []Field
	Lines        []Line
	ShowDiscount bool
}

// Totals sums the line amounts
func (d *Invoice) Totals() (total, vat decimal.Decimal) {
	for _, l := range d.Lines {
		total = total.Add(l.TotalPrice)
		vat = vat.Add(l.VATAmount)
	}
	return total, vat
}

// Filename is the download name, e.g. inv001.pdf
func (d *Invoice) Filename() string {
	return d.Number + ".pdf"
}

func FromIncoming(inv *models.IncomingInvoice) *Invoice {
	doc := &Invoice{
		Title:  "Incoming Invoice",
		Number: inv.Number,
		Date:   inv.Date,
		Fields: []Field{
			{"Operation", inv.OperationType},
			{"Supplier ID", fmt.Sprint(inv.CounterAgentID)},
			{"Organization ID", fmt.Sprint(inv.OrganizationID)},
			{"Storage ID", fmt.Sprint(inv.StorageID)},
			{"Contract", inv.ContractNumber},
			{"Responsible ID", fmt.Sprint(inv.ResponsiblePersonID)},
		},
	}
	for _, it := range inv.Items {
		doc.Lines = append(doc.Lines, Line{
			Product:       it.ProductName,
			Quantity:      it.Quantity,
			UnitOfMeasure: it.UnitOfMeasure,
			UnitPrice:     it.UnitPrice,
			VATAmount:     it.VATAmount,
			TotalPrice:    it.TotalPrice,
		})
	}
	return doc
}

func FromOutgoing(inv *models.OutgoingInvoice) *Invoice {
	doc := &Invoice{
		Title:        "Outgoing Invoice",
		Number:       inv.Number,
		Date:         inv.Date,
		ShowDiscount: true,
		Fields: []Field{
			{"Customer ID", fmt.Sprint(inv.CustomerID)},
			{"Organization ID", fmt.Sprint(inv.OrganizationID)},
			{"Storage ID", fmt.Sprint(inv.StorageID)},
			{"Contract", inv.ContractNumber},
			{"Payment document", inv.PaymentDocument},
			{"Responsible ID", fmt.Sprint(inv.ResponsiblePersonID)},
		},
	}
	for _, it := range inv.Items {
		doc.Lines = append(doc.Lines, Line{
			Product:       it.ProductName,
			Quantity:      it.Quantity,
			UnitOfMeasure: it.UnitOfMeasure,
			UnitPrice:     it.UnitPrice,
			Discount:      it.Discount,
			VATAmount:     it.VATAmount,
			TotalPrice:    it.TotalPrice,
		})
	}
	return doc
}

// Render lays the invoice out on A4 portrait
func Render(doc *Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, fmt.Sprintf("%s %s", doc.Title, doc.Number), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Date: %s", doc.Date.In(timeutil.Location()).Format("02-Jan-2006")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "", 10)
	for i, f := range doc.Fields {
		border, ln := "LB", 0
		if i%2 == 1 {
			border, ln = "RB", 1
		}
		pdf.CellFormat(95, 7, fmt.Sprintf("%s: %s", f.Label, f.Value), border, ln, "L", false, 0, "")
	}
	if len(doc.Fields)%2 == 1 {
		pdf.CellFormat(95, 7, "", "RB", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// Table header
	widths := []float64{60, 22, 18, 25, 0, 30, 35}
	headers := []string{"Product", "Qty", "Unit", "Price", "Disc %", "VAT", "Total"}
	if doc.ShowDiscount {
		widths = []float64{50, 20, 16, 24, 16, 29, 35}
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	for i, h := range headers {
		if widths[i] == 0 {
			continue
		}
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 7, h, "1", ln, "C", true, 0, "")
	}

	// Table rows
	pdf.SetFont("Arial", "", 10)
	for _, l := range doc.Lines {
		product := l.Product
		if len(product) > 30 {
			product = product[:27] + "..."
		}
		cells := []string{
			product,
			l.Quantity.String(),
			l.UnitOfMeasure,
			l.UnitPrice.StringFixed(2),
			l.Discount.String(),
			l.VATAmount.StringFixed(2),
			l.TotalPrice.StringFixed(2),
		}
		for i, c := range cells {
			if widths[i] == 0 {
				continue
			}
			align, ln := "R", 0
			if i == 0 {
				align = "L"
			}
			if i == len(cells)-1 {
				ln = 1
			}
			pdf.CellFormat(widths[i], 6, c, "1", ln, align, false, 0, "")
		}
	}
	pdf.Ln(4)

	total, vat := doc.Totals()
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(155, 8, "VAT included", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, vat.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.CellFormat(155, 8, "Total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, total.StringFixed(2), "1", 1, "R", true, 0, "")

	// Footer
	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(190, 5, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

package pdf

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/core/domain"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
)

// Renderer renders invoices and credit notes as A4 PDFs.
type Renderer struct {
	fontName string
}

// NewRenderer creates a new PDF renderer.
func NewRenderer() *Renderer {
	return &Renderer{fontName: "Helvetica"}
}

var _ portssvc.DocumentPDFRenderer = (*Renderer)(nil)

// RenderDocument builds the printable PDF for a document and its lines.
func (r *Renderer) RenderDocument(ctx context.Context, company domain.Company, customer domain.Customer, document domain.Document, lines []domain.DocumentLine) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	title := "Invoice"
	if document.DocumentType == domain.DocumentCreditNote {
		title = "Credit Note"
	}

	pdf.SetFont(r.fontName, "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")

	pdf.SetFont(r.fontName, "", 11)
	if document.DocumentNumber != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Number: %s", *document.DocumentNumber), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, "DRAFT", "", 1, "L", false, 0, "")
	}
	if document.IssueDate != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Issue date: %s", formatDate(*document.IssueDate)), "", 1, "L", false, 0, "")
	}
	if document.DueDate != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Due date: %s", formatDate(*document.DueDate)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	r.partyBlock(pdf, "From", company.LegalName, company.Address, company.VATNumber)
	pdf.Ln(2)
	r.partyBlock(pdf, "Bill to", customer.Name, customer.Address, customer.VATNumber)
	pdf.Ln(4)

	headers := []string{"Description", "Qty", "Unit", "Unit price", "Tax", "Subtotal"}
	colWidths := []float64{80, 18, 14, 26, 18, 24}
	r.tableRow(pdf, headers, colWidths, true)

	for _, line := range lines {
		row := []string{
			line.Description,
			line.Quantity.String(),
			line.Unit,
			line.UnitPrice.StringFixed(2),
			taxRateLabel(line.TaxRate),
			line.Subtotal.StringFixed(2),
		}
		r.tableRow(pdf, row, colWidths, false)
	}

	pdf.Ln(2)
	pdf.SetFont(r.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Subtotal: %s %s", document.Subtotal.StringFixed(2), document.CurrencyCode), "", 1, "R", false, 0, "")

	for _, rate := range sortedRates(document.TaxBreakdown) {
		pdf.CellFormat(0, 6, fmt.Sprintf("Tax (%s): %s %s", taxRateLabel(rate), document.TaxBreakdown[rate].StringFixed(2), document.CurrencyCode), "", 1, "R", false, 0, "")
	}

	pdf.SetFont(r.fontName, "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total: %s %s", document.Total.StringFixed(2), document.CurrencyCode), "", 1, "R", false, 0, "")

	if customer.ReverseCharge {
		pdf.SetFont(r.fontName, "", 9)
		pdf.MultiCell(0, 5, "VAT reverse charged. The recipient is liable to account for VAT on this supply.", "", "L", false)
	}

	if document.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont(r.fontName, "", 10)
		pdf.MultiCell(0, 5, document.Notes, "", "L", false)
	}

	pdf.Ln(4)
	pdf.SetFont(r.fontName, "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Payment terms: %d days", document.PaymentTermsDays), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render document pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) partyBlock(pdf *gofpdf.Fpdf, title, name, address, vatNumber string) {
	pdf.SetFont(r.fontName, "B", 11)
	pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont(r.fontName, "", 10)
	pdf.MultiCell(0, 5, name, "", "L", false)
	if address != "" {
		pdf.MultiCell(0, 5, address, "", "L", false)
	}
	if vatNumber != "" {
		pdf.MultiCell(0, 5, fmt.Sprintf("VAT: %s", vatNumber), "", "L", false)
	}
}

func (r *Renderer) tableRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(r.fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func sortedRates(breakdown map[domain.TaxRate]decimal.Decimal) []domain.TaxRate {
	rates := make([]domain.TaxRate, 0, len(breakdown))
	for rate := range breakdown {
		rates = append(rates, rate)
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i] < rates[j] })
	return rates
}

func taxRateLabel(rate domain.TaxRate) string {
	switch rate {
	case domain.TaxStandard20:
		return "20%"
	case domain.TaxReduced10:
		return "10%"
	case domain.TaxZero:
		return "0%"
	case domain.TaxReverseCharge:
		return "RC"
	}
	return string(rate)
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

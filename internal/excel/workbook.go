package excel

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ostwerk/billable_app/internal/core/domain"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
)

// WorkbookRenderer renders export batches as xlsx workbooks for handover to
// accounting software.
type WorkbookRenderer struct{}

// NewWorkbookRenderer creates a new workbook renderer.
func NewWorkbookRenderer() *WorkbookRenderer {
	return &WorkbookRenderer{}
}

var _ portssvc.ExportWorkbookRenderer = (*WorkbookRenderer)(nil)

// RenderWorkbook produces a workbook with a documents sheet, an expenses
// sheet and a tax summary sheet for the batch.
func (r *WorkbookRenderer) RenderWorkbook(ctx context.Context, batch domain.ExportBatch, documents []domain.Document, expenses []domain.Expense) ([]byte, error) {
	file := excelize.NewFile()

	documentsSheet := "Documents"
	file.SetSheetName("Sheet1", documentsSheet)
	if err := r.writeDocuments(file, documentsSheet, batch, documents); err != nil {
		return nil, err
	}

	expensesSheet := "Expenses"
	file.NewSheet(expensesSheet)
	if err := r.writeExpenses(file, expensesSheet, expenses); err != nil {
		return nil, err
	}

	summarySheet := "Tax Summary"
	file.NewSheet(summarySheet)
	if err := r.writeTaxSummary(file, summarySheet, documents, expenses); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write export workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *WorkbookRenderer) writeDocuments(file *excelize.File, sheet string, batch domain.ExportBatch, documents []domain.Document) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Export period")
	set("B1", fmt.Sprintf("%04d-%02d", batch.Year, batch.Month))
	set("A2", "Documents")
	set("B2", len(documents))

	tableRow := 4
	headers := []string{
		"Number",
		"Type",
		"Status",
		"Issue date",
		"Due date",
		"Currency",
		"Subtotal",
		"Tax",
		"Total",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, doc := range documents {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), formatStringPtr(doc.DocumentNumber))
		set(fmt.Sprintf("B%d", row), string(doc.DocumentType))
		set(fmt.Sprintf("C%d", row), string(doc.Status))
		set(fmt.Sprintf("D%d", row), formatDatePtr(doc.IssueDate))
		set(fmt.Sprintf("E%d", row), formatDatePtr(doc.DueDate))
		set(fmt.Sprintf("F%d", row), doc.CurrencyCode)
		set(fmt.Sprintf("G%d", row), doc.Subtotal.StringFixed(2))
		set(fmt.Sprintf("H%d", row), doc.TaxAmount.StringFixed(2))
		set(fmt.Sprintf("I%d", row), doc.Total.StringFixed(2))
	}

	_ = file.SetColWidth(sheet, "A", "A", 18)
	_ = file.SetColWidth(sheet, "B", "C", 14)
	_ = file.SetColWidth(sheet, "D", "E", 12)
	_ = file.SetColWidth(sheet, "F", "I", 12)
	return nil
}

func (r *WorkbookRenderer) writeExpenses(file *excelize.File, sheet string, expenses []domain.Expense) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	tableRow := 1
	headers := []string{
		"Date",
		"Category",
		"Description",
		"Project",
		"Gross amount",
		"Tax rate",
		"Tax amount",
		"Reimbursable",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, expense := range expenses {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), expense.ExpenseDate.Format("2006-01-02"))
		set(fmt.Sprintf("B%d", row), string(expense.Category))
		set(fmt.Sprintf("C%d", row), expense.Description)
		set(fmt.Sprintf("D%d", row), expense.ProjectName)
		set(fmt.Sprintf("E%d", row), expense.Amount.StringFixed(2))
		set(fmt.Sprintf("F%d", row), string(expense.TaxRate))
		set(fmt.Sprintf("G%d", row), expense.TaxAmount.StringFixed(2))
		set(fmt.Sprintf("H%d", row), expense.IsReimbursable)
	}

	_ = file.SetColWidth(sheet, "A", "B", 14)
	_ = file.SetColWidth(sheet, "C", "C", 40)
	_ = file.SetColWidth(sheet, "D", "D", 24)
	_ = file.SetColWidth(sheet, "E", "H", 14)
	return nil
}

// writeTaxSummary aggregates output tax per rate band across documents and
// input tax per rate band across expenses.
func (r *WorkbookRenderer) writeTaxSummary(file *excelize.File, sheet string, documents []domain.Document, expenses []domain.Expense) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	outputTax := map[domain.TaxRate]decimal.Decimal{}
	for _, doc := range documents {
		for rate, amount := range doc.TaxBreakdown {
			outputTax[rate] = outputTax[rate].Add(amount)
		}
	}

	inputTax := map[domain.TaxRate]decimal.Decimal{}
	for _, expense := range expenses {
		if expense.TaxAmount.IsZero() {
			continue
		}
		inputTax[expense.TaxRate] = inputTax[expense.TaxRate].Add(expense.TaxAmount)
	}

	set("A1", "Output tax (documents)")
	set("A2", "Rate")
	set("B2", "Amount")
	row := 3
	for _, rate := range sortedRates(outputTax) {
		set(fmt.Sprintf("A%d", row), string(rate))
		set(fmt.Sprintf("B%d", row), outputTax[rate].StringFixed(2))
		row++
	}

	row += 2
	set(fmt.Sprintf("A%d", row), "Input tax (expenses)")
	row++
	set(fmt.Sprintf("A%d", row), "Rate")
	set(fmt.Sprintf("B%d", row), "Amount")
	row++
	for _, rate := range sortedRates(inputTax) {
		set(fmt.Sprintf("A%d", row), string(rate))
		set(fmt.Sprintf("B%d", row), inputTax[rate].StringFixed(2))
		row++
	}

	_ = file.SetColWidth(sheet, "A", "A", 26)
	_ = file.SetColWidth(sheet, "B", "B", 14)
	return nil
}

func sortedRates(amounts map[domain.TaxRate]decimal.Decimal) []domain.TaxRate {
	rates := make([]domain.TaxRate, 0, len(amounts))
	for rate := range amounts {
		rates = append(rates, rate)
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i] < rates[j] })
	return rates
}

func formatStringPtr(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

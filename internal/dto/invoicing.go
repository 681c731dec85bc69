package dto

import (
	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// CreateInvoiceFromEntriesRequest defines data for building an invoice from
// an explicit selection of time entries and expenses.
type CreateInvoiceFromEntriesRequest struct {
	CustomerID       string                `json:"customerID" binding:"required"`
	TimeEntryIDs     []string              `json:"timeEntryIDs"`
	ExpenseIDs       []string              `json:"expenseIDs"`
	GroupBy          domain.GroupingPolicy `json:"groupBy" binding:"omitempty,oneof=PROJECT SUMMARY ENTRY"`
	PaymentTermsDays *int                  `json:"paymentTermsDays" binding:"omitempty,min=0,max=365"`
	Notes            string                `json:"notes"`
}

// CreateInvoiceForProjectMonthRequest defines data for invoicing everything a
// project accrued in a calendar month. IncludeTime and IncludeExpenses default
// to true when omitted; setting one false restricts the invoice to the other
// category.
type CreateInvoiceForProjectMonthRequest struct {
	ProjectID        string                `json:"projectID" binding:"required"`
	Year             int                   `json:"year" binding:"required,min=2000,max=2200"`
	Month            int                   `json:"month" binding:"required,min=1,max=12"`
	IncludeTime      *bool                 `json:"includeTime"`
	IncludeExpenses  *bool                 `json:"includeExpenses"`
	GroupBy          domain.GroupingPolicy `json:"groupBy" binding:"omitempty,oneof=PROJECT SUMMARY ENTRY"`
	PaymentTermsDays *int                  `json:"paymentTermsDays" binding:"omitempty,min=0,max=365"`
	Notes            string                `json:"notes"`
}

// UnbilledParams defines query parameters for the unbilled item listings.
type UnbilledParams struct {
	CustomerID *string `form:"customerID"`
}

// MonthSummary aggregates an unbilled selection without persisting anything.
type MonthSummary struct {
	TotalHours     decimal.Decimal `json:"totalHours"`
	TimeValue      decimal.Decimal `json:"timeValue"`
	ExpenseValue   decimal.Decimal `json:"expenseValue"`
	EstimatedTotal decimal.Decimal `json:"estimatedTotal"`
	EntryCount     int             `json:"entryCount"`
	ExpenseCount   int             `json:"expenseCount"`
}

// UnbilledItemsResponse bundles the unbilled work of a project month.
type UnbilledItemsResponse struct {
	TimeEntries []TimeEntryResponse `json:"timeEntries"`
	Expenses    []ExpenseResponse   `json:"expenses"`
	Summary     MonthSummary        `json:"summary"`
}

// InvoicePreviewResponse is a document rendered in memory only. Line and
// total arithmetic matches what creation would persist.
type InvoicePreviewResponse struct {
	CustomerID   string                     `json:"customerID"`
	CurrencyCode string                     `json:"currencyCode"`
	Lines        []DocumentLineResponse     `json:"lines"`
	Subtotal     decimal.Decimal            `json:"subtotal"`
	TaxAmount    decimal.Decimal            `json:"taxAmount"`
	Total        decimal.Decimal            `json:"total"`
	TaxBreakdown map[string]decimal.Decimal `json:"taxBreakdown"`
}

package services

import (
	"context"

	"github.com/ostwerk/billable_app/internal/core/domain"
	"github.com/ostwerk/billable_app/internal/dto"
)

// UnbilledReaderSvc defines read operations over not-yet-invoiced work
type UnbilledReaderSvc interface {
	// GetUnbilledTimeEntries retrieves approved, billable, uninvoiced time
	// entries, optionally restricted to one customer.
	GetUnbilledTimeEntries(ctx context.Context, companyID string, customerID *string, userID string) ([]domain.TimeEntry, error)

	// GetUnbilledExpenses retrieves approved, reimbursable, unexported
	// expenses, optionally restricted to one customer.
	GetUnbilledExpenses(ctx context.Context, companyID string, customerID *string, userID string) ([]domain.Expense, error)

	// GetUnbilledItemsForProjectMonth retrieves a project's unbilled work in
	// a calendar month together with a value summary.
	GetUnbilledItemsForProjectMonth(ctx context.Context, companyID, projectID string, year, month int, userID string) (*dto.UnbilledItemsResponse, error)
}

// InvoiceBuilderSvc defines operations that turn unbilled work into documents
type InvoiceBuilderSvc interface {
	// CreateInvoiceFromEntries builds a draft invoice from the selected time
	// entries and expenses and persists it atomically with the entry linking.
	CreateInvoiceFromEntries(ctx context.Context, companyID string, req dto.CreateInvoiceFromEntriesRequest, creatorUserID string) (*dto.GetDocumentResponse, error)

	// CreateInvoiceForProjectMonth invoices everything a project accrued in
	// a calendar month, resolving the customer from the project.
	CreateInvoiceForProjectMonth(ctx context.Context, companyID string, req dto.CreateInvoiceForProjectMonthRequest, creatorUserID string) (*dto.GetDocumentResponse, error)

	// PreviewInvoice computes the lines and totals an invoice creation would
	// produce without persisting anything.
	PreviewInvoice(ctx context.Context, companyID string, req dto.CreateInvoiceFromEntriesRequest, userID string) (*dto.InvoicePreviewResponse, error)
}

// InvoicingSvcFacade combines the unbilled selection and invoice building interfaces
type InvoicingSvcFacade interface {
	UnbilledReaderSvc
	InvoiceBuilderSvc
}

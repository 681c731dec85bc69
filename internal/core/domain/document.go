package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType distinguishes invoices from credit notes.
type DocumentType string

const (
	DocumentInvoice    DocumentType = "INVOICE"
	DocumentCreditNote DocumentType = "CREDIT_NOTE"
)

// DocumentStatus is the billing lifecycle of a document. Documents are
// created DRAFT by the invoice aggregator; issue/pay/cancel happen later.
type DocumentStatus string

const (
	DocumentDraft     DocumentStatus = "DRAFT"
	DocumentIssued    DocumentStatus = "ISSUED"
	DocumentPaid      DocumentStatus = "PAID"
	DocumentCancelled DocumentStatus = "CANCELLED"
)

// GroupingPolicy selects how time entries are folded into invoice lines.
type GroupingPolicy string

const (
	// GroupByProject emits one line per distinct project with hours summed.
	GroupByProject GroupingPolicy = "PROJECT"
	// GroupBySummary groups like GroupByProject but hides detail behind a
	// generic services description.
	GroupBySummary GroupingPolicy = "SUMMARY"
	// GroupByEntry emits one line per individual time entry.
	GroupByEntry GroupingPolicy = "ENTRY"
)

// IsValid reports whether the value is a known grouping policy.
func (g GroupingPolicy) IsValid() bool {
	switch g {
	case GroupByProject, GroupBySummary, GroupByEntry:
		return true
	}
	return false
}

// Document is an invoice or credit note together with its monetary totals.
// Invariants: Total = Subtotal + TaxAmount, Subtotal = sum of line subtotals,
// TaxAmount = sum of line tax amounts.
type Document struct {
	DocumentID string `json:"documentID"` // Primary Key (UUID)
	CompanyID  string `json:"companyID"`  // FK -> companies
	CustomerID string `json:"customerID"`
	// ProjectID is set only when every line references the same project.
	ProjectID *string `json:"projectID,omitempty"`
	// DocumentNumber is assigned sequentially per company when the document
	// is issued; drafts carry none.
	DocumentNumber   *string         `json:"documentNumber,omitempty"`
	DocumentType     DocumentType    `json:"documentType"`
	Status           DocumentStatus  `json:"status"`
	IssueDate        *time.Time      `json:"issueDate,omitempty"`
	DueDate          *time.Time      `json:"dueDate,omitempty"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	TaxAmount        decimal.Decimal `json:"taxAmount"`
	Total            decimal.Decimal `json:"total"`
	// TaxBreakdown maps each contributing rate band to its tax sum.
	// Rates contributing zero tax are omitted.
	TaxBreakdown     map[TaxRate]decimal.Decimal `json:"taxBreakdown"`
	CurrencyCode     string                      `json:"currencyCode"`
	PaymentTermsDays int                         `json:"paymentTermsDays"`
	Notes            string                      `json:"notes"`
	AuditFields
}

// DocumentLine is a single position on a document. Immutable once the parent
// document has been issued.
type DocumentLine struct {
	LineID     string `json:"lineID"`     // Primary Key (UUID)
	DocumentID string `json:"documentID"` // FK -> documents
	LineNumber int    `json:"lineNumber"` // 1-based, sequential
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"` // "h" for time lines, "pcs" for expenses
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     TaxRate         `json:"taxRate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	Total       decimal.Decimal `json:"total"`
	// Back-references to the consumed source rows; at most one of the two
	// slices is non-empty.
	TimeEntryIDs []string `json:"timeEntryIDs,omitempty"`
	ExpenseIDs   []string `json:"expenseIDs,omitempty"`
	ProjectID    *string  `json:"projectID,omitempty"`
}

// Payment records money received against an issued document.
type Payment struct {
	PaymentID  string          `json:"paymentID"` // Primary Key (UUID)
	CompanyID  string          `json:"companyID"`
	DocumentID string          `json:"documentID"`
	PaidAt     time.Time       `json:"paidAt"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  string          `json:"reference"`
	AuditFields
}

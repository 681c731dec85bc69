package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document is the persistence shape of an invoice or credit note.
// TaxBreakdown round-trips through a JSONB column.
type Document struct {
	DocumentID       string                     `json:"documentID"`
	CompanyID        string                     `json:"companyID"`
	CustomerID       string                     `json:"customerID"`
	ProjectID        *string                    `json:"projectID,omitempty"`
	DocumentNumber   *string                    `json:"documentNumber,omitempty"`
	DocumentType     string                     `json:"documentType"`
	Status           string                     `json:"status"`
	IssueDate        *time.Time                 `json:"issueDate,omitempty"`
	DueDate          *time.Time                 `json:"dueDate,omitempty"`
	Subtotal         decimal.Decimal            `json:"subtotal"`
	TaxAmount        decimal.Decimal            `json:"taxAmount"`
	Total            decimal.Decimal            `json:"total"`
	TaxBreakdown     map[string]decimal.Decimal `json:"taxBreakdown"`
	CurrencyCode     string                     `json:"currencyCode"`
	PaymentTermsDays int                        `json:"paymentTermsDays"`
	Notes            string                     `json:"notes"`
	AuditFields
}

// DocumentLine is the persistence shape of a document position.
type DocumentLine struct {
	LineID       string          `json:"lineID"`
	DocumentID   string          `json:"documentID"`
	LineNumber   int             `json:"lineNumber"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TaxRate      string          `json:"taxRate"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxAmount    decimal.Decimal `json:"taxAmount"`
	Total        decimal.Decimal `json:"total"`
	TimeEntryIDs []string        `json:"timeEntryIDs,omitempty"`
	ExpenseIDs   []string        `json:"expenseIDs,omitempty"`
	ProjectID    *string         `json:"projectID,omitempty"`
}

// Payment is the persistence shape of a received payment.
type Payment struct {
	PaymentID  string          `json:"paymentID"`
	CompanyID  string          `json:"companyID"`
	DocumentID string          `json:"documentID"`
	PaidAt     time.Time       `json:"paidAt"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  string          `json:"reference"`
	AuditFields
}

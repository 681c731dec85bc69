package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// DocumentLineResponse defines the data returned for a document line.
type DocumentLineResponse struct {
	LineID       string          `json:"lineID"`
	LineNumber   int             `json:"lineNumber"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TaxRate      domain.TaxRate  `json:"taxRate"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxAmount    decimal.Decimal `json:"taxAmount"`
	Total        decimal.Decimal `json:"total"`
	TimeEntryIDs []string        `json:"timeEntryIDs,omitempty"`
	ExpenseIDs   []string        `json:"expenseIDs,omitempty"`
	ProjectID    *string         `json:"projectID,omitempty"`
}

// ToDocumentLineResponse converts a domain.DocumentLine to DTO.
func ToDocumentLineResponse(l *domain.DocumentLine) DocumentLineResponse {
	return DocumentLineResponse{
		LineID:       l.LineID,
		LineNumber:   l.LineNumber,
		Description:  l.Description,
		Quantity:     l.Quantity,
		Unit:         l.Unit,
		UnitPrice:    l.UnitPrice,
		TaxRate:      l.TaxRate,
		Subtotal:     l.Subtotal,
		TaxAmount:    l.TaxAmount,
		Total:        l.Total,
		TimeEntryIDs: l.TimeEntryIDs,
		ExpenseIDs:   l.ExpenseIDs,
		ProjectID:    l.ProjectID,
	}
}

// ToDocumentLineResponses converts a slice of domain.DocumentLine to DTOs.
func ToDocumentLineResponses(ls []domain.DocumentLine) []DocumentLineResponse {
	list := make([]DocumentLineResponse, len(ls))
	for i, l := range ls {
		list[i] = ToDocumentLineResponse(&l)
	}
	return list
}

// DocumentResponse defines the data returned for a document.
type DocumentResponse struct {
	DocumentID       string                     `json:"documentID"`
	CompanyID        string                     `json:"companyID"`
	CustomerID       string                     `json:"customerID"`
	ProjectID        *string                    `json:"projectID,omitempty"`
	DocumentNumber   *string                    `json:"documentNumber,omitempty"`
	DocumentType     domain.DocumentType        `json:"documentType"`
	Status           domain.DocumentStatus      `json:"status"`
	IssueDate        *time.Time                 `json:"issueDate,omitempty"`
	DueDate          *time.Time                 `json:"dueDate,omitempty"`
	Subtotal         decimal.Decimal            `json:"subtotal"`
	TaxAmount        decimal.Decimal            `json:"taxAmount"`
	Total            decimal.Decimal            `json:"total"`
	TaxBreakdown     map[string]decimal.Decimal `json:"taxBreakdown"`
	CurrencyCode     string                     `json:"currencyCode"`
	PaymentTermsDays int                        `json:"paymentTermsDays"`
	Notes            string                     `json:"notes"`
	CreatedAt        time.Time                  `json:"createdAt"`
	CreatedBy        string                     `json:"createdBy"`
}

// ToDocumentResponse converts a domain.Document to DTO.
func ToDocumentResponse(d *domain.Document) DocumentResponse {
	breakdown := make(map[string]decimal.Decimal, len(d.TaxBreakdown))
	for rate, amount := range d.TaxBreakdown {
		breakdown[string(rate)] = amount
	}
	return DocumentResponse{
		DocumentID:       d.DocumentID,
		CompanyID:        d.CompanyID,
		CustomerID:       d.CustomerID,
		ProjectID:        d.ProjectID,
		DocumentNumber:   d.DocumentNumber,
		DocumentType:     d.DocumentType,
		Status:           d.Status,
		IssueDate:        d.IssueDate,
		DueDate:          d.DueDate,
		Subtotal:         d.Subtotal,
		TaxAmount:        d.TaxAmount,
		Total:            d.Total,
		TaxBreakdown:     breakdown,
		CurrencyCode:     d.CurrencyCode,
		PaymentTermsDays: d.PaymentTermsDays,
		Notes:            d.Notes,
		CreatedAt:        d.CreatedAt,
		CreatedBy:        d.CreatedBy,
	}
}

// GetDocumentResponse combines a document with its lines and payments.
type GetDocumentResponse struct {
	Document DocumentResponse       `json:"document"`
	Lines    []DocumentLineResponse `json:"lines"`
	Payments []PaymentResponse      `json:"payments,omitempty"`
}

// ListDocumentsParams defines query parameters for listing documents.
type ListDocumentsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListDocumentsResponse wraps a paginated list of documents.
type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ToListDocumentsResponse converts a slice of domain.Document to DTO.
func ToListDocumentsResponse(ds []domain.Document, nextToken *string) ListDocumentsResponse {
	list := make([]DocumentResponse, len(ds))
	for i, d := range ds {
		list[i] = ToDocumentResponse(&d)
	}
	return ListDocumentsResponse{Documents: list, NextToken: nextToken}
}

// IssueDocumentRequest defines data for issuing a draft document.
// IssueDate defaults to today when omitted.
type IssueDocumentRequest struct {
	IssueDate *time.Time `json:"issueDate"`
}

// RecordPaymentRequest defines data for recording a payment against a document.
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	PaidAt    *time.Time      `json:"paidAt"`
	Reference string          `json:"reference"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID  string          `json:"paymentID"`
	DocumentID string          `json:"documentID"`
	PaidAt     time.Time       `json:"paidAt"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  string          `json:"reference"`
}

// ToPaymentResponse converts a domain.Payment to DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:  p.PaymentID,
		DocumentID: p.DocumentID,
		PaidAt:     p.PaidAt,
		Amount:     p.Amount,
		Reference:  p.Reference,
	}
}

// ToPaymentResponses converts a slice of domain.Payment to DTOs.
func ToPaymentResponses(ps []domain.Payment) []PaymentResponse {
	list := make([]PaymentResponse, len(ps))
	for i, p := range ps {
		list[i] = ToPaymentResponse(&p)
	}
	return list
}

// SendDocumentRequest defines data for emailing a document. Recipient
// defaults to the customer email when omitted.
type SendDocumentRequest struct {
	Recipient *string `json:"recipient" binding:"omitempty,email"`
	Message   string  `json:"message"`
}

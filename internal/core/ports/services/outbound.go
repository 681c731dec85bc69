package services

import (
	"context"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// DocumentPDFRenderer renders a document to a printable PDF.
type DocumentPDFRenderer interface {
	RenderDocument(ctx context.Context, company domain.Company, customer domain.Customer, document domain.Document, lines []domain.DocumentLine) ([]byte, error)
}

// ExportWorkbookRenderer renders an export batch to an xlsx workbook.
type ExportWorkbookRenderer interface {
	RenderWorkbook(ctx context.Context, batch domain.ExportBatch, documents []domain.Document, expenses []domain.Expense) ([]byte, error)
}

// Mailer sends outbound email with an optional attachment.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, body string, attachmentName string, attachment []byte) error
}

package repositories

import (
	"context"
	"time"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// DocumentReader defines read operations for document data
type DocumentReader interface {
	// FindDocumentByID retrieves a specific document within a company.
	FindDocumentByID(ctx context.Context, companyID, documentID string) (*domain.Document, error)

	// FindDocumentLines retrieves all lines of a document ordered by line number.
	FindDocumentLines(ctx context.Context, documentID string) ([]domain.DocumentLine, error)

	// ListDocumentsByCompany retrieves a paginated list of documents for a company using token-based pagination.
	// It returns the documents, a token for the next page, and an error.
	ListDocumentsByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Document, *string, error)

	// FindDocumentsInPeriod retrieves issued or paid documents whose issue
	// date falls within [from, to], used by the accounting export.
	FindDocumentsInPeriod(ctx context.Context, companyID string, from, to time.Time) ([]domain.Document, error)

	// FindOverdueDocuments retrieves issued documents past their due date as
	// of the given time, across all companies. Used by the reminder job.
	FindOverdueDocuments(ctx context.Context, asOf time.Time) ([]domain.Document, error)
}

// DocumentWriter defines write operations for document data
type DocumentWriter interface {
	// SaveDocument persists a document and its lines and links the consumed
	// time entries within a single transaction. Linking uses a conditional
	// update; if any entry was consumed concurrently the transaction aborts
	// with apperrors.ErrConflict and nothing is persisted.
	SaveDocument(ctx context.Context, document domain.Document, lines []domain.DocumentLine, timeEntryIDs []string) error

	// IssueDocument assigns the next sequential document number for the
	// company, stamps issue and due dates and moves the document to ISSUED,
	// all within a single transaction. Returns the assigned number.
	IssueDocument(ctx context.Context, companyID, documentID string, issueDate, dueDate time.Time, updatedBy string) (string, error)

	// UpdateDocumentStatus updates the lifecycle status of a document.
	UpdateDocumentStatus(ctx context.Context, companyID, documentID string, status domain.DocumentStatus, updatedBy string, updatedAt time.Time) error

	// CancelDraftDocument cancels a draft document and releases its time
	// entries back to APPROVED within a single transaction.
	CancelDraftDocument(ctx context.Context, companyID, documentID string, updatedBy string, updatedAt time.Time) error
}

// PaymentReader defines read operations for payment data
type PaymentReader interface {
	// FindPaymentsByDocument retrieves all payments recorded against a document.
	FindPaymentsByDocument(ctx context.Context, companyID, documentID string) ([]domain.Payment, error)
}

// PaymentWriter defines write operations for payment data
type PaymentWriter interface {
	// SavePayment persists a new payment.
	SavePayment(ctx context.Context, payment domain.Payment) error
}

// DocumentRepositoryFacade combines all document-related repository interfaces
// This is a facade for clients that need access to all operations
type DocumentRepositoryFacade interface {
	DocumentReader
	DocumentWriter
	PaymentReader
	PaymentWriter
}

// DocumentRepositoryWithTx extends DocumentRepositoryFacade with transaction capabilities
type DocumentRepositoryWithTx interface {
	DocumentRepositoryFacade
	TransactionManager
}

package services

import (
	"context"

	"github.com/ostwerk/billable_app/internal/core/domain"
	"github.com/ostwerk/billable_app/internal/dto"
)

// DocumentReaderSvc defines read operations for document data
type DocumentReaderSvc interface {
	// GetDocumentByID retrieves a document with its lines and payments.
	GetDocumentByID(ctx context.Context, companyID, documentID string, requestingUserID string) (*dto.GetDocumentResponse, error)

	// ListDocuments retrieves a paginated list of a company's documents.
	ListDocuments(ctx context.Context, companyID string, userID string, params dto.ListDocumentsParams) (*dto.ListDocumentsResponse, error)
}

// DocumentLifecycleSvc defines operations over the document lifecycle
type DocumentLifecycleSvc interface {
	// IssueDocument assigns the next sequential document number, stamps
	// issue and due dates and moves the document to ISSUED.
	IssueDocument(ctx context.Context, companyID, documentID string, req dto.IssueDocumentRequest, requestingUserID string) (*domain.Document, error)

	// RecordPayment records a payment; the document becomes PAID once
	// payments cover its total.
	RecordPayment(ctx context.Context, companyID, documentID string, req dto.RecordPaymentRequest, requestingUserID string) (*domain.Document, error)

	// CancelDocument cancels a draft or issued document. Cancelling a draft
	// releases its time entries back to APPROVED.
	CancelDocument(ctx context.Context, companyID, documentID string, requestingUserID string) error

	// CreateCreditNote builds a credit note with negated lines from an
	// issued or paid invoice.
	CreateCreditNote(ctx context.Context, companyID, documentID string, requestingUserID string) (*dto.GetDocumentResponse, error)
}

// DocumentRendererSvc defines operations that produce outbound document artifacts
type DocumentRendererSvc interface {
	// RenderDocumentPDF renders the document to PDF bytes.
	RenderDocumentPDF(ctx context.Context, companyID, documentID string, requestingUserID string) ([]byte, string, error)

	// SendDocument emails the rendered document to the customer or to an
	// explicit recipient override.
	SendDocument(ctx context.Context, companyID, documentID string, req dto.SendDocumentRequest, requestingUserID string) error
}

// DocumentSvcFacade combines all document-related service interfaces
type DocumentSvcFacade interface {
	DocumentReaderSvc
	DocumentLifecycleSvc
	DocumentRendererSvc
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
)

var (
	ErrNotDraft           = errors.New("document is not a draft")
	ErrNotIssued          = errors.New("document is not issued")
	ErrNotCancellable     = errors.New("only draft or issued documents can be cancelled")
	ErrNotCreditable      = errors.New("credit notes can only be created from issued or paid invoices")
	ErrPaymentNotPositive = errors.New("payment amount must be positive")
	ErrNoRecipient        = errors.New("document customer has no email address")
)

// documentService handles the post-creation document lifecycle: issuing,
// payments, cancellation, credit notes and outbound rendering.
type documentService struct {
	BaseService
	documentRepo portsrepo.DocumentRepositoryWithTx
	customerRepo portsrepo.CustomerReader
	companyRepo  portsrepo.CompanyReader
	pdfRenderer  portssvc.DocumentPDFRenderer
	mailer       portssvc.Mailer
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	documentRepo portsrepo.DocumentRepositoryWithTx,
	customerRepo portsrepo.CustomerReader,
	companyRepo portsrepo.CompanyReader,
	pdfRenderer portssvc.DocumentPDFRenderer,
	mailer portssvc.Mailer,
	authorizer portssvc.CompanyAuthorizerSvc,
) portssvc.DocumentSvcFacade {
	return &documentService{
		BaseService:  BaseService{CompanyAuthorizer: authorizer},
		documentRepo: documentRepo,
		customerRepo: customerRepo,
		companyRepo:  companyRepo,
		pdfRenderer:  pdfRenderer,
		mailer:       mailer,
	}
}

var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

// GetDocumentByID retrieves a document with its lines and payments.
func (s *documentService) GetDocumentByID(ctx context.Context, companyID, documentID string, requestingUserID string) (*dto.GetDocumentResponse, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	document, err := s.documentRepo.FindDocumentByID(ctx, companyID, documentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find document by ID in repository", slog.String("document_id", documentID))
		}
		return nil, err
	}
	lines, err := s.documentRepo.FindDocumentLines(ctx, documentID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load document lines", slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to load document lines: %w", err)
	}
	payments, err := s.documentRepo.FindPaymentsByDocument(ctx, companyID, documentID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load document payments", slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to load document payments: %w", err)
	}

	return &dto.GetDocumentResponse{
		Document: dto.ToDocumentResponse(document),
		Lines:    dto.ToDocumentLineResponses(lines),
		Payments: dto.ToPaymentResponses(payments),
	}, nil
}

// ListDocuments retrieves a paginated list of a company's documents.
func (s *documentService) ListDocuments(ctx context.Context, companyID string, userID string, params dto.ListDocumentsParams) (*dto.ListDocumentsResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	documents, nextToken, err := s.documentRepo.ListDocumentsByCompany(ctx, companyID, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list documents from repository", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	resp := dto.ToListDocumentsResponse(documents, nextToken)
	return &resp, nil
}

// IssueDocument assigns the next sequential document number, stamps issue
// and due dates and moves the document to ISSUED.
func (s *documentService) IssueDocument(ctx context.Context, companyID, documentID string, req dto.IssueDocumentRequest, requestingUserID string) (*domain.Document, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	document, err := s.documentRepo.FindDocumentByID(ctx, companyID, documentID)
	if err != nil {
		return nil, err
	}
	if document.Status != domain.DocumentDraft {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNotDraft)
	}

	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	dueDate := issueDate.AddDate(0, 0, document.PaymentTermsDays)

	number, err := s.documentRepo.IssueDocument(ctx, companyID, documentID, issueDate, dueDate, requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to issue document", slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to issue document: %w", err)
	}

	document.DocumentNumber = &number
	document.Status = domain.DocumentIssued
	document.IssueDate = &issueDate
	document.DueDate = &dueDate
	document.LastUpdatedAt = time.Now()
	document.LastUpdatedBy = requestingUserID

	s.LogInfo(ctx, "Document issued", slog.String("document_id", documentID), slog.String("document_number", number))
	return document, nil
}

// RecordPayment records a payment; the document becomes PAID once payments
// cover its total.
func (s *documentService) RecordPayment(ctx context.Context, companyID, documentID string, req dto.RecordPaymentRequest, requestingUserID string) (*domain.Document, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrPaymentNotPositive)
	}

	document, err := s.documentRepo.FindDocumentByID(ctx, companyID, documentID)
	if err != nil {
		return nil, err
	}
	if document.Status != domain.DocumentIssued {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNotIssued)
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	now := time.Now()
	payment := domain.Payment{
		PaymentID:  uuid.NewString(),
		CompanyID:  companyID,
		DocumentID: documentID,
		PaidAt:     paidAt,
		Amount:     req.Amount,
		Reference:  req.Reference,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}
	if err := s.documentRepo.SavePayment(ctx, payment); err != nil {
		s.LogError(ctx, err, "Failed to save payment", slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	payments, err := s.documentRepo.FindPaymentsByDocument(ctx, companyID, documentID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load payments after recording", slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	if paid.GreaterThanOrEqual(document.Total) {
		if err := s.documentRepo.UpdateDocumentStatus(ctx, companyID, documentID, domain.DocumentPaid, requestingUserID, now); err != nil {
			s.LogError(ctx, err, "Failed to mark document paid", slog.String("document_id", documentID))
			return nil, fmt.Errorf("failed to mark document paid: %w", err)
		}
		document.Status = domain.DocumentPaid
		s.LogInfo(ctx, "Document fully paid", slog.String("document_id", documentID), slog.String("paid_total", paid.String()))
	} else {
		s.LogInfo(ctx, "Partial payment recorded", slog.String("document_id", documentID), slog.String("paid_total", paid.String()), slog.String("document_total", document.Total.String()))
	}

	document.LastUpdatedAt = now
	document.LastUpdatedBy = requestingUserID
	return document, nil
}

// CancelDocument cancels a draft or issued document. Cancelling a draft
// releases its time entries back to APPROVED.
func (s *documentService) CancelDocument(ctx context.Context, companyID, documentID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return err
	}

	document, err := s.documentRepo.FindDocumentByID(ctx, companyID, documentID)
	if err != nil {
		return err
	}

	now := time.Now()
	switch document.Status {
	case domain.DocumentDraft:
		if err := s.documentRepo.CancelDraftDocument(ctx, companyID, documentID, requestingUserID, now); err != nil {
			s.LogError(ctx, err, "Failed to cancel draft document", slog.String("document_id", documentID))
			return err
		}
	case domain.DocumentIssued:
		if err := s.documentRepo.UpdateDocumentStatus(ctx, companyID, documentID, domain.DocumentCancelled, requestingUserID, now); err != nil {
			s.LogError(ctx, err, "Failed to cancel issued document", slog.String("document_id", documentID))
			return err
		}
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNotCancellable)
	}

	s.LogInfo(ctx, "Document cancelled", slog.String("document_id", documentID), slog.String("previous_status", string(document.Status)))
	return nil
}

// CreateCreditNote builds a draft credit note with negated lines from an
// issued or paid invoice. The consumed source rows stay with the original
// invoice; the credit note carries no back-references.
func (s *documentService) CreateCreditNote(ctx context.Context, companyID, documentID string, requestingUserID string) (*dto.GetDocumentResponse, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	original, err := s.documentRepo.FindDocumentByID(ctx, companyID, documentID)
	if err != nil {
		return nil, err
	}
	if original.DocumentType != domain.DocumentInvoice ||
		(original.Status != domain.DocumentIssued && original.Status != domain.DocumentPaid) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNotCreditable)
	}

	originalLines, err := s.documentRepo.FindDocumentLines(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines of original invoice: %w", err)
	}

	now := time.Now()
	creditNote := domain.Document{
		DocumentID:       uuid.NewString(),
		CompanyID:        companyID,
		CustomerID:       original.CustomerID,
		ProjectID:        original.ProjectID,
		DocumentType:     domain.DocumentCreditNote,
		Status:           domain.DocumentDraft,
		Subtotal:         original.Subtotal.Neg(),
		TaxAmount:        original.TaxAmount.Neg(),
		Total:            original.Total.Neg(),
		TaxBreakdown:     negateBreakdown(original.TaxBreakdown),
		CurrencyCode:     original.CurrencyCode,
		PaymentTermsDays: original.PaymentTermsDays,
		Notes:            fmt.Sprintf("Credit note for %s", documentReference(original)),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}

	lines := make([]domain.DocumentLine, len(originalLines))
	for i, l := range originalLines {
		lines[i] = domain.DocumentLine{
			LineID:      uuid.NewString(),
			DocumentID:  creditNote.DocumentID,
			LineNumber:  i + 1,
			Description: l.Description,
			Quantity:    l.Quantity.Neg(),
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			Subtotal:    l.Subtotal.Neg(),
			TaxAmount:   l.TaxAmount.Neg(),
			Total:       l.Total.Neg(),
			ProjectID:   l.ProjectID,
		}
	}

	if err := s.documentRepo.SaveDocument(ctx, creditNote, lines, nil); err != nil {
		s.LogError(ctx, err, "Failed to persist credit note", slog.String("original_document_id", documentID))
		return nil, fmt.Errorf("failed to persist credit note: %w", err)
	}

	s.LogInfo(ctx, "Credit note created", slog.String("document_id", creditNote.DocumentID), slog.String("original_document_id", documentID))
	return &dto.GetDocumentResponse{
		Document: dto.ToDocumentResponse(&creditNote),
		Lines:    dto.ToDocumentLineResponses(lines),
	}, nil
}

// RenderDocumentPDF renders the document to PDF bytes and suggests a filename.
func (s *documentService) RenderDocumentPDF(ctx context.Context, companyID, documentID string, requestingUserID string) ([]byte, string, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, "", err
	}

	document, err := s.documentRepo.FindDocumentByID(ctx, companyID, documentID)
	if err != nil {
		return nil, "", err
	}
	lines, err := s.documentRepo.FindDocumentLines(ctx, documentID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load document lines: %w", err)
	}
	customer, err := s.customerRepo.FindCustomerByID(ctx, companyID, document.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load document customer: %w", err)
	}
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load company: %w", err)
	}

	pdfBytes, err := s.pdfRenderer.RenderDocument(ctx, *company, *customer, *document, lines)
	if err != nil {
		s.LogError(ctx, err, "Failed to render document PDF", slog.String("document_id", documentID))
		return nil, "", fmt.Errorf("failed to render document PDF: %w", err)
	}

	filename := fmt.Sprintf("%s.pdf", documentReference(document))
	return pdfBytes, filename, nil
}

// SendDocument emails the rendered document to the customer or to an
// explicit recipient override.
func (s *documentService) SendDocument(ctx context.Context, companyID, documentID string, req dto.SendDocumentRequest, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return err
	}

	document, err := s.documentRepo.FindDocumentByID(ctx, companyID, documentID)
	if err != nil {
		return err
	}
	customer, err := s.customerRepo.FindCustomerByID(ctx, companyID, document.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to load document customer: %w", err)
	}
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to load company: %w", err)
	}

	recipient := customer.Email
	if req.Recipient != nil {
		recipient = *req.Recipient
	}
	if recipient == "" {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNoRecipient)
	}

	lines, err := s.documentRepo.FindDocumentLines(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document lines: %w", err)
	}
	pdfBytes, err := s.pdfRenderer.RenderDocument(ctx, *company, *customer, *document, lines)
	if err != nil {
		s.LogError(ctx, err, "Failed to render document PDF for sending", slog.String("document_id", documentID))
		return fmt.Errorf("failed to render document PDF: %w", err)
	}

	reference := documentReference(document)
	subject := fmt.Sprintf("%s from %s", reference, company.Name)
	body := req.Message
	if body == "" {
		body = fmt.Sprintf("Please find attached %s over %s %s.", reference, document.Total.StringFixed(2), document.CurrencyCode)
	}

	if err := s.mailer.Send(ctx, recipient, subject, body, reference+".pdf", pdfBytes); err != nil {
		s.LogError(ctx, err, "Failed to send document email", slog.String("document_id", documentID))
		return fmt.Errorf("failed to send document email: %w", err)
	}

	s.LogInfo(ctx, "Document sent", slog.String("document_id", documentID), slog.String("recipient", recipient))
	return nil
}

// documentReference names a document for filenames and email subjects. Drafts
// carry no number yet and fall back to the ID.
func documentReference(d *domain.Document) string {
	kind := "Invoice"
	if d.DocumentType == domain.DocumentCreditNote {
		kind = "Credit note"
	}
	if d.DocumentNumber != nil {
		return fmt.Sprintf("%s %s", kind, *d.DocumentNumber)
	}
	return fmt.Sprintf("%s %s", kind, d.DocumentID)
}

func negateBreakdown(in map[domain.TaxRate]decimal.Decimal) map[domain.TaxRate]decimal.Decimal {
	out := make(map[domain.TaxRate]decimal.Decimal, len(in))
	for rate, amount := range in {
		out[rate] = amount.Neg()
	}
	return out
}

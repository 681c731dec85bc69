package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
)

var ErrNothingToExport = errors.New("no documents or expenses in the export month")

// exportService runs the monthly accounting export. An export freezes the
// month's issued documents and approved reimbursable expenses into a batch
// and stamps the consumed expenses so they cannot be invoiced afterwards.
type exportService struct {
	BaseService
	exportRepo   portsrepo.ExportRepositoryFacade
	documentRepo portsrepo.DocumentReader
	expenseRepo  portsrepo.ExpenseReader
	workbook     portssvc.ExportWorkbookRenderer
}

// NewExportService creates a new export service.
func NewExportService(
	exportRepo portsrepo.ExportRepositoryFacade,
	documentRepo portsrepo.DocumentReader,
	expenseRepo portsrepo.ExpenseReader,
	workbook portssvc.ExportWorkbookRenderer,
	authorizer portssvc.CompanyAuthorizerSvc,
) portssvc.ExportSvc {
	return &exportService{
		BaseService:  BaseService{CompanyAuthorizer: authorizer},
		exportRepo:   exportRepo,
		documentRepo: documentRepo,
		expenseRepo:  expenseRepo,
		workbook:     workbook,
	}
}

var _ portssvc.ExportSvc = (*exportService)(nil)

// CreateExport collects the issued/paid documents and approved reimbursable
// expenses of a company month into a new export batch. Admin only.
func (s *exportService) CreateExport(ctx context.Context, companyID string, year, month int, requestingUserID string) (*domain.ExportBatch, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	from, to := monthWindow(year, month)
	documents, err := s.documentRepo.FindDocumentsInPeriod(ctx, companyID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch documents for export", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to fetch documents for export: %w", err)
	}

	unexported, err := s.expenseRepo.FindUnbilledExpenses(ctx, companyID, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch expenses for export", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to fetch expenses for export: %w", err)
	}

	documentIDs := make([]string, 0, len(documents))
	for _, d := range documents {
		documentIDs = append(documentIDs, d.DocumentID)
	}
	var expenseIDs []string
	for _, x := range unexported {
		if !x.ExpenseDate.Before(from) && !x.ExpenseDate.After(to.AddDate(0, 0, 1).Add(-time.Nanosecond)) {
			expenseIDs = append(expenseIDs, x.ExpenseID)
		}
	}

	if len(documentIDs) == 0 && len(expenseIDs) == 0 {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNothingToExport)
	}

	now := time.Now()
	batch := domain.ExportBatch{
		ExportID:    uuid.NewString(),
		CompanyID:   companyID,
		Year:        year,
		Month:       month,
		DocumentIDs: documentIDs,
		ExpenseIDs:  expenseIDs,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}

	if err := s.exportRepo.SaveExport(ctx, batch); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.LogInfo(ctx, "Export lost a race for an expense", slog.String("company_id", companyID))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to persist export batch", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to persist export batch: %w", err)
	}

	s.LogInfo(ctx, "Export batch created",
		slog.String("export_id", batch.ExportID),
		slog.Int("document_count", len(documentIDs)),
		slog.Int("expense_count", len(expenseIDs)))
	return &batch, nil
}

// GetExportByID retrieves a specific export batch.
func (s *exportService) GetExportByID(ctx context.Context, companyID, exportID string, requestingUserID string) (*domain.ExportBatch, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	batch, err := s.exportRepo.FindExportByID(ctx, companyID, exportID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find export batch", slog.String("export_id", exportID))
		}
		return nil, err
	}
	return batch, nil
}

// ListExports retrieves a company's export batches, newest first.
func (s *exportService) ListExports(ctx context.Context, companyID string, requestingUserID string) ([]domain.ExportBatch, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	batches, err := s.exportRepo.ListExportsByCompany(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list export batches", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to list export batches: %w", err)
	}
	if batches == nil {
		return []domain.ExportBatch{}, nil
	}
	return batches, nil
}

// RenderExportWorkbook renders an export batch to an xlsx workbook.
func (s *exportService) RenderExportWorkbook(ctx context.Context, companyID, exportID string, requestingUserID string) ([]byte, string, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, "", err
	}

	batch, err := s.exportRepo.FindExportByID(ctx, companyID, exportID)
	if err != nil {
		return nil, "", err
	}

	documents := make([]domain.Document, 0, len(batch.DocumentIDs))
	for _, id := range batch.DocumentIDs {
		document, err := s.documentRepo.FindDocumentByID(ctx, companyID, id)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load exported document %s: %w", id, err)
		}
		documents = append(documents, *document)
	}
	expenses, err := s.expenseRepo.FindExpensesByIDs(ctx, companyID, batch.ExpenseIDs)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load exported expenses: %w", err)
	}

	workbook, err := s.workbook.RenderWorkbook(ctx, *batch, documents, expenses)
	if err != nil {
		s.LogError(ctx, err, "Failed to render export workbook", slog.String("export_id", exportID))
		return nil, "", fmt.Errorf("failed to render export workbook: %w", err)
	}

	filename := fmt.Sprintf("export-%04d-%02d.xlsx", batch.Year, batch.Month)
	return workbook, filename, nil
}

package services

import (
	"context"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// ExportSvc defines operations for the monthly accounting export
type ExportSvc interface {
	// CreateExport collects the issued/paid documents and approved
	// reimbursable expenses of a company month into a new export batch,
	// stamping the consumed expenses atomically.
	CreateExport(ctx context.Context, companyID string, year, month int, requestingUserID string) (*domain.ExportBatch, error)

	// GetExportByID retrieves a specific export batch.
	GetExportByID(ctx context.Context, companyID, exportID string, requestingUserID string) (*domain.ExportBatch, error)

	// ListExports retrieves a company's export batches, newest first.
	ListExports(ctx context.Context, companyID string, requestingUserID string) ([]domain.ExportBatch, error)

	// RenderExportWorkbook renders an export batch to an xlsx workbook.
	RenderExportWorkbook(ctx context.Context, companyID, exportID string, requestingUserID string) ([]byte, string, error)
}

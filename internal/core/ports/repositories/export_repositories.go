package repositories

import (
	"context"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// ExportReader defines read operations for export batch data
type ExportReader interface {
	// FindExportByID retrieves a specific export batch within a company.
	FindExportByID(ctx context.Context, companyID, exportID string) (*domain.ExportBatch, error)

	// ListExportsByCompany retrieves all export batches of a company, newest first.
	ListExportsByCompany(ctx context.Context, companyID string) ([]domain.ExportBatch, error)
}

// ExportWriter defines write operations for export batch data
type ExportWriter interface {
	// SaveExport persists an export batch and stamps export_id on the
	// consumed expenses within a single transaction. Stamping uses a
	// conditional update; if any expense was exported concurrently the
	// transaction aborts with apperrors.ErrConflict.
	SaveExport(ctx context.Context, batch domain.ExportBatch) error
}

// ExportRepositoryFacade combines all export-related repository interfaces
// This is a facade for clients that need access to all operations
type ExportRepositoryFacade interface {
	ExportReader
	ExportWriter
}

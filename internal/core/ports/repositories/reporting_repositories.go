package repositories

import (
	"context"
	"time"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// ReportingRepository defines operations for retrieving report data
type ReportingRepository interface {
	// GetRevenueByMonth aggregates issued document totals per calendar month
	// within [from, to].
	GetRevenueByMonth(ctx context.Context, companyID string, from, to time.Time) ([]domain.RevenueMonth, error)

	// GetOpenDocumentDues retrieves unpaid issued documents with their due
	// dates, the inflow side of the cash-flow forecast.
	GetOpenDocumentDues(ctx context.Context, companyID string) ([]domain.OpenDocumentDue, error)
}

package services

import (
	"context"
	"time"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// ReportingService defines operations for generating reports
type ReportingService interface {
	// RevenueSummary aggregates issued document totals per month in [from, to].
	RevenueSummary(ctx context.Context, companyID string, from, to time.Time, userID string) ([]domain.RevenueMonth, error)

	// CashFlowForecast projects the next twelve weeks: inflows from unpaid
	// issued documents bucketed by due week, outflows from the trailing
	// average of approved expenses.
	CashFlowForecast(ctx context.Context, companyID string, asOf time.Time, userID string) ([]domain.CashFlowWeek, error)
}

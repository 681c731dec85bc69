package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
)

// forecastWeeks is the horizon of the cash-flow projection.
const forecastWeeks = 12

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	expenseRepo   portsrepo.ExpenseReader
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingCompanyAuthorizer sets the company authorizer for the reporting service.
func WithReportingCompanyAuthorizer(authorizer portssvc.CompanyAuthorizerSvc) ReportingServiceOption {
	return func(s *reportingService) {
		s.CompanyAuthorizer = authorizer
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, expenseRepo portsrepo.ExpenseReader, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		reportingRepo: repo,
		expenseRepo:   expenseRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReportingService = (*reportingService)(nil)

// RevenueSummary aggregates issued document totals per month in [from, to].
func (s *reportingService) RevenueSummary(ctx context.Context, companyID string, from, to time.Time, userID string) ([]domain.RevenueMonth, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	rows, err := s.reportingRepo.GetRevenueByMonth(ctx, companyID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch revenue summary", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to fetch revenue summary: %w", err)
	}
	if rows == nil {
		return []domain.RevenueMonth{}, nil
	}
	return rows, nil
}

// CashFlowForecast projects the next twelve weeks. Inflows come from unpaid
// issued documents bucketed by due week; already overdue documents count
// into the first week. Outflows are the trailing twelve-week average of
// approved expenses, applied uniformly.
func (s *reportingService) CashFlowForecast(ctx context.Context, companyID string, asOf time.Time, userID string) ([]domain.CashFlowWeek, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	dues, err := s.reportingRepo.GetOpenDocumentDues(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch open document dues", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to fetch open document dues: %w", err)
	}

	horizonStart := startOfWeek(asOf)
	trailingTotal, err := s.expenseRepo.FindApprovedExpenseTotalInRange(ctx, companyID, horizonStart.AddDate(0, 0, -7*forecastWeeks), horizonStart)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch trailing expense total", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to fetch trailing expense total: %w", err)
	}
	weeklyOutflow := trailingTotal.Div(decimal.NewFromInt(forecastWeeks)).Round(2)

	weeks := make([]domain.CashFlowWeek, forecastWeeks)
	for i := range weeks {
		weeks[i] = domain.CashFlowWeek{
			WeekStart: horizonStart.AddDate(0, 0, 7*i),
			Inflow:    decimal.Zero,
			Outflow:   weeklyOutflow,
		}
	}

	for _, due := range dues {
		idx := int(due.DueDate.Sub(horizonStart).Hours() / (24 * 7))
		if idx < 0 {
			idx = 0 // overdue: expected immediately
		}
		if idx >= forecastWeeks {
			continue // beyond the horizon
		}
		weeks[idx].Inflow = weeks[idx].Inflow.Add(due.Total)
	}

	for i := range weeks {
		weeks[i].Net = weeks[i].Inflow.Sub(weeks[i].Outflow)
	}
	return weeks, nil
}

// startOfWeek truncates a time to the Monday of its week, midnight UTC.
func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/core/services"
)

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetRevenueByMonth(ctx context.Context, companyID string, from, to time.Time) ([]domain.RevenueMonth, error) {
	args := m.Called(ctx, companyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RevenueMonth), args.Error(1)
}

func (m *MockReportingRepository) GetOpenDocumentDues(ctx context.Context, companyID string) ([]domain.OpenDocumentDue, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OpenDocumentDue), args.Error(1)
}

// --- Test Suite Setup ---
type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockExpenseRepo   *MockExpenseReader
	mockAuthorizer    *MockCompanyAuthorizer
	service           portssvc.ReportingService
	companyID         string
	userID            string
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.mockExpenseRepo = new(MockExpenseReader)
	suite.mockAuthorizer = new(MockCompanyAuthorizer)
	suite.service = services.NewReportingService(
		suite.mockReportingRepo,
		suite.mockExpenseRepo,
		services.WithReportingCompanyAuthorizer(suite.mockAuthorizer),
	)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
}

// --- Test Cases ---

func (suite *ReportingServiceTestSuite) TestRevenueSummary() {
	ctx := context.Background()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	rows := []domain.RevenueMonth{
		{Year: 2025, Month: 1, Subtotal: decimal.NewFromInt(1000), TaxAmount: decimal.NewFromInt(200), Total: decimal.NewFromInt(1200), DocumentCount: 2},
		{Year: 2025, Month: 2, Subtotal: decimal.NewFromInt(500), TaxAmount: decimal.NewFromInt(100), Total: decimal.NewFromInt(600), DocumentCount: 1},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockReportingRepo.On("GetRevenueByMonth", ctx, suite.companyID, from, to).Return(rows, nil).Once()

	result, err := suite.service.RevenueSummary(ctx, suite.companyID, from, to, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(rows, result)
}

func (suite *ReportingServiceTestSuite) TestRevenueSummary_EmptyNotNil() {
	ctx := context.Background()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockReportingRepo.On("GetRevenueByMonth", ctx, suite.companyID, mock.Anything, mock.Anything).Return(nil, nil).Once()

	result, err := suite.service.RevenueSummary(ctx, suite.companyID, time.Now().AddDate(0, -3, 0), time.Now(), suite.userID)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *ReportingServiceTestSuite) TestCashFlowForecast_Buckets() {
	ctx := context.Background()
	// 2025-03-05 is a Wednesday; the horizon starts Monday 2025-03-03.
	asOf := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	horizonStart := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	dues := []domain.OpenDocumentDue{
		{DocumentID: uuid.NewString(), DueDate: time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(300)},  // overdue -> week 0
		{DocumentID: uuid.NewString(), DueDate: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(600)},   // week 0
		{DocumentID: uuid.NewString(), DueDate: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(450)},  // week 1
		{DocumentID: uuid.NewString(), DueDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(9999)},  // beyond horizon
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockReportingRepo.On("GetOpenDocumentDues", ctx, suite.companyID).Return(dues, nil).Once()
	suite.mockExpenseRepo.On("FindApprovedExpenseTotalInRange", ctx, suite.companyID, horizonStart.AddDate(0, 0, -84), horizonStart).
		Return(decimal.NewFromInt(1200), nil).Once()

	weeks, err := suite.service.CashFlowForecast(ctx, suite.companyID, asOf, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(weeks, 12)

	suite.True(weeks[0].WeekStart.Equal(horizonStart))
	suite.True(decimal.NewFromInt(900).Equal(weeks[0].Inflow), "week 0 inflow was %s", weeks[0].Inflow)
	suite.True(decimal.NewFromInt(450).Equal(weeks[1].Inflow))
	suite.True(weeks[2].Inflow.IsZero())

	// 1200 trailing spend spread over 12 weeks.
	for _, w := range weeks {
		suite.True(decimal.NewFromInt(100).Equal(w.Outflow), "outflow was %s", w.Outflow)
	}
	suite.True(decimal.NewFromInt(800).Equal(weeks[0].Net))
	suite.True(decimal.NewFromInt(-100).Equal(weeks[11].Net))
	suite.True(weeks[11].WeekStart.Equal(horizonStart.AddDate(0, 0, 77)))
}

func (suite *ReportingServiceTestSuite) TestCashFlowForecast_AuthorizationFail() {
	ctx := context.Background()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.CashFlowForecast(ctx, suite.companyID, time.Now(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockReportingRepo.AssertNotCalled(suite.T(), "GetOpenDocumentDues", mock.Anything, mock.Anything)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}

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

// --- Mock ExportRepository ---
type MockExportRepository struct {
	mock.Mock
}

var _ portsrepo.ExportRepositoryFacade = (*MockExportRepository)(nil)

func (m *MockExportRepository) FindExportByID(ctx context.Context, companyID, exportID string) (*domain.ExportBatch, error) {
	args := m.Called(ctx, companyID, exportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportBatch), args.Error(1)
}

func (m *MockExportRepository) ListExportsByCompany(ctx context.Context, companyID string) ([]domain.ExportBatch, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExportBatch), args.Error(1)
}

func (m *MockExportRepository) SaveExport(ctx context.Context, batch domain.ExportBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

// --- Mock Workbook Renderer ---
type MockWorkbookRenderer struct {
	mock.Mock
}

var _ portssvc.ExportWorkbookRenderer = (*MockWorkbookRenderer)(nil)

func (m *MockWorkbookRenderer) RenderWorkbook(ctx context.Context, batch domain.ExportBatch, documents []domain.Document, expenses []domain.Expense) ([]byte, error) {
	args := m.Called(ctx, batch, documents, expenses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// --- Test Suite Setup ---
type ExportServiceTestSuite struct {
	suite.Suite
	mockExportRepo   *MockExportRepository
	mockDocumentRepo *MockDocumentRepository
	mockExpenseRepo  *MockExpenseReader
	mockWorkbook     *MockWorkbookRenderer
	mockAuthorizer   *MockCompanyAuthorizer
	service          portssvc.ExportSvc
	companyID        string
	adminID          string
}

func (suite *ExportServiceTestSuite) SetupTest() {
	suite.mockExportRepo = new(MockExportRepository)
	suite.mockDocumentRepo = new(MockDocumentRepository)
	suite.mockExpenseRepo = new(MockExpenseReader)
	suite.mockWorkbook = new(MockWorkbookRenderer)
	suite.mockAuthorizer = new(MockCompanyAuthorizer)
	suite.service = services.NewExportService(
		suite.mockExportRepo,
		suite.mockDocumentRepo,
		suite.mockExpenseRepo,
		suite.mockWorkbook,
		suite.mockAuthorizer,
	)

	suite.companyID = uuid.NewString()
	suite.adminID = uuid.NewString()
}

// --- Test Cases ---

func (suite *ExportServiceTestSuite) TestCreateExport_CollectsMonth() {
	ctx := context.Background()
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	documents := []domain.Document{
		{DocumentID: uuid.NewString(), Status: domain.DocumentIssued},
		{DocumentID: uuid.NewString(), Status: domain.DocumentPaid},
	}
	inMonth := domain.Expense{
		ExpenseID:   uuid.NewString(),
		ExpenseDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(50),
		Status:      domain.ExpenseApproved,
	}
	outOfMonth := domain.Expense{
		ExpenseID:   uuid.NewString(),
		ExpenseDate: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(70),
		Status:      domain.ExpenseApproved,
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.adminID, suite.companyID, domain.RoleAdmin).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentsInPeriod", ctx, suite.companyID, from, to).Return(documents, nil).Once()
	suite.mockExpenseRepo.On("FindUnbilledExpenses", ctx, suite.companyID, (*string)(nil)).Return([]domain.Expense{inMonth, outOfMonth}, nil).Once()

	var savedBatch domain.ExportBatch
	suite.mockExportRepo.On("SaveExport", ctx, mock.AnythingOfType("domain.ExportBatch")).
		Run(func(args mock.Arguments) {
			savedBatch = args.Get(1).(domain.ExportBatch)
		}).
		Return(nil).Once()

	batch, err := suite.service.CreateExport(ctx, suite.companyID, 2025, 3, suite.adminID)

	suite.Require().NoError(err)
	suite.Equal(2025, batch.Year)
	suite.Equal(3, batch.Month)
	suite.Len(batch.DocumentIDs, 2)
	suite.Equal([]string{inMonth.ExpenseID}, batch.ExpenseIDs) // the April expense stays out
	suite.Equal(batch.ExportID, savedBatch.ExportID)
	suite.mockExportRepo.AssertExpectations(suite.T())
}

func (suite *ExportServiceTestSuite) TestCreateExport_EmptyMonth() {
	ctx := context.Background()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.adminID, suite.companyID, domain.RoleAdmin).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentsInPeriod", ctx, suite.companyID, mock.Anything, mock.Anything).Return([]domain.Document{}, nil).Once()
	suite.mockExpenseRepo.On("FindUnbilledExpenses", ctx, suite.companyID, (*string)(nil)).Return([]domain.Expense{}, nil).Once()

	_, err := suite.service.CreateExport(ctx, suite.companyID, 2025, 5, suite.adminID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorIs(err, services.ErrNothingToExport)
	suite.mockExportRepo.AssertNotCalled(suite.T(), "SaveExport", mock.Anything, mock.Anything)
}

func (suite *ExportServiceTestSuite) TestCreateExport_NotAdmin() {
	ctx := context.Background()
	memberID := uuid.NewString()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, memberID, suite.companyID, domain.RoleAdmin).Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.CreateExport(ctx, suite.companyID, 2025, 3, memberID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *ExportServiceTestSuite) TestCreateExport_ConflictSurfaces() {
	ctx := context.Background()
	expense := domain.Expense{
		ExpenseID:   uuid.NewString(),
		ExpenseDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:      domain.ExpenseApproved,
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.adminID, suite.companyID, domain.RoleAdmin).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentsInPeriod", ctx, suite.companyID, mock.Anything, mock.Anything).Return([]domain.Document{}, nil).Once()
	suite.mockExpenseRepo.On("FindUnbilledExpenses", ctx, suite.companyID, (*string)(nil)).Return([]domain.Expense{expense}, nil).Once()
	suite.mockExportRepo.On("SaveExport", ctx, mock.AnythingOfType("domain.ExportBatch")).Return(apperrors.ErrConflict).Once()

	_, err := suite.service.CreateExport(ctx, suite.companyID, 2025, 3, suite.adminID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *ExportServiceTestSuite) TestRenderExportWorkbook() {
	ctx := context.Background()
	document := domain.Document{DocumentID: uuid.NewString(), Status: domain.DocumentIssued}
	expense := domain.Expense{ExpenseID: uuid.NewString(), Status: domain.ExpenseExported}
	batch := &domain.ExportBatch{
		ExportID:    uuid.NewString(),
		CompanyID:   suite.companyID,
		Year:        2025,
		Month:       3,
		DocumentIDs: []string{document.DocumentID},
		ExpenseIDs:  []string{expense.ExpenseID},
	}
	workbookBytes := []byte("PK fake xlsx")

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.adminID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockExportRepo.On("FindExportByID", ctx, suite.companyID, batch.ExportID).Return(batch, nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.companyID, document.DocumentID).Return(&document, nil).Once()
	suite.mockExpenseRepo.On("FindExpensesByIDs", ctx, suite.companyID, batch.ExpenseIDs).Return([]domain.Expense{expense}, nil).Once()
	suite.mockWorkbook.On("RenderWorkbook", ctx, *batch, []domain.Document{document}, []domain.Expense{expense}).Return(workbookBytes, nil).Once()

	rendered, filename, err := suite.service.RenderExportWorkbook(ctx, suite.companyID, batch.ExportID, suite.adminID)

	suite.Require().NoError(err)
	suite.Equal(workbookBytes, rendered)
	suite.Equal("export-2025-03.xlsx", filename)
}

func TestExportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExportServiceTestSuite))
}

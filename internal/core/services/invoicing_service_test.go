package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/core/services"
	"github.com/ostwerk/billable_app/internal/dto"
)

// --- Mock CompanyAuthorizer ---
type MockCompanyAuthorizer struct {
	mock.Mock
}

var _ portssvc.CompanyAuthorizerSvc = (*MockCompanyAuthorizer)(nil)

func (m *MockCompanyAuthorizer) AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.CompanyRole) error {
	args := m.Called(ctx, userID, companyID, requiredRole)
	return args.Error(0)
}

// --- Mock TimeEntryReader ---
type MockTimeEntryReader struct {
	mock.Mock
}

var _ portsrepo.TimeEntryReader = (*MockTimeEntryReader)(nil)

func (m *MockTimeEntryReader) FindTimeEntryByID(ctx context.Context, companyID, timeEntryID string) (*domain.TimeEntry, error) {
	args := m.Called(ctx, companyID, timeEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryReader) FindTimeEntriesByIDs(ctx context.Context, companyID string, timeEntryIDs []string) ([]domain.TimeEntry, error) {
	args := m.Called(ctx, companyID, timeEntryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryReader) ListTimeEntriesByProject(ctx context.Context, companyID, projectID string, limit int, nextToken *string) ([]domain.TimeEntry, *string, error) {
	args := m.Called(ctx, companyID, projectID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.TimeEntry), returnedNextToken, args.Error(2)
}

func (m *MockTimeEntryReader) ListTimeEntriesByUser(ctx context.Context, companyID, userID string, from, to time.Time) ([]domain.TimeEntry, error) {
	args := m.Called(ctx, companyID, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryReader) FindUnbilledTimeEntries(ctx context.Context, companyID string, customerID *string) ([]domain.TimeEntry, error) {
	args := m.Called(ctx, companyID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryReader) FindUnbilledTimeEntriesInRange(ctx context.Context, companyID, projectID string, from, to time.Time) ([]domain.TimeEntry, error) {
	args := m.Called(ctx, companyID, projectID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeEntry), args.Error(1)
}

// --- Mock ExpenseReader ---
type MockExpenseReader struct {
	mock.Mock
}

var _ portsrepo.ExpenseReader = (*MockExpenseReader)(nil)

func (m *MockExpenseReader) FindExpenseByID(ctx context.Context, companyID, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, companyID, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseReader) FindExpensesByIDs(ctx context.Context, companyID string, expenseIDs []string) ([]domain.Expense, error) {
	args := m.Called(ctx, companyID, expenseIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseReader) ListExpensesByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	args := m.Called(ctx, companyID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Expense), returnedNextToken, args.Error(2)
}

func (m *MockExpenseReader) FindUnbilledExpenses(ctx context.Context, companyID string, customerID *string) ([]domain.Expense, error) {
	args := m.Called(ctx, companyID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseReader) FindUnbilledExpensesInRange(ctx context.Context, companyID, projectID string, from, to time.Time) ([]domain.Expense, error) {
	args := m.Called(ctx, companyID, projectID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseReader) FindApprovedExpenseTotalInRange(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, companyID, from, to)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock CustomerReader ---
type MockCustomerReader struct {
	mock.Mock
}

var _ portsrepo.CustomerReader = (*MockCustomerReader)(nil)

func (m *MockCustomerReader) FindCustomerByID(ctx context.Context, companyID, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, companyID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerReader) ListCustomersByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Customer, *string, error) {
	args := m.Called(ctx, companyID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Customer), returnedNextToken, args.Error(2)
}

// --- Mock ProjectReader ---
type MockProjectReader struct {
	mock.Mock
}

var _ portsrepo.ProjectReader = (*MockProjectReader)(nil)

func (m *MockProjectReader) FindProjectByID(ctx context.Context, companyID, projectID string) (*domain.Project, error) {
	args := m.Called(ctx, companyID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectReader) ListProjectsByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Project, *string, error) {
	args := m.Called(ctx, companyID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Project), returnedNextToken, args.Error(2)
}

func (m *MockProjectReader) ListProjectsByCustomer(ctx context.Context, companyID, customerID string) ([]domain.Project, error) {
	args := m.Called(ctx, companyID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Project), args.Error(1)
}

// --- Mock CompanyReader ---
type MockCompanyReader struct {
	mock.Mock
}

var _ portsrepo.CompanyReader = (*MockCompanyReader)(nil)

func (m *MockCompanyReader) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyReader) ListCompaniesByUserID(ctx context.Context, userID string) ([]domain.Company, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Company), args.Error(1)
}

// --- Mock DocumentRepository (with tx) ---
type MockDocumentRepository struct {
	mock.Mock
}

var _ portsrepo.DocumentRepositoryWithTx = (*MockDocumentRepository)(nil)

func (m *MockDocumentRepository) FindDocumentByID(ctx context.Context, companyID, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, companyID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindDocumentLines(ctx context.Context, documentID string) ([]domain.DocumentLine, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentLine), args.Error(1)
}

func (m *MockDocumentRepository) ListDocumentsByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Document, *string, error) {
	args := m.Called(ctx, companyID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Document), returnedNextToken, args.Error(2)
}

func (m *MockDocumentRepository) FindDocumentsInPeriod(ctx context.Context, companyID string, from, to time.Time) ([]domain.Document, error) {
	args := m.Called(ctx, companyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindOverdueDocuments(ctx context.Context, asOf time.Time) ([]domain.Document, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) SaveDocument(ctx context.Context, document domain.Document, lines []domain.DocumentLine, timeEntryIDs []string) error {
	args := m.Called(ctx, document, lines, timeEntryIDs)
	return args.Error(0)
}

func (m *MockDocumentRepository) IssueDocument(ctx context.Context, companyID, documentID string, issueDate, dueDate time.Time, updatedBy string) (string, error) {
	args := m.Called(ctx, companyID, documentID, issueDate, dueDate, updatedBy)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentRepository) UpdateDocumentStatus(ctx context.Context, companyID, documentID string, status domain.DocumentStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, companyID, documentID, status, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockDocumentRepository) CancelDraftDocument(ctx context.Context, companyID, documentID string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, companyID, documentID, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindPaymentsByDocument(ctx context.Context, companyID, documentID string) ([]domain.Payment, error) {
	args := m.Called(ctx, companyID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockDocumentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockDocumentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockDocumentRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockDocumentRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Test Suite Setup ---
type InvoicingServiceTestSuite struct {
	suite.Suite
	mockTimeEntryRepo *MockTimeEntryReader
	mockExpenseRepo   *MockExpenseReader
	mockCustomerRepo  *MockCustomerReader
	mockProjectRepo   *MockProjectReader
	mockCompanyRepo   *MockCompanyReader
	mockDocumentRepo  *MockDocumentRepository
	mockAuthorizer    *MockCompanyAuthorizer
	service           portssvc.InvoicingSvcFacade
	companyID         string
	userID            string
	customer          domain.Customer
	projectWeb        domain.Project
	projectAPI        domain.Project
}

func (suite *InvoicingServiceTestSuite) SetupTest() {
	suite.mockTimeEntryRepo = new(MockTimeEntryReader)
	suite.mockExpenseRepo = new(MockExpenseReader)
	suite.mockCustomerRepo = new(MockCustomerReader)
	suite.mockProjectRepo = new(MockProjectReader)
	suite.mockCompanyRepo = new(MockCompanyReader)
	suite.mockDocumentRepo = new(MockDocumentRepository)
	suite.mockAuthorizer = new(MockCompanyAuthorizer)
	suite.service = services.NewInvoicingService(
		suite.mockTimeEntryRepo,
		suite.mockExpenseRepo,
		suite.mockCustomerRepo,
		suite.mockProjectRepo,
		suite.mockCompanyRepo,
		suite.mockDocumentRepo,
		suite.mockAuthorizer,
	)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.customer = domain.Customer{
		CustomerID:       uuid.NewString(),
		CompanyID:        suite.companyID,
		Name:             "Acme GmbH",
		DefaultTaxRate:   domain.TaxStandard20,
		PaymentTermsDays: 14,
		CurrencyCode:     "EUR",
		IsActive:         true,
	}
	suite.projectWeb = domain.Project{
		ProjectID:  uuid.NewString(),
		CompanyID:  suite.companyID,
		CustomerID: suite.customer.CustomerID,
		Name:       "Website",
		IsActive:   true,
	}
	suite.projectAPI = domain.Project{
		ProjectID:  uuid.NewString(),
		CompanyID:  suite.companyID,
		CustomerID: suite.customer.CustomerID,
		Name:       "API Integration",
		IsActive:   true,
	}
}

func (suite *InvoicingServiceTestSuite) approvedEntry(project domain.Project, hours, rate string, day int) domain.TimeEntry {
	return domain.TimeEntry{
		TimeEntryID:   uuid.NewString(),
		CompanyID:     suite.companyID,
		ProjectID:     project.ProjectID,
		UserID:        suite.userID,
		EntryDate:     time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		Hours:         decimal.RequireFromString(hours),
		IsBillable:    true,
		Status:        domain.TimeEntryApproved,
		ProjectName:   project.Name,
		CustomerName:  suite.customer.Name,
		EffectiveRate: decimal.RequireFromString(rate),
	}
}

func (suite *InvoicingServiceTestSuite) approvedExpense(amount, tax string, day int) domain.Expense {
	pid := suite.projectWeb.ProjectID
	return domain.Expense{
		ExpenseID:      uuid.NewString(),
		CompanyID:      suite.companyID,
		ProjectID:      &pid,
		UserID:         suite.userID,
		ExpenseDate:    time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		Amount:         decimal.RequireFromString(amount),
		TaxRate:        domain.TaxStandard20,
		TaxAmount:      decimal.RequireFromString(tax),
		Category:       domain.ExpenseTravel,
		Description:    "Train tickets",
		IsReimbursable: true,
		Status:         domain.ExpenseApproved,
	}
}

func entryIDs(entries []domain.TimeEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.TimeEntryID
	}
	return ids
}

func expenseIDs(expenses []domain.Expense) []string {
	ids := make([]string, len(expenses))
	for i, x := range expenses {
		ids[i] = x.ExpenseID
	}
	return ids
}

// --- Test Cases ---

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceFromEntries_GroupByProject() {
	ctx := context.Background()
	entries := []domain.TimeEntry{
		suite.approvedEntry(suite.projectWeb, "2.5", "100", 3),
		suite.approvedEntry(suite.projectWeb, "2.5", "100", 4),
		suite.approvedEntry(suite.projectAPI, "3", "80", 5),
	}
	req := dto.CreateInvoiceFromEntriesRequest{
		CustomerID:   suite.customer.CustomerID,
		TimeEntryIDs: entryIDs(entries),
		GroupBy:      domain.GroupByProject,
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntriesByIDs", ctx, suite.companyID, req.TimeEntryIDs).Return(entries, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectWeb.ProjectID).Return(&suite.projectWeb, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectAPI.ProjectID).Return(&suite.projectAPI, nil).Once()
	suite.mockExpenseRepo.On("FindExpensesByIDs", ctx, suite.companyID, []string(nil)).Return([]domain.Expense{}, nil).Once()

	var savedEntryIDs []string
	suite.mockDocumentRepo.On("SaveDocument", ctx, mock.AnythingOfType("domain.Document"), mock.AnythingOfType("[]domain.DocumentLine"), mock.AnythingOfType("[]string")).
		Run(func(args mock.Arguments) {
			savedEntryIDs = args.Get(3).([]string)
		}).
		Return(nil).Once()

	resp, err := suite.service.CreateInvoiceFromEntries(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.Equal(domain.DocumentDraft, resp.Document.Status)
	suite.Equal(domain.DocumentInvoice, resp.Document.DocumentType)
	suite.Equal("EUR", resp.Document.CurrencyCode)
	suite.Equal(14, resp.Document.PaymentTermsDays)
	suite.Nil(resp.Document.ProjectID) // lines span two projects

	suite.Require().Len(resp.Lines, 2)
	web := resp.Lines[0]
	suite.Equal(1, web.LineNumber)
	suite.Equal("Website (5 hours)", web.Description)
	suite.True(decimal.RequireFromString("5").Equal(web.Quantity))
	suite.Equal("h", web.Unit)
	suite.True(decimal.RequireFromString("100").Equal(web.UnitPrice))
	suite.True(decimal.RequireFromString("500").Equal(web.Subtotal))
	suite.True(decimal.RequireFromString("100").Equal(web.TaxAmount))
	suite.True(decimal.RequireFromString("600").Equal(web.Total))
	suite.ElementsMatch([]string{entries[0].TimeEntryID, entries[1].TimeEntryID}, web.TimeEntryIDs)

	api := resp.Lines[1]
	suite.Equal(2, api.LineNumber)
	suite.Equal("API Integration (3 hours)", api.Description)
	suite.True(decimal.RequireFromString("240").Equal(api.Subtotal))
	suite.True(decimal.RequireFromString("48").Equal(api.TaxAmount))

	suite.True(decimal.RequireFromString("740").Equal(resp.Document.Subtotal))
	suite.True(decimal.RequireFromString("148").Equal(resp.Document.TaxAmount))
	suite.True(decimal.RequireFromString("888").Equal(resp.Document.Total))
	suite.Require().Contains(resp.Document.TaxBreakdown, string(domain.TaxStandard20))
	suite.True(decimal.RequireFromString("148").Equal(resp.Document.TaxBreakdown[string(domain.TaxStandard20)]))

	suite.ElementsMatch(req.TimeEntryIDs, savedEntryIDs)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
	suite.mockAuthorizer.AssertExpectations(suite.T())
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceFromEntries_GroupedRoundingOnce() {
	// Three entries at 0.5h x 100.05 each: rounding per entry would yield
	// 50.03 x 3 = 150.09, rounding the summed value yields 150.08.
	ctx := context.Background()
	entries := []domain.TimeEntry{
		suite.approvedEntry(suite.projectWeb, "0.5", "100.05", 3),
		suite.approvedEntry(suite.projectWeb, "0.5", "100.05", 4),
		suite.approvedEntry(suite.projectWeb, "0.5", "100.05", 5),
	}
	req := dto.CreateInvoiceFromEntriesRequest{
		CustomerID:   suite.customer.CustomerID,
		TimeEntryIDs: entryIDs(entries),
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntriesByIDs", ctx, suite.companyID, req.TimeEntryIDs).Return(entries, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectWeb.ProjectID).Return(&suite.projectWeb, nil).Once()
	suite.mockExpenseRepo.On("FindExpensesByIDs", ctx, suite.companyID, []string(nil)).Return([]domain.Expense{}, nil).Once()
	suite.mockDocumentRepo.On("SaveDocument", ctx, mock.AnythingOfType("domain.Document"), mock.AnythingOfType("[]domain.DocumentLine"), mock.AnythingOfType("[]string")).Return(nil).Once()

	resp, err := suite.service.CreateInvoiceFromEntries(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Lines, 1)
	suite.True(decimal.RequireFromString("150.08").Equal(resp.Lines[0].Subtotal), "subtotal was %s", resp.Lines[0].Subtotal)
	suite.True(decimal.RequireFromString("30.02").Equal(resp.Lines[0].TaxAmount), "tax was %s", resp.Lines[0].TaxAmount)
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceFromEntries_GroupBySummary() {
	ctx := context.Background()
	entries := []domain.TimeEntry{
		suite.approvedEntry(suite.projectWeb, "2", "90", 3),
		suite.approvedEntry(suite.projectAPI, "1", "90", 4),
	}
	req := dto.CreateInvoiceFromEntriesRequest{
		CustomerID:   suite.customer.CustomerID,
		TimeEntryIDs: entryIDs(entries),
		GroupBy:      domain.GroupBySummary,
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntriesByIDs", ctx, suite.companyID, req.TimeEntryIDs).Return(entries, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectWeb.ProjectID).Return(&suite.projectWeb, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectAPI.ProjectID).Return(&suite.projectAPI, nil).Once()
	suite.mockExpenseRepo.On("FindExpensesByIDs", ctx, suite.companyID, []string(nil)).Return([]domain.Expense{}, nil).Once()
	suite.mockDocumentRepo.On("SaveDocument", ctx, mock.AnythingOfType("domain.Document"), mock.AnythingOfType("[]domain.DocumentLine"), mock.AnythingOfType("[]string")).Return(nil).Once()

	resp, err := suite.service.CreateInvoiceFromEntries(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	// Still one line per distinct project, but project names are hidden.
	suite.Require().Len(resp.Lines, 2)
	suite.Equal("Professional services", resp.Lines[0].Description)
	suite.Equal("Professional services", resp.Lines[1].Description)
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceFromEntries_GroupByEntry() {
	ctx := context.Background()
	entries := []domain.TimeEntry{
		suite.approvedEntry(suite.projectWeb, "1.5", "100", 3),
		suite.approvedEntry(suite.projectWeb, "2", "100", 4),
	}
	entries[0].Description = "Landing page"
	req := dto.CreateInvoiceFromEntriesRequest{
		CustomerID:   suite.customer.CustomerID,
		TimeEntryIDs: entryIDs(entries),
		GroupBy:      domain.GroupByEntry,
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntriesByIDs", ctx, suite.companyID, req.TimeEntryIDs).Return(entries, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectWeb.ProjectID).Return(&suite.projectWeb, nil).Once()
	suite.mockExpenseRepo.On("FindExpensesByIDs", ctx, suite.companyID, []string(nil)).Return([]domain.Expense{}, nil).Once()
	suite.mockDocumentRepo.On("SaveDocument", ctx, mock.AnythingOfType("domain.Document"), mock.AnythingOfType("[]domain.DocumentLine"), mock.AnythingOfType("[]string")).Return(nil).Once()

	resp, err := suite.service.CreateInvoiceFromEntries(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Lines, 2)
	suite.Equal("2025-03-03: Landing page", resp.Lines[0].Description)
	suite.Equal("2025-03-04: Website", resp.Lines[1].Description) // falls back to project name
	suite.True(decimal.RequireFromString("150").Equal(resp.Lines[0].Subtotal))
	suite.True(decimal.RequireFromString("30").Equal(resp.Lines[0].TaxAmount))
	suite.Equal([]string{entries[0].TimeEntryID}, resp.Lines[0].TimeEntryIDs)
	suite.Require().NotNil(resp.Document.ProjectID) // single project across all lines
	suite.Equal(suite.projectWeb.ProjectID, *resp.Document.ProjectID)
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceFromEntries_ExpenseKeepsStoredTax() {
	ctx := context.Background()
	entries := []domain.TimeEntry{suite.approvedEntry(suite.projectWeb, "1", "100", 3)}
	// Stored tax 19.20 deliberately differs from what the customer's 20%
	// rate would produce; the stored amount must win.
	expense := suite.approvedExpense("120.00", "19.20", 10)
	req := dto.CreateInvoiceFromEntriesRequest{
		CustomerID:   suite.customer.CustomerID,
		TimeEntryIDs: entryIDs(entries),
		ExpenseIDs:   []string{expense.ExpenseID},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntriesByIDs", ctx, suite.companyID, req.TimeEntryIDs).Return(entries, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectWeb.ProjectID).Return(&suite.projectWeb, nil)
	suite.mockExpenseRepo.On("FindExpensesByIDs", ctx, suite.companyID, req.ExpenseIDs).Return([]domain.Expense{expense}, nil).Once()
	suite.mockDocumentRepo.On("SaveDocument", ctx, mock.AnythingOfType("domain.Document"), mock.AnythingOfType("[]domain.DocumentLine"), mock.AnythingOfType("[]string")).Return(nil).Once()

	resp, err := suite.service.CreateInvoiceFromEntries(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Lines, 2)
	xl := resp.Lines[1]
	suite.Equal("Expense 2025-03-10: Train tickets", xl.Description)
	suite.True(decimal.RequireFromString("1").Equal(xl.Quantity))
	suite.Equal("pcs", xl.Unit)
	suite.True(decimal.RequireFromString("100.80").Equal(xl.Subtotal))
	suite.True(decimal.RequireFromString("19.20").Equal(xl.TaxAmount))
	suite.True(decimal.RequireFromString("120.00").Equal(xl.Total))
	suite.Equal([]string{expense.ExpenseID}, xl.ExpenseIDs)

	suite.True(decimal.RequireFromString("200.80").Equal(resp.Document.Subtotal))
	suite.True(decimal.RequireFromString("39.20").Equal(resp.Document.TaxAmount))
	suite.True(decimal.RequireFromString("240.00").Equal(resp.Document.Total))
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceFromEntries_ReverseChargeZeroTax() {
	ctx := context.Background()
	customer := suite.customer
	customer.ReverseCharge = true
	entries := []domain.TimeEntry{suite.approvedEntry(suite.projectWeb, "4", "125", 3)}
	req := dto.CreateInvoiceFromEntriesRequest{
		CustomerID:   customer.CustomerID,
		TimeEntryIDs: entryIDs(entries),
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, customer.CustomerID).Return(&customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntriesByIDs", ctx, suite.companyID, req.TimeEntryIDs).Return(entries, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectWeb.ProjectID).Return(&suite.projectWeb, nil).Once()
	suite.mockExpenseRepo.On("FindExpensesByIDs", ctx, suite.companyID, []string(nil)).Return([]domain.Expense{}, nil).Once()
	suite.mockDocumentRepo.On("SaveDocument", ctx, mock.AnythingOfType("domain.Document"), mock.AnythingOfType("[]domain.DocumentLine"), mock.AnythingOfType("[]string")).Return(nil).Once()

	resp, err := suite.service.CreateInvoiceFromEntries(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Lines, 1)
	suite.Equal(domain.TaxReverseCharge, resp.Lines[0].TaxRate)
	suite.True(resp.Lines[0].TaxAmount.IsZero())
	suite.True(decimal.RequireFromString("500").Equal(resp.Document.Subtotal))
	suite.True(resp.Document.TaxAmount.IsZero())
	suite.True(decimal.RequireFromString("500").Equal(resp.Document.Total))
	suite.Empty(resp.Document.TaxBreakdown) // zero-tax rates never appear in the breakdown
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceFromEntries_EmptySelection() {
	ctx := context.Background()
	req := dto.CreateInvoiceFromEntriesRequest{CustomerID: suite.customer.CustomerID}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()

	_, err := suite.service.CreateInvoiceFromEntries(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNothingToInvoice)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "SaveDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceFromEntries_MissingEntryAborts() {
	ctx := context.Background()
	entries := []domain.TimeEntry{suite.approvedEntry(suite.projectWeb, "1", "100", 3)}
	req := dto.CreateInvoiceFromEntriesRequest{
		CustomerID:   suite.customer.CustomerID,
		TimeEntryIDs: append(entryIDs(entries), uuid.NewString()), // one unknown ID
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntriesByIDs", ctx, suite.companyID, req.TimeEntryIDs).Return(entries, nil).Once()

	_, err := suite.service.CreateInvoiceFromEntries(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "SaveDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceFromEntries_IneligibleEntry() {
	ctx := context.Background()
	entry := suite.approvedEntry(suite.projectWeb, "1", "100", 3)
	docID := uuid.NewString()
	entry.DocumentID = &docID // already consumed by another invoice
	req := dto.CreateInvoiceFromEntriesRequest{
		CustomerID:   suite.customer.CustomerID,
		TimeEntryIDs: []string{entry.TimeEntryID},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntriesByIDs", ctx, suite.companyID, req.TimeEntryIDs).Return([]domain.TimeEntry{entry}, nil).Once()

	_, err := suite.service.CreateInvoiceFromEntries(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorIs(err, services.ErrEntryNotEligible)
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceFromEntries_WrongCustomer() {
	ctx := context.Background()
	otherProject := domain.Project{
		ProjectID:  uuid.NewString(),
		CompanyID:  suite.companyID,
		CustomerID: uuid.NewString(), // belongs to someone else
		Name:       "Foreign",
		IsActive:   true,
	}
	entry := suite.approvedEntry(otherProject, "1", "100", 3)
	req := dto.CreateInvoiceFromEntriesRequest{
		CustomerID:   suite.customer.CustomerID,
		TimeEntryIDs: []string{entry.TimeEntryID},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntriesByIDs", ctx, suite.companyID, req.TimeEntryIDs).Return([]domain.TimeEntry{entry}, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, otherProject.ProjectID).Return(&otherProject, nil).Once()

	_, err := suite.service.CreateInvoiceFromEntries(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrWrongCustomer)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "SaveDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceFromEntries_ConflictSurfaces() {
	ctx := context.Background()
	entries := []domain.TimeEntry{suite.approvedEntry(suite.projectWeb, "1", "100", 3)}
	req := dto.CreateInvoiceFromEntriesRequest{
		CustomerID:   suite.customer.CustomerID,
		TimeEntryIDs: entryIDs(entries),
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntriesByIDs", ctx, suite.companyID, req.TimeEntryIDs).Return(entries, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectWeb.ProjectID).Return(&suite.projectWeb, nil).Once()
	suite.mockExpenseRepo.On("FindExpensesByIDs", ctx, suite.companyID, []string(nil)).Return([]domain.Expense{}, nil).Once()
	suite.mockDocumentRepo.On("SaveDocument", ctx, mock.AnythingOfType("domain.Document"), mock.AnythingOfType("[]domain.DocumentLine"), mock.AnythingOfType("[]string")).
		Return(apperrors.ErrConflict).Once()

	_, err := suite.service.CreateInvoiceFromEntries(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceFromEntries_SaveFailureReturnsNoDocument() {
	ctx := context.Background()
	entries := []domain.TimeEntry{suite.approvedEntry(suite.projectWeb, "2", "90", 5)}
	req := dto.CreateInvoiceFromEntriesRequest{
		CustomerID:   suite.customer.CustomerID,
		TimeEntryIDs: entryIDs(entries),
	}

	// A failure anywhere inside the document/lines/link transaction rolls
	// everything back; the caller sees the error and no document.
	saveErr := errors.New("line insert failed")
	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntriesByIDs", ctx, suite.companyID, req.TimeEntryIDs).Return(entries, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectWeb.ProjectID).Return(&suite.projectWeb, nil).Once()
	suite.mockExpenseRepo.On("FindExpensesByIDs", ctx, suite.companyID, []string(nil)).Return([]domain.Expense{}, nil).Once()
	suite.mockDocumentRepo.On("SaveDocument", ctx, mock.AnythingOfType("domain.Document"), mock.AnythingOfType("[]domain.DocumentLine"), mock.AnythingOfType("[]string")).
		Return(saveErr).Once()

	resp, err := suite.service.CreateInvoiceFromEntries(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, saveErr)
	suite.Nil(resp)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceFromEntries_AuthorizationFail() {
	ctx := context.Background()
	req := dto.CreateInvoiceFromEntriesRequest{CustomerID: suite.customer.CustomerID}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.CreateInvoiceFromEntries(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockCustomerRepo.AssertNotCalled(suite.T(), "FindCustomerByID", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceForProjectMonth() {
	ctx := context.Background()
	entries := []domain.TimeEntry{
		suite.approvedEntry(suite.projectWeb, "8", "100", 3),
		suite.approvedEntry(suite.projectWeb, "2", "100", 17),
	}
	expense := suite.approvedExpense("60.00", "10.00", 20)
	req := dto.CreateInvoiceForProjectMonthRequest{
		ProjectID: suite.projectWeb.ProjectID,
		Year:      2025,
		Month:     3,
	}
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectWeb.ProjectID).Return(&suite.projectWeb, nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindUnbilledTimeEntriesInRange", ctx, suite.companyID, suite.projectWeb.ProjectID, from, to).Return(entries, nil).Once()
	suite.mockExpenseRepo.On("FindUnbilledExpensesInRange", ctx, suite.companyID, suite.projectWeb.ProjectID, from, to).Return([]domain.Expense{expense}, nil).Once()
	suite.mockDocumentRepo.On("SaveDocument", ctx, mock.AnythingOfType("domain.Document"), mock.AnythingOfType("[]domain.DocumentLine"), mock.AnythingOfType("[]string")).Return(nil).Once()

	resp, err := suite.service.CreateInvoiceForProjectMonth(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Lines, 2) // one grouped time line plus the expense
	suite.True(decimal.RequireFromString("1000").Equal(resp.Lines[0].Subtotal))
	suite.True(decimal.RequireFromString("60.00").Equal(resp.Lines[1].Total))
	suite.mockTimeEntryRepo.AssertExpectations(suite.T())
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceForProjectMonth_EmptyMonth() {
	ctx := context.Background()
	req := dto.CreateInvoiceForProjectMonthRequest{
		ProjectID: suite.projectWeb.ProjectID,
		Year:      2025,
		Month:     4,
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectWeb.ProjectID).Return(&suite.projectWeb, nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindUnbilledTimeEntriesInRange", ctx, suite.companyID, suite.projectWeb.ProjectID, mock.Anything, mock.Anything).Return([]domain.TimeEntry{}, nil).Once()
	suite.mockExpenseRepo.On("FindUnbilledExpensesInRange", ctx, suite.companyID, suite.projectWeb.ProjectID, mock.Anything, mock.Anything).Return([]domain.Expense{}, nil).Once()

	_, err := suite.service.CreateInvoiceForProjectMonth(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNothingToInvoice)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "SaveDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceForProjectMonth_TimeOnly() {
	ctx := context.Background()
	entries := []domain.TimeEntry{suite.approvedEntry(suite.projectWeb, "8", "100", 3)}
	includeExpenses := false
	req := dto.CreateInvoiceForProjectMonthRequest{
		ProjectID:       suite.projectWeb.ProjectID,
		Year:            2025,
		Month:           3,
		IncludeExpenses: &includeExpenses,
	}
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectWeb.ProjectID).Return(&suite.projectWeb, nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindUnbilledTimeEntriesInRange", ctx, suite.companyID, suite.projectWeb.ProjectID, from, to).Return(entries, nil).Once()
	suite.mockDocumentRepo.On("SaveDocument", ctx, mock.AnythingOfType("domain.Document"), mock.AnythingOfType("[]domain.DocumentLine"), mock.AnythingOfType("[]string")).Return(nil).Once()

	resp, err := suite.service.CreateInvoiceForProjectMonth(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Lines, 1)
	suite.True(decimal.RequireFromString("800").Equal(resp.Lines[0].Subtotal))
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "FindUnbilledExpensesInRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoicingServiceTestSuite) TestCreateInvoiceForProjectMonth_ExpensesOnly() {
	ctx := context.Background()
	expense := suite.approvedExpense("60.00", "10.00", 20)
	includeTime := false
	req := dto.CreateInvoiceForProjectMonthRequest{
		ProjectID:   suite.projectWeb.ProjectID,
		Year:        2025,
		Month:       3,
		IncludeTime: &includeTime,
	}
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectWeb.ProjectID).Return(&suite.projectWeb, nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockExpenseRepo.On("FindUnbilledExpensesInRange", ctx, suite.companyID, suite.projectWeb.ProjectID, from, to).Return([]domain.Expense{expense}, nil).Once()
	suite.mockDocumentRepo.On("SaveDocument", ctx, mock.AnythingOfType("domain.Document"), mock.AnythingOfType("[]domain.DocumentLine"), mock.AnythingOfType("[]string")).Return(nil).Once()

	resp, err := suite.service.CreateInvoiceForProjectMonth(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Lines, 1)
	suite.True(decimal.RequireFromString("60.00").Equal(resp.Lines[0].Total))
	suite.mockTimeEntryRepo.AssertNotCalled(suite.T(), "FindUnbilledTimeEntriesInRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoicingServiceTestSuite) TestPreviewInvoice_DoesNotPersist() {
	ctx := context.Background()
	entries := []domain.TimeEntry{suite.approvedEntry(suite.projectWeb, "3", "110", 3)}
	req := dto.CreateInvoiceFromEntriesRequest{
		CustomerID:   suite.customer.CustomerID,
		TimeEntryIDs: entryIDs(entries),
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntriesByIDs", ctx, suite.companyID, req.TimeEntryIDs).Return(entries, nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectWeb.ProjectID).Return(&suite.projectWeb, nil).Once()
	suite.mockExpenseRepo.On("FindExpensesByIDs", ctx, suite.companyID, []string(nil)).Return([]domain.Expense{}, nil).Once()

	preview, err := suite.service.PreviewInvoice(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("330").Equal(preview.Subtotal))
	suite.True(decimal.RequireFromString("66").Equal(preview.TaxAmount))
	suite.True(decimal.RequireFromString("396").Equal(preview.Total))
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "SaveDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoicingServiceTestSuite) TestGetUnbilledItemsForProjectMonth_Summary() {
	ctx := context.Background()
	entries := []domain.TimeEntry{
		suite.approvedEntry(suite.projectWeb, "4", "100", 3),
		suite.approvedEntry(suite.projectWeb, "2.5", "80", 10),
	}
	expense := suite.approvedExpense("50.00", "8.33", 12)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.projectWeb.ProjectID).Return(&suite.projectWeb, nil).Once()
	suite.mockTimeEntryRepo.On("FindUnbilledTimeEntriesInRange", ctx, suite.companyID, suite.projectWeb.ProjectID, from, to).Return(entries, nil).Once()
	suite.mockExpenseRepo.On("FindUnbilledExpensesInRange", ctx, suite.companyID, suite.projectWeb.ProjectID, from, to).Return([]domain.Expense{expense}, nil).Once()

	resp, err := suite.service.GetUnbilledItemsForProjectMonth(ctx, suite.companyID, suite.projectWeb.ProjectID, 2025, 3, suite.userID)

	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("6.5").Equal(resp.Summary.TotalHours))
	suite.True(decimal.RequireFromString("600").Equal(resp.Summary.TimeValue)) // 400 + 200
	suite.True(decimal.RequireFromString("50.00").Equal(resp.Summary.ExpenseValue))
	suite.True(decimal.RequireFromString("650").Equal(resp.Summary.EstimatedTotal))
	suite.Equal(2, resp.Summary.EntryCount)
	suite.Equal(1, resp.Summary.ExpenseCount)
}

func TestInvoicingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoicingServiceTestSuite))
}

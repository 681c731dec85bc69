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
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/core/services"
	"github.com/ostwerk/billable_app/internal/dto"
)

// --- Mock PDF Renderer ---
type MockPDFRenderer struct {
	mock.Mock
}

var _ portssvc.DocumentPDFRenderer = (*MockPDFRenderer)(nil)

func (m *MockPDFRenderer) RenderDocument(ctx context.Context, company domain.Company, customer domain.Customer, document domain.Document, lines []domain.DocumentLine) ([]byte, error) {
	args := m.Called(ctx, company, customer, document, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// --- Mock Mailer ---
type MockMailer struct {
	mock.Mock
}

var _ portssvc.Mailer = (*MockMailer)(nil)

func (m *MockMailer) Send(ctx context.Context, recipient, subject, body, attachmentName string, attachment []byte) error {
	args := m.Called(ctx, recipient, subject, body, attachmentName, attachment)
	return args.Error(0)
}

// --- Test Suite Setup ---
type DocumentServiceTestSuite struct {
	suite.Suite
	mockDocumentRepo *MockDocumentRepository
	mockCustomerRepo *MockCustomerReader
	mockCompanyRepo  *MockCompanyReader
	mockPDFRenderer  *MockPDFRenderer
	mockMailer       *MockMailer
	mockAuthorizer   *MockCompanyAuthorizer
	service          portssvc.DocumentSvcFacade
	companyID        string
	userID           string
	adminID          string
	customer         domain.Customer
	company          domain.Company
}

func (suite *DocumentServiceTestSuite) SetupTest() {
	suite.mockDocumentRepo = new(MockDocumentRepository)
	suite.mockCustomerRepo = new(MockCustomerReader)
	suite.mockCompanyRepo = new(MockCompanyReader)
	suite.mockPDFRenderer = new(MockPDFRenderer)
	suite.mockMailer = new(MockMailer)
	suite.mockAuthorizer = new(MockCompanyAuthorizer)
	suite.service = services.NewDocumentService(
		suite.mockDocumentRepo,
		suite.mockCustomerRepo,
		suite.mockCompanyRepo,
		suite.mockPDFRenderer,
		suite.mockMailer,
		suite.mockAuthorizer,
	)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.adminID = uuid.NewString()
	suite.customer = domain.Customer{
		CustomerID:   uuid.NewString(),
		CompanyID:    suite.companyID,
		Name:         "Acme GmbH",
		Email:        "billing@acme.example",
		CurrencyCode: "EUR",
	}
	suite.company = domain.Company{
		CompanyID:           suite.companyID,
		Name:                "Ostwerk Consulting",
		DefaultCurrencyCode: "EUR",
	}
}

func (suite *DocumentServiceTestSuite) documentWithStatus(status domain.DocumentStatus) *domain.Document {
	return &domain.Document{
		DocumentID:   uuid.NewString(),
		CompanyID:    suite.companyID,
		CustomerID:   suite.customer.CustomerID,
		DocumentType: domain.DocumentInvoice,
		Status:       status,
		Subtotal:     decimal.RequireFromString("500.00"),
		TaxAmount:    decimal.RequireFromString("100.00"),
		Total:        decimal.RequireFromString("600.00"),
		TaxBreakdown: map[domain.TaxRate]decimal.Decimal{
			domain.TaxStandard20: decimal.RequireFromString("100.00"),
		},
		CurrencyCode:     "EUR",
		PaymentTermsDays: 14,
	}
}

// --- Test Cases ---

func (suite *DocumentServiceTestSuite) TestIssueDocument_Success() {
	ctx := context.Background()
	document := suite.documentWithStatus(domain.DocumentDraft)
	issueDate := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC) // issue + 14 days terms
	req := dto.IssueDocumentRequest{IssueDate: &issueDate}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.companyID, document.DocumentID).Return(document, nil).Once()
	suite.mockDocumentRepo.On("IssueDocument", ctx, suite.companyID, document.DocumentID, issueDate, dueDate, suite.userID).Return("2025-0007", nil).Once()

	issued, err := suite.service.IssueDocument(ctx, suite.companyID, document.DocumentID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DocumentIssued, issued.Status)
	suite.Require().NotNil(issued.DocumentNumber)
	suite.Equal("2025-0007", *issued.DocumentNumber)
	suite.Require().NotNil(issued.DueDate)
	suite.True(issued.DueDate.Equal(dueDate))
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestIssueDocument_NotDraft() {
	ctx := context.Background()
	document := suite.documentWithStatus(domain.DocumentIssued)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.companyID, document.DocumentID).Return(document, nil).Once()

	_, err := suite.service.IssueDocument(ctx, suite.companyID, document.DocumentID, dto.IssueDocumentRequest{}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorIs(err, services.ErrNotDraft)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "IssueDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestIssueDocument_NumberRaceSurfaces() {
	ctx := context.Background()
	document := suite.documentWithStatus(domain.DocumentDraft)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.companyID, document.DocumentID).Return(document, nil).Once()
	suite.mockDocumentRepo.On("IssueDocument", ctx, suite.companyID, document.DocumentID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), suite.userID).Return("", apperrors.ErrConflict).Once()

	_, err := suite.service.IssueDocument(ctx, suite.companyID, document.DocumentID, dto.IssueDocumentRequest{}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *DocumentServiceTestSuite) TestRecordPayment_PartialKeepsIssued() {
	ctx := context.Background()
	document := suite.documentWithStatus(domain.DocumentIssued)
	req := dto.RecordPaymentRequest{Amount: decimal.RequireFromString("200.00")}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.companyID, document.DocumentID).Return(document, nil).Once()
	suite.mockDocumentRepo.On("SavePayment", ctx, mock.AnythingOfType("domain.Payment")).Return(nil).Once()
	suite.mockDocumentRepo.On("FindPaymentsByDocument", ctx, suite.companyID, document.DocumentID).Return([]domain.Payment{
		{Amount: decimal.RequireFromString("200.00")},
	}, nil).Once()

	updated, err := suite.service.RecordPayment(ctx, suite.companyID, document.DocumentID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DocumentIssued, updated.Status)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "UpdateDocumentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestRecordPayment_FullMarksPaid() {
	ctx := context.Background()
	document := suite.documentWithStatus(domain.DocumentIssued)
	req := dto.RecordPaymentRequest{Amount: decimal.RequireFromString("400.00")}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.companyID, document.DocumentID).Return(document, nil).Once()
	suite.mockDocumentRepo.On("SavePayment", ctx, mock.AnythingOfType("domain.Payment")).Return(nil).Once()
	suite.mockDocumentRepo.On("FindPaymentsByDocument", ctx, suite.companyID, document.DocumentID).Return([]domain.Payment{
		{Amount: decimal.RequireFromString("200.00")},
		{Amount: decimal.RequireFromString("400.00")},
	}, nil).Once()
	suite.mockDocumentRepo.On("UpdateDocumentStatus", ctx, suite.companyID, document.DocumentID, domain.DocumentPaid, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.RecordPayment(ctx, suite.companyID, document.DocumentID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DocumentPaid, updated.Status)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestRecordPayment_DraftRejected() {
	ctx := context.Background()
	document := suite.documentWithStatus(domain.DocumentDraft)
	req := dto.RecordPaymentRequest{Amount: decimal.NewFromInt(100)}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.companyID, document.DocumentID).Return(document, nil).Once()

	_, err := suite.service.RecordPayment(ctx, suite.companyID, document.DocumentID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotIssued)
}

func (suite *DocumentServiceTestSuite) TestCancelDocument_DraftReleasesEntries() {
	ctx := context.Background()
	document := suite.documentWithStatus(domain.DocumentDraft)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.adminID, suite.companyID, domain.RoleAdmin).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.companyID, document.DocumentID).Return(document, nil).Once()
	suite.mockDocumentRepo.On("CancelDraftDocument", ctx, suite.companyID, document.DocumentID, suite.adminID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.CancelDocument(ctx, suite.companyID, document.DocumentID, suite.adminID)

	suite.Require().NoError(err)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestCancelDocument_PaidRejected() {
	ctx := context.Background()
	document := suite.documentWithStatus(domain.DocumentPaid)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.adminID, suite.companyID, domain.RoleAdmin).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.companyID, document.DocumentID).Return(document, nil).Once()

	err := suite.service.CancelDocument(ctx, suite.companyID, document.DocumentID, suite.adminID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotCancellable)
}

func (suite *DocumentServiceTestSuite) TestCreateCreditNote_NegatesAmounts() {
	ctx := context.Background()
	number := "2025-0003"
	original := suite.documentWithStatus(domain.DocumentIssued)
	original.DocumentNumber = &number
	originalLines := []domain.DocumentLine{
		{
			LineID:      uuid.NewString(),
			DocumentID:  original.DocumentID,
			LineNumber:  1,
			Description: "Website (5 hours)",
			Quantity:    decimal.RequireFromString("5"),
			Unit:        "h",
			UnitPrice:   decimal.RequireFromString("100"),
			TaxRate:     domain.TaxStandard20,
			Subtotal:    decimal.RequireFromString("500.00"),
			TaxAmount:   decimal.RequireFromString("100.00"),
			Total:       decimal.RequireFromString("600.00"),
		},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.companyID, original.DocumentID).Return(original, nil).Once()
	suite.mockDocumentRepo.On("FindDocumentLines", ctx, original.DocumentID).Return(originalLines, nil).Once()

	var savedDocument domain.Document
	var savedEntryIDs []string
	suite.mockDocumentRepo.On("SaveDocument", ctx, mock.AnythingOfType("domain.Document"), mock.AnythingOfType("[]domain.DocumentLine"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedDocument = args.Get(1).(domain.Document)
			if ids, ok := args.Get(3).([]string); ok {
				savedEntryIDs = ids
			}
		}).
		Return(nil).Once()

	resp, err := suite.service.CreateCreditNote(ctx, suite.companyID, original.DocumentID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DocumentCreditNote, resp.Document.DocumentType)
	suite.Equal(domain.DocumentDraft, resp.Document.Status)
	suite.True(decimal.RequireFromString("-500.00").Equal(resp.Document.Subtotal))
	suite.True(decimal.RequireFromString("-100.00").Equal(resp.Document.TaxAmount))
	suite.True(decimal.RequireFromString("-600.00").Equal(resp.Document.Total))
	suite.Equal("Credit note for Invoice 2025-0003", resp.Document.Notes)

	suite.Require().Len(resp.Lines, 1)
	line := resp.Lines[0]
	suite.True(decimal.RequireFromString("-5").Equal(line.Quantity))
	suite.True(decimal.RequireFromString("100").Equal(line.UnitPrice)) // unit price keeps its sign
	suite.True(decimal.RequireFromString("-600.00").Equal(line.Total))
	suite.Empty(line.TimeEntryIDs) // sources stay consumed by the original invoice

	suite.True(savedDocument.Subtotal.IsNegative())
	suite.Nil(savedEntryIDs)
}

func (suite *DocumentServiceTestSuite) TestCreateCreditNote_DraftRejected() {
	ctx := context.Background()
	original := suite.documentWithStatus(domain.DocumentDraft)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.companyID, original.DocumentID).Return(original, nil).Once()

	_, err := suite.service.CreateCreditNote(ctx, suite.companyID, original.DocumentID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotCreditable)
}

func (suite *DocumentServiceTestSuite) TestSendDocument_DefaultsToCustomerEmail() {
	ctx := context.Background()
	number := "2025-0009"
	document := suite.documentWithStatus(domain.DocumentIssued)
	document.DocumentNumber = &number
	pdfBytes := []byte("%PDF-1.4 fake")

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.companyID, document.DocumentID).Return(document, nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockCompanyRepo.On("FindCompanyByID", ctx, suite.companyID).Return(&suite.company, nil).Once()
	suite.mockDocumentRepo.On("FindDocumentLines", ctx, document.DocumentID).Return([]domain.DocumentLine{}, nil).Once()
	suite.mockPDFRenderer.On("RenderDocument", ctx, suite.company, suite.customer, *document, []domain.DocumentLine{}).Return(pdfBytes, nil).Once()
	suite.mockMailer.On("Send", ctx, "billing@acme.example", "Invoice 2025-0009 from Ostwerk Consulting", mock.AnythingOfType("string"), "Invoice 2025-0009.pdf", pdfBytes).Return(nil).Once()

	err := suite.service.SendDocument(ctx, suite.companyID, document.DocumentID, dto.SendDocumentRequest{}, suite.userID)

	suite.Require().NoError(err)
	suite.mockMailer.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestSendDocument_NoRecipient() {
	ctx := context.Background()
	document := suite.documentWithStatus(domain.DocumentIssued)
	customer := suite.customer
	customer.Email = ""

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.companyID, document.DocumentID).Return(document, nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, customer.CustomerID).Return(&customer, nil).Once()
	suite.mockCompanyRepo.On("FindCompanyByID", ctx, suite.companyID).Return(&suite.company, nil).Once()

	err := suite.service.SendDocument(ctx, suite.companyID, document.DocumentID, dto.SendDocumentRequest{}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNoRecipient)
	suite.mockMailer.AssertNotCalled(suite.T(), "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestRenderDocumentPDF_DraftFilenameFallsBackToID() {
	ctx := context.Background()
	document := suite.documentWithStatus(domain.DocumentDraft)
	pdfBytes := []byte("%PDF-1.4 fake")

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.companyID, document.DocumentID).Return(document, nil).Once()
	suite.mockDocumentRepo.On("FindDocumentLines", ctx, document.DocumentID).Return([]domain.DocumentLine{}, nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockCompanyRepo.On("FindCompanyByID", ctx, suite.companyID).Return(&suite.company, nil).Once()
	suite.mockPDFRenderer.On("RenderDocument", ctx, suite.company, suite.customer, *document, []domain.DocumentLine{}).Return(pdfBytes, nil).Once()

	rendered, filename, err := suite.service.RenderDocumentPDF(ctx, suite.companyID, document.DocumentID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(pdfBytes, rendered)
	suite.Equal("Invoice "+document.DocumentID+".pdf", filename)
}

func TestDocumentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceTestSuite))
}

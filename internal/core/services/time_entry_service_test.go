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
	"github.com/ostwerk/billable_app/internal/dto"
)

// --- Mock TimeEntryRepository (reader + writer) ---
type MockTimeEntryRepository struct {
	MockTimeEntryReader
}

var _ portsrepo.TimeEntryRepositoryFacade = (*MockTimeEntryRepository)(nil)

func (m *MockTimeEntryRepository) SaveTimeEntry(ctx context.Context, entry domain.TimeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTimeEntryRepository) UpdateTimeEntry(ctx context.Context, entry domain.TimeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTimeEntryRepository) UpdateTimeEntryStatus(ctx context.Context, companyID, timeEntryID string, status domain.TimeEntryStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, companyID, timeEntryID, status, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockTimeEntryRepository) DeleteTimeEntry(ctx context.Context, companyID, timeEntryID string) error {
	args := m.Called(ctx, companyID, timeEntryID)
	return args.Error(0)
}

// --- Test Suite Setup ---
type TimeEntryServiceTestSuite struct {
	suite.Suite
	mockTimeEntryRepo *MockTimeEntryRepository
	mockProjectRepo   *MockProjectReader
	mockAuthorizer    *MockCompanyAuthorizer
	service           portssvc.TimeEntrySvcFacade
	companyID         string
	ownerID           string
	adminID           string
	project           domain.Project
}

func (suite *TimeEntryServiceTestSuite) SetupTest() {
	suite.mockTimeEntryRepo = new(MockTimeEntryRepository)
	suite.mockProjectRepo = new(MockProjectReader)
	suite.mockAuthorizer = new(MockCompanyAuthorizer)
	suite.service = services.NewTimeEntryService(suite.mockTimeEntryRepo, suite.mockProjectRepo, suite.mockAuthorizer)

	suite.companyID = uuid.NewString()
	suite.ownerID = uuid.NewString()
	suite.adminID = uuid.NewString()
	suite.project = domain.Project{
		ProjectID:  uuid.NewString(),
		CompanyID:  suite.companyID,
		CustomerID: uuid.NewString(),
		Name:       "Website",
		IsActive:   true,
	}
}

func (suite *TimeEntryServiceTestSuite) entryWithStatus(status domain.TimeEntryStatus) *domain.TimeEntry {
	return &domain.TimeEntry{
		TimeEntryID: uuid.NewString(),
		CompanyID:   suite.companyID,
		ProjectID:   suite.project.ProjectID,
		UserID:      suite.ownerID,
		EntryDate:   time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		Hours:       decimal.NewFromInt(2),
		IsBillable:  true,
		Status:      status,
	}
}

// --- Test Cases ---

func (suite *TimeEntryServiceTestSuite) TestCreateTimeEntry_Success() {
	ctx := context.Background()
	req := dto.CreateTimeEntryRequest{
		ProjectID:   suite.project.ProjectID,
		EntryDate:   time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		Hours:       decimal.RequireFromString("7.5"),
		Description: "Backend work",
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.ownerID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, suite.project.ProjectID).Return(&suite.project, nil).Once()
	suite.mockTimeEntryRepo.On("SaveTimeEntry", ctx, mock.AnythingOfType("domain.TimeEntry")).Return(nil).Once()

	entry, err := suite.service.CreateTimeEntry(ctx, suite.companyID, req, suite.ownerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.NotEmpty(entry.TimeEntryID)
	suite.Equal(domain.TimeEntryDraft, entry.Status)
	suite.True(entry.IsBillable) // defaults to true when omitted
	suite.Equal(suite.ownerID, entry.UserID)
	suite.Equal(suite.ownerID, entry.CreatedBy)
	suite.mockTimeEntryRepo.AssertExpectations(suite.T())
}

func (suite *TimeEntryServiceTestSuite) TestCreateTimeEntry_NonPositiveHours() {
	ctx := context.Background()
	req := dto.CreateTimeEntryRequest{
		ProjectID: suite.project.ProjectID,
		EntryDate: time.Now(),
		Hours:     decimal.Zero,
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.ownerID, suite.companyID, domain.RoleMember).Return(nil).Once()

	_, err := suite.service.CreateTimeEntry(ctx, suite.companyID, req, suite.ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorIs(err, services.ErrHoursNotPositive)
	suite.mockTimeEntryRepo.AssertNotCalled(suite.T(), "SaveTimeEntry", mock.Anything, mock.Anything)
}

func (suite *TimeEntryServiceTestSuite) TestCreateTimeEntry_InactiveProject() {
	ctx := context.Background()
	inactive := suite.project
	inactive.IsActive = false
	req := dto.CreateTimeEntryRequest{
		ProjectID: inactive.ProjectID,
		EntryDate: time.Now(),
		Hours:     decimal.NewFromInt(1),
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.ownerID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockProjectRepo.On("FindProjectByID", ctx, suite.companyID, inactive.ProjectID).Return(&inactive, nil).Once()

	_, err := suite.service.CreateTimeEntry(ctx, suite.companyID, req, suite.ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrProjectNotBillable)
}

func (suite *TimeEntryServiceTestSuite) TestSubmitTimeEntry_FromDraft() {
	ctx := context.Background()
	entry := suite.entryWithStatus(domain.TimeEntryDraft)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.ownerID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntryByID", ctx, suite.companyID, entry.TimeEntryID).Return(entry, nil).Once()
	suite.mockTimeEntryRepo.On("UpdateTimeEntryStatus", ctx, suite.companyID, entry.TimeEntryID, domain.TimeEntrySubmitted, suite.ownerID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.SubmitTimeEntry(ctx, suite.companyID, entry.TimeEntryID, suite.ownerID)

	suite.Require().NoError(err)
	suite.Equal(domain.TimeEntrySubmitted, updated.Status)
	suite.mockTimeEntryRepo.AssertExpectations(suite.T())
}

func (suite *TimeEntryServiceTestSuite) TestSubmitTimeEntry_NotOwner() {
	ctx := context.Background()
	entry := suite.entryWithStatus(domain.TimeEntryDraft)
	stranger := uuid.NewString()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, stranger, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntryByID", ctx, suite.companyID, entry.TimeEntryID).Return(entry, nil).Once()

	_, err := suite.service.SubmitTimeEntry(ctx, suite.companyID, entry.TimeEntryID, stranger)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.ErrorIs(err, services.ErrNotEntryOwner)
}

func (suite *TimeEntryServiceTestSuite) TestSubmitTimeEntry_Resubmission() {
	ctx := context.Background()
	entry := suite.entryWithStatus(domain.TimeEntryRejected)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.ownerID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntryByID", ctx, suite.companyID, entry.TimeEntryID).Return(entry, nil).Once()
	suite.mockTimeEntryRepo.On("UpdateTimeEntryStatus", ctx, suite.companyID, entry.TimeEntryID, domain.TimeEntrySubmitted, suite.ownerID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.SubmitTimeEntry(ctx, suite.companyID, entry.TimeEntryID, suite.ownerID)

	suite.Require().NoError(err)
	suite.Equal(domain.TimeEntrySubmitted, updated.Status)
}

func (suite *TimeEntryServiceTestSuite) TestApproveTimeEntry_Success() {
	ctx := context.Background()
	entry := suite.entryWithStatus(domain.TimeEntrySubmitted)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.adminID, suite.companyID, domain.RoleAdmin).Return(nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntryByID", ctx, suite.companyID, entry.TimeEntryID).Return(entry, nil).Once()
	suite.mockTimeEntryRepo.On("UpdateTimeEntryStatus", ctx, suite.companyID, entry.TimeEntryID, domain.TimeEntryApproved, suite.adminID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.ApproveTimeEntry(ctx, suite.companyID, entry.TimeEntryID, suite.adminID)

	suite.Require().NoError(err)
	suite.Equal(domain.TimeEntryApproved, updated.Status)
}

func (suite *TimeEntryServiceTestSuite) TestApproveTimeEntry_FromDraftRejected() {
	ctx := context.Background()
	entry := suite.entryWithStatus(domain.TimeEntryDraft)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.adminID, suite.companyID, domain.RoleAdmin).Return(nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntryByID", ctx, suite.companyID, entry.TimeEntryID).Return(entry, nil).Once()

	_, err := suite.service.ApproveTimeEntry(ctx, suite.companyID, entry.TimeEntryID, suite.adminID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorIs(err, services.ErrInvalidTransition)
	suite.mockTimeEntryRepo.AssertNotCalled(suite.T(), "UpdateTimeEntryStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TimeEntryServiceTestSuite) TestApproveTimeEntry_NotAdmin() {
	ctx := context.Background()
	entry := suite.entryWithStatus(domain.TimeEntrySubmitted)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.ownerID, suite.companyID, domain.RoleAdmin).Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.ApproveTimeEntry(ctx, suite.companyID, entry.TimeEntryID, suite.ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTimeEntryRepo.AssertNotCalled(suite.T(), "FindTimeEntryByID", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TimeEntryServiceTestSuite) TestRejectTimeEntry_Success() {
	ctx := context.Background()
	entry := suite.entryWithStatus(domain.TimeEntrySubmitted)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.adminID, suite.companyID, domain.RoleAdmin).Return(nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntryByID", ctx, suite.companyID, entry.TimeEntryID).Return(entry, nil).Once()
	suite.mockTimeEntryRepo.On("UpdateTimeEntryStatus", ctx, suite.companyID, entry.TimeEntryID, domain.TimeEntryRejected, suite.adminID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.RejectTimeEntry(ctx, suite.companyID, entry.TimeEntryID, suite.adminID)

	suite.Require().NoError(err)
	suite.Equal(domain.TimeEntryRejected, updated.Status)
}

func (suite *TimeEntryServiceTestSuite) TestInvoicedEntryIsTerminal() {
	ctx := context.Background()
	entry := suite.entryWithStatus(domain.TimeEntryInvoiced)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.ownerID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntryByID", ctx, suite.companyID, entry.TimeEntryID).Return(entry, nil).Once()

	_, err := suite.service.SubmitTimeEntry(ctx, suite.companyID, entry.TimeEntryID, suite.ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)
}

func (suite *TimeEntryServiceTestSuite) TestUpdateTimeEntry_DraftOnly() {
	ctx := context.Background()
	entry := suite.entryWithStatus(domain.TimeEntryApproved)
	newHours := decimal.NewFromInt(3)
	req := dto.UpdateTimeEntryRequest{Hours: &newHours}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.ownerID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntryByID", ctx, suite.companyID, entry.TimeEntryID).Return(entry, nil).Once()

	_, err := suite.service.UpdateTimeEntry(ctx, suite.companyID, entry.TimeEntryID, req, suite.ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryNotEditable)
	suite.mockTimeEntryRepo.AssertNotCalled(suite.T(), "UpdateTimeEntry", mock.Anything, mock.Anything)
}

func (suite *TimeEntryServiceTestSuite) TestUpdateTimeEntry_Success() {
	ctx := context.Background()
	entry := suite.entryWithStatus(domain.TimeEntryDraft)
	newHours := decimal.RequireFromString("4.25")
	newDesc := "Revised estimate"
	req := dto.UpdateTimeEntryRequest{Hours: &newHours, Description: &newDesc}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.ownerID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntryByID", ctx, suite.companyID, entry.TimeEntryID).Return(entry, nil).Once()
	suite.mockTimeEntryRepo.On("UpdateTimeEntry", ctx, mock.AnythingOfType("domain.TimeEntry")).Return(nil).Once()

	updated, err := suite.service.UpdateTimeEntry(ctx, suite.companyID, entry.TimeEntryID, req, suite.ownerID)

	suite.Require().NoError(err)
	suite.True(newHours.Equal(updated.Hours))
	suite.Equal(newDesc, updated.Description)
}

func (suite *TimeEntryServiceTestSuite) TestDeleteTimeEntry_NotOwner() {
	ctx := context.Background()
	entry := suite.entryWithStatus(domain.TimeEntryDraft)
	stranger := uuid.NewString()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, stranger, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockTimeEntryRepo.On("FindTimeEntryByID", ctx, suite.companyID, entry.TimeEntryID).Return(entry, nil).Once()

	err := suite.service.DeleteTimeEntry(ctx, suite.companyID, entry.TimeEntryID, stranger)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotEntryOwner)
	suite.mockTimeEntryRepo.AssertNotCalled(suite.T(), "DeleteTimeEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TimeEntryServiceTestSuite) TestListTimeEntriesByUser_OtherUserNeedsAdmin() {
	ctx := context.Background()
	target := uuid.NewString()
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.ownerID, suite.companyID, domain.RoleAdmin).Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.ListTimeEntriesByUser(ctx, suite.companyID, target, from, to, suite.ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAuthorizer.AssertExpectations(suite.T())
}

func TestTimeEntryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TimeEntryServiceTestSuite))
}

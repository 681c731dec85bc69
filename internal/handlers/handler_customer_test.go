package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
	"github.com/ostwerk/billable_app/internal/middleware"
)

// --- Mock CustomerService ---
type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) GetCustomerByID(ctx context.Context, companyID, customerID string, requestingUserID string) (*domain.Customer, error) {
	args := m.Called(ctx, companyID, customerID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerService) ListCustomers(ctx context.Context, companyID string, userID string, params dto.ListCustomersParams) (*dto.ListCustomersResponse, error) {
	args := m.Called(ctx, companyID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListCustomersResponse), args.Error(1)
}
func (m *MockCustomerService) CreateCustomer(ctx context.Context, companyID string, req dto.CreateCustomerRequest, creatorUserID string) (*domain.Customer, error) {
	args := m.Called(ctx, companyID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerService) UpdateCustomer(ctx context.Context, companyID, customerID string, req dto.UpdateCustomerRequest, requestingUserID string) (*domain.Customer, error) {
	args := m.Called(ctx, companyID, customerID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerService) DeactivateCustomer(ctx context.Context, companyID, customerID string, requestingUserID string) error {
	args := m.Called(ctx, companyID, customerID, requestingUserID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.CustomerSvcFacade = (*MockCustomerService)(nil)

// --- Mock ProjectService ---
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) GetProjectByID(ctx context.Context, companyID, projectID string, requestingUserID string) (*domain.Project, error) {
	args := m.Called(ctx, companyID, projectID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}
func (m *MockProjectService) ListProjects(ctx context.Context, companyID string, userID string, params dto.ListProjectsParams) (*dto.ListProjectsResponse, error) {
	args := m.Called(ctx, companyID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListProjectsResponse), args.Error(1)
}
func (m *MockProjectService) ListProjectsByCustomer(ctx context.Context, companyID, customerID string, requestingUserID string) ([]domain.Project, error) {
	args := m.Called(ctx, companyID, customerID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Project), args.Error(1)
}
func (m *MockProjectService) CreateProject(ctx context.Context, companyID string, req dto.CreateProjectRequest, creatorUserID string) (*domain.Project, error) {
	args := m.Called(ctx, companyID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}
func (m *MockProjectService) UpdateProject(ctx context.Context, companyID, projectID string, req dto.UpdateProjectRequest, requestingUserID string) (*domain.Project, error) {
	args := m.Called(ctx, companyID, projectID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}
func (m *MockProjectService) DeactivateProject(ctx context.Context, companyID, projectID string, requestingUserID string) error {
	args := m.Called(ctx, companyID, projectID, requestingUserID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.ProjectSvcFacade = (*MockProjectService)(nil)

// --- Test Suite ---
type CustomerHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockCustomerService *MockCustomerService
	mockProjectService  *MockProjectService
	jwtSecret           string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *CustomerHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "billable-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedString, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signedString
}

func (suite *CustomerHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	registerCustomValidators()
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	// Use the actual AuthMiddleware
	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockCustomerService = new(MockCustomerService)
	suite.mockProjectService = new(MockProjectService)

	v1 := suite.router.Group("/api/v1/companies/:company_id")
	registerCustomerRoutes(v1, suite.mockCustomerService, suite.mockProjectService)
}

// --- Test Cases ---

func (suite *CustomerHandlerTestSuite) TestListCustomers_Success() {
	companyID := uuid.NewString()
	requestingUserID := uuid.NewString()
	limit := 10

	expectedCustomers := []dto.CustomerResponse{
		{
			CustomerID:       uuid.NewString(),
			CompanyID:        companyID,
			Name:             "Acme GmbH",
			DefaultTaxRate:   domain.TaxStandard20,
			PaymentTermsDays: 30,
			CurrencyCode:     "EUR",
			IsActive:         true,
		},
		{
			CustomerID:       uuid.NewString(),
			CompanyID:        companyID,
			Name:             "Nordwind AB",
			DefaultTaxRate:   domain.TaxReverseCharge,
			ReverseCharge:    true,
			PaymentTermsDays: 14,
			CurrencyCode:     "SEK",
			IsActive:         true,
		},
	}
	expectedResponse := &dto.ListCustomersResponse{
		Customers: expectedCustomers,
		NextToken: nil,
	}

	suite.mockCustomerService.On("ListCustomers",
		mock.AnythingOfType("*context.valueCtx"),
		companyID,
		requestingUserID,
		mock.MatchedBy(func(p dto.ListCustomersParams) bool {
			return p.Limit == limit
		}),
	).Return(expectedResponse, nil).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/customers?limit=%d", companyID, limit)
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	token := suite.generateTestToken(requestingUserID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code, "Expected status OK")

	var responseBody dto.ListCustomersResponse
	err := json.Unmarshal(w.Body.Bytes(), &responseBody)
	suite.NoError(err, "Failed to unmarshal response body")
	suite.Len(responseBody.Customers, len(expectedCustomers))
	if len(responseBody.Customers) == len(expectedCustomers) {
		suite.Equal(expectedCustomers[0].CustomerID, responseBody.Customers[0].CustomerID)
		suite.Equal(expectedCustomers[1].CustomerID, responseBody.Customers[1].CustomerID)
	}

	suite.mockCustomerService.AssertExpectations(suite.T())
	suite.mockProjectService.AssertNotCalled(suite.T(), "ListProjectsByCustomer")
}

func (suite *CustomerHandlerTestSuite) TestGetCustomer_NotFound() {
	companyID := uuid.NewString()
	customerID := uuid.NewString()
	requestingUserID := uuid.NewString()

	suite.mockCustomerService.On("GetCustomerByID",
		mock.AnythingOfType("*context.valueCtx"),
		companyID,
		customerID,
		requestingUserID,
	).Return(nil, apperrors.NewNotFoundError("customer not found")).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/customers/%s", companyID, customerID)
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(requestingUserID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code, "Expected status Not Found")
	suite.mockCustomerService.AssertExpectations(suite.T())
}

func (suite *CustomerHandlerTestSuite) TestCreateCustomer_Success() {
	companyID := uuid.NewString()
	requestingUserID := uuid.NewString()

	reqBody := dto.CreateCustomerRequest{
		Name:             "Acme GmbH",
		Email:            "billing@acme.example",
		VATNumber:        "ATU12345678",
		DefaultTaxRate:   domain.TaxStandard20,
		PaymentTermsDays: 30,
		CurrencyCode:     "EUR",
	}
	createdCustomer := &domain.Customer{
		CustomerID:       uuid.NewString(),
		CompanyID:        companyID,
		Name:             reqBody.Name,
		Email:            reqBody.Email,
		VATNumber:        reqBody.VATNumber,
		DefaultTaxRate:   reqBody.DefaultTaxRate,
		PaymentTermsDays: reqBody.PaymentTermsDays,
		CurrencyCode:     reqBody.CurrencyCode,
		IsActive:         true,
	}

	suite.mockCustomerService.On("CreateCustomer",
		mock.AnythingOfType("*context.valueCtx"),
		companyID,
		mock.MatchedBy(func(r dto.CreateCustomerRequest) bool {
			return r.Name == reqBody.Name && r.DefaultTaxRate == domain.TaxStandard20
		}),
		requestingUserID,
	).Return(createdCustomer, nil).Once()

	bodyBytes, err := json.Marshal(reqBody)
	suite.Require().NoError(err)

	url := fmt.Sprintf("/api/v1/companies/%s/customers", companyID)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(bodyBytes))
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(requestingUserID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code, "Expected status Created")

	var responseBody dto.CustomerResponse
	err = json.Unmarshal(w.Body.Bytes(), &responseBody)
	suite.NoError(err, "Failed to unmarshal response body")
	suite.Equal(createdCustomer.CustomerID, responseBody.CustomerID)
	suite.Equal(createdCustomer.Name, responseBody.Name)
	suite.Equal(domain.TaxStandard20, responseBody.DefaultTaxRate)

	suite.mockCustomerService.AssertExpectations(suite.T())
}

func (suite *CustomerHandlerTestSuite) TestCreateCustomer_ValidationError() {
	companyID := uuid.NewString()
	requestingUserID := uuid.NewString()

	// Name is required; an invalid tax rate must also be rejected by binding.
	body := `{"email":"not-an-email","defaultTaxRate":"HALF_PRICE"}`

	url := fmt.Sprintf("/api/v1/companies/%s/customers", companyID)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(body)))
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(requestingUserID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code, "Expected status Bad Request")
	suite.mockCustomerService.AssertNotCalled(suite.T(), "CreateCustomer")
}

func (suite *CustomerHandlerTestSuite) TestDeactivateCustomer_Forbidden() {
	companyID := uuid.NewString()
	customerID := uuid.NewString()
	requestingUserID := uuid.NewString()

	suite.mockCustomerService.On("DeactivateCustomer",
		mock.AnythingOfType("*context.valueCtx"),
		companyID,
		customerID,
		requestingUserID,
	).Return(apperrors.ErrForbidden).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/customers/%s", companyID, customerID)
	req, _ := http.NewRequest(http.MethodDelete, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(requestingUserID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusForbidden, w.Code, "Expected status Forbidden")
	suite.mockCustomerService.AssertExpectations(suite.T())
}

func (suite *CustomerHandlerTestSuite) TestListCustomerProjects_Success() {
	companyID := uuid.NewString()
	customerID := uuid.NewString()
	requestingUserID := uuid.NewString()

	expectedProjects := []domain.Project{
		{
			ProjectID:  uuid.NewString(),
			CompanyID:  companyID,
			CustomerID: customerID,
			Name:       "Website relaunch",
			IsActive:   true,
		},
	}

	suite.mockProjectService.On("ListProjectsByCustomer",
		mock.AnythingOfType("*context.valueCtx"),
		companyID,
		customerID,
		requestingUserID,
	).Return(expectedProjects, nil).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/customers/%s/projects", companyID, customerID)
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(requestingUserID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code, "Expected status OK")

	var responseBody []dto.ProjectResponse
	err := json.Unmarshal(w.Body.Bytes(), &responseBody)
	suite.NoError(err, "Failed to unmarshal response body")
	suite.Len(responseBody, 1)
	if len(responseBody) == 1 {
		suite.Equal(expectedProjects[0].ProjectID, responseBody[0].ProjectID)
	}

	suite.mockProjectService.AssertExpectations(suite.T())
}

func (suite *CustomerHandlerTestSuite) TestListCustomers_Unauthenticated() {
	companyID := uuid.NewString()

	url := fmt.Sprintf("/api/v1/companies/%s/customers", companyID)
	req, _ := http.NewRequest(http.MethodGet, url, nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code, "Expected status Unauthorized")
	suite.mockCustomerService.AssertNotCalled(suite.T(), "ListCustomers")
}

// --- Run Test Suite ---
func TestCustomerHandler(t *testing.T) {
	suite.Run(t, new(CustomerHandlerTestSuite))
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
)

// customerService handles customer management within a company.
type customerService struct {
	BaseService
	customerRepo portsrepo.CustomerRepositoryFacade
	companyRepo  portsrepo.CompanyReader
}

// NewCustomerService creates a new customer service.
func NewCustomerService(customerRepo portsrepo.CustomerRepositoryFacade, companyRepo portsrepo.CompanyReader, authorizer portssvc.CompanyAuthorizerSvc) portssvc.CustomerSvcFacade {
	return &customerService{
		BaseService:  BaseService{CompanyAuthorizer: authorizer},
		customerRepo: customerRepo,
		companyRepo:  companyRepo,
	}
}

var _ portssvc.CustomerSvcFacade = (*customerService)(nil)

// CreateCustomer persists a new customer. Requires MEMBER role.
func (s *customerService) CreateCustomer(ctx context.Context, companyID string, req dto.CreateCustomerRequest, creatorUserID string) (*domain.Customer, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	currency := req.CurrencyCode
	if currency == "" {
		company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve company currency: %w", err)
		}
		currency = company.DefaultCurrencyCode
	}

	terms := req.PaymentTermsDays
	if terms == 0 {
		terms = 30
	}

	now := time.Now()
	customer := domain.Customer{
		CustomerID:       uuid.NewString(),
		CompanyID:        companyID,
		Name:             req.Name,
		Email:            req.Email,
		Address:          req.Address,
		VATNumber:        req.VATNumber,
		DefaultTaxRate:   req.DefaultTaxRate,
		TaxExempt:        req.TaxExempt,
		ReverseCharge:    req.ReverseCharge,
		PaymentTermsDays: terms,
		CurrencyCode:     currency,
		IsActive:         true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.customerRepo.SaveCustomer(ctx, customer); err != nil {
		s.LogError(ctx, err, "Failed to save customer in repository", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.LogInfo(ctx, "Customer created successfully", slog.String("customer_id", customer.CustomerID), slog.String("company_id", companyID))
	return &customer, nil
}

// GetCustomerByID retrieves a customer. Requires READONLY role.
func (s *customerService) GetCustomerByID(ctx context.Context, companyID, customerID string, requestingUserID string) (*domain.Customer, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.FindCustomerByID(ctx, companyID, customerID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find customer by ID in repository", slog.String("customer_id", customerID))
		}
		return nil, err
	}
	return customer, nil
}

// ListCustomers retrieves a paginated list of customers in a company.
func (s *customerService) ListCustomers(ctx context.Context, companyID string, userID string, params dto.ListCustomersParams) (*dto.ListCustomersResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	customers, nextToken, err := s.customerRepo.ListCustomersByCompany(ctx, companyID, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list customers from repository", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	resp := dto.ToListCustomersResponse(customers, nextToken)
	return &resp, nil
}

// UpdateCustomer updates customer details. Requires MEMBER role.
func (s *customerService) UpdateCustomer(ctx context.Context, companyID, customerID string, req dto.UpdateCustomerRequest, requestingUserID string) (*domain.Customer, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.FindCustomerByID(ctx, companyID, customerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.VATNumber != nil {
		customer.VATNumber = *req.VATNumber
	}
	if req.DefaultTaxRate != nil {
		customer.DefaultTaxRate = *req.DefaultTaxRate
	}
	if req.TaxExempt != nil {
		customer.TaxExempt = *req.TaxExempt
	}
	if req.ReverseCharge != nil {
		customer.ReverseCharge = *req.ReverseCharge
	}
	if req.PaymentTermsDays != nil {
		customer.PaymentTermsDays = *req.PaymentTermsDays
	}
	customer.LastUpdatedAt = time.Now()
	customer.LastUpdatedBy = requestingUserID

	if err := s.customerRepo.UpdateCustomer(ctx, *customer); err != nil {
		s.LogError(ctx, err, "Failed to update customer in repository", slog.String("customer_id", customerID))
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

// DeactivateCustomer marks a customer inactive. Requires ADMIN role.
func (s *customerService) DeactivateCustomer(ctx context.Context, companyID, customerID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.customerRepo.DeactivateCustomer(ctx, companyID, customerID, requestingUserID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to deactivate customer", slog.String("customer_id", customerID))
		}
		return err
	}
	s.LogInfo(ctx, "Customer deactivated", slog.String("customer_id", customerID), slog.String("company_id", companyID))
	return nil
}

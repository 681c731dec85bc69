package services

import (
	"context"

	"github.com/ostwerk/billable_app/internal/core/domain"
	"github.com/ostwerk/billable_app/internal/dto"
)

// CustomerReaderSvc defines read operations for customer data
type CustomerReaderSvc interface {
	// GetCustomerByID retrieves a specific customer.
	GetCustomerByID(ctx context.Context, companyID, customerID string, requestingUserID string) (*domain.Customer, error)

	// ListCustomers retrieves a paginated list of customers in a company.
	ListCustomers(ctx context.Context, companyID string, userID string, params dto.ListCustomersParams) (*dto.ListCustomersResponse, error)
}

// CustomerWriterSvc defines write operations for customer data
type CustomerWriterSvc interface {
	// CreateCustomer persists a new customer.
	CreateCustomer(ctx context.Context, companyID string, req dto.CreateCustomerRequest, creatorUserID string) (*domain.Customer, error)

	// UpdateCustomer updates customer details.
	UpdateCustomer(ctx context.Context, companyID, customerID string, req dto.UpdateCustomerRequest, requestingUserID string) (*domain.Customer, error)

	// DeactivateCustomer marks a customer inactive.
	DeactivateCustomer(ctx context.Context, companyID, customerID string, requestingUserID string) error
}

// CustomerSvcFacade combines all customer-related service interfaces
type CustomerSvcFacade interface {
	CustomerReaderSvc
	CustomerWriterSvc
}

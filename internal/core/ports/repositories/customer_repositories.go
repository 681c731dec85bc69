package repositories

import (
	"context"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// CustomerReader defines read operations for customer data
type CustomerReader interface {
	// FindCustomerByID retrieves a specific customer within a company.
	FindCustomerByID(ctx context.Context, companyID, customerID string) (*domain.Customer, error)

	// ListCustomersByCompany retrieves a paginated list of customers for a company using token-based pagination.
	// It returns the customers, a token for the next page, and an error.
	ListCustomersByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Customer, *string, error)
}

// CustomerWriter defines write operations for customer data
type CustomerWriter interface {
	// SaveCustomer persists a new customer.
	SaveCustomer(ctx context.Context, customer domain.Customer) error

	// UpdateCustomer updates an existing customer's details.
	UpdateCustomer(ctx context.Context, customer domain.Customer) error

	// DeactivateCustomer marks a customer inactive (soft delete).
	DeactivateCustomer(ctx context.Context, companyID, customerID string, updatedBy string) error
}

// CustomerRepositoryFacade combines all customer-related repository interfaces
// This is a facade for clients that need access to all operations
type CustomerRepositoryFacade interface {
	CustomerReader
	CustomerWriter
}

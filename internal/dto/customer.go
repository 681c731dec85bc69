package dto

import (
	"github.com/ostwerk/billable_app/internal/core/domain"
)

// CreateCustomerRequest defines data for creating a new customer.
type CreateCustomerRequest struct {
	Name             string         `json:"name" binding:"required"`
	Email            string         `json:"email" binding:"omitempty,email"`
	Address          string         `json:"address"`
	VATNumber        string         `json:"vatNumber"`
	DefaultTaxRate   domain.TaxRate `json:"defaultTaxRate" binding:"omitempty,taxrate"`
	TaxExempt        bool           `json:"taxExempt"`
	ReverseCharge    bool           `json:"reverseCharge"`
	PaymentTermsDays int            `json:"paymentTermsDays" binding:"omitempty,min=0,max=365"`
	CurrencyCode     string         `json:"currencyCode" binding:"omitempty,iso4217"`
}

// UpdateCustomerRequest defines the updatable fields of a customer.
type UpdateCustomerRequest struct {
	Name             *string         `json:"name"`
	Email            *string         `json:"email" binding:"omitempty,email"`
	Address          *string         `json:"address"`
	VATNumber        *string         `json:"vatNumber"`
	DefaultTaxRate   *domain.TaxRate `json:"defaultTaxRate" binding:"omitempty,taxrate"`
	TaxExempt        *bool           `json:"taxExempt"`
	ReverseCharge    *bool           `json:"reverseCharge"`
	PaymentTermsDays *int            `json:"paymentTermsDays" binding:"omitempty,min=0,max=365"`
}

// ListCustomersParams defines query parameters for listing customers.
type ListCustomersParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// CustomerResponse defines data returned for a customer.
type CustomerResponse struct {
	CustomerID       string         `json:"customerID"`
	CompanyID        string         `json:"companyID"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	Address          string         `json:"address"`
	VATNumber        string         `json:"vatNumber"`
	DefaultTaxRate   domain.TaxRate `json:"defaultTaxRate"`
	TaxExempt        bool           `json:"taxExempt"`
	ReverseCharge    bool           `json:"reverseCharge"`
	PaymentTermsDays int            `json:"paymentTermsDays"`
	CurrencyCode     string         `json:"currencyCode"`
	IsActive         bool           `json:"isActive"`
}

// ToCustomerResponse converts domain.Customer to DTO.
func ToCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID:       c.CustomerID,
		CompanyID:        c.CompanyID,
		Name:             c.Name,
		Email:            c.Email,
		Address:          c.Address,
		VATNumber:        c.VATNumber,
		DefaultTaxRate:   c.DefaultTaxRate,
		TaxExempt:        c.TaxExempt,
		ReverseCharge:    c.ReverseCharge,
		PaymentTermsDays: c.PaymentTermsDays,
		CurrencyCode:     c.CurrencyCode,
		IsActive:         c.IsActive,
	}
}

// ListCustomersResponse wraps a paginated list of customers.
type ListCustomersResponse struct {
	Customers []CustomerResponse `json:"customers"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ToListCustomersResponse converts a slice of domain.Customer to DTO.
func ToListCustomersResponse(cs []domain.Customer, nextToken *string) ListCustomersResponse {
	list := make([]CustomerResponse, len(cs))
	for i, c := range cs {
		list[i] = ToCustomerResponse(&c)
	}
	return ListCustomersResponse{Customers: list, NextToken: nextToken}
}

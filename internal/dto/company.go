package dto

import (
	"time"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// --- Company DTOs ---

// CreateCompanyRequest defines data for creating a new company.
type CreateCompanyRequest struct {
	Name                string `json:"name" binding:"required"`
	LegalName           string `json:"legalName"`
	Address             string `json:"address"`
	VATNumber           string `json:"vatNumber"`
	DefaultCurrencyCode string `json:"defaultCurrencyCode" binding:"required,iso4217"`
	InvoiceNumberPrefix string `json:"invoiceNumberPrefix"`
}

// UpdateCompanyRequest defines the updatable fields of a company.
// Pointers differentiate omitted fields from zero values.
type UpdateCompanyRequest struct {
	Name                *string `json:"name"`
	LegalName           *string `json:"legalName"`
	Address             *string `json:"address"`
	VATNumber           *string `json:"vatNumber"`
	InvoiceNumberPrefix *string `json:"invoiceNumberPrefix"`
}

// CompanyResponse defines data returned for a company.
type CompanyResponse struct {
	CompanyID           string    `json:"companyID"`
	Name                string    `json:"name"`
	LegalName           string    `json:"legalName"`
	Address             string    `json:"address"`
	VATNumber           string    `json:"vatNumber"`
	DefaultCurrencyCode string    `json:"defaultCurrencyCode"`
	InvoiceNumberPrefix string    `json:"invoiceNumberPrefix"`
	CreatedAt           time.Time `json:"createdAt"`
	CreatedBy           string    `json:"createdBy"` // UserID
	LastUpdatedAt       time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy       string    `json:"lastUpdatedBy"` // UserID
}

// ToCompanyResponse converts domain.Company to DTO.
func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:           c.CompanyID,
		Name:                c.Name,
		LegalName:           c.LegalName,
		Address:             c.Address,
		VATNumber:           c.VATNumber,
		DefaultCurrencyCode: c.DefaultCurrencyCode,
		InvoiceNumberPrefix: c.InvoiceNumberPrefix,
		CreatedAt:           c.CreatedAt,
		CreatedBy:           c.CreatedBy,
		LastUpdatedAt:       c.LastUpdatedAt,
		LastUpdatedBy:       c.LastUpdatedBy,
	}
}

// ListCompaniesResponse wraps a list of companies.
type ListCompaniesResponse struct {
	Companies []CompanyResponse `json:"companies"`
}

// ToListCompaniesResponse converts a slice of domain.Company to DTO.
func ToListCompaniesResponse(cs []domain.Company) ListCompaniesResponse {
	list := make([]CompanyResponse, len(cs))
	for i, c := range cs {
		list[i] = ToCompanyResponse(&c)
	}
	return ListCompaniesResponse{Companies: list}
}

// --- Company Membership DTOs ---

// AddUserToCompanyRequest defines data for adding a user to a company.
type AddUserToCompanyRequest struct {
	UserID string             `json:"userID" binding:"required"`
	Role   domain.CompanyRole `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY"`
}

// UpdateMemberRoleRequest defines data for changing a member's role.
type UpdateMemberRoleRequest struct {
	Role domain.CompanyRole `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY"`
}

// CompanyMemberResponse defines data returned about a user's membership.
type CompanyMemberResponse struct {
	UserID    string             `json:"userID"`
	UserName  string             `json:"userName"`
	CompanyID string             `json:"companyID"`
	Role      domain.CompanyRole `json:"role"`
	JoinedAt  time.Time          `json:"joinedAt"`
}

// ToCompanyMemberResponse converts domain.CompanyMember to DTO.
func ToCompanyMemberResponse(m *domain.CompanyMember) CompanyMemberResponse {
	return CompanyMemberResponse{
		UserID:    m.UserID,
		UserName:  m.UserName,
		CompanyID: m.CompanyID,
		Role:      m.Role,
		JoinedAt:  m.JoinedAt,
	}
}

package domain

import "time"

// Company is the tenant boundary: customers, projects, time entries, expenses
// and documents all live inside exactly one company.
type Company struct {
	CompanyID           string `json:"companyID"` // Primary Key (UUID)
	Name                string `json:"name"`
	LegalName           string `json:"legalName"`
	Address             string `json:"address"`
	VATNumber           string `json:"vatNumber"`
	DefaultCurrencyCode string `json:"defaultCurrencyCode"` // e.g. "EUR"
	// InvoiceNumberPrefix is prepended to the sequential document number,
	// e.g. "INV-" yields INV-2026-0042.
	InvoiceNumberPrefix string `json:"invoiceNumberPrefix"`
	IsActive            bool   `json:"isActive"`
	AuditFields
}

// CompanyRole defines the possible roles a user can have within a company.
type CompanyRole string

const (
	RoleAdmin    CompanyRole = "ADMIN"
	RoleMember   CompanyRole = "MEMBER"
	RoleReadOnly CompanyRole = "READONLY"
	RoleRemoved  CompanyRole = "REMOVED" // For users who have been removed from the company
)

// CompanyMember represents the membership of a User in a Company.
type CompanyMember struct {
	UserID    string      `json:"userID"`    // FK -> users.user_id
	UserName  string      `json:"userName"`  // Name of the user
	CompanyID string      `json:"companyID"` // FK -> companies.company_id
	Role      CompanyRole `json:"role"`
	JoinedAt  time.Time   `json:"joinedAt"`
}

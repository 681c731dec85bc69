package domain

import "github.com/shopspring/decimal"

// BillingType describes how work on a project is charged.
type BillingType string

const (
	BillingHourly      BillingType = "HOURLY"
	BillingFixed       BillingType = "FIXED"
	BillingNonBillable BillingType = "NON_BILLABLE"
)

// Project groups time entries and expenses under a customer. Its hourly rate
// is the fallback when a time entry carries no rate of its own.
type Project struct {
	ProjectID  string `json:"projectID"` // Primary Key (UUID)
	CompanyID  string `json:"companyID"` // FK -> companies
	CustomerID string `json:"customerID"`
	Name       string `json:"name"`
	Code       string `json:"code"` // Short human-readable code, e.g. "ACME-WEB"
	// HourlyRate is the project default; nil means no default (effective rate
	// falls through to zero).
	HourlyRate  *decimal.Decimal `json:"hourlyRate,omitempty"`
	BillingType BillingType      `json:"billingType"`
	IsActive    bool             `json:"isActive"`
	AuditFields
}

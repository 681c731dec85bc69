package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is the persistence shape of a billable counterparty.
type Customer struct {
	CustomerID       string `json:"customerID"`
	CompanyID        string `json:"companyID"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Address          string `json:"address"`
	VATNumber        string `json:"vatNumber"`
	DefaultTaxRate   string `json:"defaultTaxRate"`
	TaxExempt        bool   `json:"taxExempt"`
	ReverseCharge    bool   `json:"reverseCharge"`
	PaymentTermsDays int    `json:"paymentTermsDays"`
	CurrencyCode     string `json:"currencyCode"`
	IsActive         bool   `json:"isActive"`
	AuditFields
}

// Project is the persistence shape of a project.
type Project struct {
	ProjectID   string           `json:"projectID"`
	CompanyID   string           `json:"companyID"`
	CustomerID  string           `json:"customerID"`
	Name        string           `json:"name"`
	Code        string           `json:"code"`
	HourlyRate  *decimal.Decimal `json:"hourlyRate,omitempty"`
	BillingType string           `json:"billingType"`
	IsActive    bool             `json:"isActive"`
	AuditFields
}

// TimeEntry is the persistence shape of a logged work record.
type TimeEntry struct {
	TimeEntryID string           `json:"timeEntryID"`
	CompanyID   string           `json:"companyID"`
	ProjectID   string           `json:"projectID"`
	UserID      string           `json:"userID"`
	EntryDate   time.Time        `json:"entryDate"`
	Hours       decimal.Decimal  `json:"hours"`
	HourlyRate  *decimal.Decimal `json:"hourlyRate,omitempty"`
	Description string           `json:"description"`
	IsBillable  bool             `json:"isBillable"`
	Status      string           `json:"status"`
	DocumentID  *string          `json:"documentID,omitempty"`
	AuditFields

	// Joined columns for unbilled listings.
	ProjectName       string           `json:"projectName,omitempty"`
	CustomerName      string           `json:"customerName,omitempty"`
	ProjectHourlyRate *decimal.Decimal `json:"-"`
}

// Expense is the persistence shape of an expense record.
type Expense struct {
	ExpenseID      string          `json:"expenseID"`
	CompanyID      string          `json:"companyID"`
	ProjectID      *string         `json:"projectID,omitempty"`
	UserID         string          `json:"userID"`
	ExpenseDate    time.Time       `json:"expenseDate"`
	Amount         decimal.Decimal `json:"amount"`
	TaxRate        string          `json:"taxRate"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	IsReimbursable bool            `json:"isReimbursable"`
	Status         string          `json:"status"`
	ExportID       *string         `json:"exportID,omitempty"`
	AuditFields

	ProjectName  string `json:"projectName,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
}

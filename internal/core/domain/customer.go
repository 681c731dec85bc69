package domain

// Customer is a billable counterparty of a company. Its tax flags drive the
// document-level rate resolution for time-based invoice lines.
type Customer struct {
	CustomerID string `json:"customerID"` // Primary Key (UUID)
	CompanyID  string `json:"companyID"`  // FK -> companies
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	VATNumber  string `json:"vatNumber"`
	// DefaultTaxRate applies to time-based lines unless TaxExempt or
	// ReverseCharge overrides it. Empty means "use STANDARD_20".
	DefaultTaxRate   TaxRate `json:"defaultTaxRate"`
	TaxExempt        bool    `json:"taxExempt"`
	ReverseCharge    bool    `json:"reverseCharge"`
	PaymentTermsDays int     `json:"paymentTermsDays"`
	CurrencyCode     string  `json:"currencyCode"`
	IsActive         bool    `json:"isActive"`
	AuditFields
}

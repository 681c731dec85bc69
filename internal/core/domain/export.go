package domain

// ExportBatch is one accounting export run over a company month. It freezes
// the set of documents and expenses handed to the accounting system; consumed
// expenses get their ExportID stamped and become ineligible for invoicing.
type ExportBatch struct {
	ExportID  string `json:"exportID"` // Primary Key (UUID)
	CompanyID string `json:"companyID"`
	Year      int    `json:"year"`
	Month     int    `json:"month"` // 1-12
	// IDs captured by this run.
	DocumentIDs []string `json:"documentIDs"`
	ExpenseIDs  []string `json:"expenseIDs"`
	AuditFields
}

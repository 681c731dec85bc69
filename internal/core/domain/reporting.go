package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueMonth is one row of the revenue summary: issued document totals
// aggregated per calendar month.
type RevenueMonth struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"taxAmount"`
	Total     decimal.Decimal `json:"total"`
	// DocumentCount is the number of documents contributing to the row.
	DocumentCount int `json:"documentCount"`
}

// CashFlowWeek is one bucket of the cash-flow forecast. Inflow is the sum of
// open invoice totals due in the week, outflow the expected expense spend.
type CashFlowWeek struct {
	WeekStart time.Time       `json:"weekStart"`
	Inflow    decimal.Decimal `json:"inflow"`
	Outflow   decimal.Decimal `json:"outflow"`
	Net       decimal.Decimal `json:"net"`
}

// OpenDocumentDue is the raw forecast input: an unpaid issued document and
// when its money is expected.
type OpenDocumentDue struct {
	DocumentID string          `json:"documentID"`
	DueDate    time.Time       `json:"dueDate"`
	Total      decimal.Decimal `json:"total"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// RevenueSummaryParams defines query parameters for the revenue summary.
type RevenueSummaryParams struct {
	From time.Time `form:"from" time_format:"2006-01-02"`
	To   time.Time `form:"to" time_format:"2006-01-02"`
}

// RevenueMonthResponse is one month of the revenue summary.
type RevenueMonthResponse struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	Total         decimal.Decimal `json:"total"`
	DocumentCount int             `json:"documentCount"`
}

// RevenueSummaryResponse wraps the revenue summary rows.
type RevenueSummaryResponse struct {
	Months []RevenueMonthResponse `json:"months"`
}

// ToRevenueSummaryResponse converts domain revenue rows to DTO.
func ToRevenueSummaryResponse(rows []domain.RevenueMonth) RevenueSummaryResponse {
	months := make([]RevenueMonthResponse, len(rows))
	for i, r := range rows {
		months[i] = RevenueMonthResponse{
			Year:          r.Year,
			Month:         r.Month,
			Subtotal:      r.Subtotal,
			TaxAmount:     r.TaxAmount,
			Total:         r.Total,
			DocumentCount: r.DocumentCount,
		}
	}
	return RevenueSummaryResponse{Months: months}
}

// CashFlowWeekResponse is one week bucket of the forecast.
type CashFlowWeekResponse struct {
	WeekStart time.Time       `json:"weekStart"`
	Inflow    decimal.Decimal `json:"inflow"`
	Outflow   decimal.Decimal `json:"outflow"`
	Net       decimal.Decimal `json:"net"`
}

// CashFlowForecastResponse wraps the 12-week forecast.
type CashFlowForecastResponse struct {
	Weeks []CashFlowWeekResponse `json:"weeks"`
}

// ToCashFlowForecastResponse converts domain forecast buckets to DTO.
func ToCashFlowForecastResponse(weeks []domain.CashFlowWeek) CashFlowForecastResponse {
	list := make([]CashFlowWeekResponse, len(weeks))
	for i, w := range weeks {
		list[i] = CashFlowWeekResponse{
			WeekStart: w.WeekStart,
			Inflow:    w.Inflow,
			Outflow:   w.Outflow,
			Net:       w.Net,
		}
	}
	return CashFlowForecastResponse{Weeks: list}
}

package dto

import (
	"time"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// CreateExportRequest defines data for running an accounting export.
type CreateExportRequest struct {
	Year  int `json:"year" binding:"required,min=2000,max=2200"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// ExportResponse defines the data returned for an export batch.
type ExportResponse struct {
	ExportID      string    `json:"exportID"`
	CompanyID     string    `json:"companyID"`
	Year          int       `json:"year"`
	Month         int       `json:"month"`
	DocumentIDs   []string  `json:"documentIDs"`
	ExpenseIDs    []string  `json:"expenseIDs"`
	DocumentCount int       `json:"documentCount"`
	ExpenseCount  int       `json:"expenseCount"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
}

// ToExportResponse converts a domain.ExportBatch to DTO.
func ToExportResponse(b *domain.ExportBatch) ExportResponse {
	return ExportResponse{
		ExportID:      b.ExportID,
		CompanyID:     b.CompanyID,
		Year:          b.Year,
		Month:         b.Month,
		DocumentIDs:   b.DocumentIDs,
		ExpenseIDs:    b.ExpenseIDs,
		DocumentCount: len(b.DocumentIDs),
		ExpenseCount:  len(b.ExpenseIDs),
		CreatedAt:     b.CreatedAt,
		CreatedBy:     b.CreatedBy,
	}
}

// ListExportsResponse wraps a list of export batches.
type ListExportsResponse struct {
	Exports []ExportResponse `json:"exports"`
}

// ToListExportsResponse converts a slice of domain.ExportBatch to DTO.
func ToListExportsResponse(bs []domain.ExportBatch) ListExportsResponse {
	list := make([]ExportResponse, len(bs))
	for i, b := range bs {
		list[i] = ToExportResponse(&b)
	}
	return ListExportsResponse{Exports: list}
}

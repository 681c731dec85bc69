package dto

import (
	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// CreateProjectRequest defines data for creating a new project.
type CreateProjectRequest struct {
	CustomerID  string             `json:"customerID" binding:"required"`
	Name        string             `json:"name" binding:"required"`
	Code        string             `json:"code"`
	HourlyRate  *decimal.Decimal   `json:"hourlyRate"`
	BillingType domain.BillingType `json:"billingType" binding:"omitempty,oneof=HOURLY FIXED NON_BILLABLE"`
}

// UpdateProjectRequest defines the updatable fields of a project.
type UpdateProjectRequest struct {
	Name        *string             `json:"name"`
	Code        *string             `json:"code"`
	HourlyRate  *decimal.Decimal    `json:"hourlyRate"`
	BillingType *domain.BillingType `json:"billingType" binding:"omitempty,oneof=HOURLY FIXED NON_BILLABLE"`
}

// ListProjectsParams defines query parameters for listing projects.
type ListProjectsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ProjectResponse defines data returned for a project.
type ProjectResponse struct {
	ProjectID   string             `json:"projectID"`
	CompanyID   string             `json:"companyID"`
	CustomerID  string             `json:"customerID"`
	Name        string             `json:"name"`
	Code        string             `json:"code"`
	HourlyRate  *decimal.Decimal   `json:"hourlyRate,omitempty"`
	BillingType domain.BillingType `json:"billingType"`
	IsActive    bool               `json:"isActive"`
}

// ToProjectResponse converts domain.Project to DTO.
func ToProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ProjectID:   p.ProjectID,
		CompanyID:   p.CompanyID,
		CustomerID:  p.CustomerID,
		Name:        p.Name,
		Code:        p.Code,
		HourlyRate:  p.HourlyRate,
		BillingType: p.BillingType,
		IsActive:    p.IsActive,
	}
}

// ListProjectsResponse wraps a paginated list of projects.
type ListProjectsResponse struct {
	Projects  []ProjectResponse `json:"projects"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToListProjectsResponse converts a slice of domain.Project to DTO.
func ToListProjectsResponse(ps []domain.Project, nextToken *string) ListProjectsResponse {
	list := make([]ProjectResponse, len(ps))
	for i, p := range ps {
		list[i] = ToProjectResponse(&p)
	}
	return ListProjectsResponse{Projects: list, NextToken: nextToken}
}

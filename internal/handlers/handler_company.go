package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ostwerk/billable_app/internal/apperrors"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
	"github.com/ostwerk/billable_app/internal/middleware"
)

// companyHandler handles HTTP requests related to companies and memberships.
type companyHandler struct {
	companyService portssvc.CompanySvcFacade
}

// newCompanyHandler creates a new companyHandler.
func newCompanyHandler(cs portssvc.CompanySvcFacade) *companyHandler {
	return &companyHandler{
		companyService: cs,
	}
}

// registerCompanyRoutes registers routes related to companies and their members.
// All company-scoped resources (customers, projects, time entries, expenses,
// invoicing, documents, exports, reports) are nested under a specific company.
func registerCompanyRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newCompanyHandler(services.Company)

	companiesTopLevel := rg.Group("/companies")
	{
		companiesTopLevel.POST("", h.createCompany)
		companiesTopLevel.GET("", h.listUserCompanies) // List companies the calling user belongs to
	}

	companySpecific := rg.Group("/companies/:company_id")
	{
		companySpecific.GET("", h.getCompany)
		companySpecific.PUT("", h.updateCompany)

		// Manage members within a company
		companyUsers := companySpecific.Group("/users")
		{
			companyUsers.GET("", h.listCompanyMembers)
			companyUsers.POST("", h.addUserToCompany)
			companyUsers.PUT("/:user_id", h.updateMemberRole)
			companyUsers.DELETE("/:user_id", h.removeUserFromCompany)
		}

		registerCustomerRoutes(companySpecific, services.Customer, services.Project)
		registerProjectRoutes(companySpecific, services.Project)
		registerTimeEntryRoutes(companySpecific, services.TimeEntry)
		registerExpenseRoutes(companySpecific, services.Expense)
		registerInvoicingRoutes(companySpecific, services.Invoicing)
		registerDocumentRoutes(companySpecific, services.Document)
		registerExportRoutes(companySpecific, services.Export)
		registerReportingRoutes(companySpecific, services.Reporting)
	}
}

// createCompany godoc
// @Summary Create a new company
// @Description Creates a new company and assigns the creator as admin.
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company body dto.CreateCompanyRequest true "Company details"
// @Success 201 {object} dto.CompanyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create company"
// @Security BearerAuth
// @Router /companies [post]
func (h *companyHandler) createCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCompany", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))

	newCompany, err := h.companyService.CreateCompany(c.Request.Context(), req, creatorUserID)
	if err != nil {
		logger.Error("Failed to create company in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company"})
		return
	}

	logger.Info("Company created successfully", slog.String("company_id", newCompany.CompanyID))
	c.JSON(http.StatusCreated, dto.ToCompanyResponse(newCompany))
}

// listUserCompanies godoc
// @Summary List companies for current user
// @Description Retrieves a list of companies the authenticated user belongs to.
// @Tags companies
// @Produce  json
// @Success 200 {object} dto.ListCompaniesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list companies"
// @Security BearerAuth
// @Router /companies [get]
func (h *companyHandler) listUserCompanies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	companies, err := h.companyService.ListUserCompanies(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list companies from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list companies"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListCompaniesResponse(companies))
}

// getCompany godoc
// @Summary Get company details
// @Description Retrieves a company by ID. Any member may read it.
// @Tags companies
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {object} dto.CompanyResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to retrieve company"
// @Security BearerAuth
// @Router /companies/{company_id} [get]
func (h *companyHandler) getCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	company, err := h.companyService.GetCompanyByID(c.Request.Context(), companyID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
			return
		}
		logger.Error("Failed to get company from service", slog.String("error", err.Error()), slog.String("company_id", companyID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve company"})
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}

// updateCompany godoc
// @Summary Update company details
// @Description Updates company details. Admin only.
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   company body dto.UpdateCompanyRequest true "Fields to update"
// @Success 200 {object} dto.CompanyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to update company"
// @Security BearerAuth
// @Router /companies/{company_id} [put]
func (h *companyHandler) updateCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	company, err := h.companyService.UpdateCompany(c.Request.Context(), companyID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		default:
			logger.Error("Failed to update company in service", slog.String("error", err.Error()), slog.String("company_id", companyID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update company"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}

// listCompanyMembers godoc
// @Summary List company members
// @Description Retrieves all members of a company with their roles.
// @Tags companies
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {array} dto.CompanyMemberResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to list members"
// @Security BearerAuth
// @Router /companies/{company_id}/users [get]
func (h *companyHandler) listCompanyMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	members, err := h.companyService.ListCompanyMembers(c.Request.Context(), companyID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
			return
		}
		logger.Error("Failed to list company members", slog.String("error", err.Error()), slog.String("company_id", companyID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
		return
	}

	resp := make([]dto.CompanyMemberResponse, len(members))
	for i := range members {
		resp[i] = dto.ToCompanyMemberResponse(&members[i])
	}
	c.JSON(http.StatusOK, resp)
}

// addUserToCompany godoc
// @Summary Add a user to a company
// @Description Adds a specified user to a company with a given role (requires admin permission).
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   user_details body dto.AddUserToCompanyRequest true "User ID and Role"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (caller is not admin)"
// @Failure 404 {object} map[string]string "Company or User not found"
// @Failure 500 {object} map[string]string "Failed to add user"
// @Security BearerAuth
// @Router /companies/{company_id}/users [post]
func (h *companyHandler) addUserToCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.AddUserToCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	addingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("adding_user_id", addingUserID), slog.String("company_id", companyID), slog.String("target_user_id", req.UserID))

	err := h.companyService.AddUserToCompany(c.Request.Context(), addingUserID, req.UserID, companyID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Add user failed: company not found or caller not a member")
			c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found or insufficient permissions"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to add user to company in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add user to company"})
		}
		return
	}

	logger.Info("User added to company successfully")
	c.Status(http.StatusNoContent)
}

// updateMemberRole godoc
// @Summary Change a member's role
// @Description Updates the role of a company member (requires admin permission). Admins cannot demote themselves.
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   user_id path string true "Target User ID"
// @Param   role body dto.UpdateMemberRoleRequest true "New role"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 500 {object} map[string]string "Failed to update role"
// @Security BearerAuth
// @Router /companies/{company_id}/users/{user_id} [put]
func (h *companyHandler) updateMemberRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	targetUserID := c.Param("user_id")

	var req dto.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.companyService.UpdateUserCompanyRole(c.Request.Context(), requestingUserID, targetUserID, companyID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to update member role in service", slog.String("error", err.Error()), slog.String("company_id", companyID), slog.String("target_user_id", targetUserID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update member role"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// removeUserFromCompany godoc
// @Summary Remove a user from a company
// @Description Marks a membership removed (requires admin permission). Admins cannot remove themselves.
// @Tags companies
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   user_id path string true "Target User ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 500 {object} map[string]string "Failed to remove user"
// @Security BearerAuth
// @Router /companies/{company_id}/users/{user_id} [delete]
func (h *companyHandler) removeUserFromCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	targetUserID := c.Param("user_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.companyService.RemoveUserFromCompany(c.Request.Context(), requestingUserID, targetUserID, companyID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to remove user from company in service", slog.String("error", err.Error()), slog.String("company_id", companyID), slog.String("target_user_id", targetUserID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove user from company"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
	"github.com/ostwerk/billable_app/internal/middleware"
)

// customerHandler handles HTTP requests related to customers.
type customerHandler struct {
	customerService portssvc.CustomerSvcFacade
	projectService  portssvc.ProjectSvcFacade
}

// newCustomerHandler creates a new customerHandler.
func newCustomerHandler(cs portssvc.CustomerSvcFacade, ps portssvc.ProjectSvcFacade) *customerHandler {
	return &customerHandler{
		customerService: cs,
		projectService:  ps,
	}
}

// registerCustomerRoutes registers customer routes nested under a company.
func registerCustomerRoutes(rg *gin.RouterGroup, customerService portssvc.CustomerSvcFacade, projectService portssvc.ProjectSvcFacade) {
	h := newCustomerHandler(customerService, projectService)

	customers := rg.Group("/customers")
	{
		customers.POST("", h.createCustomer)
		customers.GET("", h.listCustomers)
		customers.GET("/:customer_id", h.getCustomer)
		customers.PUT("/:customer_id", h.updateCustomer)
		customers.DELETE("/:customer_id", h.deactivateCustomer)
		customers.GET("/:customer_id/projects", h.listCustomerProjects)
	}
}

// createCustomer godoc
// @Summary Create a new customer
// @Description Creates a new customer in the company with tax defaults.
// @Tags customers
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   customer body dto.CreateCustomerRequest true "Customer details"
// @Success 201 {object} dto.CustomerResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to create customer"
// @Security BearerAuth
// @Router /companies/{company_id}/customers [post]
func (h *customerHandler) createCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCustomer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), companyID, req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create customer")
		return
	}

	logger.Info("Customer created successfully", slog.String("customer_id", customer.CustomerID), slog.String("company_id", companyID))
	c.JSON(http.StatusCreated, dto.ToCustomerResponse(customer))
}

// listCustomers godoc
// @Summary List customers
// @Description Retrieves a paginated list of the company's customers.
// @Tags customers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListCustomersResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to list customers"
// @Security BearerAuth
// @Router /companies/{company_id}/customers [get]
func (h *customerHandler) listCustomers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var params dto.ListCustomersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.customerService.ListCustomers(c.Request.Context(), companyID, userID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list customers")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getCustomer godoc
// @Summary Get customer details
// @Description Retrieves a specific customer of the company.
// @Tags customers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   customer_id path string true "Customer ID"
// @Success 200 {object} dto.CustomerResponse
// @Failure 404 {object} map[string]string "Customer not found"
// @Failure 500 {object} map[string]string "Failed to retrieve customer"
// @Security BearerAuth
// @Router /companies/{company_id}/customers/{customer_id} [get]
func (h *customerHandler) getCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	customerID := c.Param("customer_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	customer, err := h.customerService.GetCustomerByID(c.Request.Context(), companyID, customerID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve customer")
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerResponse(customer))
}

// updateCustomer godoc
// @Summary Update customer details
// @Description Updates customer details including tax defaults.
// @Tags customers
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   customer_id path string true "Customer ID"
// @Param   customer body dto.UpdateCustomerRequest true "Fields to update"
// @Success 200 {object} dto.CustomerResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Customer not found"
// @Failure 500 {object} map[string]string "Failed to update customer"
// @Security BearerAuth
// @Router /companies/{company_id}/customers/{customer_id} [put]
func (h *customerHandler) updateCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	customerID := c.Param("customer_id")

	var req dto.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), companyID, customerID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerResponse(customer))
}

// deactivateCustomer godoc
// @Summary Deactivate a customer
// @Description Marks a customer inactive; historical documents are untouched.
// @Tags customers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   customer_id path string true "Customer ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Customer not found"
// @Failure 500 {object} map[string]string "Failed to deactivate customer"
// @Security BearerAuth
// @Router /companies/{company_id}/customers/{customer_id} [delete]
func (h *customerHandler) deactivateCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	customerID := c.Param("customer_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.customerService.DeactivateCustomer(c.Request.Context(), companyID, customerID, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to deactivate customer")
		return
	}

	c.Status(http.StatusNoContent)
}

// listCustomerProjects godoc
// @Summary List a customer's projects
// @Description Retrieves all projects belonging to a customer.
// @Tags customers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   customer_id path string true "Customer ID"
// @Success 200 {array} dto.ProjectResponse
// @Failure 404 {object} map[string]string "Customer not found"
// @Failure 500 {object} map[string]string "Failed to list projects"
// @Security BearerAuth
// @Router /companies/{company_id}/customers/{customer_id}/projects [get]
func (h *customerHandler) listCustomerProjects(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	customerID := c.Param("customer_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	projects, err := h.projectService.ListProjectsByCustomer(c.Request.Context(), companyID, customerID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list projects")
		return
	}

	resp := make([]dto.ProjectResponse, len(projects))
	for i := range projects {
		resp[i] = dto.ToProjectResponse(&projects[i])
	}
	c.JSON(http.StatusOK, resp)
}

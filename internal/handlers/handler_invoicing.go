package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
	"github.com/ostwerk/billable_app/internal/middleware"
)

// invoicingHandler handles HTTP requests that turn unbilled work into invoices.
type invoicingHandler struct {
	invoicingService portssvc.InvoicingSvcFacade
}

// newInvoicingHandler creates a new invoicingHandler.
func newInvoicingHandler(is portssvc.InvoicingSvcFacade) *invoicingHandler {
	return &invoicingHandler{
		invoicingService: is,
	}
}

// registerInvoicingRoutes registers invoicing routes nested under a company.
func registerInvoicingRoutes(rg *gin.RouterGroup, invoicingService portssvc.InvoicingSvcFacade) {
	h := newInvoicingHandler(invoicingService)

	unbilled := rg.Group("/unbilled")
	{
		unbilled.GET("/time-entries", h.getUnbilledTimeEntries)
		unbilled.GET("/expenses", h.getUnbilledExpenses)
		unbilled.GET("/projects/:project_id/:year/:month", h.getUnbilledItemsForProjectMonth)
	}

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoiceFromEntries)
		invoices.POST("/project-month", h.createInvoiceForProjectMonth)
		invoices.POST("/preview", h.previewInvoice)
	}
}

// getUnbilledTimeEntries godoc
// @Summary List unbilled time entries
// @Description Retrieves approved, billable time entries not yet linked to a document, optionally filtered by customer.
// @Tags invoicing
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   customerID query string false "Restrict to one customer"
// @Success 200 {array} dto.TimeEntryResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to list unbilled time entries"
// @Security BearerAuth
// @Router /companies/{company_id}/unbilled/time-entries [get]
func (h *invoicingHandler) getUnbilledTimeEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var params dto.UnbilledParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entries, err := h.invoicingService.GetUnbilledTimeEntries(c.Request.Context(), companyID, params.CustomerID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list unbilled time entries")
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryResponses(entries))
}

// getUnbilledExpenses godoc
// @Summary List unbilled expenses
// @Description Retrieves approved, reimbursable expenses not yet exported, optionally filtered by customer.
// @Tags invoicing
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   customerID query string false "Restrict to one customer"
// @Success 200 {array} dto.ExpenseResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to list unbilled expenses"
// @Security BearerAuth
// @Router /companies/{company_id}/unbilled/expenses [get]
func (h *invoicingHandler) getUnbilledExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var params dto.UnbilledParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expenses, err := h.invoicingService.GetUnbilledExpenses(c.Request.Context(), companyID, params.CustomerID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list unbilled expenses")
		return
	}

	c.JSON(http.StatusOK, dto.ToExpenseResponses(expenses))
}

// getUnbilledItemsForProjectMonth godoc
// @Summary Summarize a project's unbilled month
// @Description Retrieves a project's unbilled time entries and expenses in a calendar month together with a value summary.
// @Tags invoicing
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   project_id path string true "Project ID"
// @Param   year path int true "Year"
// @Param   month path int true "Month (1-12)"
// @Success 200 {object} dto.UnbilledItemsResponse
// @Failure 400 {object} map[string]string "Invalid year or month"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to summarize unbilled items"
// @Security BearerAuth
// @Router /companies/{company_id}/unbilled/projects/{project_id}/{year}/{month} [get]
func (h *invoicingHandler) getUnbilledItemsForProjectMonth(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	projectID := c.Param("project_id")

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.invoicingService.GetUnbilledItemsForProjectMonth(c.Request.Context(), companyID, projectID, year, month, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to summarize unbilled items")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// createInvoiceFromEntries godoc
// @Summary Create an invoice from selected entries
// @Description Builds a draft invoice from the selected time entries and expenses. Lines are grouped per the grouping policy; the entry linking is atomic.
// @Tags invoicing
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   invoice body dto.CreateInvoiceFromEntriesRequest true "Selection and grouping"
// @Success 201 {object} dto.GetDocumentResponse
// @Failure 400 {object} map[string]string "Invalid selection"
// @Failure 404 {object} map[string]string "Customer or entry not found"
// @Failure 409 {object} map[string]string "An entry was invoiced concurrently"
// @Failure 422 {object} map[string]string "Nothing to invoice"
// @Failure 500 {object} map[string]string "Failed to create invoice"
// @Security BearerAuth
// @Router /companies/{company_id}/invoices [post]
func (h *invoicingHandler) createInvoiceFromEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateInvoiceFromEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateInvoiceFromEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.invoicingService.CreateInvoiceFromEntries(c.Request.Context(), companyID, req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create invoice")
		return
	}

	logger.Info("Invoice created from entries", slog.String("document_id", resp.Document.DocumentID), slog.Int("line_count", len(resp.Lines)))
	c.JSON(http.StatusCreated, resp)
}

// createInvoiceForProjectMonth godoc
// @Summary Invoice a project month
// @Description Invoices everything a project accrued in a calendar month, resolving the customer from the project.
// @Tags invoicing
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   invoice body dto.CreateInvoiceForProjectMonthRequest true "Project, month and grouping"
// @Success 201 {object} dto.GetDocumentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 409 {object} map[string]string "An entry was invoiced concurrently"
// @Failure 422 {object} map[string]string "Nothing to invoice"
// @Failure 500 {object} map[string]string "Failed to create invoice"
// @Security BearerAuth
// @Router /companies/{company_id}/invoices/project-month [post]
func (h *invoicingHandler) createInvoiceForProjectMonth(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateInvoiceForProjectMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateInvoiceForProjectMonth", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.invoicingService.CreateInvoiceForProjectMonth(c.Request.Context(), companyID, req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create invoice")
		return
	}

	logger.Info("Invoice created for project month", slog.String("document_id", resp.Document.DocumentID), slog.String("project_id", req.ProjectID), slog.Int("year", req.Year), slog.Int("month", req.Month))
	c.JSON(http.StatusCreated, resp)
}

// previewInvoice godoc
// @Summary Preview an invoice
// @Description Computes the lines and totals an invoice creation would produce without persisting anything.
// @Tags invoicing
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   invoice body dto.CreateInvoiceFromEntriesRequest true "Selection and grouping"
// @Success 200 {object} dto.InvoicePreviewResponse
// @Failure 400 {object} map[string]string "Invalid selection"
// @Failure 404 {object} map[string]string "Customer or entry not found"
// @Failure 422 {object} map[string]string "Nothing to invoice"
// @Failure 500 {object} map[string]string "Failed to preview invoice"
// @Security BearerAuth
// @Router /companies/{company_id}/invoices/preview [post]
func (h *invoicingHandler) previewInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateInvoiceFromEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.invoicingService.PreviewInvoice(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to preview invoice")
		return
	}

	c.JSON(http.StatusOK, resp)
}

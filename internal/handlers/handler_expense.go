package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ostwerk/billable_app/internal/core/domain"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
	"github.com/ostwerk/billable_app/internal/middleware"
)

// expenseHandler handles HTTP requests related to expenses.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

// newExpenseHandler creates a new expenseHandler.
func newExpenseHandler(es portssvc.ExpenseSvcFacade) *expenseHandler {
	return &expenseHandler{
		expenseService: es,
	}
}

// registerExpenseRoutes registers expense routes nested under a company.
func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade) {
	h := newExpenseHandler(expenseService)

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.createExpense)
		expenses.GET("", h.listExpenses)
		expenses.GET("/:expense_id", h.getExpense)
		expenses.PUT("/:expense_id", h.updateExpense)
		expenses.DELETE("/:expense_id", h.deleteExpense)
		expenses.POST("/:expense_id/submit", h.submitExpense)
		expenses.POST("/:expense_id/approve", h.approveExpense)
		expenses.POST("/:expense_id/reject", h.rejectExpense)
	}
}

// createExpense godoc
// @Summary Record an expense
// @Description Records a new draft expense. Amount is gross; the contained tax portion is derived from the rate.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   expense body dto.CreateExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to create expense"
// @Security BearerAuth
// @Router /companies/{company_id}/expenses [post]
func (h *expenseHandler) createExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), companyID, req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create expense")
		return
	}

	logger.Info("Expense created", slog.String("expense_id", expense.ExpenseID))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// listExpenses godoc
// @Summary List expenses
// @Description Retrieves a paginated list of the company's expenses.
// @Tags expenses
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to list expenses"
// @Security BearerAuth
// @Router /companies/{company_id}/expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.expenseService.ListExpenses(c.Request.Context(), companyID, userID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list expenses")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getExpense godoc
// @Summary Get an expense
// @Description Retrieves a specific expense.
// @Tags expenses
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   expense_id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 500 {object} map[string]string "Failed to retrieve expense"
// @Security BearerAuth
// @Router /companies/{company_id}/expenses/{expense_id} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	expenseID := c.Param("expense_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), companyID, expenseID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve expense")
		return
	}

	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// updateExpense godoc
// @Summary Update a draft expense
// @Description Updates a draft expense. The tax portion is recomputed when amount or rate changes.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   expense_id path string true "Expense ID"
// @Param   expense body dto.UpdateExpenseRequest true "Fields to update"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Invalid input or expense not editable"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 500 {object} map[string]string "Failed to update expense"
// @Security BearerAuth
// @Router /companies/{company_id}/expenses/{expense_id} [put]
func (h *expenseHandler) updateExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	expenseID := c.Param("expense_id")

	var req dto.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), companyID, expenseID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update expense")
		return
	}

	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// deleteExpense godoc
// @Summary Delete a draft expense
// @Description Removes a draft expense. Only the owner may delete it.
// @Tags expenses
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   expense_id path string true "Expense ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Expense not deletable"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 500 {object} map[string]string "Failed to delete expense"
// @Security BearerAuth
// @Router /companies/{company_id}/expenses/{expense_id} [delete]
func (h *expenseHandler) deleteExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	expenseID := c.Param("expense_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), companyID, expenseID, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete expense")
		return
	}

	c.Status(http.StatusNoContent)
}

// submitExpense godoc
// @Summary Submit an expense for approval
// @Description Moves a draft or rejected expense to SUBMITTED. Only the owner may submit.
// @Tags expenses
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   expense_id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Invalid state transition"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 500 {object} map[string]string "Failed to submit expense"
// @Security BearerAuth
// @Router /companies/{company_id}/expenses/{expense_id}/submit [post]
func (h *expenseHandler) submitExpense(c *gin.Context) {
	h.transition(c, h.expenseService.SubmitExpense, "Failed to submit expense")
}

// approveExpense godoc
// @Summary Approve a submitted expense
// @Description Moves a submitted expense to APPROVED. Admin only.
// @Tags expenses
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   expense_id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Invalid state transition"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 500 {object} map[string]string "Failed to approve expense"
// @Security BearerAuth
// @Router /companies/{company_id}/expenses/{expense_id}/approve [post]
func (h *expenseHandler) approveExpense(c *gin.Context) {
	h.transition(c, h.expenseService.ApproveExpense, "Failed to approve expense")
}

// rejectExpense godoc
// @Summary Reject a submitted expense
// @Description Moves a submitted expense to REJECTED. Admin only.
// @Tags expenses
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   expense_id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Invalid state transition"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 500 {object} map[string]string "Failed to reject expense"
// @Security BearerAuth
// @Router /companies/{company_id}/expenses/{expense_id}/reject [post]
func (h *expenseHandler) rejectExpense(c *gin.Context) {
	h.transition(c, h.expenseService.RejectExpense, "Failed to reject expense")
}

// transition runs one of the approval-flow operations, which all share a signature.
func (h *expenseHandler) transition(c *gin.Context, op func(ctx context.Context, companyID, expenseID, userID string) (*domain.Expense, error), fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	expenseID := c.Param("expense_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expense, err := op(c.Request.Context(), companyID, expenseID, userID)
	if err != nil {
		respondServiceError(c, logger, err, fallback)
		return
	}

	logger.Info("Expense status changed", slog.String("expense_id", expense.ExpenseID), slog.String("status", string(expense.Status)))
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

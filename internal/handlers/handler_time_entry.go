package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ostwerk/billable_app/internal/core/domain"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
	"github.com/ostwerk/billable_app/internal/middleware"
)

// timeEntryHandler handles HTTP requests related to time entries.
type timeEntryHandler struct {
	timeEntryService portssvc.TimeEntrySvcFacade
}

// newTimeEntryHandler creates a new timeEntryHandler.
func newTimeEntryHandler(ts portssvc.TimeEntrySvcFacade) *timeEntryHandler {
	return &timeEntryHandler{
		timeEntryService: ts,
	}
}

// registerTimeEntryRoutes registers time entry routes nested under a company.
func registerTimeEntryRoutes(rg *gin.RouterGroup, timeEntryService portssvc.TimeEntrySvcFacade) {
	h := newTimeEntryHandler(timeEntryService)

	entries := rg.Group("/time-entries")
	{
		entries.POST("", h.createTimeEntry)
		entries.GET("", h.listTimeEntriesByUser)
		entries.GET("/:entry_id", h.getTimeEntry)
		entries.PUT("/:entry_id", h.updateTimeEntry)
		entries.DELETE("/:entry_id", h.deleteTimeEntry)
		entries.POST("/:entry_id/submit", h.submitTimeEntry)
		entries.POST("/:entry_id/approve", h.approveTimeEntry)
		entries.POST("/:entry_id/reject", h.rejectTimeEntry)
	}

	// Listing by project lives under the project resource.
	rg.GET("/projects/:project_id/time-entries", h.listTimeEntriesByProject)
}

// createTimeEntry godoc
// @Summary Log a time entry
// @Description Logs a new draft time entry against a project. Entries start in DRAFT.
// @Tags time-entries
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   entry body dto.CreateTimeEntryRequest true "Time entry details"
// @Success 201 {object} dto.TimeEntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to create time entry"
// @Security BearerAuth
// @Router /companies/{company_id}/time-entries [post]
func (h *timeEntryHandler) createTimeEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTimeEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.timeEntryService.CreateTimeEntry(c.Request.Context(), companyID, req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create time entry")
		return
	}

	logger.Info("Time entry created", slog.String("time_entry_id", entry.TimeEntryID), slog.String("project_id", entry.ProjectID))
	c.JSON(http.StatusCreated, dto.ToTimeEntryResponse(entry))
}

// listTimeEntriesByUser godoc
// @Summary List time entries by user and date range
// @Description Retrieves a user's time entries within a date range. Listing another user's entries requires admin.
// @Tags time-entries
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   userID query string false "Target user ID, defaults to the caller"
// @Param   from query string true "Range start (YYYY-MM-DD)"
// @Param   to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {array} dto.TimeEntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list time entries"
// @Security BearerAuth
// @Router /companies/{company_id}/time-entries [get]
func (h *timeEntryHandler) listTimeEntriesByUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	targetUserID := c.DefaultQuery("userID", requestingUserID)

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing 'from' date, expected YYYY-MM-DD"})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing 'to' date, expected YYYY-MM-DD"})
		return
	}

	entries, err := h.timeEntryService.ListTimeEntriesByUser(c.Request.Context(), companyID, targetUserID, from, to, requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list time entries")
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryResponses(entries))
}

// listTimeEntriesByProject godoc
// @Summary List time entries of a project
// @Description Retrieves a paginated list of a project's time entries.
// @Tags time-entries
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   project_id path string true "Project ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListTimeEntriesResponse
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to list time entries"
// @Security BearerAuth
// @Router /companies/{company_id}/projects/{project_id}/time-entries [get]
func (h *timeEntryHandler) listTimeEntriesByProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	projectID := c.Param("project_id")

	var params dto.ListTimeEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.timeEntryService.ListTimeEntriesByProject(c.Request.Context(), companyID, projectID, userID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list time entries")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getTimeEntry godoc
// @Summary Get a time entry
// @Description Retrieves a specific time entry.
// @Tags time-entries
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   entry_id path string true "Time Entry ID"
// @Success 200 {object} dto.TimeEntryResponse
// @Failure 404 {object} map[string]string "Time entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve time entry"
// @Security BearerAuth
// @Router /companies/{company_id}/time-entries/{entry_id} [get]
func (h *timeEntryHandler) getTimeEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	entryID := c.Param("entry_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.timeEntryService.GetTimeEntryByID(c.Request.Context(), companyID, entryID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve time entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryResponse(entry))
}

// updateTimeEntry godoc
// @Summary Update a draft time entry
// @Description Updates a draft time entry. Only the owner may edit, and only in DRAFT.
// @Tags time-entries
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   entry_id path string true "Time Entry ID"
// @Param   entry body dto.UpdateTimeEntryRequest true "Fields to update"
// @Success 200 {object} dto.TimeEntryResponse
// @Failure 400 {object} map[string]string "Invalid input or entry not editable"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Time entry not found"
// @Failure 500 {object} map[string]string "Failed to update time entry"
// @Security BearerAuth
// @Router /companies/{company_id}/time-entries/{entry_id} [put]
func (h *timeEntryHandler) updateTimeEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	entryID := c.Param("entry_id")

	var req dto.UpdateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.timeEntryService.UpdateTimeEntry(c.Request.Context(), companyID, entryID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update time entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryResponse(entry))
}

// deleteTimeEntry godoc
// @Summary Delete a draft time entry
// @Description Removes a draft time entry. Only the owner may delete it.
// @Tags time-entries
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   entry_id path string true "Time Entry ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Entry not deletable"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Time entry not found"
// @Failure 500 {object} map[string]string "Failed to delete time entry"
// @Security BearerAuth
// @Router /companies/{company_id}/time-entries/{entry_id} [delete]
func (h *timeEntryHandler) deleteTimeEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	entryID := c.Param("entry_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.timeEntryService.DeleteTimeEntry(c.Request.Context(), companyID, entryID, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete time entry")
		return
	}

	c.Status(http.StatusNoContent)
}

// submitTimeEntry godoc
// @Summary Submit a time entry for approval
// @Description Moves a draft or rejected entry to SUBMITTED. Only the owner may submit.
// @Tags time-entries
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   entry_id path string true "Time Entry ID"
// @Success 200 {object} dto.TimeEntryResponse
// @Failure 400 {object} map[string]string "Invalid state transition"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Time entry not found"
// @Failure 500 {object} map[string]string "Failed to submit time entry"
// @Security BearerAuth
// @Router /companies/{company_id}/time-entries/{entry_id}/submit [post]
func (h *timeEntryHandler) submitTimeEntry(c *gin.Context) {
	h.transition(c, h.timeEntryService.SubmitTimeEntry, "Failed to submit time entry")
}

// approveTimeEntry godoc
// @Summary Approve a submitted time entry
// @Description Moves a submitted entry to APPROVED. Admin only.
// @Tags time-entries
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   entry_id path string true "Time Entry ID"
// @Success 200 {object} dto.TimeEntryResponse
// @Failure 400 {object} map[string]string "Invalid state transition"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Time entry not found"
// @Failure 500 {object} map[string]string "Failed to approve time entry"
// @Security BearerAuth
// @Router /companies/{company_id}/time-entries/{entry_id}/approve [post]
func (h *timeEntryHandler) approveTimeEntry(c *gin.Context) {
	h.transition(c, h.timeEntryService.ApproveTimeEntry, "Failed to approve time entry")
}

// rejectTimeEntry godoc
// @Summary Reject a submitted time entry
// @Description Moves a submitted entry to REJECTED. Admin only. Rejected entries can be edited and resubmitted.
// @Tags time-entries
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   entry_id path string true "Time Entry ID"
// @Success 200 {object} dto.TimeEntryResponse
// @Failure 400 {object} map[string]string "Invalid state transition"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Time entry not found"
// @Failure 500 {object} map[string]string "Failed to reject time entry"
// @Security BearerAuth
// @Router /companies/{company_id}/time-entries/{entry_id}/reject [post]
func (h *timeEntryHandler) rejectTimeEntry(c *gin.Context) {
	h.transition(c, h.timeEntryService.RejectTimeEntry, "Failed to reject time entry")
}

// transition runs one of the approval-flow operations, which all share a signature.
func (h *timeEntryHandler) transition(c *gin.Context, op func(ctx context.Context, companyID, entryID, userID string) (*domain.TimeEntry, error), fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	entryID := c.Param("entry_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := op(c.Request.Context(), companyID, entryID, userID)
	if err != nil {
		respondServiceError(c, logger, err, fallback)
		return
	}

	logger.Info("Time entry status changed", slog.String("time_entry_id", entry.TimeEntryID), slog.String("status", string(entry.Status)))
	c.JSON(http.StatusOK, dto.ToTimeEntryResponse(entry))
}

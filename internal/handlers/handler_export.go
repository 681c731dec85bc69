package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
	"github.com/ostwerk/billable_app/internal/middleware"
)

// exportHandler handles HTTP requests related to the monthly accounting export.
type exportHandler struct {
	exportService portssvc.ExportSvc
}

// newExportHandler creates a new exportHandler.
func newExportHandler(es portssvc.ExportSvc) *exportHandler {
	return &exportHandler{
		exportService: es,
	}
}

// registerExportRoutes registers export routes nested under a company.
func registerExportRoutes(rg *gin.RouterGroup, exportService portssvc.ExportSvc) {
	h := newExportHandler(exportService)

	exports := rg.Group("/exports")
	{
		exports.POST("", h.createExport)
		exports.GET("", h.listExports)
		exports.GET("/:export_id", h.getExport)
		exports.GET("/:export_id/workbook", h.downloadExportWorkbook)
	}
}

// createExport godoc
// @Summary Run a monthly accounting export
// @Description Collects the issued and paid documents and approved reimbursable expenses of a company month into a new export batch. Consumed expenses are stamped atomically. Admin only.
// @Tags exports
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   export body dto.CreateExportRequest true "Year and month"
// @Success 201 {object} dto.ExportResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "An expense was exported concurrently"
// @Failure 422 {object} map[string]string "Nothing to export"
// @Failure 500 {object} map[string]string "Failed to create export"
// @Security BearerAuth
// @Router /companies/{company_id}/exports [post]
func (h *exportHandler) createExport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExport", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	batch, err := h.exportService.CreateExport(c.Request.Context(), companyID, req.Year, req.Month, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create export")
		return
	}

	logger.Info("Export created", slog.String("export_id", batch.ExportID), slog.Int("year", batch.Year), slog.Int("month", batch.Month), slog.Int("document_count", len(batch.DocumentIDs)), slog.Int("expense_count", len(batch.ExpenseIDs)))
	c.JSON(http.StatusCreated, dto.ToExportResponse(batch))
}

// listExports godoc
// @Summary List export batches
// @Description Retrieves the company's export batches, newest first.
// @Tags exports
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {object} dto.ListExportsResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to list exports"
// @Security BearerAuth
// @Router /companies/{company_id}/exports [get]
func (h *exportHandler) listExports(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	batches, err := h.exportService.ListExports(c.Request.Context(), companyID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list exports")
		return
	}

	c.JSON(http.StatusOK, dto.ToListExportsResponse(batches))
}

// getExport godoc
// @Summary Get an export batch
// @Description Retrieves a specific export batch.
// @Tags exports
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   export_id path string true "Export ID"
// @Success 200 {object} dto.ExportResponse
// @Failure 404 {object} map[string]string "Export not found"
// @Failure 500 {object} map[string]string "Failed to retrieve export"
// @Security BearerAuth
// @Router /companies/{company_id}/exports/{export_id} [get]
func (h *exportHandler) getExport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	exportID := c.Param("export_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	batch, err := h.exportService.GetExportByID(c.Request.Context(), companyID, exportID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve export")
		return
	}

	c.JSON(http.StatusOK, dto.ToExportResponse(batch))
}

// downloadExportWorkbook godoc
// @Summary Download an export as a workbook
// @Description Renders an export batch to an xlsx workbook and returns it as a file download. External accounting tools can pull this with an x-api-key integration token.
// @Tags exports
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param   company_id path string true "Company ID"
// @Param   export_id path string true "Export ID"
// @Success 200 {file} binary "Workbook"
// @Failure 404 {object} map[string]string "Export not found"
// @Failure 500 {object} map[string]string "Failed to render export"
// @Security BearerAuth
// @Router /companies/{company_id}/exports/{export_id}/workbook [get]
func (h *exportHandler) downloadExportWorkbook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	exportID := c.Param("export_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	workbook, filename, err := h.exportService.RenderExportWorkbook(c.Request.Context(), companyID, exportID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to render export")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

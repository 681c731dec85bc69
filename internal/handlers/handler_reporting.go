package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
	"github.com/ostwerk/billable_app/internal/middleware"
)

// reportingHandler handles HTTP requests for company-level reports.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers reporting routes nested under a company.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/revenue", h.revenueSummary)
		reports.GET("/cashflow", h.cashFlowForecast)
	}
}

// revenueSummary godoc
// @Summary Monthly revenue summary
// @Description Aggregates issued document totals per calendar month over the requested range. Credit notes subtract from the month they were issued in.
// @Tags reports
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   from query string true "Range start (YYYY-MM-DD)"
// @Param   to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} dto.RevenueSummaryResponse
// @Failure 400 {object} map[string]string "Invalid range"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to build revenue summary"
// @Security BearerAuth
// @Router /companies/{company_id}/reports/revenue [get]
func (h *reportingHandler) revenueSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var params dto.RevenueSummaryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for RevenueSummary", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	if params.From.IsZero() || params.To.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both from and to are required (YYYY-MM-DD)"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rows, err := h.reportingService.RevenueSummary(c.Request.Context(), companyID, params.From, params.To, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to build revenue summary")
		return
	}

	c.JSON(http.StatusOK, dto.ToRevenueSummaryResponse(rows))
}

// cashFlowForecast godoc
// @Summary Twelve-week cash flow forecast
// @Description Projects weekly inflows from unpaid issued documents, bucketed by due date. Overdue amounts land in the first week.
// @Tags reports
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   asOf query string false "Forecast anchor date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.CashFlowForecastResponse
// @Failure 400 {object} map[string]string "Invalid asOf date"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to build forecast"
// @Security BearerAuth
// @Router /companies/{company_id}/reports/cashflow [get]
func (h *reportingHandler) cashFlowForecast(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	asOf := time.Now().UTC()
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date, expected YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	weeks, err := h.reportingService.CashFlowForecast(c.Request.Context(), companyID, asOf, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to build forecast")
		return
	}

	c.JSON(http.StatusOK, dto.ToCashFlowForecastResponse(weeks))
}

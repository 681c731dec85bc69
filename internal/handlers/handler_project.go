package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
	"github.com/ostwerk/billable_app/internal/middleware"
)

// projectHandler handles HTTP requests related to projects.
type projectHandler struct {
	projectService portssvc.ProjectSvcFacade
}

// newProjectHandler creates a new projectHandler.
func newProjectHandler(ps portssvc.ProjectSvcFacade) *projectHandler {
	return &projectHandler{
		projectService: ps,
	}
}

// registerProjectRoutes registers project routes nested under a company.
func registerProjectRoutes(rg *gin.RouterGroup, projectService portssvc.ProjectSvcFacade) {
	h := newProjectHandler(projectService)

	projects := rg.Group("/projects")
	{
		projects.POST("", h.createProject)
		projects.GET("", h.listProjects)
		projects.GET("/:project_id", h.getProject)
		projects.PUT("/:project_id", h.updateProject)
		projects.DELETE("/:project_id", h.deactivateProject)
	}
}

// createProject godoc
// @Summary Create a new project
// @Description Creates a new project under an existing customer of the company.
// @Tags projects
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   project body dto.CreateProjectRequest true "Project details"
// @Success 201 {object} dto.ProjectResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Customer not found"
// @Failure 500 {object} map[string]string "Failed to create project"
// @Security BearerAuth
// @Router /companies/{company_id}/projects [post]
func (h *projectHandler) createProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateProject", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), companyID, req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create project")
		return
	}

	logger.Info("Project created successfully", slog.String("project_id", project.ProjectID), slog.String("company_id", companyID))
	c.JSON(http.StatusCreated, dto.ToProjectResponse(project))
}

// listProjects godoc
// @Summary List projects
// @Description Retrieves a paginated list of the company's projects.
// @Tags projects
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListProjectsResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to list projects"
// @Security BearerAuth
// @Router /companies/{company_id}/projects [get]
func (h *projectHandler) listProjects(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var params dto.ListProjectsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.projectService.ListProjects(c.Request.Context(), companyID, userID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list projects")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getProject godoc
// @Summary Get project details
// @Description Retrieves a specific project of the company.
// @Tags projects
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   project_id path string true "Project ID"
// @Success 200 {object} dto.ProjectResponse
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to retrieve project"
// @Security BearerAuth
// @Router /companies/{company_id}/projects/{project_id} [get]
func (h *projectHandler) getProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	projectID := c.Param("project_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	project, err := h.projectService.GetProjectByID(c.Request.Context(), companyID, projectID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve project")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectResponse(project))
}

// updateProject godoc
// @Summary Update project details
// @Description Updates project details such as name, rate and billing type.
// @Tags projects
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   project_id path string true "Project ID"
// @Param   project body dto.UpdateProjectRequest true "Fields to update"
// @Success 200 {object} dto.ProjectResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to update project"
// @Security BearerAuth
// @Router /companies/{company_id}/projects/{project_id} [put]
func (h *projectHandler) updateProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	projectID := c.Param("project_id")

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), companyID, projectID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update project")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectResponse(project))
}

// deactivateProject godoc
// @Summary Deactivate a project
// @Description Marks a project inactive; no further time entries can be logged against it.
// @Tags projects
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   project_id path string true "Project ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to deactivate project"
// @Security BearerAuth
// @Router /companies/{company_id}/projects/{project_id} [delete]
func (h *projectHandler) deactivateProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	projectID := c.Param("project_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.projectService.DeactivateProject(c.Request.Context(), companyID, projectID, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to deactivate project")
		return
	}

	c.Status(http.StatusNoContent)
}

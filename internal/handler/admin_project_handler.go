package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/service"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
	"github.com/clubselect/clubselect-api/pkg/response"
)

// AdminProjectHandler exposes the back-office project endpoints.
type AdminProjectHandler struct {
	projects    *service.AdminProjectService
	definitions *service.DefinitionService
	exports     *service.ExportService
}

// NewAdminProjectHandler constructs AdminProjectHandler.
func NewAdminProjectHandler(projects *service.AdminProjectService, definitions *service.DefinitionService, exports *service.ExportService) *AdminProjectHandler {
	return &AdminProjectHandler{projects: projects, definitions: definitions, exports: exports}
}

// List godoc
// @Summary List projects
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/projects [get]
func (h *AdminProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, projects, nil)
}

// Get godoc
// @Summary Project by id with roster size
// @Tags Admin
// @Produce json
// @Param id path string true "Project id"
// @Success 200 {object} response.Envelope
// @Router /admin/projects/{id} [get]
func (h *AdminProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, project, nil)
}

// Create godoc
// @Summary Create project
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.ProjectRequest true "Project payload"
// @Success 201 {object} response.Envelope
// @Router /admin/projects [post]
func (h *AdminProjectHandler) Create(c *gin.Context) {
	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	project, err := h.projects.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// Update godoc
// @Summary Update project
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Project id"
// @Param payload body dto.ProjectRequest true "Project payload"
// @Success 200 {object} response.Envelope
// @Router /admin/projects/{id} [put]
func (h *AdminProjectHandler) Update(c *gin.Context) {
	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	project, err := h.projects.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, project, nil)
}

// Delete godoc
// @Summary Delete project
// @Tags Admin
// @Param id path string true "Project id"
// @Success 204
// @Router /admin/projects/{id} [delete]
func (h *AdminProjectHandler) Delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BulkAddStudents godoc
// @Summary Import a roster of identifiers
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Project id"
// @Param payload body dto.BulkStudentsRequest true "Identifiers"
// @Success 200 {object} response.Envelope
// @Router /admin/projects/{id}/students [post]
func (h *AdminProjectHandler) BulkAddStudents(c *gin.Context) {
	var req dto.BulkStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.projects.BulkAddStudents(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// ListStudents godoc
// @Summary Project roster
// @Tags Admin
// @Produce json
// @Param id path string true "Project id"
// @Success 200 {object} response.Envelope
// @Router /admin/projects/{id}/students [get]
func (h *AdminProjectHandler) ListStudents(c *gin.Context) {
	students, err := h.projects.ListStudents(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// RemoveStudent godoc
// @Summary Remove a student from a project
// @Tags Admin
// @Param id path string true "Project id"
// @Param studentId path string true "Student id"
// @Success 204
// @Router /admin/projects/{id}/students/{studentId} [delete]
func (h *AdminProjectHandler) RemoveStudent(c *gin.Context) {
	if err := h.projects.RemoveStudent(c.Request.Context(), c.Param("id"), c.Param("studentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ImportDefinition godoc
// @Summary Create a project from a YAML definition
// @Tags Admin
// @Accept application/yaml
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /admin/projects/import [post]
func (h *AdminProjectHandler) ImportDefinition(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read body"))
		return
	}
	project, err := h.definitions.Import(c.Request.Context(), raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// ExportDefinition godoc
// @Summary Download a project as a YAML definition
// @Tags Admin
// @Produce application/yaml
// @Param id path string true "Project id"
// @Success 200 {file} binary
// @Router /admin/projects/{id}/export [get]
func (h *AdminProjectHandler) ExportDefinition(c *gin.Context) {
	file, err := h.definitions.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// ExportSubmissions godoc
// @Summary Download a project's submissions
// @Tags Admin
// @Produce text/csv
// @Param id path string true "Project id"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /admin/projects/{id}/submissions/export [get]
func (h *AdminProjectHandler) ExportSubmissions(c *gin.Context) {
	file, err := h.exports.ExportSubmissions(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// ClearSubmissions godoc
// @Summary Delete every submission in a project
// @Tags Admin
// @Produce json
// @Param id path string true "Project id"
// @Success 200 {object} response.Envelope
// @Router /admin/projects/{id}/submissions [delete]
func (h *AdminProjectHandler) ClearSubmissions(c *gin.Context) {
	deleted, err := h.exports.ClearSubmissions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}

func serveFile(c *gin.Context, file *dto.ExportFile) {
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

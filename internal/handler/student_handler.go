package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/service"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
	"github.com/clubselect/clubselect-api/pkg/response"
)

// StudentHandler exposes the authenticated student endpoints: project
// views, enrollment, and submission.
type StudentHandler struct {
	projects    *service.ProjectService
	enrollments *service.EnrollmentService
	submissions *service.SubmissionService
	metrics     *service.MetricsService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(projects *service.ProjectService, enrollments *service.EnrollmentService, submissions *service.SubmissionService, metrics *service.MetricsService) *StudentHandler {
	return &StudentHandler{projects: projects, enrollments: enrollments, submissions: submissions, metrics: metrics}
}

// ListProjects godoc
// @Summary List the caller's assigned projects
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/projects [get]
func (h *StudentHandler) ListProjects(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	resp, err := h.projects.ListForStudent(c.Request.Context(), claims.SubjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// GetProject godoc
// @Summary Project detail with courses and window status
// @Tags Student
// @Produce json
// @Param id path string true "Project id"
// @Success 200 {object} response.Envelope
// @Router /student/projects/{id} [get]
func (h *StudentHandler) GetProject(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.projects.GetDetail(c.Request.Context(), claims.SubjectID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Enroll godoc
// @Summary Enroll in a course
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body dto.EnrollRequest true "Course selection"
// @Success 201 {object} response.Envelope
// @Router /student/enrollments [post]
func (h *StudentHandler) Enroll(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.enrollments.Enroll(c.Request.Context(), claims.SubjectID, req)
	if h.metrics != nil {
		h.metrics.RecordEnrollment("enroll", outcomeLabel(err))
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Unenroll godoc
// @Summary Remove an enrollment
// @Tags Student
// @Produce json
// @Param courseId path string true "Course id"
// @Success 204
// @Router /student/enrollments/{courseId} [delete]
func (h *StudentHandler) Unenroll(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	err := h.enrollments.Unenroll(c.Request.Context(), claims.SubjectID, c.Param("courseId"))
	if h.metrics != nil {
		h.metrics.RecordEnrollment("unenroll", outcomeLabel(err))
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Submit godoc
// @Summary Submit course selections for a project
// @Tags Student
// @Produce json
// @Param id path string true "Project id"
// @Success 201 {object} response.Envelope
// @Router /student/projects/{id}/submit [post]
func (h *StudentHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	view, err := h.submissions.Submit(c.Request.Context(), claims.SubjectID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordSubmission()
	}
	response.Created(c, view)
}

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

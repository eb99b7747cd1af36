package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/service"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
	"github.com/clubselect/clubselect-api/pkg/response"
)

// AdminCourseHandler exposes the back-office course, tag, and
// time-section endpoints.
type AdminCourseHandler struct {
	courses  *service.CourseService
	tags     *service.TagService
	sections *service.SectionService
}

// NewAdminCourseHandler constructs AdminCourseHandler.
func NewAdminCourseHandler(courses *service.CourseService, tags *service.TagService, sections *service.SectionService) *AdminCourseHandler {
	return &AdminCourseHandler{courses: courses, tags: tags, sections: sections}
}

// ListCourses godoc
// @Summary List a project's courses
// @Tags Admin
// @Produce json
// @Param id path string true "Project id"
// @Success 200 {object} response.Envelope
// @Router /admin/projects/{id}/courses [get]
func (h *AdminCourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courses.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// GetCourse godoc
// @Summary Course by id
// @Tags Admin
// @Produce json
// @Param courseId path string true "Course id"
// @Success 200 {object} response.Envelope
// @Router /admin/courses/{courseId} [get]
func (h *AdminCourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// CreateCourse godoc
// @Summary Create a course in a project
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Project id"
// @Param payload body dto.CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /admin/projects/{id}/courses [post]
func (h *AdminCourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse godoc
// @Summary Update a course
// @Tags Admin
// @Accept json
// @Produce json
// @Param courseId path string true "Course id"
// @Param payload body dto.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /admin/courses/{courseId} [put]
func (h *AdminCourseHandler) UpdateCourse(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("courseId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// DeleteCourse godoc
// @Summary Delete a course
// @Tags Admin
// @Param courseId path string true "Course id"
// @Success 204
// @Router /admin/courses/{courseId} [delete]
func (h *AdminCourseHandler) DeleteCourse(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("courseId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListTags godoc
// @Summary List a project's tags
// @Tags Admin
// @Produce json
// @Param id path string true "Project id"
// @Success 200 {object} response.Envelope
// @Router /admin/projects/{id}/tags [get]
func (h *AdminCourseHandler) ListTags(c *gin.Context) {
	tags, err := h.tags.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tags, nil)
}

// CreateTag godoc
// @Summary Create a tag in a project
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Project id"
// @Param payload body dto.TagRequest true "Tag payload"
// @Success 201 {object} response.Envelope
// @Router /admin/projects/{id}/tags [post]
func (h *AdminCourseHandler) CreateTag(c *gin.Context) {
	var req dto.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	tag, err := h.tags.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tag)
}

// UpdateTag godoc
// @Summary Update a tag
// @Tags Admin
// @Accept json
// @Produce json
// @Param tagId path string true "Tag id"
// @Param payload body dto.TagRequest true "Tag payload"
// @Success 200 {object} response.Envelope
// @Router /admin/tags/{tagId} [put]
func (h *AdminCourseHandler) UpdateTag(c *gin.Context) {
	var req dto.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	tag, err := h.tags.Update(c.Request.Context(), c.Param("tagId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tag, nil)
}

// DeleteTag godoc
// @Summary Delete a tag
// @Tags Admin
// @Param tagId path string true "Tag id"
// @Success 204
// @Router /admin/tags/{tagId} [delete]
func (h *AdminCourseHandler) DeleteTag(c *gin.Context) {
	if err := h.tags.Delete(c.Request.Context(), c.Param("tagId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListSections godoc
// @Summary List a project's time sections
// @Tags Admin
// @Produce json
// @Param id path string true "Project id"
// @Success 200 {object} response.Envelope
// @Router /admin/projects/{id}/sections [get]
func (h *AdminCourseHandler) ListSections(c *gin.Context) {
	sections, err := h.sections.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// CreateSection godoc
// @Summary Create a time section in a project
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Project id"
// @Param payload body dto.SectionRequest true "Section payload"
// @Success 201 {object} response.Envelope
// @Router /admin/projects/{id}/sections [post]
func (h *AdminCourseHandler) CreateSection(c *gin.Context) {
	var req dto.SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	section, err := h.sections.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// UpdateSection godoc
// @Summary Update a time section
// @Tags Admin
// @Accept json
// @Produce json
// @Param sectionId path string true "Section id"
// @Param payload body dto.SectionRequest true "Section payload"
// @Success 200 {object} response.Envelope
// @Router /admin/sections/{sectionId} [put]
func (h *AdminCourseHandler) UpdateSection(c *gin.Context) {
	var req dto.SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	section, err := h.sections.Update(c.Request.Context(), c.Param("sectionId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// DeleteSection godoc
// @Summary Delete a time section
// @Tags Admin
// @Param sectionId path string true "Section id"
// @Success 204
// @Router /admin/sections/{sectionId} [delete]
func (h *AdminCourseHandler) DeleteSection(c *gin.Context) {
	if err := h.sections.Delete(c.Request.Context(), c.Param("sectionId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

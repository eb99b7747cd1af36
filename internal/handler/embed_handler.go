package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubselect/clubselect-api/internal/service"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
	"github.com/clubselect/clubselect-api/pkg/response"
)

// EmbedHandler serves the unauthenticated status widget. The student
// token in the query string is the only credential.
type EmbedHandler struct {
	projects *service.ProjectService
}

// NewEmbedHandler constructs EmbedHandler.
func NewEmbedHandler(projects *service.ProjectService) *EmbedHandler {
	return &EmbedHandler{projects: projects}
}

// Status godoc
// @Summary Submission status widget payload
// @Description Without a project the widget falls back to the student's oldest assigned project.
// @Tags Embed
// @Produce json
// @Param id path string false "Project id"
// @Param token query string true "Student token"
// @Param project query string false "Project id (alternative to the path form)"
// @Success 200 {object} response.Envelope
// @Router /embed/projects/{id}/status [get]
func (h *EmbedHandler) Status(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	projectID := c.Param("id")
	if projectID == "" {
		projectID = c.Query("project")
	}
	payload, err := h.projects.EmbedStatus(c.Request.Context(), token, projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

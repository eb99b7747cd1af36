package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/models"
	"github.com/clubselect/clubselect-api/internal/service"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
	"github.com/clubselect/clubselect-api/pkg/response"
)

// AuthHandler exposes the login and token-validation endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary Admin login
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// ValidateToken godoc
// @Summary Validate a student identifier
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body dto.ValidateTokenRequest true "Identifier"
// @Success 200 {object} response.Envelope
// @Router /auth/validate [post]
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	var req dto.ValidateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.auth.ValidateStudentIdentifier(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/service"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
	"github.com/clubselect/clubselect-api/pkg/response"
)

// SettingHandler exposes the site settings. Reads are public so the
// front end can brand itself before anyone signs in; writes are admin
// only.
type SettingHandler struct {
	settings *service.SettingService
}

// NewSettingHandler constructs SettingHandler.
func NewSettingHandler(settings *service.SettingService) *SettingHandler {
	return &SettingHandler{settings: settings}
}

// Get godoc
// @Summary Read a site setting
// @Tags Settings
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} response.Envelope
// @Router /settings/{key} [get]
func (h *SettingHandler) Get(c *gin.Context) {
	setting, err := h.settings.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, setting, nil)
}

// Set godoc
// @Summary Update a site setting
// @Tags Settings
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param payload body dto.SettingRequest true "Value"
// @Success 200 {object} response.Envelope
// @Router /admin/settings/{key} [put]
func (h *SettingHandler) Set(c *gin.Context) {
	var req dto.SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	setting, err := h.settings.Set(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, setting, nil)
}

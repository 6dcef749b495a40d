package handler

import (
	"net/http"

	"invoicer/internal/middleware"
	"invoicer/internal/service"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	settings := router.Group("/api/settings", auth)
	{
		settings.GET("/company", h.GetCompanySettings)
		settings.PUT("/company", h.UpdateCompanySettings)
	}
}

// GetCompanySettings returns the company profile used on rendered invoices
// @Summary      Get company settings
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.CompanySettings}
// @Router       /api/settings/company [get]
func (h *SettingsHandler) GetCompanySettings(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		status := service.StatusOf(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}

// UpdateCompanySettings updates the company profile
// @Summary      Update company settings
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.UpdateSettingsRequest  true  "Settings Payload"
// @Success      200      {object}  response.Response{data=model.CompanySettings}
// @Failure      400      {object}  response.Response
// @Router       /api/settings/company [put]
func (h *SettingsHandler) UpdateCompanySettings(c *gin.Context) {
	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		status := service.StatusOf(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}

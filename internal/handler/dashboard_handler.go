package handler

import (
	"net/http"

	"invoicer/internal/middleware"
	"invoicer/internal/service"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	statsService service.StatsService
}

func NewDashboardHandler(statsService service.StatsService) *DashboardHandler {
	return &DashboardHandler{statsService: statsService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	dashboard := router.Group("/api/dashboard", auth)
	{
		dashboard.GET("/stats", h.GetStats)
	}
}

// GetStats returns dashboard aggregates for the caller's invoices
// @Summary      Dashboard statistics
// @Description  Revenue, status distribution, six-month trend and recent invoices
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.DashboardStats}
// @Failure      500  {object}  response.Response
// @Router       /api/dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.Dashboard(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		status := service.StatusOf(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

package handler

import (
	"net/http"

	"invoicer/internal/service"
	"invoicer/pkg/pagination"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

type OperationsHandler struct {
	operationsService service.OperationsService
}

func NewOperationsHandler(operationsService service.OperationsService) *OperationsHandler {
	return &OperationsHandler{operationsService: operationsService}
}

func (h *OperationsHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	operations := router.Group("/api/operations", auth)
	{
		operations.GET("", h.ListOperations)
	}
}

// ListOperations returns the audit trail, newest first
// @Summary      List operations log
// @Tags         operations
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/operations [get]
func (h *OperationsHandler) ListOperations(c *gin.Context) {
	params := pagination.Parse(c)

	entries, total, err := h.operationsService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		status := service.StatusOf(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"operations": entries,
		"total":      total,
		"page":       params.Page,
		"limit":      params.Limit,
	}))
}

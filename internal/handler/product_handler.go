package handler

import (
	"net/http"

	"invoicer/internal/stock"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProductHandler proxies catalog lookups to the external shop so the
// frontend never touches shop credentials.
type ProductHandler struct {
	catalog stock.Catalog
}

func NewProductHandler(catalog stock.Catalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	products := router.Group("/api/products", auth)
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
	}
}

// ListProducts lists shop catalog products
// @Summary      List shop products
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Search term"
// @Success      200     {object}  response.Response{data=object}
// @Failure      502     {object}  response.Response
// @Router       /api/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "Shop integration is not configured"))
		return
	}

	filters := map[string]string{}
	if search := c.Query("search"); search != "" {
		filters["search"] = search
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, "Failed to fetch shop products"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    len(products),
	}))
}

// GetProduct fetches one shop catalog product
// @Summary      Get shop product
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response{data=stock.Product}
// @Failure      404  {object}  response.Response
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "Shop integration is not configured"))
		return
	}

	product, err := h.catalog.GetProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, "Failed to fetch shop product"))
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Product not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

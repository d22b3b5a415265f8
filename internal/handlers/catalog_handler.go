package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/merchkit/go-commerce-orderflow/internal/catalog"
)

// registerCatalogRoutes exposes the storefront view of variable products:
// the price/availability matrix the variation picker needs.
func registerCatalogRoutes(r *gin.Engine, cfg HandlerConfig) {
	r.GET("/products/:productID/variations", func(c *gin.Context) {
		product, ok := cfg.Catalog.Find(c.Param("productID"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "msg": "product does not exist"})
			return
		}
		variable, ok := product.(*catalog.Variable)
		if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "invalid_state", "msg": "product is not variable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"product_id": variable.ID(),
			"variations": catalog.Snapshots(variable),
		})
	})
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"restaurant-orders-api/store"
)

// PublicHandler serves the storefront: menu browsing and single-order lookup.
type PublicHandler struct {
	Catalog *store.CatalogStore
	Orders  *store.OrderStore
	Log     *logrus.Logger
}

// ListCategories returns every category with its subcategories, in display
// order.
func (h *PublicHandler) ListCategories(c *gin.Context) {
	cats, err := h.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(cats), "categories": cats})
}

// ListProducts returns the menu, filterable by category, subcategory, name
// search and recommended flag. The storefront only sees available products.
func (h *PublicHandler) ListProducts(c *gin.Context) {
	f := store.ProductFilter{
		Search:        c.Query("search"),
		OnlyAvailable: true,
		Recommended:   c.Query("recommended") == "true",
	}
	if v := c.Query("category_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			f.CategoryID = uint(id)
		}
	}
	if v := c.Query("subcategory_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			f.SubcategoryID = uint(id)
		}
	}
	products, err := h.Catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "products": products})
}

// GetProduct returns one product's full detail.
func (h *PublicHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	p, err := h.Catalog.GetProduct(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

// GetOrder lets a customer look up their order by code.
func (h *PublicHandler) GetOrder(c *gin.Context) {
	order, err := h.Orders.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"restaurant-orders-api/models"
	"restaurant-orders-api/store"
)

// AdminCatalogHandler is product and category CRUD. Deletions go through the
// referential integrity guard so historical orders keep valid references.
type AdminCatalogHandler struct {
	Catalog *store.CatalogStore
	Log     *logrus.Logger
}

// Categories

type CategoryRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	DisplayOrder int    `json:"display_order"`
}

func (h *AdminCatalogHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat := models.Category{
		Name:         req.Name,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		DisplayOrder: req.DisplayOrder,
	}
	if err := h.Catalog.CreateCategory(c.Request.Context(), &cat); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": cat})
}

func (h *AdminCatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	fields, ok := bindAllowed(c, map[string]bool{
		"name": true, "description": true, "image_url": true, "display_order": true,
	})
	if !ok {
		return
	}
	cat, err := h.Catalog.UpdateCategory(c.Request.Context(), id, fields)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": cat})
}

func (h *AdminCatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

type SubcategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *AdminCatalogHandler) CreateSubcategory(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req SubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sc := models.Subcategory{CategoryID: id, Name: req.Name, Description: req.Description}
	if err := h.Catalog.CreateSubcategory(c.Request.Context(), &sc); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subcategory": sc})
}

// Products

type ProductRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	PriceCents    int64  `json:"price_cents" binding:"required,gt=0"`
	CategoryID    uint   `json:"category_id" binding:"required"`
	SubcategoryID *uint  `json:"subcategory_id"`
	ImageURL      string `json:"image_url"`
	PrepMinutes   int    `json:"preparation_time_minutes"`
	DisplayOrder  int    `json:"display_order"`
	IsVegetarian  bool   `json:"is_vegetarian"`
	IsSpicy       bool   `json:"is_spicy"`
	IsGlutenFree  bool   `json:"is_gluten_free"`
	IsChefSpecial bool   `json:"is_chef_special"`
	IsRecommended bool   `json:"is_recommended"`
}

func (h *AdminCatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.Catalog.ListProducts(c.Request.Context(), store.ProductFilter{
		Search: c.Query("search"),
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "products": products})
}

func (h *AdminCatalogHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := models.Product{
		Name:          req.Name,
		Description:   req.Description,
		PriceCents:    req.PriceCents,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		ImageURL:      req.ImageURL,
		PrepMinutes:   req.PrepMinutes,
		DisplayOrder:  req.DisplayOrder,
		IsAvailable:   true,
		IsVegetarian:  req.IsVegetarian,
		IsSpicy:       req.IsSpicy,
		IsGlutenFree:  req.IsGlutenFree,
		IsChefSpecial: req.IsChefSpecial,
		IsRecommended: req.IsRecommended,
	}
	if err := h.Catalog.CreateProduct(c.Request.Context(), &p); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": p})
}

func (h *AdminCatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	fields, ok := bindAllowed(c, map[string]bool{
		"name": true, "description": true, "price_cents": true, "category_id": true,
		"subcategory_id": true, "image_url": true, "preparation_time_minutes": true,
		"display_order": true, "is_available": true, "is_vegetarian": true,
		"is_spicy": true, "is_gluten_free": true, "is_chef_special": true,
		"is_recommended": true,
	})
	if !ok {
		return
	}
	// snapshot lines on existing orders are untouched by price edits
	p, err := h.Catalog.UpdateProduct(c.Request.Context(), id, fields)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

// DeleteProduct refuses while any non-cancelled order references the
// product.
func (h *AdminCatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// CanDelete lets the console pre-check before showing a delete button.
func (h *AdminCatalogHandler) CanDeleteProduct(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	can, err := h.Catalog.CanDeleteProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"can_delete": can})
}

// bindAllowed reads a JSON body and keeps only whitelisted keys, the shape
// gorm Updates expects.
func bindAllowed(c *gin.Context, allowed map[string]bool) (map[string]interface{}, bool) {
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	fields := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no updatable fields in request"})
		return nil, false
	}
	return fields, true
}

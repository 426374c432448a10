package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"restaurant-orders-api/models"
	"restaurant-orders-api/store"
)

// sessionHeader carries the cart session token. The first cart response
// returns a fresh token the client echoes back on every later call.
const sessionHeader = "X-Cart-Session"

// CartHandler exposes the session cart to the storefront.
type CartHandler struct {
	Carts *store.CartStore
	Log   *logrus.Logger
}

type AddItemRequest struct {
	ProductID      uint                  `json:"product_id" binding:"required"`
	Quantity       int                   `json:"quantity" binding:"required,min=1"`
	Customizations models.Customizations `json:"customizations"`
}

func (h *CartHandler) token(c *gin.Context) string {
	return c.GetHeader(sessionHeader)
}

func (h *CartHandler) reply(c *gin.Context, view *store.CartView) {
	c.Header(sessionHeader, view.SessionToken)
	c.JSON(http.StatusOK, view)
}

// Get returns the current cart with advisory totals.
func (h *CartHandler) Get(c *gin.Context) {
	view, err := h.Carts.Snapshot(c.Request.Context(), h.token(c))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.reply(c, view)
}

// AddItem adds a product line; identical configurations merge.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.Carts.AddItem(c.Request.Context(), h.token(c), req.ProductID, req.Quantity, req.Customizations)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.reply(c, view)
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// UpdateQuantity sets a line's quantity; zero removes the line.
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	itemID, ok := paramUint(c, "itemId")
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.Carts.UpdateQuantity(c.Request.Context(), h.token(c), itemID, *req.Quantity)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.reply(c, view)
}

// RemoveItem deletes a line outright.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := paramUint(c, "itemId")
	if !ok {
		return
	}
	view, err := h.Carts.RemoveItem(c.Request.Context(), h.token(c), itemID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.reply(c, view)
}

// Clear empties the cart.
func (h *CartHandler) Clear(c *gin.Context) {
	view, err := h.Carts.Clear(c.Request.Context(), h.token(c))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.reply(c, view)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"restaurant-orders-api/store"
)

// CheckoutHandler turns a session cart into an order.
type CheckoutHandler struct {
	Orders *store.OrderStore
	Log    *logrus.Logger
}

type CheckoutRequest struct {
	IdempotencyKey string `json:"idempotency_key" binding:"required"`
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email"`
	CustomerPhone  string `json:"customer_phone"`
	PickupEstimate string `json:"pickup_estimate"` // 20m | 45m | 1h
	Instructions   string `json:"special_instructions"`
}

// Submit runs the authoritative checkout. Contact validation happens in the
// store so a client that skips its own checks gains nothing. A retry with
// the same idempotency key returns the original order.
func (h *CheckoutHandler) Submit(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Orders.Checkout(c.Request.Context(), store.CheckoutInput{
		SessionToken:   c.GetHeader(sessionHeader),
		IdempotencyKey: req.IdempotencyKey,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		PickupEstimate: req.PickupEstimate,
		Instructions:   req.Instructions,
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	status := http.StatusCreated
	if result.Existed {
		status = http.StatusOK
	} else {
		h.Log.WithFields(logrus.Fields{
			"code":        result.Order.Code,
			"total_cents": result.Order.TotalCents,
			"lines":       len(result.Order.Lines),
		}).Info("order created")
	}
	c.JSON(status, gin.H{
		"order_code":              result.Order.Code,
		"status":                  result.Order.Status,
		"subtotal_cents":          result.Order.SubtotalCents,
		"tax_cents":               result.Order.TaxCents,
		"total_cents":             result.Order.TotalCents,
		"estimated_ready_minutes": result.ReadyMinutes,
		"idempotent_replay":       result.Existed,
	})
}

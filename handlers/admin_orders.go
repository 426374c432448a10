package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"restaurant-orders-api/middleware"
	"restaurant-orders-api/models"
	"restaurant-orders-api/realtime"
	"restaurant-orders-api/store"
)

// AdminOrdersHandler is the console's order management surface.
type AdminOrdersHandler struct {
	Orders *store.OrderStore
	Hub    *realtime.Hub
	Log    *logrus.Logger
}

// List returns orders newest-first with status/payment/search/date filters
// and paging, plus the per-status summary the dashboard renders.
func (h *AdminOrdersHandler) List(c *gin.Context) {
	f := store.OrderFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		Search:        c.Query("search"),
		Page:          intQuery(c, "page"),
		Limit:         intQuery(c, "limit"),
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = &t
		}
	}
	page, err := h.Orders.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get returns one order with lines and full status history.
func (h *AdminOrdersHandler) Get(c *gin.Context) {
	order, err := h.Orders.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// UpdateStatus applies a lifecycle transition. A concurrent change by
// another admin surfaces as a 409 rather than being overwritten.
func (h *AdminOrdersHandler) UpdateStatus(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := middleware.GetAdminEmail(c)
	order, err := h.Orders.Transition(c.Request.Context(), c.Param("code"), models.OrderStatus(req.Status), actor, req.Note)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.Hub.Broadcast(realtime.EventOrderStatus, realtime.StatusEvent{
		Code: order.Code, Status: string(order.Status), ChangedBy: actor,
	})
	h.Log.WithFields(logrus.Fields{"code": order.Code, "status": order.Status, "admin": actor}).Info("order status updated")
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type ForceStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// ForceStatus is the explicit administrative override the lifecycle rules
// otherwise forbid. It requires a reason and lands in the audit history.
func (h *AdminOrdersHandler) ForceStatus(c *gin.Context) {
	var req ForceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := middleware.GetAdminEmail(c)
	order, err := h.Orders.ForceStatus(c.Request.Context(), c.Param("code"), models.OrderStatus(req.Status), actor, req.Reason)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.Hub.Broadcast(realtime.EventOrderStatus, realtime.StatusEvent{
		Code: order.Code, Status: string(order.Status), ChangedBy: actor,
	})
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required,oneof=pending completed"`
}

// UpdatePaymentStatus flips the payment flag.
func (h *AdminOrdersHandler) UpdatePaymentStatus(c *gin.Context) {
	var req PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.Orders.SetPaymentStatus(c.Request.Context(), c.Param("code"), models.PaymentStatus(req.PaymentStatus))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func intQuery(c *gin.Context, name string) int {
	n := 0
	if v := c.Query(name); v != "" {
		for _, r := range v {
			if r < '0' || r > '9' {
				return 0
			}
			n = n*10 + int(r-'0')
			if n > 1_000_000 {
				return 0
			}
		}
	}
	return n
}

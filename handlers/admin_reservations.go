package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"restaurant-orders-api/middleware"
	"restaurant-orders-api/models"
	"restaurant-orders-api/realtime"
	"restaurant-orders-api/store"
)

// AdminReservationsHandler manages bookings from the console.
type AdminReservationsHandler struct {
	Reservations *store.ReservationStore
	Hub          *realtime.Hub
	Log          *logrus.Logger
}

// List returns reservations newest-first with status/search/date filters.
func (h *AdminReservationsHandler) List(c *gin.Context) {
	page, err := h.Reservations.List(c.Request.Context(), store.ReservationFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Date:   c.Query("date"),
		Page:   intQuery(c, "page"),
		Limit:  intQuery(c, "limit"),
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get returns one reservation with its history.
func (h *AdminReservationsHandler) Get(c *gin.Context) {
	res, err := h.Reservations.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": res})
}

// UpdateStatus applies a lifecycle transition; the committed change is
// visible to any lookup the moment this returns, and is broadcast to other
// open consoles.
func (h *AdminReservationsHandler) UpdateStatus(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := middleware.GetAdminEmail(c)
	res, err := h.Reservations.Transition(c.Request.Context(), c.Param("code"), models.ReservationStatus(req.Status), actor, req.Note)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.Hub.Broadcast(realtime.EventReservationStatus, realtime.StatusEvent{
		Code: res.Code, Status: string(res.Status), ChangedBy: actor,
	})
	h.Log.WithFields(logrus.Fields{"code": res.Code, "status": res.Status, "admin": actor}).Info("reservation status updated")
	c.JSON(http.StatusOK, gin.H{"reservation": res})
}

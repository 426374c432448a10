package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"restaurant-orders-api/store"
)

// ReservationHandler serves the public reservation form and lookups.
type ReservationHandler struct {
	Reservations *store.ReservationStore
	Log          *logrus.Logger
}

type CreateReservationRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	ReservationDate string `json:"reservation_date"` // YYYY-MM-DD
	ReservationTime string `json:"reservation_time"` // HH:MM
	PartySize       int    `json:"party_size"`
	SpecialRequests string `json:"special_requests"`
}

// Create submits a reservation; all rules run server-side.
func (h *ReservationHandler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.Reservations.Create(c.Request.Context(), store.ReservationInput{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ReservationDate: req.ReservationDate,
		ReservationTime: req.ReservationTime,
		PartySize:       req.PartySize,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.Log.WithFields(logrus.Fields{"code": res.Code, "date": res.ReservationDate}).Info("reservation created")
	c.JSON(http.StatusCreated, gin.H{"reservation": res, "code": res.Code})
}

// Lookup finds reservations by exact code (?code=) or by customer email
// (?email=), newest first.
func (h *ReservationHandler) Lookup(c *gin.Context) {
	if code := c.Query("code"); code != "" {
		res, err := h.Reservations.GetByCode(c.Request.Context(), code)
		if err != nil {
			respondError(c, h.Log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": 1, "reservations": []interface{}{res}})
		return
	}
	if email := c.Query("email"); email != "" {
		list, err := h.Reservations.FindByEmail(c.Request.Context(), email)
		if err != nil {
			respondError(c, h.Log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(list), "reservations": list})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "code or email query parameter required"})
}

// GetByCode returns a single reservation.
func (h *ReservationHandler) GetByCode(c *gin.Context) {
	res, err := h.Reservations.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": res})
}

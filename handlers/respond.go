package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"restaurant-orders-api/models"
)

// paramUint parses a numeric path parameter, writing the 400 itself on
// failure.
func paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}

// respondError maps domain errors onto the HTTP boundary. Validation and
// conflict errors are user-correctable and never logged as failures; only
// unexpected storage errors reach the log at error level, and the client
// gets a generic retryable message for those.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	if ve, ok := models.AsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "errors": ve.Fields})
		return
	}
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrStaleState):
		c.JSON(http.StatusConflict, gin.H{"error": "state changed concurrently, please refresh and retry"})
	case errors.Is(err, models.ErrReferencedByOrder):
		c.JSON(http.StatusConflict, gin.H{"error": "ReferencedByOrder", "detail": "entity is referenced by an existing order; cancel the referencing orders first"})
	case errors.Is(err, models.ErrQuantityOutOfRange):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "QuantityOutOfRange", "detail": err.Error()})
	case errors.Is(err, models.ErrEmptyCart):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cart is empty"})
	case errors.Is(err, models.ErrCartExpired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cart session expired"})
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid status transition", "detail": err.Error()})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "temporary failure, please retry"})
	}
}

package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bus_tracker/internal/middleware"
	"bus_tracker/internal/services"
	"bus_tracker/internal/transit"
)

// respond writes the success envelope.
func respond(c *gin.Context, status int, data interface{}, message string) {
	body := gin.H{"data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// fail maps a service error onto a status code. Internal failures are
// logged and answered with a generic message.
func fail(c *gin.Context, err error) {
	var verr *transit.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": verr.Violations})
	case errors.Is(err, transit.ErrMissingParameter),
		errors.Is(err, transit.ErrInvalidStopName),
		errors.Is(err, transit.ErrInvalidOrdering),
		errors.Is(err, transit.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, transit.ErrAuthorization):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, transit.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, transit.ErrDuplicateKey):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		middleware.Log(c).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// badRequest answers a malformed payload or parameter.
func badRequest(c *gin.Context, msg string, err error) {
	middleware.Log(c).WithError(err).Warn(msg)
	c.JSON(http.StatusBadRequest, gin.H{"error": msg + ": " + err.Error()})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// actor returns the authenticated caller, answering 401 when absent.
func actor(c *gin.Context) (transit.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	}
	return a, ok
}

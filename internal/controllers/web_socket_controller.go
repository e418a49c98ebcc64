package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bus_tracker/internal/middleware"
	"bus_tracker/internal/realtime"
)

// WebSocketController subscribes passengers to route status events.
type WebSocketController struct {
	hub *realtime.Hub
}

func NewWebSocketController(hub *realtime.Hub) *WebSocketController {
	return &WebSocketController{hub: hub}
}

// HandleRouteWebSocket upgrades the connection. ?route_id= limits the
// stream to one route; without it every route is streamed.
func (wc *WebSocketController) HandleRouteWebSocket(c *gin.Context) {
	var routeID uint
	if raw := c.Query("route_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route_id"})
			return
		}
		routeID = uint(id)
	}
	if err := wc.hub.ServeWS(c.Writer, c.Request, routeID); err != nil {
		// the upgrader has already written the error response
		middleware.Log(c).WithError(err).Warn("websocket upgrade failed")
	}
}

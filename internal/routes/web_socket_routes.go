package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
)

func WebSocketRoutes(r *gin.Engine, wc *controllers.WebSocketController) {
	ws := r.Group("/ws")
	{
		ws.GET("/routes", wc.HandleRouteWebSocket)
	}
}

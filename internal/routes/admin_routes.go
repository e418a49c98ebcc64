package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
	"bus_tracker/internal/middleware"
	"bus_tracker/internal/transit"
)

func AdminRoutes(r *gin.Engine, ac *controllers.AdminController, rc *controllers.RouteController, jwt *middleware.JWTManager) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireCapability(jwt, transit.CapViewStats))
	{
		admin.GET("/dashboard/stats", ac.Stats)
		admin.GET("/buses", ac.ListBuses)
		admin.PATCH("/buses/:busId/status", rc.SetStatus)
		admin.DELETE("/buses/:busId", rc.DeleteBus)
		admin.GET("/users", ac.ListUsers)
		admin.DELETE("/users/:userId", ac.DeleteUser)
	}
}

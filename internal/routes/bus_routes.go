package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
	"bus_tracker/internal/middleware"
	"bus_tracker/internal/transit"
)

func BusRoutes(r *gin.Engine, rc *controllers.RouteController, jwt *middleware.JWTManager) {
	buses := r.Group("/buses")
	{
		// public
		buses.GET("/search", rc.SearchBuses)
		buses.GET("/:busId/fare", rc.CalculateFare)
		buses.GET("/:busId/stops", rc.ListStops)

		buses.POST("", middleware.RequireCapability(jwt, transit.CapRegisterRoute), rc.RegisterBus)
		buses.DELETE("/:busId", middleware.RequireAuth(jwt), rc.DeleteBus)
		buses.GET("/:busId/locations", middleware.RequireAuth(jwt), rc.LocationHistory)

		owner := buses.Group("")
		owner.Use(middleware.RequireCapability(jwt, transit.CapManageOwnRoute))
		{
			owner.GET("/my-buses", rc.MyBuses)
			owner.PATCH("/:busId/availability", rc.ToggleAvailability)
			owner.PUT("/:busId", rc.UpdateBus)
			owner.PATCH("/:busId/location", rc.UpdateLocation)
		}
	}
}

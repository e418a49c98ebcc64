package routes

import (
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
	"bus_tracker/internal/middleware"
)

func AuthRoutes(r *gin.Engine, ac *controllers.AuthController, jwt *middleware.JWTManager) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", ac.Signup)
		auth.POST("/login", ac.Login)
		auth.GET("/me", middleware.RequireAuth(jwt), ac.Me)
	}
}

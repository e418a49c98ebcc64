package routes

import (
	"net/http"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"bus_tracker/internal/controllers"
	"bus_tracker/internal/middleware"
	"bus_tracker/internal/realtime"
	"bus_tracker/internal/services"
)

// Deps are the collaborators the router hands to its controllers.
type Deps struct {
	Routes         *services.RouteService
	Admin          *services.AdminService
	Auth           *services.AuthService
	Hub            *realtime.Hub
	JWT            *middleware.JWTManager
	AllowedOrigins []string
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(ginlog.SetLogger(
		ginlog.WithUTC(true),
		ginlog.WithSkipPath([]string{"/healthz"}),
	))
	r.Use(middleware.CORS(d.AllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	AuthRoutes(r, controllers.NewAuthController(d.Auth), d.JWT)
	BusRoutes(r, controllers.NewRouteController(d.Routes), d.JWT)
	AdminRoutes(r, controllers.NewAdminController(d.Admin), controllers.NewRouteController(d.Routes), d.JWT)
	WebSocketRoutes(r, controllers.NewWebSocketController(d.Hub))

	return r
}

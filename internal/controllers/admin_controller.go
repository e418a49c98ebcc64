package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bus_tracker/internal/services"
	"bus_tracker/internal/store"
)

// AdminController serves the /admin endpoints.
type AdminController struct {
	admin *services.AdminService
}

func NewAdminController(admin *services.AdminService) *AdminController {
	return &AdminController{admin: admin}
}

func pageQuery(c *gin.Context) store.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return store.Page{Page: page, Limit: limit}.Normalize()
}

func (ac *AdminController) Stats(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	stats, err := ac.admin.Stats(c.Request.Context(), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"totals":        stats.Totals,
		"recent_routes": toRouteResponses(stats.RecentRoutes),
	}, "")
}

// ListBuses pages through every bus, optionally filtered by ?busType=.
func (ac *AdminController) ListBuses(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	routes, pg, err := ac.admin.ListRoutes(c.Request.Context(), a, c.Query("busType"), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toRouteResponses(routes), "pagination": pg})
}

// ListUsers pages through users, optionally filtered by ?role=.
func (ac *AdminController) ListUsers(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	users, pg, err := ac.admin.ListUsers(c.Request.Context(), a, c.Query("role"), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users, "pagination": pg})
}

func (ac *AdminController) DeleteUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "userId")
	if !ok {
		return
	}
	if err := ac.admin.DeleteUser(c.Request.Context(), a, id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "User deleted successfully")
}

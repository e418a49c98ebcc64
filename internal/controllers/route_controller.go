package controllers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bus_tracker/internal/middleware"
	"bus_tracker/internal/models"
	"bus_tracker/internal/services"
	"bus_tracker/internal/transit"
)

// RouteResponse mirrors models.Route with the geometry rendered as GeoJSON.
type RouteResponse struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BusNumber     string `json:"bus_number"`
	BusName       string `json:"bus_name"`
	BusType       string `json:"bus_type"`
	GovtAgency    string `json:"govt_agency,omitempty"`
	OperatorName  string `json:"operator_name,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`
	DriverID      uint   `json:"driver_id"`

	Source        string  `json:"source"`
	Destination   string  `json:"destination"`
	TotalDistance float64 `json:"total_distance"`
	TotalDuration string  `json:"total_duration"`
	TotalFare     float64 `json:"total_fare"`

	Schedule        models.Schedule      `json:"schedule"`
	CurrentStatus   models.CurrentStatus `json:"current_status"`
	FareCalculation string               `json:"fare_calculation"`
	Geometry        string               `json:"geometry,omitempty"` // GeoJSON LineString
	Stops           []models.Stop        `json:"stops"`
}

// toRouteResponse converts a models.Route to a RouteResponse
func toRouteResponse(route models.Route) RouteResponse {
	geometry, err := services.GeometryGeoJSON(route.Geometry)
	if err != nil {
		geometry = ""
	}
	stops := route.Stops
	if stops == nil {
		stops = []models.Stop{}
	}
	return RouteResponse{
		ID:              route.ID,
		CreatedAt:       route.CreatedAt,
		UpdatedAt:       route.UpdatedAt,
		BusNumber:       route.BusNumber,
		BusName:         route.BusName,
		BusType:         route.BusType,
		GovtAgency:      route.GovtAgency,
		OperatorName:    route.OperatorName,
		ContactNumber:   route.ContactNumber,
		DriverID:        route.DriverID,
		Source:          route.Source,
		Destination:     route.Destination,
		TotalDistance:   route.TotalDistance,
		TotalDuration:   route.TotalDuration,
		TotalFare:       route.TotalFare,
		Schedule:        route.Schedule,
		CurrentStatus:   route.CurrentStatus,
		FareCalculation: route.FareCalculation,
		Geometry:        geometry,
		Stops:           stops,
	}
}

func toRouteResponses(routes []models.Route) []RouteResponse {
	out := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, toRouteResponse(r))
	}
	return out
}

// RouteController serves the /buses endpoints.
type RouteController struct {
	routes *services.RouteService
}

func NewRouteController(routes *services.RouteService) *RouteController {
	return &RouteController{routes: routes}
}

// SearchBuses finds visible buses whose endpoints match the query.
func (rc *RouteController) SearchBuses(c *gin.Context) {
	q := transit.SearchQuery{
		Source:      c.Query("source"),
		Destination: c.Query("destination"),
		BusType:     c.Query("busType"),
	}
	routes, err := rc.routes.SearchRoutes(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}

	msg := fmt.Sprintf("Found %d bus(es)", len(routes))
	if len(routes) == 0 {
		msg = fmt.Sprintf("No buses found for %s to %s. Try different locations.", q.Source, q.Destination)
	}
	c.JSON(http.StatusOK, gin.H{
		"data":    toRouteResponses(routes),
		"count":   len(routes),
		"message": msg,
	})
}

// FareResponse is the fare between two stops of a bus.
type FareResponse struct {
	BusNumber     string  `json:"bus_number"`
	BusName       string  `json:"bus_name"`
	FromStop      string  `json:"from_stop"`
	ToStop        string  `json:"to_stop"`
	Fare          float64 `json:"fare"`
	Distance      float64 `json:"distance"`
	DistanceLabel string  `json:"distance_display"`
	EstimatedTime string  `json:"estimated_time"`
}

// CalculateFare quotes the fare between fromStop and toStop.
func (rc *RouteController) CalculateFare(c *gin.Context) {
	id, ok := idParam(c, "busId")
	if !ok {
		return
	}
	res, err := rc.routes.CalculateFare(c.Request.Context(), id, c.Query("fromStop"), c.Query("toStop"))
	if err != nil {
		fail(c, err)
		return
	}
	q := res.Quote
	respond(c, http.StatusOK, FareResponse{
		BusNumber:     res.Route.BusNumber,
		BusName:       res.Route.BusName,
		FromStop:      q.From.Name,
		ToStop:        q.To.Name,
		Fare:          round2(q.Fare),
		Distance:      round2(q.Distance),
		DistanceLabel: fmt.Sprintf("%s km", trimFloat(q.Distance)),
		EstimatedTime: fmt.Sprintf("~%d mins", q.EstimatedMinutes()),
	}, "")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func trimFloat(v float64) string {
	return fmt.Sprintf("%g", round2(v))
}

// ListStops returns the stops of a bus in travel order.
func (rc *RouteController) ListStops(c *gin.Context) {
	id, ok := idParam(c, "busId")
	if !ok {
		return
	}
	route, err := rc.routes.ListStops(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"bus_number":  route.BusNumber,
		"bus_name":    route.BusName,
		"source":      route.Source,
		"destination": route.Destination,
		"stops":       toRouteResponse(*route).Stops,
	}, "")
}

// RegisterBus stores a new bus for the authenticated driver.
func (rc *RouteController) RegisterBus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var input services.RouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input", err)
		return
	}
	route, err := rc.routes.RegisterRoute(c.Request.Context(), a, input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, toRouteResponse(*route), "Bus registered successfully")
}

// MyBuses lists the buses owned by the authenticated driver.
func (rc *RouteController) MyBuses(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	routes, err := rc.routes.ListMyRoutes(c.Request.Context(), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, toRouteResponses(routes), "")
}

// ToggleAvailability sets whether the bus runs today.
func (rc *RouteController) ToggleAvailability(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "busId")
	if !ok {
		return
	}
	var input struct {
		AvailableToday *bool `json:"available_today" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input", err)
		return
	}
	route, err := rc.routes.ToggleAvailability(c.Request.Context(), id, a, *input.AvailableToday)
	if err != nil {
		fail(c, err)
		return
	}
	msg := "Bus marked as unavailable today"
	if *input.AvailableToday {
		msg = "Bus marked as available today"
	}
	respond(c, http.StatusOK, toRouteResponse(*route), msg)
}

// UpdateBus replaces the bus details and stops.
func (rc *RouteController) UpdateBus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "busId")
	if !ok {
		return
	}
	var input services.RouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input", err)
		return
	}
	route, err := rc.routes.UpdateRoute(c.Request.Context(), id, a, input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, toRouteResponse(*route), "Bus updated successfully")
}

// UpdateLocation records the live position reported by the driver.
func (rc *RouteController) UpdateLocation(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "busId")
	if !ok {
		return
	}
	var input services.LocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid location", err)
		return
	}
	route, err := rc.routes.UpdateLocation(c.Request.Context(), id, a, input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, route.CurrentStatus, "Location updated")
}

// LocationHistory lists the newest position reports, ?limit= capped at 100.
func (rc *RouteController) LocationHistory(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "busId")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	history, err := rc.routes.LocationHistory(c.Request.Context(), id, a, limit)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, history, "")
}

// DeleteBus removes a bus. Owners and admins may delete.
func (rc *RouteController) DeleteBus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "busId")
	if !ok {
		return
	}
	if err := rc.routes.DeleteRoute(c.Request.Context(), id, a); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Bus deleted successfully")
}

// SetStatus activates or deactivates a bus. Admin only.
func (rc *RouteController) SetStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "busId")
	if !ok {
		return
	}
	var input struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input", err)
		return
	}
	route, err := rc.routes.SetActive(c.Request.Context(), id, a, *input.IsActive)
	if err != nil {
		fail(c, err)
		return
	}
	msg := "Bus deactivated"
	if *input.IsActive {
		msg = "Bus activated"
	}
	middleware.Log(c).WithField("route_id", id).Info(msg)
	respond(c, http.StatusOK, toRouteResponse(*route), msg)
}

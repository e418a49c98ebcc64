package services

import (
	"encoding/binary"
	"fmt"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"

	"bus_tracker/internal/models"
)

// parseGeometry parses a GeoJSON LineString and returns WKB bytes.
func parseGeometry(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, err
	}
	if _, ok := g.(*geom.LineString); !ok {
		return nil, fmt.Errorf("geometry must be a LineString, got %T", g)
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// stopsGeometry builds a LineString through the stop locations in stop
// order. Routes with fewer than two located stops, or any stop without a
// location, have no geometry.
func stopsGeometry(stops []models.Stop) ([]byte, error) {
	if len(stops) < 2 {
		return nil, nil
	}
	coords := make([]geom.Coord, 0, len(stops))
	for _, s := range stops {
		if s.Lat == nil || s.Lng == nil {
			return nil, nil
		}
		coords = append(coords, geom.Coord{*s.Lng, *s.Lat})
	}
	ls, err := geom.NewLineString(geom.XY).SetCoords(coords)
	if err != nil {
		return nil, err
	}
	return wkb.Marshal(ls, binary.LittleEndian)
}

// GeometryGeoJSON converts stored WKB into a GeoJSON string.
func GeometryGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// routeGeometry prefers the submitted GeoJSON and falls back to the stops.
func routeGeometry(raw string, stops []models.Stop) ([]byte, error) {
	if raw != "" {
		b, err := parseGeometry(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid geometry: %w", err)
		}
		return b, nil
	}
	return stopsGeometry(stops)
}

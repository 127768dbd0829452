package utils

import (
	"fmt"
	"strings"

	"github.com/thardy/roiconv/pkg/geojson"
)

// GeometryToWKT renders a geometry as a WKT string. Polygon rings are closed
// if the input is not. Returns an empty string for nil or empty geometries.
func GeometryToWKT(g *geojson.Geometry) string {
	if g == nil || len(g.Coordinates) == 0 {
		return ""
	}

	switch g.Type {
	case geojson.TypePoint:
		c := g.Coordinates[0]
		return fmt.Sprintf("POINT (%.10f %.10f)", c.X, c.Y)
	case geojson.TypeLineString:
		points := make([]string, len(g.Coordinates))
		for i, c := range g.Coordinates {
			points[i] = fmt.Sprintf("%.10f %.10f", c.X, c.Y)
		}
		return fmt.Sprintf("LINESTRING (%s)", strings.Join(points, ", "))
	case geojson.TypePolygon:
		points := make([]string, 0, len(g.Coordinates)+1)
		for _, c := range g.Coordinates {
			points = append(points, fmt.Sprintf("%.10f %.10f", c.X, c.Y))
		}
		// Ensure ring is closed for WKT
		if points[0] != points[len(points)-1] {
			points = append(points, points[0])
		}
		return fmt.Sprintf("POLYGON ((%s))", strings.Join(points, ", "))
	}

	return ""
}

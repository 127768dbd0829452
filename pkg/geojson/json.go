package geojson

import (
	"encoding/json"
	"fmt"
)

// geometryJSON is the wire form of Geometry. Coordinates stay raw because
// their nesting depth depends on the geometry type.
type geometryJSON struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
	IsEllipse   bool            `json:"isEllipse,omitempty"`
}

// MarshalJSON emits coordinates at the nesting depth the GeoJSON spec
// requires: a flat pair for Point, an array of pairs for LineString, and an
// array holding a single ring for Polygon.
func (g Geometry) MarshalJSON() ([]byte, error) {
	wire := geometryJSON{Type: string(g.Type), IsEllipse: g.IsEllipse}

	if len(g.Coordinates) > 0 {
		var coords interface{}
		switch g.Type {
		case TypePoint:
			coords = g.Coordinates[0]
		case TypeLineString:
			coords = g.Coordinates
		case TypePolygon:
			coords = [][]Coordinate{g.Coordinates}
		default:
			coords = []Coordinate{}
		}
		raw, err := json.Marshal(coords)
		if err != nil {
			return nil, err
		}
		wire.Coordinates = raw
	}
	return json.Marshal(wire)
}

// UnmarshalJSON reads coordinates at the depth implied by the declared type.
// A Polygon accepts both the spec form (array of rings, outer ring taken)
// and a bare ring, which some producers emit.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var wire geometryJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	g.Type = GeometryType(wire.Type)
	g.IsEllipse = wire.IsEllipse
	g.Coordinates = nil

	if len(wire.Coordinates) == 0 {
		return nil
	}
	switch g.Type {
	case TypePoint:
		var pair Coordinate
		if err := json.Unmarshal(wire.Coordinates, &pair); err != nil {
			return fmt.Errorf("invalid Point coordinates: %w", err)
		}
		g.Coordinates = []Coordinate{pair}
	case TypeLineString:
		var line []Coordinate
		if err := json.Unmarshal(wire.Coordinates, &line); err != nil {
			return fmt.Errorf("invalid LineString coordinates: %w", err)
		}
		g.Coordinates = line
	case TypePolygon:
		var rings [][]Coordinate
		if err := json.Unmarshal(wire.Coordinates, &rings); err != nil {
			var ring []Coordinate
			if err2 := json.Unmarshal(wire.Coordinates, &ring); err2 != nil {
				return fmt.Errorf("invalid Polygon coordinates: %w", err)
			}
			g.Coordinates = ring
			return nil
		}
		if len(rings) > 0 {
			g.Coordinates = rings[0]
		}
	}
	return nil
}

// Decode parses GeoJSON text into a FeatureCollection. Unknown geometry
// types decode intact so the converter can report them per feature.
func Decode(data []byte) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}
	return &fc, nil
}

// Encode serializes a FeatureCollection as pretty-printed GeoJSON. The
// features member is always present, as RFC 7946 requires.
func Encode(fc *FeatureCollection) ([]byte, error) {
	out := *fc
	if out.Features == nil {
		out.Features = []Feature{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize GeoJSON: %w", err)
	}
	return append(data, '\n'), nil
}

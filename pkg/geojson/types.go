// Package geojson holds the GeoJSON-side representation of an annotated
// image: a feature collection with optional image metadata, in the fixed
// dialect understood by QuPath-style consumers.
package geojson

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GeometryType identifies a GeoJSON geometry kind. Only Polygon, LineString
// and Point are part of this dialect; other values survive decoding so the
// converter can report them.
type GeometryType string

const (
	TypePolygon    GeometryType = "Polygon"
	TypeLineString GeometryType = "LineString"
	TypePoint      GeometryType = "Point"
)

// Supported reports whether the type belongs to the dialect.
func (t GeometryType) Supported() bool {
	switch t {
	case TypePolygon, TypeLineString, TypePoint:
		return true
	}
	return false
}

// Coordinate is an (x, y) pair, marshalled as the JSON array [x, y].
type Coordinate struct {
	X float64
	Y float64
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.X, c.Y})
}

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) < 2 {
		return fmt.Errorf("coordinate needs 2 values, has %d", len(pair))
	}
	c.X, c.Y = pair[0], pair[1]
	return nil
}

// Color is an opaque (r, g, b) triple, marshalled as [r, g, b].
type Color struct {
	R int
	G int
	B int
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{c.R, c.G, c.B})
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var triple []int
	if err := json.Unmarshal(data, &triple); err != nil {
		return err
	}
	if len(triple) != 3 {
		return fmt.Errorf("color needs 3 components, has %d", len(triple))
	}
	c.R, c.G, c.B = triple[0], triple[1], triple[2]
	return nil
}

// Geometry is a shape plus the ellipse discriminant. Coordinates are stored
// flat regardless of kind; the wire nesting depth is a codec concern.
type Geometry struct {
	Type        GeometryType
	Coordinates []Coordinate
	IsEllipse   bool
}

// Classification carries the annotation name and display color; it is where
// the ROI name and color round-trip through.
type Classification struct {
	Name  string `json:"name,omitempty"`
	Color *Color `json:"color,omitempty"`
}

// Properties is the fixed feature property set of the dialect.
type Properties struct {
	Color          *Color          `json:"color,omitempty"`
	IsLocked       bool            `json:"isLocked"`
	ObjectType     string          `json:"objectType,omitempty"`
	Classification *Classification `json:"classification,omitempty"`
}

// Feature is one annotated geometry with its properties.
type Feature struct {
	Type       string      `json:"type"`
	ID         string      `json:"id,omitempty"`
	Geometry   *Geometry   `json:"geometry,omitempty"`
	Properties *Properties `json:"properties,omitempty"`
}

// Mpp is the microns-per-pixel pair mirroring the XML pixel size.
type Mpp struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Metadata is the optional collection-level image metadata. Dimensions is
// accepted on read for compatibility but never synthesized on write.
type Metadata struct {
	Filename   string `json:"filename,omitempty"`
	Mpp        *Mpp   `json:"mpp,omitempty"`
	Dimensions []int  `json:"dimensions,omitempty"`
}

// FeatureCollection is a complete GeoJSON-side document.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Features []Feature `json:"features"`
}

func (fc *FeatureCollection) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Feature collection: %d feature(s)", len(fc.Features))
	if fc.Metadata != nil && fc.Metadata.Filename != "" {
		fmt.Fprintf(&sb, " for %q", fc.Metadata.Filename)
	}
	return sb.String()
}

// SummarizeFeatures renders the first n features for preview output.
func (fc *FeatureCollection) SummarizeFeatures(n int) string {
	if len(fc.Features) == 0 {
		return "No features available.\n"
	}
	var sb strings.Builder
	for i, f := range fc.Features {
		if i >= n {
			fmt.Fprintf(&sb, "... and %d more feature(s)\n", len(fc.Features)-n)
			break
		}
		name := ""
		if f.Properties != nil && f.Properties.Classification != nil {
			name = f.Properties.Classification.Name
		}
		if f.Geometry != nil {
			fmt.Fprintf(&sb, "%s %q (id %s): %d coordinate(s)\n", f.Geometry.Type, name, f.ID, len(f.Geometry.Coordinates))
		} else {
			fmt.Fprintf(&sb, "<no geometry> %q (id %s)\n", name, f.ID)
		}
	}
	return sb.String()
}

// Package roi holds the XML-side representation of an image annotation
// document: scalar image metadata plus an ordered list of regions of
// interest (ROIs).
package roi

import (
	"fmt"
	"strings"
)

// Kind identifies the shape of an ROI.
type Kind int

const (
	KindUnknown Kind = iota
	KindPolygon
	KindLine
	KindPoint
	KindPolyline
	KindRectangle
	KindEllipse
)

// classnames maps each kind to the fully qualified shape class name used in
// the XML wire format.
var classnames = map[Kind]string{
	KindPolygon:   "plugins.kernel.roi.roi2d.ROI2DPolygon",
	KindLine:      "plugins.kernel.roi.roi2d.ROI2DLine",
	KindPoint:     "plugins.kernel.roi.roi2d.ROI2DPoint",
	KindPolyline:  "plugins.kernel.roi.roi2d.ROI2DPolyLine",
	KindRectangle: "plugins.kernel.roi.roi2d.ROI2DRectangle",
	KindEllipse:   "plugins.kernel.roi.roi2d.ROI2DEllipse",
}

var kindsByClassname = func() map[string]Kind {
	m := make(map[string]Kind, len(classnames))
	for k, name := range classnames {
		m[name] = k
	}
	return m
}()

// UnknownClassnameError reports an XML classname that does not belong to any
// supported ROI kind.
type UnknownClassnameError struct {
	Classname string
}

func (e *UnknownClassnameError) Error() string {
	return fmt.Sprintf("unsupported ROI classname: %q", e.Classname)
}

// KindFromClassname resolves a fully qualified classname to its Kind.
func KindFromClassname(classname string) (Kind, error) {
	if k, ok := kindsByClassname[classname]; ok {
		return k, nil
	}
	return KindUnknown, &UnknownClassnameError{Classname: classname}
}

// Classname returns the XML classname for the kind, or an empty string for
// KindUnknown.
func (k Kind) Classname() string {
	return classnames[k]
}

func (k Kind) String() string {
	switch k {
	case KindPolygon:
		return "Polygon"
	case KindLine:
		return "Line"
	case KindPoint:
		return "Point"
	case KindPolyline:
		return "Polyline"
	case KindRectangle:
		return "Rectangle"
	case KindEllipse:
		return "Ellipse"
	default:
		return "Unknown"
	}
}

// Point is a raw (x, y) coordinate pair. No units, no CRS.
type Point struct {
	X float64
	Y float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Meta holds the scalar image metadata block. All fields default to zero or
// empty when absent from the input.
type Meta struct {
	PositionX    float64
	PositionY    float64
	PositionZ    float64
	PositionT    float64
	PixelSizeX   float64
	PixelSizeY   float64
	PixelSizeZ   float64
	TimeInterval float64
	ChannelName0 string
	ChannelName1 string
	ChannelName2 string
	UserName     string
}

// ROI is one annotated shape. The meaning of Points depends on Kind: a ring
// for Polygon, an open path for Polyline, two endpoints for Line, a single
// position for Point, and the top-left/bottom-right corners for Rectangle
// and Ellipse.
type ROI struct {
	Kind      Kind
	Classname string // raw wire value, kept for unsupported kinds
	ID        string
	Name      string
	Selected  bool
	ReadOnly  bool
	Color     int // packed ARGB
	Stroke    float64
	Opacity   float64
	ShowName  bool
	Z         float64
	T         float64
	C         float64
	Points    []Point
}

// CheckPoints reports whether the ROI carries the number of points its kind
// requires. Advisory only; construction never enforces it.
func (r *ROI) CheckPoints() error {
	n := len(r.Points)
	switch r.Kind {
	case KindPolygon:
		if n < 3 {
			return fmt.Errorf("polygon ROI needs at least 3 points, has %d", n)
		}
	case KindPolyline:
		if n < 2 {
			return fmt.Errorf("polyline ROI needs at least 2 points, has %d", n)
		}
	case KindLine:
		if n != 2 {
			return fmt.Errorf("line ROI needs exactly 2 points, has %d", n)
		}
	case KindPoint:
		if n != 1 {
			return fmt.Errorf("point ROI needs exactly 1 point, has %d", n)
		}
	case KindRectangle, KindEllipse:
		if n != 2 {
			return fmt.Errorf("%s ROI needs exactly 2 corner points, has %d", strings.ToLower(r.Kind.String()), n)
		}
	default:
		return fmt.Errorf("unknown ROI kind %q", r.Classname)
	}
	return nil
}

// Document is a complete XML-side annotation document. It is transient:
// built fresh per conversion, then serialized or consumed and discarded.
type Document struct {
	Name string
	Meta *Meta
	ROIs []ROI
}

func (d *Document) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Annotation document %q: %d ROI(s)", d.Name, len(d.ROIs))
	if d.Meta != nil {
		fmt.Fprintf(&sb, ", pixel size (%g, %g, %g)", d.Meta.PixelSizeX, d.Meta.PixelSizeY, d.Meta.PixelSizeZ)
	}
	return sb.String()
}

// SummarizeROIs renders the first n ROIs for preview output.
func (d *Document) SummarizeROIs(n int) string {
	if len(d.ROIs) == 0 {
		return "No ROIs found.\n"
	}
	var sb strings.Builder
	for i, r := range d.ROIs {
		if i >= n {
			fmt.Fprintf(&sb, "... and %d more ROI(s)\n", len(d.ROIs)-n)
			break
		}
		fmt.Fprintf(&sb, "%s %q (id %s): %d point(s)\n", r.Kind, r.Name, r.ID, len(r.Points))
	}
	return sb.String()
}

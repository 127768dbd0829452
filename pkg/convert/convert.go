// Copyright (c) 2026 thardy
// Licensed under the MIT License

// Package convert maps annotation documents between their XML-side and
// GeoJSON-side representations. Both directions are pure functions over the
// in-memory models and are safe to call concurrently on independent inputs.
package convert

import (
	"math"

	"github.com/thardy/roiconv/pkg/geojson"
	"github.com/thardy/roiconv/pkg/roi"
)

// EllipseVertices is the number of points an ellipse tessellates into.
const EllipseVertices = 180

// ObjectTypeAnnotation is the fixed objectType written on synthesized
// features.
const ObjectTypeAnnotation = "annotation"

// Fixed ROI style defaults applied on the GeoJSON-to-XML trip. GeoJSON has
// no equivalent fields, so the originals are not recoverable.
const (
	defaultStroke  = 2
	defaultOpacity = 0.3
	defaultIndex   = -1 // z/t/c: -1 means "all"
)

// UnpackColor splits a packed (A)RGB integer into its color triple. Alpha is
// discarded.
func UnpackColor(v int) geojson.Color {
	return geojson.Color{
		R: (v >> 16) & 0xFF,
		G: (v >> 8) & 0xFF,
		B: v & 0xFF,
	}
}

// PackColor combines a color triple into a packed ARGB integer with alpha
// forced opaque. The result wraps to signed 32-bit range to stay
// wire-compatible with consumers that store the value as a 32-bit int.
func PackColor(c geojson.Color) int {
	packed := uint32(0xFF)<<24 | uint32(c.R&0xFF)<<16 | uint32(c.G&0xFF)<<8 | uint32(c.B&0xFF)
	return int(int32(packed))
}

// rectangleRing expands a top-left/bottom-right corner pair into the four
// corners of a ring, counter to reading order: TL, TR, BR, BL.
func rectangleRing(tl, br roi.Point) []geojson.Coordinate {
	return []geojson.Coordinate{
		{X: tl.X, Y: tl.Y},
		{X: br.X, Y: tl.Y},
		{X: br.X, Y: br.Y},
		{X: tl.X, Y: br.Y},
	}
}

// ellipseRing tessellates the ellipse inscribed in the corner bounding box
// into n points via the parametric equation, starting at angle 0.
func ellipseRing(tl, br roi.Point, n int) []geojson.Coordinate {
	cx := (tl.X + br.X) / 2
	cy := (tl.Y + br.Y) / 2
	a := math.Abs(br.X-tl.X) / 2
	b := math.Abs(br.Y-tl.Y) / 2

	coords := make([]geojson.Coordinate, 0, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		coords = append(coords, geojson.Coordinate{
			X: cx + a*math.Cos(angle),
			Y: cy + b*math.Sin(angle),
		})
	}
	return coords
}

// closeRing appends a copy of the first coordinate when the ring is not
// already closed.
func closeRing(coords []geojson.Coordinate) []geojson.Coordinate {
	if len(coords) == 0 {
		return coords
	}
	if coords[0] != coords[len(coords)-1] {
		coords = append(coords, coords[0])
	}
	return coords
}

// ToFeatureCollection converts an XML-side document into a GeoJSON feature
// collection. Feature order matches ROI order; entries the mapping cannot
// express are skipped and reported in the returned warnings.
func ToFeatureCollection(doc *roi.Document, includeMetadata bool) (*geojson.FeatureCollection, []Warning) {
	fc := &geojson.FeatureCollection{
		Type:     "FeatureCollection",
		Features: []geojson.Feature{},
	}

	if includeMetadata {
		meta := roi.Meta{}
		if doc.Meta != nil {
			meta = *doc.Meta
		}
		fc.Metadata = &geojson.Metadata{
			Filename: doc.Name,
			Mpp:      &geojson.Mpp{X: meta.PixelSizeX, Y: meta.PixelSizeY},
		}
	}

	var warnings []Warning
	for i := range doc.ROIs {
		r := &doc.ROIs[i]
		feature, warn := roiToFeature(r)
		if warn != "" {
			warnings = append(warnings, Warning{Index: i, ID: r.ID, Reason: warn})
			continue
		}
		fc.Features = append(fc.Features, *feature)
	}
	return fc, warnings
}

// roiToFeature builds one feature from one ROI. A non-empty warning means
// the ROI cannot be represented and must be skipped.
func roiToFeature(r *roi.ROI) (*geojson.Feature, string) {
	geomType, isEllipse, err := GeometryKind(r.Kind)
	if err != nil {
		if r.Classname != "" {
			return nil, (&UnsupportedKindError{Kind: r.Classname}).Error()
		}
		return nil, err.Error()
	}

	var coords []geojson.Coordinate
	switch r.Kind {
	case roi.KindRectangle:
		if len(r.Points) < 2 {
			return nil, "rectangle ROI must have 2 corner points"
		}
		coords = rectangleRing(r.Points[0], r.Points[1])
	case roi.KindEllipse:
		if len(r.Points) < 2 {
			return nil, "ellipse ROI must have 2 corner points"
		}
		coords = ellipseRing(r.Points[0], r.Points[1], EllipseVertices)
	default:
		coords = make([]geojson.Coordinate, 0, len(r.Points))
		for _, p := range r.Points {
			coords = append(coords, geojson.Coordinate{X: p.X, Y: p.Y})
		}
	}

	if geomType == geojson.TypePolygon {
		coords = closeRing(coords)
	}

	color := UnpackColor(r.Color)
	return &geojson.Feature{
		Type: "Feature",
		ID:   r.ID,
		Geometry: &geojson.Geometry{
			Type:        geomType,
			Coordinates: coords,
			IsEllipse:   isEllipse,
		},
		Properties: &geojson.Properties{
			ObjectType: ObjectTypeAnnotation,
			Classification: &geojson.Classification{
				Name:  r.Name,
				Color: &color,
			},
		},
	}, ""
}

// ToDocument converts a GeoJSON feature collection into an XML-side
// document. ROI order matches feature order; features the mapping cannot
// express are skipped and reported in the returned warnings.
func ToDocument(fc *geojson.FeatureCollection, includeMetadata bool) (*roi.Document, []Warning) {
	doc := &roi.Document{}
	if fc.Metadata != nil {
		doc.Name = fc.Metadata.Filename
	}

	if includeMetadata {
		// Positions are zeroed and the channel/user fields get fixed
		// placeholders: GeoJSON carries no equivalents, so this is a
		// deliberate lossy-default policy rather than an oversight.
		meta := &roi.Meta{
			PixelSizeX:   1.0,
			PixelSizeY:   1.0,
			PixelSizeZ:   1.0,
			TimeInterval: 1.0,
			ChannelName0: "ch 0",
			ChannelName1: "ch 1",
			ChannelName2: "ch 2",
			UserName:     "user",
		}
		if fc.Metadata != nil && fc.Metadata.Mpp != nil {
			meta.PixelSizeX = fc.Metadata.Mpp.X
			meta.PixelSizeY = fc.Metadata.Mpp.Y
		}
		doc.Meta = meta
	}

	var warnings []Warning
	for i := range fc.Features {
		f := &fc.Features[i]
		r, warn := featureToROI(f)
		if warn != "" {
			warnings = append(warnings, Warning{Index: i, ID: f.ID, Reason: warn})
			continue
		}
		doc.ROIs = append(doc.ROIs, *r)
	}
	return doc, warnings
}

// featureToROI builds one ROI from one feature. A non-empty warning means
// the feature cannot be represented and must be skipped.
func featureToROI(f *geojson.Feature) (*roi.ROI, string) {
	if f.Geometry == nil {
		return nil, "feature has no geometry"
	}
	kind, err := ROIKind(f.Geometry.Type, f.Geometry.IsEllipse)
	if err != nil {
		return nil, err.Error()
	}
	if len(f.Geometry.Coordinates) == 0 {
		return nil, "geometry has no coordinates"
	}

	r := &roi.ROI{
		Kind:      kind,
		Classname: kind.Classname(),
		ID:        f.ID,
		Stroke:    defaultStroke,
		Opacity:   defaultOpacity,
		Z:         defaultIndex,
		T:         defaultIndex,
		C:         defaultIndex,
	}
	if f.Properties != nil && f.Properties.Classification != nil {
		r.Name = f.Properties.Classification.Name
		if f.Properties.Classification.Color != nil {
			r.Color = PackColor(*f.Properties.Classification.Color)
		}
	}

	points := make([]roi.Point, 0, len(f.Geometry.Coordinates))
	for _, c := range f.Geometry.Coordinates {
		points = append(points, roi.Point{X: c.X, Y: c.Y})
	}
	// XML-side storage never duplicates the closing point of a ring.
	if f.Geometry.Type == geojson.TypePolygon && len(points) > 1 && points[0] == points[len(points)-1] {
		points = points[:len(points)-1]
	}
	r.Points = points
	return r, ""
}

package convert

import (
	"fmt"

	"github.com/thardy/roiconv/pkg/geojson"
	"github.com/thardy/roiconv/pkg/roi"
)

// UnsupportedKindError reports a geometry or ROI kind outside the fixed
// mapping, carrying the offending raw name.
type UnsupportedKindError struct {
	Kind string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported geometry kind: %q", e.Kind)
}

// GeometryKind maps an ROI kind to its GeoJSON geometry type and the ellipse
// flag. Rectangle and Ellipse both collapse to Polygon; only the flag tells
// them apart on the wire.
func GeometryKind(kind roi.Kind) (geojson.GeometryType, bool, error) {
	switch kind {
	case roi.KindPolygon, roi.KindRectangle:
		return geojson.TypePolygon, false, nil
	case roi.KindEllipse:
		return geojson.TypePolygon, true, nil
	case roi.KindLine, roi.KindPolyline:
		return geojson.TypeLineString, false, nil
	case roi.KindPoint:
		return geojson.TypePoint, false, nil
	default:
		return "", false, &UnsupportedKindError{Kind: kind.String()}
	}
}

// ROIKind maps a GeoJSON geometry type back to an ROI kind. The mapping is
// not cleanly invertible: a Polygon always becomes a Polygon ROI, never a
// Rectangle, and the ellipse hint is preserved on the wire but does not
// rebuild the two-corner Ellipse form.
func ROIKind(t geojson.GeometryType, isEllipse bool) (roi.Kind, error) {
	switch t {
	case geojson.TypePolygon:
		return roi.KindPolygon, nil
	case geojson.TypeLineString:
		return roi.KindPolyline, nil
	case geojson.TypePoint:
		return roi.KindPoint, nil
	default:
		return roi.KindUnknown, &UnsupportedKindError{Kind: string(t)}
	}
}

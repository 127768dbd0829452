package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/thardy/roiconv/pkg/geojson"
	"github.com/thardy/roiconv/pkg/utils"
)

// csvHeader is the fixed column set; the property schema of this dialect is
// closed, so no per-document header discovery is needed.
var csvHeader = []string{"id", "objectType", "classification", "color", "isEllipse", "WKT_Geometry"}

// FeaturesToCSV converts a feature collection to a CSV string with one row
// per feature and the WKT geometry in the last column.
func FeaturesToCSV(fc *geojson.FeatureCollection) (string, error) {
	if len(fc.Features) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, feature := range fc.Features {
		var objectType, className, color string
		if props := feature.Properties; props != nil {
			objectType = props.ObjectType
			if c := props.Classification; c != nil {
				className = c.Name
				if c.Color != nil {
					color = fmt.Sprintf("%d;%d;%d", c.Color.R, c.Color.G, c.Color.B)
				}
			}
		}
		isEllipse := false
		if feature.Geometry != nil {
			isEllipse = feature.Geometry.IsEllipse
		}

		row := []string{
			feature.ID,
			objectType,
			className,
			color,
			strconv.FormatBool(isEllipse),
			utils.GeometryToWKT(feature.Geometry),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row to CSV: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("error during CSV writing: %w", err)
	}

	return buf.String(), nil
}

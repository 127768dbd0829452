// Copyright (c) 2026 thardy
// Licensed under the MIT License

// Package export renders decoded feature collections as human-readable text
// or CSV summaries.
package export

import (
	"fmt"
	"strings"

	"github.com/thardy/roiconv/pkg/geojson"
	"github.com/thardy/roiconv/pkg/utils"
)

// FeaturesToText converts a feature collection to a formatted text report:
// a collection header followed by each feature's id, classification and WKT
// geometry.
func FeaturesToText(fc *geojson.FeatureCollection, name string) (string, error) {
	if len(fc.Features) == 0 {
		return "", fmt.Errorf("no features to convert to text")
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("Collection: %s\n", name))
	output.WriteString(fmt.Sprintf("Total Features: %d\n", len(fc.Features)))
	output.WriteString("========================================\n\n")

	for i, feature := range fc.Features {
		output.WriteString(fmt.Sprintf("--- Feature %d ---\n", i+1))
		if feature.ID != "" {
			output.WriteString(fmt.Sprintf("  ID: %s\n", feature.ID))
		}

		if props := feature.Properties; props != nil {
			if props.ObjectType != "" {
				output.WriteString(fmt.Sprintf("  Object Type: %s\n", props.ObjectType))
			}
			output.WriteString(fmt.Sprintf("  Locked: %t\n", props.IsLocked))
			if c := props.Classification; c != nil {
				output.WriteString(fmt.Sprintf("  Classification: %s\n", c.Name))
				if c.Color != nil {
					output.WriteString(fmt.Sprintf("  Color: [%d, %d, %d]\n", c.Color.R, c.Color.G, c.Color.B))
				}
			}
		}

		output.WriteString("Geometry (WKT):\n")
		wkt := utils.GeometryToWKT(feature.Geometry)
		if wkt == "" {
			output.WriteString("  <No Geometry>\n")
		} else {
			output.WriteString(fmt.Sprintf("  %s\n", wkt))
		}
		if feature.Geometry != nil && feature.Geometry.IsEllipse {
			output.WriteString("  (tessellated ellipse)\n")
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

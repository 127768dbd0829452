package convert

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/thardy/roiconv/pkg/geojson"
	"github.com/thardy/roiconv/pkg/roi"
)

const outputFilePerm = 0600

// XMLFileToGeoJSONFile converts an annotation XML file to a GeoJSON file.
// Per-entry skips are logged and returned as warnings; structural failures
// abort with no output written.
func XMLFileToGeoJSONFile(inPath, outPath string, includeMetadata bool) ([]Warning, error) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", inPath, err)
	}
	doc, err := roi.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", inPath, err)
	}

	fc, warnings := ToFeatureCollection(doc, includeMetadata)
	logWarnings(inPath, warnings)

	out, err := geojson.Encode(fc)
	if err != nil {
		return warnings, err
	}
	if err := writeFileAtomic(outPath, out); err != nil {
		return warnings, err
	}
	return warnings, nil
}

// GeoJSONFileToXMLFile converts a GeoJSON file to an annotation XML file.
func GeoJSONFileToXMLFile(inPath, outPath string, includeMetadata bool) ([]Warning, error) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", inPath, err)
	}
	fc, err := geojson.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", inPath, err)
	}

	doc, warnings := ToDocument(fc, includeMetadata)
	logWarnings(inPath, warnings)

	out, err := roi.Encode(doc)
	if err != nil {
		return warnings, err
	}
	if err := writeFileAtomic(outPath, out); err != nil {
		return warnings, err
	}
	return warnings, nil
}

func logWarnings(path string, warnings []Warning) {
	for _, w := range warnings {
		log.WithFields(log.Fields{
			"file":  path,
			"entry": w.Index,
			"id":    w.ID,
		}).Warn(w.Reason)
	}
}

// writeFileAtomic writes to a uniquely named temp file in the target
// directory, then renames it into place, so a failed conversion never
// leaves a partial output file.
func writeFileAtomic(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	if err := os.WriteFile(tmp, data, outputFilePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move output into place at %s: %w", path, err)
	}
	return nil
}

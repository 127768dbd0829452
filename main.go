// roiconv converts 2D image annotations between the ROI XML format and the
// GeoJSON feature-collection format, and exports collections as text or CSV
// summaries.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thardy/roiconv/pkg/convert"
	"github.com/thardy/roiconv/pkg/export"
	"github.com/thardy/roiconv/pkg/geojson"
)

const (
	extGeoJSON = "geojson"
	extXML     = "xml"
)

// errSkippedExisting signals that --skip-existing suppressed a conversion.
var errSkippedExisting = fmt.Errorf("skipped existing file")

type convertOptions struct {
	outputDir    string
	prefix       string
	overwrite    bool
	skipExisting bool
	noMetadata   bool
	strict       bool
}

func main() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "roiconv",
		Short:         "Convert image annotations between ROI XML and GeoJSON",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newConvertCmd("xml2geojson", "Convert an annotation XML file to GeoJSON", extGeoJSON))
	root.AddCommand(newConvertCmd("geojson2xml", "Convert a GeoJSON file to annotation XML", extXML))
	root.AddCommand(newExportCmd())
	return root
}

func newConvertCmd(name, short, targetExt string) *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   name + " <input-file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runConvert(args[0], targetExt, opts)
			if err == errSkippedExisting {
				log.Warnf("Skipped %s (output file exists).", args[0])
				return nil
			}
			return err
		},
	}
	addConvertFlags(cmd, opts)
	return cmd
}

func addConvertFlags(cmd *cobra.Command, opts *convertOptions) {
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Output directory (default: current directory)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "Prefix for output filenames")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "Overwrite existing output files")
	cmd.Flags().BoolVar(&opts.skipExisting, "skip-existing", false, "Skip conversion if the output file already exists")
	cmd.Flags().BoolVar(&opts.noMetadata, "no-metadata", false, "Do not include image metadata in the output")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Treat skipped entries as a conversion failure")
}

func runConvert(inPath, targetExt string, opts *convertOptions) error {
	outPath, err := resolveOutputPath(inPath, opts.outputDir, opts.prefix, targetExt)
	if err != nil {
		return err
	}
	if err := checkOutputPath(outPath, opts.overwrite, opts.skipExisting); err != nil {
		return err
	}

	var warnings []convert.Warning
	includeMetadata := !opts.noMetadata
	switch targetExt {
	case extGeoJSON:
		warnings, err = convert.XMLFileToGeoJSONFile(inPath, outPath, includeMetadata)
	case extXML:
		warnings, err = convert.GeoJSONFileToXMLFile(inPath, outPath, includeMetadata)
	default:
		return fmt.Errorf("unsupported target format: %s", targetExt)
	}
	if err != nil {
		return err
	}
	if opts.strict && len(warnings) > 0 {
		return fmt.Errorf("%d entr(ies) could not be converted (strict mode)", len(warnings))
	}

	log.Infof("Wrote %s", outPath)
	return nil
}

func newExportCmd() *cobra.Command {
	opts := &convertOptions{}
	var format string
	cmd := &cobra.Command{
		Use:   "export <input-geojson>",
		Short: "Export a GeoJSON annotation file as a text or CSV summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runExport(args[0], format, opts)
			if err == errSkippedExisting {
				log.Warnf("Skipped %s (output file exists).", args[0])
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Export format (text, csv)")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Output directory (default: current directory)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "Prefix for output filenames")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "Overwrite existing output files")
	cmd.Flags().BoolVar(&opts.skipExisting, "skip-existing", false, "Skip export if the output file already exists")
	return cmd
}

func runExport(inPath, format string, opts *convertOptions) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inPath, err)
	}
	fc, err := geojson.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", inPath, err)
	}
	log.Infof("%s", fc)
	log.Debug(fc.SummarizeFeatures(5))

	var out string
	var ext string
	switch strings.ToLower(format) {
	case "text":
		out, err = export.FeaturesToText(fc, baseName(inPath))
		ext = "txt"
	case "csv":
		out, err = export.FeaturesToCSV(fc)
		ext = "csv"
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		return err
	}

	outPath, err := resolveOutputPath(inPath, opts.outputDir, opts.prefix, ext)
	if err != nil {
		return err
	}
	if err := checkOutputPath(outPath, opts.overwrite, opts.skipExisting); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(out), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	log.Infof("Wrote %s", outPath)
	return nil
}

// baseName strips the directory and extension from a path.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// resolveOutputPath derives the output file path from the input basename,
// the target extension and the output flags.
func resolveOutputPath(inPath, outputDir, prefix, ext string) (string, error) {
	if outputDir == "" {
		var err error
		outputDir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to resolve working directory: %w", err)
		}
	}
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	return filepath.Join(outputDir, fmt.Sprintf("%s%s.%s", prefix, baseName(inPath), ext)), nil
}

// checkOutputPath enforces the overwrite/skip-existing policy.
func checkOutputPath(path string, overwrite, skipExisting bool) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		if skipExisting {
			return errSkippedExisting
		}
		if !overwrite {
			return fmt.Errorf("output file %s already exists. Use --overwrite or --skip-existing", path)
		}
		log.Warnf("Overwriting existing file: %s", path)
		return nil
	case os.IsNotExist(err):
		return nil
	default:
		return fmt.Errorf("failed to check output file status %s: %w", path, err)
	}
}

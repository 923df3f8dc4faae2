package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/piwi3910/labelnest/internal/config"
	"github.com/piwi3910/labelnest/internal/export"
)

// OutputFile is one file written by a pack run.
type OutputFile struct {
	Format string
	Path   string
}

// OutputPaths maps each format to a file next to output. The layout PDF
// uses output itself when it already ends in .pdf; every other format
// swaps the extension, and the label sheet gets a "-labels.pdf" suffix.
// Formats are returned in the order given.
func OutputPaths(output string, formats []string) []OutputFile {
	base := output
	if ext := filepath.Ext(output); ext != "" {
		base = strings.TrimSuffix(output, ext)
	}

	files := make([]OutputFile, 0, len(formats))
	for _, f := range formats {
		var path string
		switch f {
		case config.FormatPDF:
			path = base + ".pdf"
		case config.FormatLabels:
			path = base + "-labels.pdf"
		default:
			path = base + "." + f
		}
		files = append(files, OutputFile{Format: f, Path: path})
	}
	return files
}

// writeOutputs renders the outcome in every configured format.
func (r *Runner) writeOutputs(o Outcome) ([]OutputFile, error) {
	files := OutputPaths(r.cfg.Output, r.cfg.Formats)
	for _, f := range files {
		if err := writeOutput(f, o); err != nil {
			return nil, fmt.Errorf("write %s output %s: %w", f.Format, f.Path, err)
		}
		r.logger.Info("output written", zap.String("format", f.Format), zap.String("path", f.Path))
	}
	return files, nil
}

func writeOutput(f OutputFile, o Outcome) error {
	switch f.Format {
	case config.FormatPDF:
		return export.ExportPDF(f.Path, o.Result)
	case config.FormatLabels:
		return export.ExportLabels(f.Path, o.Result, o.RunID)
	case config.FormatJSON:
		layout := export.BuildLayoutExport(o.Result, o.Items, export.LayoutOptions{
			RunID:     o.RunID,
			Heuristic: o.Heuristic.String(),
		})
		return export.ExportJSON(f.Path, layout)
	case config.FormatXLSX:
		return export.ExportXLSX(f.Path, o.Result, o.Items)
	case config.FormatDXF:
		return export.ExportDXF(f.Path, o.Result)
	default:
		return fmt.Errorf("unknown output format %q", f.Format)
	}
}

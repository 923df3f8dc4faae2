package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/labelnest/internal/model"
)

// LayoutFormatVersion is the version written to every layout export header.
const LayoutFormatVersion = "1.0"

// DefaultGenerator names the producing application in export headers.
const DefaultGenerator = "labelnest"

// LayoutExport is a self-contained description of a packing run that lets
// other systems recreate the layout without re-running the packer.
type LayoutExport struct {
	Header     LayoutHeader      `json:"header"`
	Input      LayoutInput       `json:"input"`
	Placements []LayoutPlacement `json:"placements"`
	Summary    LayoutSummary     `json:"summary"`
}

type LayoutHeader struct {
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generatedAt"`
	Generator   string    `json:"generator"`
	RunID       string    `json:"runId"`
	Heuristic   string    `json:"heuristic,omitempty"`
}

type LayoutInput struct {
	PaperSize     LayoutPaperSize     `json:"paperSize"`
	Configuration LayoutConfiguration `json:"configuration"`
	Items         []LayoutItem        `json:"items"`
}

type LayoutPaperSize struct {
	Name     string  `json:"name"`
	WidthMm  float64 `json:"widthMm"`
	HeightMm float64 `json:"heightMm"`
}

type LayoutConfiguration struct {
	MarginMm      float64 `json:"marginMm"`
	GutterMm      float64 `json:"gutterMm"`
	AllowRotation bool    `json:"allowRotation"`
}

type LayoutItem struct {
	ItemNumber int     `json:"itemNumber"`
	WidthMm    float64 `json:"widthMm"`
	HeightMm   float64 `json:"heightMm"`
	Quantity   int     `json:"quantity"`
}

// LayoutPlacement uses 1-based page, item and instance numbers.
type LayoutPlacement struct {
	PageNumber     int     `json:"pageNumber"`
	ItemNumber     int     `json:"itemNumber"`
	InstanceNumber int     `json:"instanceNumber"`
	Label          string  `json:"label"`
	XMm            float64 `json:"xMm"`
	YMm            float64 `json:"yMm"`
	WidthMm        float64 `json:"widthMm"`
	HeightMm       float64 `json:"heightMm"`
	IsRotated      bool    `json:"isRotated"`
	Color          string  `json:"color,omitempty"`
}

type LayoutSummary struct {
	TotalPages        int                `json:"totalPages"`
	TotalItemsPlaced  int                `json:"totalItemsPlaced"`
	OverallEfficiency float64            `json:"overallEfficiency"`
	PageDetails       []LayoutPageDetail `json:"pageDetails"`
}

type LayoutPageDetail struct {
	PageNumber  int     `json:"pageNumber"`
	ItemsOnPage int     `json:"itemsOnPage"`
	Efficiency  float64 `json:"efficiency"`
}

// LayoutOptions carries the header fields that do not come from the result.
// Zero values are filled in: a new random RunID, the current UTC time and
// DefaultGenerator.
type LayoutOptions struct {
	RunID       string
	Generator   string
	Heuristic   string
	GeneratedAt time.Time
}

// BuildLayoutExport converts a result and the items it was packed from into
// a LayoutExport.
func BuildLayoutExport(result model.PackingResult, items []model.Item, opts LayoutOptions) LayoutExport {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Generator == "" {
		opts.Generator = DefaultGenerator
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}

	export := LayoutExport{
		Header: LayoutHeader{
			Version:     LayoutFormatVersion,
			GeneratedAt: opts.GeneratedAt,
			Generator:   opts.Generator,
			RunID:       opts.RunID,
			Heuristic:   opts.Heuristic,
		},
		Input: LayoutInput{
			PaperSize: LayoutPaperSize{
				Name:     result.PaperSize.Name,
				WidthMm:  result.PaperSize.Width,
				HeightMm: result.PaperSize.Height,
			},
			Configuration: LayoutConfiguration{
				MarginMm:      result.Configuration.Margin,
				GutterMm:      result.Configuration.Gutter,
				AllowRotation: result.Configuration.AllowRotation,
			},
			Items: make([]LayoutItem, 0, len(items)),
		},
		Placements: make([]LayoutPlacement, 0, len(result.Placements)),
		Summary: LayoutSummary{
			TotalPages:        result.PageCount(),
			TotalItemsPlaced:  result.TotalItemsPlaced(),
			OverallEfficiency: result.OverallEfficiency(),
			PageDetails:       make([]LayoutPageDetail, 0, result.PageCount()),
		},
	}

	for i, item := range items {
		export.Input.Items = append(export.Input.Items, LayoutItem{
			ItemNumber: i + 1,
			WidthMm:    item.Width,
			HeightMm:   item.Height,
			Quantity:   item.Quantity,
		})
	}

	for _, p := range result.Placements {
		export.Placements = append(export.Placements, LayoutPlacement{
			PageNumber:     p.PageIndex + 1,
			ItemNumber:     p.ItemIndex + 1,
			InstanceNumber: p.InstanceIndex + 1,
			Label:          p.Label(),
			XMm:            p.X,
			YMm:            p.Y,
			WidthMm:        p.Width,
			HeightMm:       p.Height,
			IsRotated:      p.Rotated,
			Color:          p.Color,
		})
	}

	for page := 0; page < result.PageCount(); page++ {
		export.Summary.PageDetails = append(export.Summary.PageDetails, LayoutPageDetail{
			PageNumber:  page + 1,
			ItemsOnPage: len(result.PagePlacements(page)),
			Efficiency:  result.PageEfficiency(page),
		})
	}

	return export
}

// WriteJSON writes the layout export as indented JSON.
func WriteJSON(w io.Writer, export LayoutExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}

// ExportJSON writes the layout export to path.
func ExportJSON(path string, export LayoutExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, export); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadLayout decodes a layout export previously written by WriteJSON.
func ReadLayout(r io.Reader) (LayoutExport, error) {
	var export LayoutExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return LayoutExport{}, fmt.Errorf("decode layout: %w", err)
	}
	if export.Header.Version != LayoutFormatVersion {
		return LayoutExport{}, fmt.Errorf("unsupported layout version %q", export.Header.Version)
	}
	return export, nil
}

// Result rebuilds the packing result described by the export.
func (e LayoutExport) Result() model.PackingResult {
	result := model.PackingResult{
		PaperSize: model.PaperSize{
			Name:   e.Input.PaperSize.Name,
			Width:  e.Input.PaperSize.WidthMm,
			Height: e.Input.PaperSize.HeightMm,
		},
		Configuration: model.PackingConfiguration{
			Margin:        e.Input.Configuration.MarginMm,
			Gutter:        e.Input.Configuration.GutterMm,
			AllowRotation: e.Input.Configuration.AllowRotation,
		},
		Placements: make([]model.ItemPlacement, 0, len(e.Placements)),
	}
	for _, p := range e.Placements {
		result.Placements = append(result.Placements, model.ItemPlacement{
			X:             p.XMm,
			Y:             p.YMm,
			Width:         p.WidthMm,
			Height:        p.HeightMm,
			PageIndex:     p.PageNumber - 1,
			ItemIndex:     p.ItemNumber - 1,
			InstanceIndex: p.InstanceNumber - 1,
			Rotated:       p.IsRotated,
			Color:         p.Color,
		})
	}
	return result
}

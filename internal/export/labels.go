package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/labelnest/internal/model"
	"github.com/piwi3910/labelnest/internal/palette"
)

// LabelInfo holds the data encoded into each tracking label's QR code.
type LabelInfo struct {
	RunID    string  `json:"run_id,omitempty"`
	Label    string  `json:"label"`
	Item     int     `json:"item"`
	Instance int     `json:"instance"`
	Width    float64 `json:"width_mm"`
	Height   float64 `json:"height_mm"`
	Page     int     `json:"page"`
	X        float64 `json:"x_mm"`
	Y        float64 `json:"y_mm"`
	Rotated  bool    `json:"rotated"`
	Color    string  `json:"color,omitempty"`
}

// Avery 5160 label grid: 3 columns by 10 rows on US Letter.
// Cells are about 66.7 x 25.4mm.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // mm
	labelPadding    = 2.0  // mm
	swatchSize      = 3.0  // mm
)

// ExportLabels writes a sheet of QR-coded tracking labels, one per placed
// copy, so every printed piece can be traced back to its page and position.
// runID, when set, is embedded in every QR payload.
func ExportLabels(path string, result model.PackingResult, runID string) error {
	labels := CollectLabelInfos(result, runID)
	if len(labels) == 0 {
		return ErrNothingToExport
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("render label %s: %w", label.Label, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d_%d", info.Item, info.Instance)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	// Color swatch matching the layout PDF
	col := palette.ToRGB(info.Color)
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(120, 120, 120)
	pdf.Rect(textX, y+labelPadding+0.5, swatchSize, swatchSize, "FD")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX+swatchSize+1, y+labelPadding)
	pdf.CellFormat(textW-swatchSize-1, 4.5, "Label "+info.Label, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%g x %g mm", info.Width, info.Height), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("Page %d @ (%.1f, %.1f)", info.Page, info.X, info.Y), "", 1, "L", false, 0, "")

	if info.Rotated {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Rotated 90\xb0", "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)

	return nil
}

// CollectLabelInfos returns one LabelInfo per placement, in placement order,
// with 1-based item, instance and page numbers.
func CollectLabelInfos(result model.PackingResult, runID string) []LabelInfo {
	labels := make([]LabelInfo, 0, len(result.Placements))
	for _, p := range result.Placements {
		labels = append(labels, LabelInfo{
			RunID:    runID,
			Label:    p.Label(),
			Item:     p.ItemIndex + 1,
			Instance: p.InstanceIndex + 1,
			Width:    p.Width,
			Height:   p.Height,
			Page:     p.PageIndex + 1,
			X:        p.X,
			Y:        p.Y,
			Rotated:  p.Rotated,
			Color:    p.Color,
		})
	}
	return labels
}

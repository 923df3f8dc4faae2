// Package export writes packing results to files: a printable layout PDF,
// QR-coded tracking labels, a JSON layout document, an Excel workbook and
// a DXF drawing.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/labelnest/internal/model"
	"github.com/piwi3910/labelnest/internal/palette"
)

// ErrNothingToExport is returned when a result has no placements.
var ErrNothingToExport = errors.New("no placements to export")

const (
	outlineGray  = 190
	borderGray   = 85
	footerSize   = 8.0 // pt
	rotatedMark  = "R"
	rotatedSize  = 3.0 // mm
	minLabelSize = 1.5 // mm
)

// ExportPDF writes one page per sheet at the real paper size, so the file
// can be printed 1:1 and used as a cutting template.
func ExportPDF(path string, result model.PackingResult) error {
	pdf, err := buildLayoutPDF(result)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// WritePDF writes the layout PDF to w.
func WritePDF(w io.Writer, result model.PackingResult) error {
	pdf, err := buildLayoutPDF(result)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func buildLayoutPDF(result model.PackingResult) (*fpdf.Fpdf, error) {
	pages := result.PageCount()
	if pages == 0 {
		return nil, ErrNothingToExport
	}

	paper := result.PaperSize
	size := fpdf.SizeType{Wd: paper.Width, Ht: paper.Height}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           size,
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(fmt.Sprintf("Label layout (%s)", paper), true)
	pdf.SetCreator("labelnest", true)

	for page := 0; page < pages; page++ {
		pdf.AddPageFormat("P", size)
		renderLayoutPage(pdf, result, page, pages)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render layout PDF: %w", err)
	}
	return pdf, nil
}

// renderLayoutPage draws the margin guide, every placement on the page and
// the page footer.
func renderLayoutPage(pdf *fpdf.Fpdf, result model.PackingResult, page, pages int) {
	cfg := result.Configuration
	paper := result.PaperSize

	// Usable area guide
	pdf.SetDrawColor(outlineGray, outlineGray, outlineGray)
	pdf.SetLineWidth(0.2)
	pdf.SetDashPattern([]float64{1, 1}, 0)
	pdf.Rect(cfg.Margin, cfg.Margin, cfg.UsableWidth(paper), cfg.UsableHeight(paper), "D")
	pdf.SetDashPattern([]float64{}, 0)

	for _, p := range result.PagePlacements(page) {
		drawPlacement(pdf, p)
	}

	pdf.SetFont("Helvetica", "", footerSize)
	pdf.SetTextColor(128, 128, 128)
	pdf.SetXY(cfg.Margin/2, paper.Height-math.Max(cfg.Margin/2, 4)-1)
	pdf.CellFormat(40, 4, fmt.Sprintf("Page %d of %d", page+1, pages), "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func drawPlacement(pdf *fpdf.Fpdf, p model.ItemPlacement) {
	col := palette.ToRGB(p.Color)
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(borderGray, borderGray, borderGray)
	pdf.SetLineWidth(0.2)
	pdf.Rect(p.X, p.Y, p.Width, p.Height, "FD")

	// Label centered, a quarter of the shorter side tall
	size := math.Min(p.Width, p.Height) * 0.25
	if size >= minLabelSize {
		label := p.Label()
		pdf.SetFont("Helvetica", "", footerSize)
		pdf.SetFontUnitSize(size)
		pdf.SetTextColor(0, 0, 0)
		labelW := pdf.GetStringWidth(label)
		if labelW < p.Width {
			pdf.SetXY(p.X+(p.Width-labelW)/2, p.Y+(p.Height-size)/2)
			pdf.CellFormat(labelW, size, label, "", 0, "C", false, 0, "")
		}
	}

	if p.Rotated && p.Width > 2*rotatedSize && p.Height > 2*rotatedSize {
		pdf.SetFont("Helvetica", "", footerSize)
		pdf.SetFontUnitSize(rotatedSize)
		pdf.SetTextColor(102, 102, 102)
		pdf.SetXY(p.X+0.5, p.Y+0.5)
		pdf.CellFormat(rotatedSize, rotatedSize, rotatedMark, "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
}

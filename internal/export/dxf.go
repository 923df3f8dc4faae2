package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/labelnest/internal/model"
)

// DXF layer names.
const (
	LayerSheet  = "SHEET"
	LayerMargin = "MARGIN"
	LayerLabels = "LABELS"
	LayerText   = "TEXT"
)

// dxfPageGap is the horizontal distance between sheets in the drawing, mm.
const dxfPageGap = 20.0

// ExportDXF writes every sheet side by side into one DXF drawing, in mm,
// with the Y axis pointing up. Sheet outlines and margin guides are drawn
// as lines; each placement is a closed LWPOLYLINE on the LABELS layer so
// the file can be fed straight to a plotter or cutter.
func ExportDXF(path string, result model.PackingResult) error {
	if result.PageCount() == 0 {
		return ErrNothingToExport
	}

	d := dxf.NewDrawing()
	layers := []struct {
		name string
		cl   color.ColorNumber
	}{
		{LayerSheet, color.White},
		{LayerMargin, color.Cyan},
		{LayerLabels, color.Red},
		{LayerText, color.Yellow},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.cl, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("add layer %s: %w", l.name, err)
		}
	}

	paper := result.PaperSize
	cfg := result.Configuration

	for page := 0; page < result.PageCount(); page++ {
		ox := float64(page) * (paper.Width + dxfPageGap)
		flip := func(y float64) float64 { return paper.Height - y }

		if err := d.ChangeLayer(LayerSheet); err != nil {
			return err
		}
		if err := dxfRect(d, ox, 0, paper.Width, paper.Height); err != nil {
			return err
		}

		if cfg.Margin > 0 {
			if err := d.ChangeLayer(LayerMargin); err != nil {
				return err
			}
			if err := dxfRect(d, ox+cfg.Margin, cfg.Margin, cfg.UsableWidth(paper), cfg.UsableHeight(paper)); err != nil {
				return err
			}
		}

		if err := d.ChangeLayer(LayerText); err != nil {
			return err
		}
		if _, err := d.Text(fmt.Sprintf("Page %d", page+1), ox, -8, 0, 5); err != nil {
			return fmt.Errorf("page title: %w", err)
		}

		for _, p := range result.PagePlacements(page) {
			x0, x1 := ox+p.X, ox+p.Right()
			y0, y1 := flip(p.Bottom()), flip(p.Y)

			if err := d.ChangeLayer(LayerLabels); err != nil {
				return err
			}
			if _, err := d.LwPolyline(true,
				[]float64{x0, y0},
				[]float64{x1, y0},
				[]float64{x1, y1},
				[]float64{x0, y1},
			); err != nil {
				return fmt.Errorf("outline %s: %w", p.Label(), err)
			}

			height := textHeight(p)
			if height <= 0 {
				continue
			}
			if err := d.ChangeLayer(LayerText); err != nil {
				return err
			}
			if _, err := d.Text(p.Label(), x0+1, y0+1, 0, height); err != nil {
				return fmt.Errorf("text %s: %w", p.Label(), err)
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save DXF: %w", err)
	}
	return nil
}

// dxfRect draws an axis-aligned rectangle with its lower-left corner at (x, y).
func dxfRect(d *drawing.Drawing, x, y, w, h float64) error {
	corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			return fmt.Errorf("draw line: %w", err)
		}
	}
	return nil
}

// textHeight returns a label height that fits inside p, or 0 when p is too
// small to carry readable text.
func textHeight(p model.ItemPlacement) float64 {
	h := p.Height / 4
	if w := p.Width / 6; w < h {
		h = w
	}
	if h < 1.5 {
		return 0
	}
	if h > 6 {
		h = 6
	}
	return h
}

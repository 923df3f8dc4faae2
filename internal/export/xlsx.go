package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/labelnest/internal/model"
)

const (
	summarySheet    = "Summary"
	pagesSheet      = "Pages"
	placementsSheet = "Placements"
)

// ExportXLSX writes a workbook with a Summary sheet (settings, totals and
// per-item counts), a Pages breakdown and one Placements row per placed copy.
func ExportXLSX(path string, result model.PackingResult, items []model.Item) error {
	if result.PageCount() == 0 {
		return ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{pagesSheet, placementsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummarySheet(f, header, result, items); err != nil {
		return err
	}
	if err := writePagesSheet(f, header, result); err != nil {
		return err
	}
	if err := writePlacementsSheet(f, header, result); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, header int, result model.PackingResult, items []model.Item) error {
	cfg := result.Configuration
	rows := [][]interface{}{
		{"Paper", result.PaperSize.String()},
		{"Paper width (mm)", result.PaperSize.Width},
		{"Paper height (mm)", result.PaperSize.Height},
		{"Margin (mm)", cfg.Margin},
		{"Gutter (mm)", cfg.Gutter},
		{"Rotation allowed", cfg.AllowRotation},
		{"Pages", result.PageCount()},
		{"Items placed", result.TotalItemsPlaced()},
		{"Overall efficiency", result.OverallEfficiency()},
		{},
		{"Item", "Width (mm)", "Height (mm)", "Quantity", "Placed"},
	}
	for i, item := range items {
		rows = append(rows, []interface{}{i + 1, item.Width, item.Height, item.Quantity, result.PlacedCount(i)})
	}

	if err := writeRows(f, summarySheet, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A11", "E11", header); err != nil {
		return fmt.Errorf("style %s: %w", summarySheet, err)
	}
	if err := percentFormat(f, summarySheet, "B9", "B9"); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "A", 20)
}

func writePagesSheet(f *excelize.File, header int, result model.PackingResult) error {
	rows := [][]interface{}{{"Page", "Items", "Used area (mm²)", "Efficiency"}}
	for page := 0; page < result.PageCount(); page++ {
		rows = append(rows, []interface{}{
			page + 1,
			len(result.PagePlacements(page)),
			result.UsedArea(page),
			result.PageEfficiency(page),
		})
	}
	if err := writeRows(f, pagesSheet, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(pagesSheet, "A1", "D1", header); err != nil {
		return fmt.Errorf("style %s: %w", pagesSheet, err)
	}
	return percentFormat(f, pagesSheet, "D2", fmt.Sprintf("D%d", len(rows)))
}

func writePlacementsSheet(f *excelize.File, header int, result model.PackingResult) error {
	rows := [][]interface{}{{"Label", "Page", "Item", "Instance", "X (mm)", "Y (mm)", "Width (mm)", "Height (mm)", "Rotated", "Color"}}
	for _, p := range result.Placements {
		rows = append(rows, []interface{}{
			p.Label(),
			p.PageIndex + 1,
			p.ItemIndex + 1,
			p.InstanceIndex + 1,
			p.X,
			p.Y,
			p.Width,
			p.Height,
			p.Rotated,
			p.Color,
		})
	}
	if err := writeRows(f, placementsSheet, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(placementsSheet, "A1", "J1", header); err != nil {
		return fmt.Errorf("style %s: %w", placementsSheet, err)
	}

	// Tint each color cell with the placement's own color.
	for i, p := range result.Placements {
		hex := strings.TrimPrefix(p.Color, "#")
		if len(hex) != 6 {
			continue
		}
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{hex}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("create color style: %w", err)
		}
		cell := fmt.Sprintf("J%d", i+2)
		if err := f.SetCellStyle(placementsSheet, cell, cell, style); err != nil {
			return fmt.Errorf("style %s: %w", cell, err)
		}
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func percentFormat(f *excelize.File, sheet, from, to string) error {
	style, err := f.NewStyle(&excelize.Style{NumFmt: 10}) // 0.00%
	if err != nil {
		return fmt.Errorf("create percent style: %w", err)
	}
	if err := f.SetCellStyle(sheet, from, to, style); err != nil {
		return fmt.Errorf("style %s: %w", sheet, err)
	}
	return nil
}

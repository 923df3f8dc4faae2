package app

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/piwi3910/labelnest/internal/engine"
	"github.com/piwi3910/labelnest/internal/model"
	"github.com/piwi3910/labelnest/internal/project"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// WriteSummary prints the run totals, the per-item placed counts and, when
// more than one sheet was used, a per-page breakdown.
func WriteSummary(w io.Writer, items []model.Item, result model.PackingResult) error {
	fmt.Fprintf(w, "Pages: %d | Items placed: %d | Efficiency: %s\n\n",
		result.PageCount(), result.TotalItemsPlaced(), percent(result.OverallEfficiency()))

	tw := newTable(w)
	fmt.Fprintln(tw, "ITEM\tSIZE (mm)\tQTY\tPLACED")
	for i, item := range items {
		placed := result.PlacedCount(i)
		placedCol := fmt.Sprint(placed)
		if placed != item.Quantity {
			placedCol = fmt.Sprintf("%d/%d", placed, item.Quantity)
		}
		fmt.Fprintf(tw, "%d\t%g x %g\t%d\t%s\n", i+1, item.Width, item.Height, item.Quantity, placedCol)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if result.PageCount() <= 1 {
		return nil
	}

	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "PAGE\tITEMS\tEFFICIENCY")
	for page := 0; page < result.PageCount(); page++ {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", page+1, len(result.PagePlacements(page)), percent(result.PageEfficiency(page)))
	}
	return tw.Flush()
}

// WriteComparison prints one row per heuristic, marking the best with "*".
func WriteComparison(w io.Writer, comparisons []engine.HeuristicComparison, best int) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "HEURISTIC\tPAGES\tPLACED\tEFFICIENCY\tLAST PAGE\tBEST")
	for i, c := range comparisons {
		mark := ""
		if i == best {
			mark = "*"
		}
		last := 0.0
		if c.Pages > 0 {
			last = c.Result.PageEfficiency(c.Pages - 1)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			c.Heuristic, c.Pages, c.Placed, percent(c.Efficiency), percent(last), mark)
	}
	return tw.Flush()
}

// WriteHistory prints run records in the order given.
func WriteHistory(w io.Writer, records []project.RunRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "TIME\tRUN\tJOB\tPAPER\tHEURISTIC\tITEMS\tPLACED\tPAGES\tEFFICIENCY")
	for _, rec := range records {
		job := rec.Job
		if job == "" {
			job = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			rec.Time.Local().Format("2006-01-02 15:04"), shortID(rec.RunID), job, rec.Paper,
			rec.Heuristic, rec.Items, rec.Placed, rec.Pages, percent(rec.Efficiency))
	}
	return tw.Flush()
}

// WriteSizes prints the paper catalog.
func WriteSizes(w io.Writer, sizes []model.PaperSize) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tWIDTH (mm)\tHEIGHT (mm)")
	for _, s := range sizes {
		fmt.Fprintf(tw, "%s\t%g\t%g\n", s.Name, s.Width, s.Height)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "\nCustom sizes: WIDTHxHEIGHT in mm, e.g. 200x300")
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

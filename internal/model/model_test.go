package model

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestUsableDimensions(t *testing.T) {
	cfg := DefaultConfiguration()
	if got := cfg.UsableWidth(PaperA4); got != 200 {
		t.Errorf("expected usable width 200, got %g", got)
	}
	if got := cfg.UsableHeight(PaperA4); got != 287 {
		t.Errorf("expected usable height 287, got %g", got)
	}
	if got := cfg.UsableArea(PaperA4); got != 200*287 {
		t.Errorf("expected usable area %g, got %g", 200.0*287, got)
	}
}

func TestCanFit(t *testing.T) {
	cfg := DefaultConfiguration()

	if !cfg.CanFit(NewItem(200, 287, 1), PaperA4) {
		t.Error("item exactly matching the usable area should fit")
	}
	if !cfg.CanFit(NewItem(250, 60, 1), PaperA4) {
		t.Error("250x60 should fit rotated on A4")
	}

	cfg.AllowRotation = false
	if cfg.CanFit(NewItem(250, 60, 1), PaperA4) {
		t.Error("250x60 should not fit on A4 without rotation")
	}
}

func TestPlacementLabelAndEdges(t *testing.T) {
	p := ItemPlacement{X: 5, Y: 10, Width: 40, Height: 20, ItemIndex: 1, InstanceIndex: 2}
	if p.Label() != "2.3" {
		t.Errorf("expected label 2.3, got %s", p.Label())
	}
	if p.Right() != 45 || p.Bottom() != 30 {
		t.Errorf("unexpected edges right=%g bottom=%g", p.Right(), p.Bottom())
	}
}

func TestPackingResultMetrics(t *testing.T) {
	r := PackingResult{
		PaperSize:     PaperA4,
		Configuration: DefaultConfiguration(),
		Placements: []ItemPlacement{
			{Width: 100, Height: 100, PageIndex: 0, ItemIndex: 0},
			{Width: 100, Height: 50, PageIndex: 0, ItemIndex: 1},
			{Width: 50, Height: 50, PageIndex: 1, ItemIndex: 1},
		},
	}

	if r.PageCount() != 2 {
		t.Fatalf("expected 2 pages, got %d", r.PageCount())
	}
	if r.TotalItemsPlaced() != 3 {
		t.Errorf("expected 3 placements, got %d", r.TotalItemsPlaced())
	}
	if len(r.PagePlacements(0)) != 2 {
		t.Errorf("expected 2 placements on page 0, got %d", len(r.PagePlacements(0)))
	}
	if r.PlacedCount(1) != 2 {
		t.Errorf("expected item 1 placed twice, got %d", r.PlacedCount(1))
	}

	usable := 200.0 * 287.0
	if got, want := r.PageEfficiency(0), 15000/usable; math.Abs(got-want) > 1e-9 {
		t.Errorf("page 0 efficiency: want %f, got %f", want, got)
	}
	if got, want := r.OverallEfficiency(), 17500/(2*usable); math.Abs(got-want) > 1e-9 {
		t.Errorf("overall efficiency: want %f, got %f", want, got)
	}
	if r.PageEfficiency(5) != 0 {
		t.Error("page without placements must have efficiency 0")
	}
}

func TestPackingResultEmpty(t *testing.T) {
	r := PackingResult{PaperSize: PaperA4, Configuration: DefaultConfiguration()}
	if r.PageCount() != 0 || r.OverallEfficiency() != 0 {
		t.Errorf("empty result should have 0 pages and 0 efficiency")
	}
}

func TestParseItem(t *testing.T) {
	cases := []struct {
		in   string
		want Item
	}{
		{"100,50", NewItem(100, 50, 1)},
		{"100, 50, 3", NewItem(100, 50, 3)},
		{" 25.5 ,10,8", NewItem(25.5, 10, 8)},
	}
	for _, tc := range cases {
		got, err := ParseItem(tc.in)
		if err != nil {
			t.Errorf("ParseItem(%q) returned error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseItem(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseItemInvalid(t *testing.T) {
	for _, in := range []string{"", "100", "a,50", "100,-5", "100,50,0", "100,50,1.5", "1,2,3,4"} {
		if _, err := ParseItem(in); !errors.Is(err, ErrInvalidItemSpec) {
			t.Errorf("ParseItem(%q): expected ErrInvalidItemSpec, got %v", in, err)
		}
	}
}

func TestParsePaperSize(t *testing.T) {
	cases := []struct {
		in   string
		w, h float64
		name string
	}{
		{"A4", 210, 297, "A4"},
		{"a3", 297, 420, "A3"},
		{" A6 ", 105, 148, "A6"},
		{"200x300", 200, 300, CustomPaperName},
		{"150 X 100", 150, 100, CustomPaperName},
		{"120×80", 120, 80, CustomPaperName},
		{"62.5x100mm", 62.5, 100, CustomPaperName},
	}
	for _, tc := range cases {
		got, err := ParsePaperSize(tc.in)
		if err != nil {
			t.Errorf("ParsePaperSize(%q) returned error: %v", tc.in, err)
			continue
		}
		if got.Width != tc.w || got.Height != tc.h || got.Name != tc.name {
			t.Errorf("ParsePaperSize(%q) = %+v", tc.in, got)
		}
	}
}

func TestParsePaperSizeInvalid(t *testing.T) {
	for _, in := range []string{"A9", "x300", "200x", "0x100", "letter"} {
		if _, err := ParsePaperSize(in); !errors.Is(err, ErrInvalidPaperSize) {
			t.Errorf("ParsePaperSize(%q): expected ErrInvalidPaperSize, got %v", in, err)
		}
	}
	if _, err := ParsePaperSize("  "); !errors.Is(err, ErrEmptyPaperSize) {
		t.Errorf("expected ErrEmptyPaperSize, got %v", err)
	}
}

func TestPaperSizeString(t *testing.T) {
	if PaperA4.String() != "A4" {
		t.Errorf("expected A4, got %s", PaperA4.String())
	}
	if s := CustomPaperSize(200, 300).String(); s != "200x300mm" {
		t.Errorf("expected 200x300mm, got %s", s)
	}
	if p, err := ParsePaperSize(CustomPaperSize(200, 300).String()); err != nil || p.Width != 200 || p.Height != 300 {
		t.Errorf("custom size should parse back from its String form, got %+v (%v)", p, err)
	}
}

func TestStandardPaperSizes(t *testing.T) {
	names := []string{}
	for _, p := range StandardPaperSizes() {
		names = append(names, p.Name)
	}
	if strings.Join(names, ",") != "A2,A3,A4,A5,A6" {
		t.Errorf("unexpected catalog: %v", names)
	}
}

package model

import (
	"strings"
	"testing"
)

func TestValidateItemsAcceptsFittingItems(t *testing.T) {
	items := []Item{NewItem(100, 50, 1), NewItem(250, 60, 2)}
	if errs := ValidateItems(items, PaperA4, DefaultConfiguration()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateItemsTooLargeWithoutRotation(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.AllowRotation = false

	errs := ValidateItems([]Item{NewItem(250, 60, 1)}, PaperA4, cfg)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	e := errs[0]
	if e.ItemNumber != 1 {
		t.Errorf("expected item number 1, got %d", e.ItemNumber)
	}
	if e.UsableWidth != 200 || e.UsableHeight != 287 {
		t.Errorf("unexpected usable bounds %gx%g", e.UsableWidth, e.UsableHeight)
	}
	if !strings.Contains(e.Error(), "rotation is disabled") {
		t.Errorf("expected rotation note, got %q", e.Error())
	}
}

func TestValidateItemsTooLargeEvenRotated(t *testing.T) {
	errs := ValidateItems([]Item{NewItem(300, 300, 1)}, PaperA4, DefaultConfiguration())
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "even when rotated") {
		t.Fatalf("expected a single 'even when rotated' error, got %v", errs)
	}
}

func TestValidateItemsReportsEveryProblem(t *testing.T) {
	items := []Item{
		NewItem(0, 10, 1),
		NewItem(10, 10, 0),
		NewItem(10, 10, 1),
		NewItem(-1, -1, -1),
	}
	errs := ValidateItems(items, PaperA4, DefaultConfiguration())
	if len(errs) != 5 {
		t.Fatalf("expected 5 errors, got %d: %v", len(errs), errs)
	}
	if errs[0].ItemNumber != 1 || errs[1].ItemNumber != 2 || errs[2].ItemNumber != 4 {
		t.Errorf("errors not reported in item order: %v", errs)
	}
}

func TestValidateItemsMarginConsumesPaper(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Margin = 120

	errs := ValidateItems([]Item{NewItem(10, 10, 1)}, PaperA4, cfg)
	if len(errs) != 1 {
		t.Fatalf("expected 1 configuration error, got %v", errs)
	}
	if errs[0].ItemNumber != 0 {
		t.Errorf("expected configuration-level error, got item %d", errs[0].ItemNumber)
	}
}

func TestValidateItemsNegativeSpacing(t *testing.T) {
	cfg := PackingConfiguration{Margin: -1, Gutter: -2, AllowRotation: true}
	errs := ValidateItems([]Item{NewItem(10, 10, 1)}, PaperA4, cfg)
	if len(errs) != 2 {
		t.Fatalf("expected margin and gutter errors, got %v", errs)
	}
}

package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/labelnest/internal/model"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, buildTestResult(), "run-1"); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportLabels_EmptyResult(t *testing.T) {
	err := ExportLabels(filepath.Join(t.TempDir(), "empty.pdf"), model.PackingResult{}, "")
	if !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestResult(), "run-1")

	if len(labels) != 5 {
		t.Fatalf("expected 5 labels, got %d", len(labels))
	}

	first := labels[0]
	if first.Label != "1.1" || first.Item != 1 || first.Instance != 1 || first.Page != 1 {
		t.Errorf("unexpected first label %+v", first)
	}
	if first.RunID != "run-1" {
		t.Errorf("expected run ID to be carried, got %q", first.RunID)
	}
	if first.Width != 100 || first.Height != 120 {
		t.Errorf("wrong dimensions: got %gx%g, want 100x120", first.Width, first.Height)
	}

	if !labels[1].Rotated || labels[1].Label != "2.1" {
		t.Errorf("expected second label to be rotated 2.1, got %+v", labels[1])
	}
	if labels[3].Page != 2 || labels[3].Label != "1.2" {
		t.Errorf("expected fourth label on page 2 as 1.2, got %+v", labels[3])
	}
}

func TestLabelInfo_JSONKeys(t *testing.T) {
	data, err := json.Marshal(CollectLabelInfos(buildTestResult(), "")[1])
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	for _, key := range []string{"label", "item", "instance", "width_mm", "height_mm", "page", "x_mm", "y_mm", "rotated"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if _, ok := decoded["run_id"]; ok {
		t.Error("empty run_id should be omitted")
	}
}

func TestExportLabels_ManyPlacements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many_labels.pdf")

	// 35 placements span two label pages.
	result := model.PackingResult{PaperSize: model.PaperA4, Configuration: model.DefaultConfiguration()}
	for i := 0; i < 35; i++ {
		result.Placements = append(result.Placements, model.ItemPlacement{
			X: 5, Y: 5 + float64(i*8), Width: 20, Height: 6,
			PageIndex: i / 30, ItemIndex: i % 4, InstanceIndex: i / 4,
			Color: "#BAE1FF",
		})
	}

	if err := ExportLabels(path, result, ""); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("labels file missing or empty: %v", err)
	}
}

package importer

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/labelnest/internal/model"
)

// dxfSizeTolerance is the rounding step used to group equal outlines, in mm.
const dxfSizeTolerance = 0.01

// ImportDXF reads label outlines from a DXF drawing. Every LWPOLYLINE with
// at least three vertices contributes its bounding box as one copy; equal
// sizes are merged into a single item with a quantity, in first-seen order.
// Other entity types are counted and reported as a warning.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	index := map[[2]int64]int{}
	skipped := 0
	for _, ent := range entities {
		lw, ok := ent.(*entity.LwPolyline)
		if !ok {
			skipped++
			continue
		}
		w, h, ok := boundingBox(lw.Vertices)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("skipped degenerate outline (%.2f x %.2f mm)", w, h))
			continue
		}

		key := [2]int64{roundKey(w), roundKey(h)}
		if i, seen := index[key]; seen {
			result.Items[i].Quantity++
			continue
		}
		index[key] = len(result.Items)
		result.Items = append(result.Items, model.NewItem(w, h, 1))
	}

	if skipped > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("ignored %d non-polyline entities", skipped))
	}
	if len(result.Items) == 0 {
		result.Errors = append(result.Errors, "no closed outlines found in DXF file")
	}

	return result
}

func boundingBox(vertices [][]float64) (float64, float64, bool) {
	if len(vertices) < 3 {
		return 0, 0, false
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range vertices {
		if len(v) < 2 {
			continue
		}
		minX = math.Min(minX, v[0])
		maxX = math.Max(maxX, v[0])
		minY = math.Min(minY, v[1])
		maxY = math.Max(maxY, v[1])
	}
	w := math.Round((maxX-minX)/dxfSizeTolerance) * dxfSizeTolerance
	h := math.Round((maxY-minY)/dxfSizeTolerance) * dxfSizeTolerance
	if w < dxfSizeTolerance || h < dxfSizeTolerance || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return w, h, false
	}
	return w, h, true
}

func roundKey(v float64) int64 {
	return int64(math.Round(v / dxfSizeTolerance))
}

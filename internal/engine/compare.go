package engine

import (
	"github.com/piwi3910/labelnest/internal/model"
)

// HeuristicComparison holds the packing result and summary statistics for
// one heuristic.
type HeuristicComparison struct {
	Heuristic  Heuristic
	Result     model.PackingResult
	Pages      int
	Placed     int
	Efficiency float64 // Overall efficiency in [0, 1]
}

// CompareHeuristics packs the same input once per heuristic so the layouts
// can be compared side by side. Results follow the order of heuristics; an
// empty list compares all four. Validation errors are returned once, before
// any packing.
func CompareHeuristics(items []model.Item, paper model.PaperSize, cfg model.PackingConfiguration, heuristics ...Heuristic) ([]HeuristicComparison, error) {
	if len(heuristics) == 0 {
		heuristics = Heuristics()
	}
	if issues := model.ValidateItems(items, paper, cfg); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	results := make([]HeuristicComparison, 0, len(heuristics))
	for _, h := range heuristics {
		result, err := New(h, nil).Pack(items, paper, cfg)
		if err != nil {
			return nil, err
		}
		results = append(results, HeuristicComparison{
			Heuristic:  h,
			Result:     result,
			Pages:      result.PageCount(),
			Placed:     result.TotalItemsPlaced(),
			Efficiency: result.OverallEfficiency(),
		})
	}
	return results, nil
}

// BestComparison returns the index of the comparison using the fewest pages.
// Ties go to the emptier last page, since the placed area is the same for
// every heuristic, and then to list order. It returns -1 for an empty list.
func BestComparison(results []HeuristicComparison) int {
	best := -1
	for i, r := range results {
		if best < 0 || r.Pages < results[best].Pages {
			best = i
			continue
		}
		if r.Pages == results[best].Pages && lastPageEfficiency(r) < lastPageEfficiency(results[best]) {
			best = i
		}
	}
	return best
}

func lastPageEfficiency(r HeuristicComparison) float64 {
	if r.Pages == 0 {
		return 0
	}
	return r.Result.PageEfficiency(r.Pages - 1)
}

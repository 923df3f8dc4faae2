package engine

import (
	"fmt"
	"math"
	"strings"
)

// Heuristic selects how candidate free regions are scored.
type Heuristic int

const (
	BestShortSideFit Heuristic = iota // Minimize the shorter leftover side (default)
	BestLongSideFit                   // Minimize the longer leftover side
	BestAreaFit                       // Prefer the smallest free region
	BottomLeft                        // Prefer the topmost, then leftmost region
)

// Heuristics returns every heuristic in declaration order.
func Heuristics() []Heuristic {
	return []Heuristic{BestShortSideFit, BestLongSideFit, BestAreaFit, BottomLeft}
}

func (h Heuristic) String() string {
	switch h {
	case BestLongSideFit:
		return "BestLongSideFit"
	case BestAreaFit:
		return "BestAreaFit"
	case BottomLeft:
		return "BottomLeft"
	default:
		return "BestShortSideFit"
	}
}

// heuristicAliases maps lowercase names and abbreviations to heuristics.
var heuristicAliases = map[string]Heuristic{
	"bestshortsidefit": BestShortSideFit,
	"bssf":             BestShortSideFit,
	"bestlongsidefit":  BestLongSideFit,
	"blsf":             BestLongSideFit,
	"bestareafit":      BestAreaFit,
	"baf":              BestAreaFit,
	"bottomleft":       BottomLeft,
	"bl":               BottomLeft,
}

// ParseHeuristic accepts a heuristic name or abbreviation in any case,
// with or without dashes/underscores ("best-area-fit", "BAF").
// An empty string yields the default.
func ParseHeuristic(s string) (Heuristic, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return BestShortSideFit, nil
	}
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	if h, ok := heuristicAliases[key]; ok {
		return h, nil
	}
	return BestShortSideFit, fmt.Errorf("unknown heuristic %q", s)
}

// scoreEpsilon is the tolerance applied to primary scores before the
// secondary score breaks the tie.
const scoreEpsilon = 0.001

// Score is a lexicographic (lower is better) placement score.
type Score struct {
	Primary   float64
	Secondary float64
}

// Better reports whether s beats o: a strictly lower primary, or a primary
// within scoreEpsilon and a strictly lower secondary.
func (s Score) Better(o Score) bool {
	return s.Primary < o.Primary ||
		(math.Abs(s.Primary-o.Primary) < scoreEpsilon && s.Secondary < o.Secondary)
}

// ScoreFit scores placing a w x h item (already in the orientation under
// test) into region. It is a pure function of its inputs.
func ScoreFit(region Rect, w, h float64, heuristic Heuristic) Score {
	leftoverW := region.Width - w
	leftoverH := region.Height - h
	short := math.Min(leftoverW, leftoverH)
	long := math.Max(leftoverW, leftoverH)

	switch heuristic {
	case BestLongSideFit:
		return Score{Primary: long, Secondary: short}
	case BestAreaFit:
		return Score{Primary: region.Area(), Secondary: short}
	case BottomLeft:
		return Score{Primary: region.Y, Secondary: region.X}
	default:
		return Score{Primary: short, Secondary: long}
	}
}

package engine

// Candidate is one feasible (region, orientation) choice for a request.
type Candidate struct {
	Region  Rect
	X, Y    float64
	Width   float64 // Resolved width, swapped when Rotated
	Height  float64 // Resolved height, swapped when Rotated
	Rotated bool
	Score   Score
}

// tracker is the free-space contract the packer drives for one sheet.
type tracker interface {
	BestCandidate(w, h float64, allowRotation bool, heuristic Heuristic) (Candidate, bool)
	Commit(x, y, w, h float64)
}

// FreeSpace maintains the maximal free rectangles of a single sheet
// (the MaxRects free list). Every region in the list is disjoint from every
// committed footprint, and no region is contained in another.
type FreeSpace struct {
	regions []Rect
	gutter  float64
}

// NewFreeSpace returns a tracker holding one region that spans the full
// usable area. Each commit reserves gutter mm to the right of and below the
// placed item.
func NewFreeSpace(width, height, gutter float64) *FreeSpace {
	return &FreeSpace{
		regions: []Rect{{X: 0, Y: 0, Width: width, Height: height}},
		gutter:  gutter,
	}
}

// Regions returns a copy of the current free regions, in list order.
func (fs *FreeSpace) Regions() []Rect {
	return append([]Rect(nil), fs.regions...)
}

// BestCandidate scans every free region, trying the natural orientation and
// then (if allowed) the rotated one, and returns the best-scoring fit.
// Ties keep the earliest candidate found.
func (fs *FreeSpace) BestCandidate(w, h float64, allowRotation bool, heuristic Heuristic) (Candidate, bool) {
	var best Candidate
	found := false

	consider := func(r Rect, cw, ch float64, rotated bool) {
		score := ScoreFit(r, cw, ch, heuristic)
		if !found || score.Better(best.Score) {
			best = Candidate{
				Region:  r,
				X:       r.X,
				Y:       r.Y,
				Width:   cw,
				Height:  ch,
				Rotated: rotated,
				Score:   score,
			}
			found = true
		}
	}

	for _, r := range fs.regions {
		if r.fits(w, h) {
			consider(r, w, h, false)
		}
		if allowRotation && r.fits(h, w) {
			consider(r, h, w, true)
		}
	}

	return best, found
}

// Commit marks a w x h item at (x, y) as occupied. The reserved footprint is
// (w+gutter) x (h+gutter). Every intersecting region is replaced by its left,
// right, top and bottom residual strips, then contained regions are pruned.
func (fs *FreeSpace) Commit(x, y, w, h float64) {
	used := Rect{X: x, Y: y, Width: w + fs.gutter, Height: h + fs.gutter}

	kept := make([]Rect, 0, len(fs.regions)+4)
	var split []Rect

	for _, r := range fs.regions {
		if !r.Intersects(used) {
			kept = append(kept, r)
			continue
		}
		split = append(split, splitRegion(r, used)...)
	}

	fs.regions = pruneContained(append(kept, split...))
}

// splitRegion returns the up to four parts of r lying strictly left of,
// right of, above and below used. Each strip spans r's full extent along
// the other axis, so strips may overlap each other.
func splitRegion(r, used Rect) []Rect {
	out := make([]Rect, 0, 4)

	// Left
	if used.X > r.X {
		out = append(out, Rect{X: r.X, Y: r.Y, Width: used.X - r.X, Height: r.Height})
	}
	// Right
	if used.Right() < r.Right() {
		out = append(out, Rect{X: used.Right(), Y: r.Y, Width: r.Right() - used.Right(), Height: r.Height})
	}
	// Top
	if used.Y > r.Y {
		out = append(out, Rect{X: r.X, Y: r.Y, Width: r.Width, Height: used.Y - r.Y})
	}
	// Bottom
	if used.Bottom() < r.Bottom() {
		out = append(out, Rect{X: r.X, Y: used.Bottom(), Width: r.Width, Height: r.Bottom() - used.Bottom()})
	}

	return out
}

// pruneContained drops every region contained in another, keeping list
// order. Of two equal regions only the earlier survives.
func pruneContained(rects []Rect) []Rect {
	if len(rects) <= 1 {
		return rects
	}

	removed := make([]bool, len(rects))
	for i := range rects {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(rects); j++ {
			if removed[j] {
				continue
			}
			if rects[i].Contains(rects[j]) {
				removed[j] = true
			} else if rects[j].Contains(rects[i]) {
				removed[i] = true
				break
			}
		}
	}

	kept := rects[:0]
	for i, r := range rects {
		if !removed[i] {
			kept = append(kept, r)
		}
	}
	return kept
}

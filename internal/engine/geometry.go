package engine

// Rect is an axis-aligned rectangle in sheet-local usable coordinates (mm).
// Y grows downward from the top edge of the usable area.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Area returns the rectangle area.
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// Intersects reports whether r and o overlap with positive area.
// Rectangles that only share an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return o.X < r.X+r.Width && o.X+o.Width > r.X &&
		o.Y < r.Y+r.Height && o.Y+o.Height > r.Y
}

// Contains reports whether inner lies entirely within r, edges included.
func (r Rect) Contains(inner Rect) bool {
	return inner.X >= r.X && inner.Y >= r.Y &&
		inner.X+inner.Width <= r.X+r.Width &&
		inner.Y+inner.Height <= r.Y+r.Height
}

// fits reports whether a w x h item fits inside r.
func (r Rect) fits(w, h float64) bool {
	return w <= r.Width && h <= r.Height
}

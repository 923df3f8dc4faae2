package model

import "fmt"

// Item represents a rectangular label to be placed Quantity times.
type Item struct {
	Width    float64 `json:"width" yaml:"width"`   // mm
	Height   float64 `json:"height" yaml:"height"` // mm
	Quantity int     `json:"quantity" yaml:"quantity"`
}

func NewItem(w, h float64, qty int) Item {
	return Item{Width: w, Height: h, Quantity: qty}
}

// Area returns the area of a single copy in square mm.
func (i Item) Area() float64 {
	return i.Width * i.Height
}

// CustomPaperName is the name given to ad hoc paper sizes.
const CustomPaperName = "Custom"

// PaperSize represents a sheet of paper in portrait orientation.
type PaperSize struct {
	Name   string  `json:"name" yaml:"name"`
	Width  float64 `json:"width" yaml:"width"`   // mm
	Height float64 `json:"height" yaml:"height"` // mm
}

// Standard ISO A sizes (portrait).
var (
	PaperA2 = PaperSize{Name: "A2", Width: 420, Height: 594}
	PaperA3 = PaperSize{Name: "A3", Width: 297, Height: 420}
	PaperA4 = PaperSize{Name: "A4", Width: 210, Height: 297}
	PaperA5 = PaperSize{Name: "A5", Width: 148, Height: 210}
	PaperA6 = PaperSize{Name: "A6", Width: 105, Height: 148}
)

// StandardPaperSizes returns the built-in paper catalog, largest first.
func StandardPaperSizes() []PaperSize {
	return []PaperSize{PaperA2, PaperA3, PaperA4, PaperA5, PaperA6}
}

// CustomPaperSize creates an ad hoc paper size.
func CustomPaperSize(w, h float64) PaperSize {
	return PaperSize{Name: CustomPaperName, Width: w, Height: h}
}

// Area returns the paper area in square mm.
func (p PaperSize) Area() float64 {
	return p.Width * p.Height
}

func (p PaperSize) String() string {
	if p.Name == CustomPaperName || p.Name == "" {
		return fmt.Sprintf("%gx%gmm", p.Width, p.Height)
	}
	return p.Name
}

// PackingConfiguration holds the layout options applied to every sheet.
type PackingConfiguration struct {
	Margin        float64 `json:"margin" yaml:"margin"` // Uniform border on all four sides, mm
	Gutter        float64 `json:"gutter" yaml:"gutter"` // Spacing reserved after each item, mm
	AllowRotation bool    `json:"allow_rotation" yaml:"allow_rotation"`
}

// DefaultConfiguration returns a 5mm margin, 2mm gutter, rotation enabled.
func DefaultConfiguration() PackingConfiguration {
	return PackingConfiguration{
		Margin:        5.0,
		Gutter:        2.0,
		AllowRotation: true,
	}
}

// UsableWidth returns the paper width left after both side margins.
func (c PackingConfiguration) UsableWidth(p PaperSize) float64 {
	return p.Width - 2*c.Margin
}

// UsableHeight returns the paper height left after top and bottom margins.
func (c PackingConfiguration) UsableHeight(p PaperSize) float64 {
	return p.Height - 2*c.Margin
}

// UsableArea returns the printable area of one sheet in square mm.
func (c PackingConfiguration) UsableArea(p PaperSize) float64 {
	return c.UsableWidth(p) * c.UsableHeight(p)
}

// CanFit reports whether an item fits the usable area in its natural
// orientation, or rotated when rotation is allowed.
func (c PackingConfiguration) CanFit(item Item, p PaperSize) bool {
	uw := c.UsableWidth(p)
	uh := c.UsableHeight(p)

	if item.Width <= uw && item.Height <= uh {
		return true
	}
	return c.AllowRotation && item.Height <= uw && item.Width <= uh
}

// ItemPlacement represents one placed copy of an item.
type ItemPlacement struct {
	X             float64 `json:"x"`      // Top-left corner from the paper's left edge (mm, margin included)
	Y             float64 `json:"y"`      // Top-left corner from the paper's top edge (mm, margin included)
	Width         float64 `json:"width"`  // Placed width, already swapped when rotated
	Height        float64 `json:"height"` // Placed height, already swapped when rotated
	PageIndex     int     `json:"page_index"`
	ItemIndex     int     `json:"item_index"`
	InstanceIndex int     `json:"instance_index"`
	Rotated       bool    `json:"rotated"`
	Color         string  `json:"color"` // Display tag, opaque to the packer
}

// Right returns the X coordinate of the right edge.
func (p ItemPlacement) Right() float64 {
	return p.X + p.Width
}

// Bottom returns the Y coordinate of the bottom edge.
func (p ItemPlacement) Bottom() float64 {
	return p.Y + p.Height
}

// Area returns the placed area in square mm.
func (p ItemPlacement) Area() float64 {
	return p.Width * p.Height
}

// Label returns the 1-based "item.instance" display label, e.g. "2.3".
func (p ItemPlacement) Label() string {
	return fmt.Sprintf("%d.%d", p.ItemIndex+1, p.InstanceIndex+1)
}

// PackingResult holds the full solution. All metrics are derived from
// Placements on demand.
type PackingResult struct {
	Placements    []ItemPlacement      `json:"placements"`
	PaperSize     PaperSize            `json:"paper_size"`
	Configuration PackingConfiguration `json:"configuration"`
}

// PageCount returns the number of sheets used.
func (r PackingResult) PageCount() int {
	pages := 0
	for _, p := range r.Placements {
		if p.PageIndex+1 > pages {
			pages = p.PageIndex + 1
		}
	}
	return pages
}

// TotalItemsPlaced returns the number of placed copies over all pages.
func (r PackingResult) TotalItemsPlaced() int {
	return len(r.Placements)
}

// PagePlacements returns the placements on one page, in placement order.
func (r PackingResult) PagePlacements(pageIndex int) []ItemPlacement {
	var out []ItemPlacement
	for _, p := range r.Placements {
		if p.PageIndex == pageIndex {
			out = append(out, p)
		}
	}
	return out
}

// PlacedCount returns how many copies of the given item were placed.
func (r PackingResult) PlacedCount(itemIndex int) int {
	n := 0
	for _, p := range r.Placements {
		if p.ItemIndex == itemIndex {
			n++
		}
	}
	return n
}

// UsedArea returns the total placed area on one page.
func (r PackingResult) UsedArea(pageIndex int) float64 {
	var total float64
	for _, p := range r.Placements {
		if p.PageIndex == pageIndex {
			total += p.Area()
		}
	}
	return total
}

// PageEfficiency returns used area / usable area for a page, in [0, 1].
// A page without placements has efficiency 0.
func (r PackingResult) PageEfficiency(pageIndex int) float64 {
	used := r.UsedArea(pageIndex)
	if used == 0 {
		return 0
	}
	total := r.Configuration.UsableArea(r.PaperSize)
	if total <= 0 {
		return 0
	}
	return used / total
}

// OverallEfficiency returns total used area over the usable area of every
// page used, which is the area-weighted average of the page efficiencies.
func (r PackingResult) OverallEfficiency() float64 {
	pages := r.PageCount()
	if pages == 0 {
		return 0
	}
	total := r.Configuration.UsableArea(r.PaperSize) * float64(pages)
	if total <= 0 {
		return 0
	}
	var used float64
	for _, p := range r.Placements {
		used += p.Area()
	}
	return used / total
}

package engine

import (
	"sort"

	"go.uber.org/zap"

	"github.com/piwi3910/labelnest/internal/model"
	"github.com/piwi3910/labelnest/internal/palette"
)

// Packer runs the greedy MaxRects packer over as many sheets as needed.
// A Packer holding a Tags provider must not be shared between goroutines;
// with a nil Tags each Pack call uses its own fresh palette.
type Packer struct {
	Heuristic Heuristic
	Tags      palette.Provider
	Logger    *zap.Logger

	newTracker func(width, height, gutter float64) tracker
}

func New(heuristic Heuristic, tags palette.Provider) *Packer {
	return &Packer{Heuristic: heuristic, Tags: tags}
}

// request is one copy of an item waiting to be placed.
type request struct {
	itemIndex     int
	instanceIndex int
	width         float64
	height        float64
}

func (r request) area() float64 {
	return r.width * r.height
}

// Pack places every copy of every item and returns the placements.
// Validation runs first; on any invalid item nothing is placed and a
// *ValidationError is returned. The output depends only on the inputs and
// the heuristic.
func (p *Packer) Pack(items []model.Item, paper model.PaperSize, cfg model.PackingConfiguration) (model.PackingResult, error) {
	if issues := model.ValidateItems(items, paper, cfg); len(issues) > 0 {
		return model.PackingResult{}, &ValidationError{Issues: issues}
	}

	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newTracker := p.newTracker
	if newTracker == nil {
		newTracker = func(w, h, g float64) tracker { return NewFreeSpace(w, h, g) }
	}

	tags := p.Tags
	if tags == nil {
		tags = palette.New()
	}
	tags.Reset()
	colors := make([]string, len(items))
	for i := range items {
		colors[i] = tags.NextTag()
	}

	requests := expandRequests(items)

	usableW := cfg.UsableWidth(paper)
	usableH := cfg.UsableHeight(paper)

	result := model.PackingResult{
		Placements:    make([]model.ItemPlacement, 0, len(requests)),
		PaperSize:     paper,
		Configuration: cfg,
	}

	page := 0
	free := newTracker(usableW, usableH, cfg.Gutter)

	for _, req := range requests {
		placement, ok := p.place(free, req, cfg, page, colors[req.itemIndex])
		if !ok {
			page++
			logger.Debug("opening new page",
				zap.Int("page", page+1),
				zap.Int("item", req.itemIndex+1),
				zap.Int("instance", req.instanceIndex+1))

			free = newTracker(usableW, usableH, cfg.Gutter)
			placement, ok = p.place(free, req, cfg, page, colors[req.itemIndex])
			if !ok {
				return model.PackingResult{}, &InvariantError{
					ItemIndex:     req.itemIndex,
					InstanceIndex: req.instanceIndex,
					Width:         req.width,
					Height:        req.height,
					PageIndex:     page,
				}
			}
		}
		result.Placements = append(result.Placements, placement)
	}

	logger.Debug("packing complete",
		zap.String("heuristic", p.Heuristic.String()),
		zap.Int("pages", result.PageCount()),
		zap.Int("placed", result.TotalItemsPlaced()),
		zap.Float64("efficiency", result.OverallEfficiency()))

	return result, nil
}

// place asks the tracker for the best candidate and commits it.
func (p *Packer) place(free tracker, req request, cfg model.PackingConfiguration, page int, color string) (model.ItemPlacement, bool) {
	c, ok := free.BestCandidate(req.width, req.height, cfg.AllowRotation, p.Heuristic)
	if !ok {
		return model.ItemPlacement{}, false
	}

	free.Commit(c.X, c.Y, c.Width, c.Height)

	return model.ItemPlacement{
		X:             c.X + cfg.Margin,
		Y:             c.Y + cfg.Margin,
		Width:         c.Width,
		Height:        c.Height,
		PageIndex:     page,
		ItemIndex:     req.itemIndex,
		InstanceIndex: req.instanceIndex,
		Rotated:       c.Rotated,
		Color:         color,
	}, true
}

// expandRequests expands items by quantity and orders the copies by
// descending area. Equal areas keep input order.
func expandRequests(items []model.Item) []request {
	var expanded []request
	for i, item := range items {
		for n := 0; n < item.Quantity; n++ {
			expanded = append(expanded, request{
				itemIndex:     i,
				instanceIndex: n,
				width:         item.Width,
				height:        item.Height,
			})
		}
	}

	sort.SliceStable(expanded, func(i, j int) bool {
		return expanded[i].area() > expanded[j].area()
	})
	return expanded
}

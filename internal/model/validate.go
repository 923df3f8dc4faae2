package model

import "fmt"

// ItemError describes why one input item cannot be packed.
type ItemError struct {
	ItemNumber   int     // 1-based; 0 for problems with the paper or configuration itself
	Item         Item
	UsableWidth  float64
	UsableHeight float64
	Reason       string
}

func (e ItemError) Error() string {
	if e.ItemNumber == 0 {
		return e.Reason
	}
	return fmt.Sprintf("item %d: %s", e.ItemNumber, e.Reason)
}

// ValidateItems checks the paper, configuration and every item before any
// packing is attempted. It reports all problems found, in item order.
func ValidateItems(items []Item, paper PaperSize, cfg PackingConfiguration) []ItemError {
	var errs []ItemError

	uw := cfg.UsableWidth(paper)
	uh := cfg.UsableHeight(paper)

	if paper.Width <= 0 || paper.Height <= 0 {
		errs = append(errs, ItemError{
			UsableWidth: uw, UsableHeight: uh,
			Reason: fmt.Sprintf("paper size %s must have positive dimensions", paper),
		})
		return errs
	}
	if cfg.Margin < 0 {
		errs = append(errs, ItemError{
			UsableWidth: uw, UsableHeight: uh,
			Reason: fmt.Sprintf("margin must not be negative (got %g)", cfg.Margin),
		})
	}
	if cfg.Gutter < 0 {
		errs = append(errs, ItemError{
			UsableWidth: uw, UsableHeight: uh,
			Reason: fmt.Sprintf("gutter must not be negative (got %g)", cfg.Gutter),
		})
	}
	if uw <= 0 || uh <= 0 {
		errs = append(errs, ItemError{
			UsableWidth: uw, UsableHeight: uh,
			Reason: fmt.Sprintf("margin %gmm leaves no usable area on %s (usable area %gx%gmm)", cfg.Margin, paper, uw, uh),
		})
	}
	if len(errs) > 0 {
		return errs
	}

	for i, item := range items {
		num := i + 1
		base := ItemError{ItemNumber: num, Item: item, UsableWidth: uw, UsableHeight: uh}

		if item.Width <= 0 {
			e := base
			e.Reason = fmt.Sprintf("width must be positive (got %g)", item.Width)
			errs = append(errs, e)
		}
		if item.Height <= 0 {
			e := base
			e.Reason = fmt.Sprintf("height must be positive (got %g)", item.Height)
			errs = append(errs, e)
		}
		if item.Quantity <= 0 {
			e := base
			e.Reason = fmt.Sprintf("quantity must be positive (got %d)", item.Quantity)
			errs = append(errs, e)
		}

		if item.Width > 0 && item.Height > 0 && !cfg.CanFit(item, paper) {
			note := "(rotation is disabled)"
			if cfg.AllowRotation {
				note = "(even when rotated)"
			}
			e := base
			e.Reason = fmt.Sprintf("size %gx%gmm is too large to fit on %s %s; usable area is %gx%gmm",
				item.Width, item.Height, paper, note, uw, uh)
			errs = append(errs, e)
		}
	}

	return errs
}

package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/piwi3910/labelnest/internal/model"
)

var (
	// ErrValidation is wrapped by every input validation failure.
	ErrValidation = errors.New("invalid packing input")
	// ErrInvariant is wrapped when a validated request cannot be placed even
	// on a fresh page. It indicates a packer bug, not bad input.
	ErrInvariant = errors.New("packing invariant violated")
)

// ValidationError lists every problem found before packing started.
type ValidationError struct {
	Issues []model.ItemError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// InvariantError identifies the request that could not be placed on an
// empty page.
type InvariantError struct {
	ItemIndex     int
	InstanceIndex int
	Width         float64
	Height        float64
	PageIndex     int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: failed to place item %d.%d (%gx%gmm) on fresh page %d",
		ErrInvariant, e.ItemIndex+1, e.InstanceIndex+1, e.Width, e.Height, e.PageIndex+1)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}

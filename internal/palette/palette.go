// Package palette provides display tags (hex colors) for packed items.
// Tags are opaque to the packer and never influence placement.
package palette

import (
	"fmt"
	"strconv"
	"strings"
)

// Provider hands out display tags in sequence.
type Provider interface {
	// NextTag returns the next tag in the sequence.
	NextTag() string
	// Reset restarts the sequence from the beginning.
	Reset()
}

// pastels is a palette of light colors that keep black label text readable.
var pastels = []string{
	"#FFB3BA", // light pink
	"#BAFFC9", // light green
	"#BAE1FF", // light blue
	"#FFFFBA", // light yellow
	"#FFD9BA", // light orange
	"#E0BBE4", // light purple
	"#B5EAD7", // mint
	"#FFDAC1", // peach
	"#C7CEEA", // periwinkle
	"#F0E6EF", // lavender blush
	"#A8E6CF", // seafoam
	"#FDCFE8", // pink lace
	"#FFF5BA", // champagne
	"#B4F8C8", // magic mint
	"#D4A5A5", // dusty rose
	"#A0CED9", // light cyan
	"#FFE5B4", // papaya whip
	"#C1E1C1", // tea green
	"#F9D5E5", // fairy tale
	"#B8B8D1", // languid lavender
}

// Pastels returns a copy of the default palette.
func Pastels() []string {
	return append([]string(nil), pastels...)
}

// RoundRobin cycles through a fixed list of colors.
// It is not safe for concurrent use; give each packing run its own.
type RoundRobin struct {
	colors []string
	next   int
}

// New returns a RoundRobin over the default pastel palette.
func New() *RoundRobin {
	return NewWithColors(pastels)
}

// NewWithColors returns a RoundRobin over the given colors. An empty list
// falls back to the default palette.
func NewWithColors(colors []string) *RoundRobin {
	if len(colors) == 0 {
		colors = pastels
	}
	return &RoundRobin{colors: append([]string(nil), colors...)}
}

func (r *RoundRobin) NextTag() string {
	c := r.colors[r.next]
	r.next = (r.next + 1) % len(r.colors)
	return c
}

func (r *RoundRobin) Reset() {
	r.next = 0
}

// Len returns the palette size.
func (r *RoundRobin) Len() int {
	return len(r.colors)
}

// RGB is a decoded display color.
type RGB struct {
	R, G, B int
}

// Gray is used by renderers when a tag is not a parseable color.
var Gray = RGB{R: 200, G: 200, B: 200}

// ParseHex decodes "#RRGGBB" or "RRGGBB".
func ParseHex(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return RGB{R: int(v >> 16 & 0xFF), G: int(v >> 8 & 0xFF), B: int(v & 0xFF)}, nil
}

// ToRGB decodes a tag, falling back to Gray.
func ToRGB(tag string) RGB {
	c, err := ParseHex(tag)
	if err != nil {
		return Gray
	}
	return c
}

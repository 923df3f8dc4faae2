package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidItemSpec is returned when an item specification cannot be parsed.
	ErrInvalidItemSpec = errors.New("invalid item specification")
	// ErrInvalidPaperSize is returned when a paper size is neither a known name nor WxH.
	ErrInvalidPaperSize = errors.New("invalid paper size")
	// ErrEmptyPaperSize is returned for a blank paper size.
	ErrEmptyPaperSize = errors.New("paper size cannot be empty")
)

// ParseItem parses "width,height" or "width,height,quantity".
// Quantity defaults to 1 when omitted.
func ParseItem(spec string) (Item, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return Item{}, fmt.Errorf("%w: %q, expected width,height or width,height,quantity", ErrInvalidItemSpec, spec)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	width, err := strconv.ParseFloat(parts[0], 64)
	if err != nil || width <= 0 {
		return Item{}, fmt.Errorf("%w: width %q must be a positive number", ErrInvalidItemSpec, parts[0])
	}
	height, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || height <= 0 {
		return Item{}, fmt.Errorf("%w: height %q must be a positive number", ErrInvalidItemSpec, parts[1])
	}

	qty := 1
	if len(parts) == 3 {
		qty, err = strconv.Atoi(parts[2])
		if err != nil || qty <= 0 {
			return Item{}, fmt.Errorf("%w: quantity %q must be a positive integer", ErrInvalidItemSpec, parts[2])
		}
	}

	return NewItem(width, height, qty), nil
}

// ParseItems parses every spec, stopping at the first invalid one.
func ParseItems(specs []string) ([]Item, error) {
	items := make([]Item, 0, len(specs))
	for _, s := range specs {
		item, err := ParseItem(s)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// paperSeparators are accepted between width and height in custom sizes.
var paperSeparators = []string{"x", "X", "×"}

// ParsePaperSize accepts a standard name (A2-A6, any case) or a custom size
// such as "200x300" or "200x300mm", the form PaperSize.String produces.
func ParsePaperSize(s string) (PaperSize, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return PaperSize{}, ErrEmptyPaperSize
	}

	for _, size := range StandardPaperSizes() {
		if strings.EqualFold(size.Name, trimmed) {
			return size, nil
		}
	}

	custom := trimmed
	if n := len(custom); n > 2 && strings.EqualFold(custom[n-2:], "mm") {
		custom = strings.TrimSpace(custom[:n-2])
	}
	for _, sep := range paperSeparators {
		idx := strings.Index(custom, sep)
		if idx <= 0 {
			continue
		}
		w, errW := strconv.ParseFloat(strings.TrimSpace(custom[:idx]), 64)
		h, errH := strconv.ParseFloat(strings.TrimSpace(custom[idx+len(sep):]), 64)
		if errW == nil && errH == nil && w > 0 && h > 0 {
			return CustomPaperSize(w, h), nil
		}
	}

	return PaperSize{}, fmt.Errorf("%w: %q, use A2-A6 or a custom size like 200x300", ErrInvalidPaperSize, s)
}

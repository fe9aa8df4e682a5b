package chart

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned when a colour string cannot be parsed.
var ErrInvalidColor = errors.New("invalid color")

// Theme holds the colours used to draw a chart.
type Theme struct {
	Stroke      colorful.Color // the curve
	Grid        colorful.Color
	GridOpacity float64
	Text        colorful.Color // tick and ordinal labels
	Caption     colorful.Color
}

// DefaultTheme returns the built-in light theme.
func DefaultTheme() Theme {
	return Theme{
		Stroke:      colorful.Hsl(141, 0.73, 0.42),
		Grid:        MustParseHex("#71717a"),
		GridOpacity: 0.2,
		Text:        MustParseHex("#71717a"),
		Caption:     MustParseHex("#18181b"),
	}
}

// ParseColor parses a "#rrggbb" or "#rgb" colour.
func ParseColor(s string) (colorful.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
	}
	return c, nil
}

// MustParseHex is ParseColor for package-level literals. It panics on error.
func MustParseHex(s string) colorful.Color {
	c, err := ParseColor(s)
	if err != nil {
		panic("MustParseHex: " + err.Error())
	}
	return c
}

package chart

import "math"

// Ticks are the domain fractions that receive a gridline and label.
var Ticks = []float64{0, 0.25, 0.5, 0.75, 1}

// Label offsets relative to the plot area.
const (
	tickLabelGap  = 8
	xLabelOffsetY = 16
)

// Gridline is a horizontal rule across the plot area with its value label.
type Gridline struct {
	Tick   float64
	Y      float64
	X1     float64
	X2     float64
	LabelX float64
	Label  string
}

// Label is a piece of axis text anchored at X, Y.
type Label struct {
	X    float64
	Y    float64
	Text string
}

// Gridlines returns one gridline per entry in Ticks, bottom (Min) first.
func Gridlines(d Domain, g Geometry) []Gridline {
	lines := make([]Gridline, len(Ticks))
	for i, tick := range Ticks {
		lines[i] = Gridline{
			Tick:   tick,
			Y:      g.Padding + g.PlotHeight()*(1-tick),
			X1:     g.Padding,
			X2:     g.Width - g.Padding,
			LabelX: g.Padding - tickLabelGap,
			Label:  FormatNumber(Round(d.At(tick))),
		}
	}
	return lines
}

// XLabels returns the 1-based ordinal labels drawn under each of n samples.
func XLabels(n int, g Geometry) []Label {
	labels := make([]Label, n)
	for i := range labels {
		labels[i] = Label{
			X:    g.X(i, n),
			Y:    g.Height - g.Padding + xLabelOffsetY,
			Text: FormatNumber(float64(i + 1)),
		}
	}
	return labels
}

// Round rounds half-way values toward positive infinity, so Round(-2.5) is
// -2 and Round(2.5) is 3.
func Round(f float64) float64 {
	r := math.Floor(f + 0.5)
	if r == 0 {
		return 0 // no negative zero
	}
	return r
}

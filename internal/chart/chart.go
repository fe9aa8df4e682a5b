// Package chart turns ordered numeric samples into the pixel geometry of a
// small line chart: mapped points, a smoothed curve, gridlines and labels.
package chart

// Point is a position in canvas (pixel) space. Y grows downward.
type Point struct {
	X float64
	Y float64
}

// Domain is the value range mapped onto the vertical extent of the plot.
// Values outside [Min, Max] are not clamped and land outside the plot area.
type Domain struct {
	Min float64
	Max float64
}

// Span returns Max - Min.
func (d Domain) Span() float64 {
	return d.Max - d.Min
}

// Valid reports whether the domain has a positive span.
func (d Domain) Valid() bool {
	return d.Max > d.Min
}

// At returns the value found at fraction t of the domain (0 = Min, 1 = Max).
// An invalid domain yields Min for every t.
func (d Domain) At(t float64) float64 {
	if !d.Valid() {
		return d.Min
	}
	return d.Min + d.Span()*t
}

// Geometry describes the logical canvas a chart is drawn on.
type Geometry struct {
	Width   float64
	Height  float64
	Padding float64 // uniform margin reserved for axis labels
}

// Default canvas dimensions.
const (
	DefaultWidth   = 400
	DefaultHeight  = 200
	DefaultPadding = 40
)

// DefaultGeometry returns the 400x200 canvas with 40 units of padding.
func DefaultGeometry() Geometry {
	return Geometry{
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Padding: DefaultPadding,
	}
}

// PlotWidth returns the horizontal extent available to the data.
func (g Geometry) PlotWidth() float64 {
	return g.Width - 2*g.Padding
}

// PlotHeight returns the vertical extent available to the data.
func (g Geometry) PlotHeight() float64 {
	return g.Height - 2*g.Padding
}

// Top returns the y coordinate of the top edge of the plot area.
func (g Geometry) Top() float64 {
	return g.Padding
}

// Bottom returns the y coordinate of the bottom edge of the plot area.
func (g Geometry) Bottom() float64 {
	return g.Padding + g.PlotHeight()
}

package chart

// X returns the horizontal position of sample i out of n.
//
// The first and last samples sit on the left and right edges of the plot
// area. A lone sample is centred.
func (g Geometry) X(i, n int) float64 {
	if n <= 1 {
		return g.Padding + g.PlotWidth()/2
	}
	return g.Padding + (float64(i)/float64(n-1))*g.PlotWidth()
}

// Y returns the vertical position of value v within domain d. Higher values
// map closer to the top. An empty or inverted domain maps every value to the
// vertical centre of the plot.
func (g Geometry) Y(v float64, d Domain) float64 {
	h := g.PlotHeight()
	if !d.Valid() {
		return g.Padding + h/2
	}
	return g.Padding + h - ((v-d.Min)/d.Span())*h
}

// MapPoints converts samples into canvas points, one per sample and in the
// same order.
func MapPoints(samples []float64, d Domain, g Geometry) []Point {
	points := make([]Point, len(samples))
	for i, v := range samples {
		points[i] = Point{
			X: g.X(i, len(samples)),
			Y: g.Y(v, d),
		}
	}
	return points
}

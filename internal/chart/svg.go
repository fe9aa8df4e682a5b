package chart

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/lucasb-eyer/go-colorful"
)

//go:embed svg.tmpl
var svgSource string

var svgTemplates = template.Must(template.New("svg").Funcs(template.FuncMap{
	"num": FormatNumber,
	"hex": func(c colorful.Color) string { return c.Clamped().Hex() },
}).Parse(svgSource))

// Chart is a fully laid out line chart, ready to be written as SVG.
type Chart struct {
	Title     string
	Geometry  Geometry
	Domain    Domain
	Theme     Theme
	Samples   []float64
	Points    []Point
	Path      Path
	Gridlines []Gridline
	XLabels   []Label
}

// Option configures a Chart.
type Option func(*Chart)

// WithGeometry sets the canvas geometry.
func WithGeometry(g Geometry) Option {
	return func(c *Chart) {
		c.Geometry = g
	}
}

// WithTheme sets every colour at once.
func WithTheme(t Theme) Option {
	return func(c *Chart) {
		c.Theme = t
	}
}

// WithStroke overrides the curve colour only.
func WithStroke(col colorful.Color) Option {
	return func(c *Chart) {
		c.Theme.Stroke = col
	}
}

// New lays out a chart for samples over domain d.
func New(title string, samples []float64, d Domain, opts ...Option) Chart {
	c := Chart{
		Title:    title,
		Geometry: DefaultGeometry(),
		Domain:   d,
		Theme:    DefaultTheme(),
		Samples:  samples,
	}
	for _, opt := range opts {
		opt(&c)
	}

	c.Points = MapPoints(samples, d, c.Geometry)
	c.Path = SmoothPath(c.Points)
	c.Gridlines = Gridlines(d, c.Geometry)
	c.XLabels = XLabels(len(samples), c.Geometry)
	return c
}

// panel is the template view of one chart.
type panel struct {
	Chart
	Nested bool
	X      float64
	Width  string
}

type document struct {
	Width  float64
	Height float64
	Panels []panel
}

// WriteSVG writes the chart as an inline <svg> element that scales to the
// width of its container.
func (c Chart) WriteSVG(w io.Writer) error {
	if err := svgTemplates.ExecuteTemplate(w, "panel", panel{Chart: c, Width: "100%"}); err != nil {
		return fmt.Errorf("rendering chart %q: %w", c.Title, err)
	}
	return nil
}

// WriteDocument writes a standalone SVG document with the charts laid out
// left to right, gap units apart.
func WriteDocument(w io.Writer, gap float64, charts ...Chart) error {
	var doc document
	x := 0.0
	for i, c := range charts {
		if i > 0 {
			x += gap
		}
		doc.Panels = append(doc.Panels, panel{
			Chart:  c,
			Nested: true,
			X:      x,
			Width:  FormatNumber(c.Geometry.Width),
		})
		x += c.Geometry.Width
		doc.Height = max(doc.Height, c.Geometry.Height)
	}
	doc.Width = x

	if err := svgTemplates.ExecuteTemplate(w, "document", doc); err != nil {
		return fmt.Errorf("rendering chart document: %w", err)
	}
	return nil
}

// Package progression builds the tempo and energy progression charts for an
// ordered list of playlist tracks.
package progression

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/justestif/go-playlist-progression/internal/chart"
)

// Chart captions.
const (
	TempoTitle  = "BPM Progression"
	EnergyTitle = "Energy Progression"
)

// tempoMargin is added below the slowest and above the fastest tempo.
const tempoMargin = 5

// PanelGap is the horizontal gap between the two panels in a standalone
// document.
const PanelGap = 24

// ErrNoTracks is returned when a progression is requested for no tracks.
var ErrNoTracks = errors.New("no tracks to chart")

// EnergyDomain is the fixed domain of the energy chart (percent).
var EnergyDomain = chart.Domain{Min: 0, Max: 100}

// Track represents a playlist entry with its audio features.
// Feature fields are nil when Spotify has no analysis for the track.
type Track struct {
	ID     string
	Name   string
	Artist string

	Tempo        *float32 // beats per minute
	Energy       *float32 // 0.0 - 1.0
	Valence      *float32
	Danceability *float32
	Acousticness *float32
}

// HasFeatures reports whether tempo and energy are both known.
func (t Track) HasFeatures() bool {
	return t.Tempo != nil && t.Energy != nil
}

// Progression holds the two laid out charts.
type Progression struct {
	Tempo  chart.Chart
	Energy chart.Chart
}

// Options configures how charts are laid out.
type Options struct {
	Geometry    chart.Geometry
	Theme       chart.Theme
	TempoTheme  *chart.Theme // per-chart overrides, nil uses Theme
	EnergyTheme *chart.Theme
}

// DefaultOptions returns the default layout.
func DefaultOptions() Options {
	return Options{
		Geometry: chart.DefaultGeometry(),
		Theme:    chart.DefaultTheme(),
	}
}

// Build lays out the progression for tracks, in playlist order.
// Returns ErrNoTracks for an empty list.
func Build(tracks []Track, opts Options) (Progression, error) {
	if len(tracks) == 0 {
		return Progression{}, ErrNoTracks
	}
	return FromSamples(TempoSamples(tracks), EnergySamples(tracks), opts)
}

// FromSamples lays out the progression from precomputed samples, as stored
// in a snapshot. Both slices must have the same, non-zero length.
func FromSamples(tempo, energy []float64, opts Options) (Progression, error) {
	if len(tempo) == 0 {
		return Progression{}, ErrNoTracks
	}
	if len(tempo) != len(energy) {
		return Progression{}, fmt.Errorf("sample count mismatch: %d tempo, %d energy", len(tempo), len(energy))
	}

	tempoTheme, energyTheme := opts.Theme, opts.Theme
	if opts.TempoTheme != nil {
		tempoTheme = *opts.TempoTheme
	}
	if opts.EnergyTheme != nil {
		energyTheme = *opts.EnergyTheme
	}

	return Progression{
		Tempo: chart.New(TempoTitle, tempo, TempoDomain(tempo),
			chart.WithGeometry(opts.Geometry), chart.WithTheme(tempoTheme)),
		Energy: chart.New(EnergyTitle, energy, EnergyDomain,
			chart.WithGeometry(opts.Geometry), chart.WithTheme(energyTheme)),
	}, nil
}

// Charts returns the charts in display order.
func (p Progression) Charts() []chart.Chart {
	return []chart.Chart{p.Tempo, p.Energy}
}

// WriteSVG writes both charts side by side as a standalone SVG document.
func (p Progression) WriteSVG(w io.Writer) error {
	return chart.WriteDocument(w, PanelGap, p.Charts()...)
}

// TempoSamples returns each track's tempo, or 0 when unknown.
func TempoSamples(tracks []Track) []float64 {
	samples := make([]float64, len(tracks))
	for i, t := range tracks {
		if t.Tempo != nil {
			samples[i] = widen(*t.Tempo)
		}
	}
	return samples
}

// EnergySamples returns each track's energy as a rounded percentage, or 0
// when unknown.
func EnergySamples(tracks []Track) []float64 {
	samples := make([]float64, len(tracks))
	for i, t := range tracks {
		if t.Energy != nil {
			samples[i] = EnergyPercent(*t.Energy)
		}
	}
	return samples
}

// EnergyPercent converts a 0-1 energy value to a whole percentage.
func EnergyPercent(energy float32) float64 {
	return chart.Round(widen(energy) * 100)
}

// widen converts f to the float64 nearest its shortest decimal form, so a
// feature decoded as 0.005 stays 0.005 rather than 0.004999999888.
func widen(f float32) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return v
}

// TempoDomain pads the tempo range by 5 BPM on each side and snaps it
// outward to whole numbers. An empty input yields the zero domain.
func TempoDomain(samples []float64) chart.Domain {
	if len(samples) == 0 {
		return chart.Domain{}
	}
	lo, hi := samples[0], samples[0]
	for _, v := range samples[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return chart.Domain{
		Min: math.Floor(lo - tempoMargin),
		Max: math.Ceil(hi + tempoMargin),
	}
}

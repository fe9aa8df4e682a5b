package mood

import "github.com/lucasb-eyer/go-colorful"

// Name creates a descriptive name based on audio feature centroid values.
// Uses a 2x2 energy/valence quadrant system with acousticness modifier.
//
// Quadrants:
//   - High Energy + High Valence = "Upbeat Party"
//   - High Energy + Low Valence  = "Intense & Dark"
//   - Low Energy  + High Valence = "Chill & Happy"
//   - Low Energy  + Low Valence  = "Reflective & Melancholy"
//
// Acousticness above 0.6 appends " (Acoustic)".
func Name(centroid map[string]float32) string {
	energy := centroid["energy"]
	valence := centroid["valence"]
	acousticness := centroid["acousticness"]

	var baseName string

	highEnergy := energy > 0.6
	highValence := valence > 0.5

	switch {
	case highEnergy && highValence:
		baseName = "Upbeat Party"
	case highEnergy && !highValence:
		baseName = "Intense & Dark"
	case !highEnergy && highValence:
		baseName = "Chill & Happy"
	default:
		baseName = "Reflective & Melancholy"
	}

	if acousticness > 0.6 {
		return baseName + " (Acoustic)"
	}

	return baseName
}

// Color returns the swatch colour for a centroid.
// Energy maps to hue (cool indigo at 0, warm orange at 1);
// valence raises saturation and lightness.
func Color(centroid map[string]float32) colorful.Color {
	energy := float64(centroid["energy"])
	valence := float64(centroid["valence"])

	hue := 264 - energy*229
	if hue < 0 {
		hue += 360
	}
	saturation := 0.6 + valence*0.4
	lightness := 0.4 + valence*0.2
	return colorful.Hsl(hue, saturation, lightness).Clamped()
}

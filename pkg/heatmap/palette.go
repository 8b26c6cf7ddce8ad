package heatmap

import (
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

// Palette names.
const (
	PaletteSpectral = "spectral"
	PalettePlasma   = "plasma"
	PaletteViridis  = "viridis"
	PaletteInferno  = "inferno"
)

// DefaultPalette is used when no palette is named.
const DefaultPalette = PaletteSpectral

// Palette is an ordered list of color stops blended in CIE-Lab space.
type Palette struct {
	Name  string
	stops []colorful.Color
}

var palettes = map[string]Palette{
	// ColorBrewer Spectral, red to violet.
	PaletteSpectral: newPalette(PaletteSpectral,
		"#9e0142", "#d53e4f", "#f46d43", "#fdae61", "#fee08b", "#ffffbf",
		"#e6f598", "#abdda4", "#66c2a5", "#3288bd", "#5e4fa2"),
	PalettePlasma: newPalette(PalettePlasma,
		"#0d0887", "#4b03a1", "#7d03a8", "#a82296", "#cb4679",
		"#e56b5d", "#f89441", "#fdc328", "#f0f921"),
	PaletteViridis: newPalette(PaletteViridis,
		"#440154", "#482374", "#404387", "#345e8d", "#29788e", "#20908c",
		"#22a784", "#44be70", "#79d151", "#bdde26", "#fde725"),
	PaletteInferno: newPalette(PaletteInferno,
		"#000004", "#280b54", "#65156e", "#9f2a63", "#d44842",
		"#f57d15", "#fac127", "#fcffa4"),
}

func newPalette(name string, hexes ...string) Palette {
	stops := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic("heatmap: bad palette stop " + h)
		}
		stops[i] = c
	}
	return Palette{Name: name, stops: stops}
}

// PaletteByName looks up a palette. The empty name selects DefaultPalette.
func PaletteByName(name string) (Palette, error) {
	if name == "" {
		name = DefaultPalette
	}
	p, ok := palettes[name]
	if !ok {
		return Palette{}, errors.New(errors.ErrCodeInvalidPalette,
			"unknown palette %q (valid: %v)", name, PaletteNames())
	}
	return p, nil
}

// PaletteNames returns the registered palette names in sorted order.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// At returns the color at t, clamped to [0, 1].
func (p Palette) At(t float64) colorful.Color {
	n := len(p.stops)
	switch {
	case n == 0:
		return colorful.Color{}
	case n == 1 || t <= 0 || math.IsNaN(t):
		return p.stops[0]
	case t >= 1:
		return p.stops[n-1]
	}

	pos := t * float64(n-1)
	i := int(pos)
	return p.stops[i].BlendLab(p.stops[i+1], pos-float64(i)).Clamped()
}

// Stops returns the number of color stops.
func (p Palette) Stops() int { return len(p.stops) }

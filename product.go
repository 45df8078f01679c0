package stormscope

import (
	"fmt"
	"image/color"
	"strings"
)

// Product selects which synthetic radar field is rendered. Each product owns
// its color table, value range and field formula.
type Product int

const (
	Reflectivity Product = iota
	Velocity
	DifferentialReflectivity
	CorrelationCoefficient
	SpectrumWidth
)

// ParseProduct maps a CLI name to a Product. Accepts both the short aliases
// and the full names, case-insensitively.
func ParseProduct(name string) (Product, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "reflectivity", "refl":
		return Reflectivity, nil
	case "velocity", "vel":
		return Velocity, nil
	case "zdr", "differentialreflectivity":
		return DifferentialReflectivity, nil
	case "cc", "correlationcoefficient":
		return CorrelationCoefficient, nil
	case "sw", "spectrumwidth":
		return SpectrumWidth, nil
	}
	return Reflectivity, fmt.Errorf("unknown product %q", name)
}

func (p Product) String() string {
	switch p {
	case Velocity:
		return "VELOCITY"
	case DifferentialReflectivity:
		return "ZDR"
	case CorrelationCoefficient:
		return "CC"
	case SpectrumWidth:
		return "SW"
	default:
		return "REFLECTIVITY"
	}
}

// Title is the human-readable product name shown in the title block.
func (p Product) Title() string {
	switch p {
	case Velocity:
		return "Storm Relative Velocity"
	case DifferentialReflectivity:
		return "Differential Reflectivity (ZDR)"
	case CorrelationCoefficient:
		return "Correlation Coefficient (CC)"
	case SpectrumWidth:
		return "Spectrum Width"
	default:
		return "Composite Reflectivity"
	}
}

// Code is the long product identifier used in NWS-style product strings.
func (p Product) Code() string {
	switch p {
	case Velocity:
		return "VELOCITYRADIAL"
	case DifferentialReflectivity:
		return "DIFFERENTIALREFLECTIVITY"
	case CorrelationCoefficient:
		return "CORRELATIONCOEFFICIENT"
	case SpectrumWidth:
		return "SPECTRUMWIDTH"
	default:
		return "COMPOSITEREFLECTIVITY"
	}
}

// ColorBin is one half-open [Low, High) value bin of a product color table.
type ColorBin struct {
	Low, High float64
	Color     color.RGBA
}

var reflectivityColors = []ColorBin{
	{0, 5, color.RGBA{0, 0, 0, 255}},
	{5, 20, color.RGBA{0, 100, 0, 255}},
	{20, 30, color.RGBA{255, 255, 0, 255}},
	{30, 40, color.RGBA{255, 165, 0, 255}},
	{40, 50, color.RGBA{255, 0, 0, 255}},
	{50, 60, color.RGBA{139, 0, 0, 255}},
	{60, 80, color.RGBA{128, 0, 128, 255}},
}

var velocityColors = []ColorBin{
	{-120, -60, color.RGBA{0, 0, 139, 255}},
	{-60, -40, color.RGBA{0, 0, 255, 255}},
	{-40, -20, color.RGBA{135, 206, 235, 255}},
	{-20, 0, color.RGBA{255, 255, 255, 255}},
	{0, 20, color.RGBA{255, 182, 193, 255}},
	{20, 40, color.RGBA{255, 105, 180, 255}},
	{40, 120, color.RGBA{255, 20, 147, 255}},
}

var zdrColors = []ColorBin{
	{-2, -0.5, color.RGBA{128, 0, 128, 255}},
	{-0.5, 0.5, color.RGBA{255, 255, 255, 255}},
	{0.5, 2, color.RGBA{255, 165, 0, 255}},
}

var ccColors = []ColorBin{
	{0, 0.6, color.RGBA{255, 0, 0, 255}},
	{0.6, 0.9, color.RGBA{255, 165, 0, 255}},
	{0.9, 1.0, color.RGBA{0, 255, 0, 255}},
}

var swColors = []ColorBin{
	{0, 1, color.RGBA{0, 255, 0, 255}},
	{1, 2, color.RGBA{255, 255, 0, 255}},
	{2, 5, color.RGBA{255, 0, 0, 255}},
}

// ColorTable returns the ordered bin table for the product.
func (p Product) ColorTable() []ColorBin {
	switch p {
	case Velocity:
		return velocityColors
	case DifferentialReflectivity:
		return zdrColors
	case CorrelationCoefficient:
		return ccColors
	case SpectrumWidth:
		return swColors
	default:
		return reflectivityColors
	}
}

// ColorbarLabels returns the boundary labels drawn under the colorbar,
// one per bin edge (len(bins)+1 entries).
func (p Product) ColorbarLabels() []string {
	switch p {
	case Velocity:
		return []string{"-120", "-60", "-40", "-20", "0", "20", "40", "120"}
	case DifferentialReflectivity:
		return []string{"-2", "-0.5", "0.5", "2"}
	case CorrelationCoefficient:
		return []string{"0", "0.6", "0.9", "1"}
	case SpectrumWidth:
		return []string{"0", "1", "2", "5"}
	default:
		return []string{"0", "5", "20", "30", "40", "50", "60", "80"}
	}
}

// ValueRange is the clamp range applied to the field before classification.
func (p Product) ValueRange() (lo, hi float64) {
	switch p {
	case Velocity:
		return -120, 120
	case DifferentialReflectivity:
		return -2, 2
	case CorrelationCoefficient:
		return 0, 1
	case SpectrumWidth:
		return 0, 5
	default:
		return 0, 80
	}
}

// SpeckleChance is the per-pixel probability of sensor-noise speckle.
func (p Product) SpeckleChance() float64 {
	switch p {
	case CorrelationCoefficient:
		return 0.001
	case SpectrumWidth:
		return 0.0015
	default:
		return 0.002
	}
}

// BlurRadius is the Gaussian post-filter radius for the product layer.
func (p Product) BlurRadius() float64 {
	switch p {
	case Reflectivity, Velocity:
		return 1.2
	default:
		return 1.0
	}
}

// Classify scans the table in order and returns the color of the first bin
// containing v. Values outside every bin fall back to the last entry's color,
// however far out of range; callers rely on that degenerate behavior.
func (p Product) Classify(v float64) color.RGBA {
	table := p.ColorTable()
	for _, bin := range table {
		if bin.Low <= v && v < bin.High {
			return bin.Color
		}
	}
	return table[len(table)-1].Color
}

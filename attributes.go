package stormscope

import (
	"fmt"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// StormAttributes are the cosmetic values shown in the side panel. They are
// randomized once per run, independent of the field synthesis, and held
// constant across animation frames.
type StormAttributes struct {
	MaxReflectivity float64 // dBZ
	HailSize        float64 // inches
	RotationLabel   string
	TVSProbability  int // percent
}

var rotationLabels = [...]string{"Weak", "Moderate", "Strong"}

// DrawStormAttributes samples a fresh attribute set from src. The source is
// separate from the pixel-noise stream so pinning one does not freeze the
// other.
func DrawStormAttributes(src xrand.Source) StormAttributes {
	rng := xrand.New(src)
	refl := distuv.Uniform{Min: 40, Max: 78, Src: src}
	hail := distuv.Uniform{Min: 0.5, Max: 3.5, Src: src}
	return StormAttributes{
		MaxReflectivity: refl.Rand(),
		HailSize:        hail.Rand(),
		RotationLabel:   rotationLabels[rng.Intn(len(rotationLabels))],
		TVSProbability:  30 + rng.Intn(70),
	}
}

// panelLines formats the label/value rows of the attributes panel. The first
// row is the panel title and carries no value.
func (a StormAttributes) panelLines() [][2]string {
	return [][2]string{
		{"Storm Attributes", ""},
		{"Max Reflectivity:", fmt.Sprintf("%.1f dBZ", a.MaxReflectivity)},
		{"Estimated Hail Size:", fmt.Sprintf("%.2f in", a.HailSize)},
		{"Rotation Strength:", a.RotationLabel},
		{"TVS Probability:", fmt.Sprintf("%d%%", a.TVSProbability)},
	}
}

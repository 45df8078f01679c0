package stormscope

// Variant captures the fixed display constants that differ between the two
// program renditions: the compact animated display and the larger static-map
// display. Product formulas are shared; only the constants below change.
type Variant struct {
	// Size is the square canvas width and height in pixels.
	Size int
	// LayerAlpha is written for every classified field pixel.
	LayerAlpha uint8
	// BlindSpotRadius is the central opaque sensor-shadow disk radius.
	BlindSpotRadius float64
	// StageRadius is the active field radius indexed by stage-1.
	StageRadius [3]float64
	// VelocityAmp is the velocity couplet amplitude base indexed by stage-1.
	VelocityAmp [3]float64
	// OrbitingLobes places reflectivity lobes on a ring around the canvas
	// center (rotating with the frame) instead of at random offsets.
	OrbitingLobes bool
	// TimeBucketSeed seeds the run from coarse wall-clock time instead of
	// the fixed per-frame lobe seed.
	TimeBucketSeed bool
	// ShearOverlay enables the gate-to-gate shear highlight on velocity.
	ShearOverlay bool
	// Decorations enables the warning polygon and storm-attributes panel.
	Decorations bool
}

// Shared stage lookup tables.
var (
	maxReflByStage = [3]float64{35, 55, 75}
	lobesByStage   = [3]int{1, 2, 3}
)

// AnimatedVariant is the 768-pixel looping display: opaque field pixels,
// orbiting lobes placed from a fixed seed, shear and decoration overlays.
func AnimatedVariant() Variant {
	return Variant{
		Size:            768,
		LayerAlpha:      255,
		BlindSpotRadius: 14,
		StageRadius:     [3]float64{150, 200, 300},
		VelocityAmp:     [3]float64{30, 50, 80},
		OrbitingLobes:   true,
		ShearOverlay:    true,
		Decorations:     true,
	}
}

// StaticMapVariant is the 1024-pixel map overlay display: translucent field
// pixels, randomly offset lobes reseeded from 10-second wall-clock buckets.
func StaticMapVariant() Variant {
	return Variant{
		Size:            1024,
		LayerAlpha:      180,
		BlindSpotRadius: 18,
		StageRadius:     [3]float64{200, 280, 360},
		VelocityAmp:     [3]float64{60, 80, 120},
		TimeBucketSeed:  true,
	}
}

// Radius returns the active field radius for a normalized stage.
func (v Variant) Radius(stage int) float64 {
	return v.StageRadius[stage-1]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

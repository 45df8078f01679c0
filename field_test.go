package stormscope

import (
	"image"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testVariant keeps the pixel loops small enough for fast tests while
// preserving the animated variant's behavior switches.
func testVariant() Variant {
	v := AnimatedVariant()
	v.Size = 192
	v.StageRadius = [3]float64{40, 55, 70}
	return v
}

func TestFieldInactiveOutsideRadius(t *testing.T) {
	v := testVariant()
	for _, p := range allProducts {
		rng := rand.New(rand.NewSource(1))
		field := NewFieldFunc(v, p, 2, 50, 0.3, rng)
		center := float64(v.Size / 2)
		radius := v.Radius(2)
		for y := 0; y < v.Size; y++ {
			for x := 0; x < v.Size; x++ {
				dist := math.Hypot(float64(x)-center, float64(y)-center)
				if dist > radius {
					_, ok := field(x, y)
					assert.False(t, ok, "%s active at dist %.1f > %.1f", p, dist, radius)
				}
			}
		}
	}
}

func TestLayerTransparentOutsideRadius(t *testing.T) {
	v := testVariant()
	rng := rand.New(rand.NewSource(DefaultLobeSeed))
	layer := RenderLayer(v, Reflectivity, 1, 50, 0, rng)

	center := float64(v.Size / 2)
	// Speckle can land anywhere and the blur smears it, so pixels past the
	// active radius are not strictly transparent. The field itself must not
	// leak: outside radius plus blur margin no pixel may be fully opaque
	// (isolated blurred speckles lose full opacity), and overall coverage
	// out there stays at blurred-speckle level.
	margin := Reflectivity.BlurRadius() * 4
	limit := v.Radius(1) + margin
	touched := 0
	outside := 0
	for y := 0; y < v.Size; y++ {
		for x := 0; x < v.Size; x++ {
			dist := math.Hypot(float64(x)-center, float64(y)-center)
			if dist <= limit {
				continue
			}
			outside++
			a := layer.RGBAAt(x, y).A
			if a != 0 {
				touched++
			}
			assert.Less(t, a, uint8(255), "opaque field pixel at dist %.1f", dist)
		}
	}
	require.Positive(t, outside)
	assert.Less(t, float64(touched)/float64(outside), 0.2,
		"more than speckle-level coverage outside the active radius")
}

func TestFieldValuesWithinRange(t *testing.T) {
	v := testVariant()
	for _, p := range allProducts {
		lo, hi := p.ValueRange()
		for _, intensity := range []int{1, 50, 99} {
			rng := rand.New(rand.NewSource(7))
			field := NewFieldFunc(v, p, 3, intensity, 1.1, rng)
			for y := 0; y < v.Size; y += 3 {
				for x := 0; x < v.Size; x += 3 {
					val, ok := field(x, y)
					if !ok {
						continue
					}
					assert.GreaterOrEqual(t, val, lo, "%s intensity %d", p, intensity)
					assert.LessOrEqual(t, val, hi, "%s intensity %d", p, intensity)
				}
			}
		}
	}
}

func TestStageMonotonicity(t *testing.T) {
	for _, v := range []Variant{AnimatedVariant(), StaticMapVariant()} {
		for stage := 2; stage <= 3; stage++ {
			assert.GreaterOrEqual(t, v.Radius(stage), v.Radius(stage-1))
			assert.GreaterOrEqual(t, lobesByStage[stage-1], lobesByStage[stage-2])
		}
	}
}

func TestPlaceLobesDeterminism(t *testing.T) {
	v := AnimatedVariant()
	for stage := 1; stage <= 3; stage++ {
		a, hookA := PlaceLobes(v, stage, 70, 0.8, rand.New(rand.NewSource(DefaultLobeSeed)))
		b, hookB := PlaceLobes(v, stage, 70, 0.8, rand.New(rand.NewSource(DefaultLobeSeed)))
		require.Equal(t, a, b, "stage %d lobes", stage)
		require.Equal(t, hookA, hookB, "stage %d hook", stage)
		assert.Len(t, a, lobesByStage[stage-1])
	}
}

func TestPlaceLobesStageCountAndRadii(t *testing.T) {
	v := AnimatedVariant()
	rng := rand.New(rand.NewSource(DefaultLobeSeed))
	lobes, hook := PlaceLobes(v, 3, 99, 0, rng)
	for _, lb := range lobes {
		assert.GreaterOrEqual(t, lb.Radius, 40.0)
		assert.LessOrEqual(t, lb.Radius, 80.0)
		assert.Greater(t, lb.Strength, 0.0)
		assert.LessOrEqual(t, lb.Strength, maxReflByStage[2])
	}
	assert.InDelta(t, v.Radius(3)*0.5, hook.Radius, 1)
	assert.InDelta(t, maxReflByStage[2]*0.8, hook.Strength, 1e-9)
}

func TestIntensityClampEquivalence(t *testing.T) {
	v := testVariant()

	sample := func(intensity int) []float64 {
		rng := rand.New(rand.NewSource(3))
		field := NewFieldFunc(v, Velocity, 2, intensity, 0.5, rng)
		var vals []float64
		for y := 0; y < v.Size; y += 7 {
			for x := 0; x < v.Size; x += 7 {
				if val, ok := field(x, y); ok {
					vals = append(vals, val)
				}
			}
		}
		return vals
	}

	assert.Equal(t, sample(99), sample(150), "intensity above 99 behaves as 99")
	assert.Equal(t, sample(1), sample(0), "intensity below 1 behaves as 1")
	assert.Equal(t, sample(1), sample(-10))
}

func TestInjectSpeckle(t *testing.T) {
	v := testVariant()
	rng := rand.New(rand.NewSource(9))
	img := image.NewRGBA(image.Rect(0, 0, v.Size, v.Size))

	InjectSpeckle(img, 1.0, rng) // chance 1: every pixel becomes speckle
	for y := 0; y < v.Size; y++ {
		for x := 0; x < v.Size; x++ {
			c := img.RGBAAt(x, y)
			assert.Equal(t, c.R, c.G)
			assert.Equal(t, c.R, c.B)
			assert.GreaterOrEqual(t, c.R, uint8(150))
			assert.Equal(t, uint8(255), c.A)
		}
	}
}

func TestShearOverlayMarksDiscontinuities(t *testing.T) {
	v := testVariant()
	rng := rand.New(rand.NewSource(5))
	layer := RenderLayer(v, Velocity, 3, 99, 0, rng)
	out := ApplyShearOverlay(layer, shearThreshold)

	require.Equal(t, layer.Bounds(), out.Bounds())
	marked := 0
	for y := 0; y < v.Size; y++ {
		for x := 0; x < v.Size; x++ {
			c := out.RGBAAt(x, y)
			if c.R > 150 && c.G < 120 && c.B > 150 {
				marked++
			}
		}
	}
	// A stage-3 full-intensity couplet always produces quantized color jumps.
	assert.Greater(t, marked, 0, "expected magenta shear marks")
}

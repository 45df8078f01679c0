package stormscope

import (
	"image/gif"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 8, 31, 14, 5, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		Variant:   testVariant(),
		Stage:     1,
		Intensity: 50,
		Product:   Reflectivity,
		MapPath:   "no-such-map.png",
		FontPath:  "no-such-font.ttf",
		Seed:      -1,
	}
}

func TestNewGeneratorFallbacks(t *testing.T) {
	t.Run("missing assets degrade softly", func(t *testing.T) {
		gen, err := NewGenerator(testOptions(), clockwork.NewFakeClockAt(testTime))
		require.NoError(t, err)
		assert.True(t, gen.MapFallback)
		assert.True(t, gen.FontFallback)
	})

	t.Run("corrupt map is fatal", func(t *testing.T) {
		dir := t.TempDir()
		mapPath := filepath.Join(dir, "map.png")
		require.NoError(t, os.WriteFile(mapPath, []byte("not an image"), 0o644))

		opts := testOptions()
		opts.MapPath = mapPath
		_, err := NewGenerator(opts, clockwork.NewFakeClockAt(testTime))
		assert.Error(t, err)
	})
}

func TestRenderStill(t *testing.T) {
	gen, err := NewGenerator(testOptions(), clockwork.NewFakeClockAt(testTime))
	require.NoError(t, err)

	img := gen.RenderStill()
	size := testVariant().Size
	assert.Equal(t, size, img.Bounds().Dx())
	assert.Equal(t, size, img.Bounds().Dy())

	// Flattened output carries no alpha.
	for i := 3; i < len(img.Pix); i += 4 {
		require.Equal(t, uint8(255), img.Pix[i])
	}
}

func TestIntensityClampEndToEnd(t *testing.T) {
	render := func(intensity int) []uint8 {
		opts := testOptions()
		opts.Intensity = intensity
		opts.Seed = DefaultLobeSeed
		gen, err := NewGenerator(opts, clockwork.NewFakeClockAt(testTime))
		require.NoError(t, err)
		return gen.RenderStill().Pix
	}

	assert.Equal(t, render(99), render(150), "intensity 150 must behave as 99")
	assert.Equal(t, render(1), render(0), "intensity 0 must behave as 1")
}

func TestRenderAnimationFramesDistinct(t *testing.T) {
	opts := testOptions()
	opts.Product = Velocity
	opts.GIF = true
	opts.Frames = 4
	gen, err := NewGenerator(opts, clockwork.NewFakeClockAt(testTime))
	require.NoError(t, err)

	anim := gen.RenderAnimation()
	require.Len(t, anim.Image, 4)
	require.Len(t, anim.Delay, 4)
	assert.Equal(t, 0, anim.LoopCount)
	for _, d := range anim.Delay {
		assert.Equal(t, 10, d) // 100 ms per frame
	}
	for i := 1; i < len(anim.Image); i++ {
		assert.NotEqual(t, anim.Image[i-1].Pix, anim.Image[i].Pix,
			"frames %d and %d are byte-identical", i-1, i)
	}
}

func TestRunFilenames(t *testing.T) {
	t.Run("still", func(t *testing.T) {
		opts := testOptions()
		opts.OutDir = t.TempDir()
		gen, err := NewGenerator(opts, clockwork.NewFakeClockAt(testTime))
		require.NoError(t, err)

		path, err := gen.Run()
		require.NoError(t, err)
		assert.Equal(t, "08_31_2026_1405UTC_BORDEAUX_REFLECTIVITY_VIEW.png", filepath.Base(path))
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("gif", func(t *testing.T) {
		opts := testOptions()
		opts.Product = SpectrumWidth
		opts.GIF = true
		opts.Frames = 2
		opts.OutDir = t.TempDir()
		gen, err := NewGenerator(opts, clockwork.NewFakeClockAt(testTime))
		require.NoError(t, err)

		path, err := gen.Run()
		require.NoError(t, err)
		assert.Equal(t, "BORDEAUX_SW_GIF_2frames_08_31_2026_1405UTC.gif", filepath.Base(path))

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		decoded, err := gif.DecodeAll(f)
		require.NoError(t, err)
		assert.Len(t, decoded.Image, 2)
		assert.Equal(t, 0, decoded.LoopCount)
	})
}

func TestFrameSeedDiscipline(t *testing.T) {
	t.Run("animated default is the fixed lobe seed", func(t *testing.T) {
		gen, err := NewGenerator(testOptions(), clockwork.NewFakeClockAt(testTime))
		require.NoError(t, err)
		assert.Equal(t, int64(DefaultLobeSeed), gen.frameSeed())
	})

	t.Run("static variant seeds from 10s clock buckets", func(t *testing.T) {
		opts := testOptions()
		opts.Variant.TimeBucketSeed = true
		clock := clockwork.NewFakeClockAt(testTime)
		gen, err := NewGenerator(opts, clock)
		require.NoError(t, err)

		seed := gen.frameSeed()
		assert.Equal(t, testTime.Unix()/10, seed)

		clock.Advance(9 * time.Second)
		assert.Equal(t, seed, gen.frameSeed(), "stable within a bucket")
		clock.Advance(2 * time.Second)
		assert.NotEqual(t, seed, gen.frameSeed(), "advances across buckets")
	})

	t.Run("explicit seed overrides both disciplines", func(t *testing.T) {
		opts := testOptions()
		opts.Seed = 1234
		gen, err := NewGenerator(opts, clockwork.NewFakeClockAt(testTime))
		require.NoError(t, err)
		assert.Equal(t, int64(1234), gen.frameSeed())
	})
}

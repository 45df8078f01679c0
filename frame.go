package stormscope

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"github.com/jonboulle/clockwork"
	"github.com/lucasb-eyer/go-colorful"
	xrand "golang.org/x/exp/rand"
	xdraw "golang.org/x/image/draw"

	"github.com/setanarut/stormscope/utils"
)

// DefaultLobeSeed is the fixed per-frame seed of the animated variant, which
// pins reflectivity lobe placement across runs.
const DefaultLobeSeed = 42

// timeBucket is the wall-clock truncation of the static-map variant's seed:
// lobe placement drifts over real time but is stable within a bucket.
const timeBucket = 10 * time.Second

// Options configures one generator run.
type Options struct {
	Variant   Variant
	Stage     int     // 1..3, clamped
	Intensity int     // 1..99, clamped
	Product   Product
	Polygon   bool // draw the warning polygon (animated variant only)
	GIF       bool // animation mode
	Frames    int  // animation frame count
	MapPath   string
	FontPath  string
	OutDir    string
	Seed      int64 // <0 selects the variant's default seeding discipline
}

// Generator runs the synthesis pipeline: field layers, overlays,
// composition and file output. Construct with NewGenerator; a zero Generator
// is not usable.
type Generator struct {
	opts  Options
	faces Faces
	clock clockwork.Clock

	base    *image.RGBA // canvas-sized background (map or solid)
	gridCol color.RGBA
	attrs   StormAttributes

	// FontFallback reports that the TTF could not be loaded and the built-in
	// bitmap face is in use. Informational; rendering proceeds regardless.
	FontFallback bool
	// MapFallback reports that no map asset was found and the solid
	// background is in use.
	MapFallback bool
}

// NewGenerator normalizes opts, loads the optional map and font assets and
// draws the run's storm attributes. A missing map or font degrades softly; a
// present but undecodable map is a hard error.
func NewGenerator(opts Options, clock clockwork.Clock) (*Generator, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	opts.Stage = clampInt(opts.Stage, 1, 3)
	opts.Intensity = clampInt(opts.Intensity, 1, 99)
	if opts.Frames <= 0 {
		opts.Frames = 20
	}

	g := &Generator{opts: opts, clock: clock}

	faces, err := LoadFaces(opts.FontPath)
	g.faces = faces
	g.FontFallback = err != nil

	size := opts.Variant.Size
	g.base = image.NewRGBA(image.Rect(0, 0, size, size))
	var dominant *colorful.Color
	if _, statErr := os.Stat(opts.MapPath); statErr != nil {
		g.MapFallback = true
		solid := color.RGBA{30, 30, 30, 255}
		draw.Draw(g.base, g.base.Bounds(), image.NewUniform(solid), image.Point{}, draw.Src)
	} else {
		mapImg, readErr := utils.ReadImage(opts.MapPath)
		if readErr != nil {
			return nil, fmt.Errorf("map asset: %w", readErr)
		}
		xdraw.ApproxBiLinear.Scale(g.base, g.base.Bounds(), mapImg, mapImg.Bounds(), xdraw.Src, nil)
		d := utils.DominantColor(g.base)
		dominant = &d
	}
	g.gridCol = GridColor(dominant)

	attrSeed := uint64(clock.Now().UnixNano())
	if opts.Seed >= 0 {
		attrSeed = uint64(opts.Seed)
	}
	g.attrs = DrawStormAttributes(xrand.NewSource(attrSeed))

	return g, nil
}

// Attrs returns the storm attributes drawn for this run.
func (g *Generator) Attrs() StormAttributes { return g.attrs }

// frameSeed resolves the seeding discipline for one frame. The animated
// variant reseeds every frame with the fixed lobe seed; the static-map
// variant seeds from the coarse wall clock once per run.
func (g *Generator) frameSeed() int64 {
	if g.opts.Seed >= 0 {
		return g.opts.Seed
	}
	if g.opts.Variant.TimeBucketSeed {
		return g.clock.Now().Unix() / int64(timeBucket/time.Second)
	}
	return DefaultLobeSeed
}

// RenderFrame produces one fully composed frame at the given rotation.
func (g *Generator) RenderFrame(rotation float64, rng *rand.Rand) *image.RGBA {
	opts := g.opts
	v := opts.Variant

	layer := RenderLayer(v, opts.Product, opts.Stage, opts.Intensity, rotation, rng)
	if opts.Product == Velocity && v.ShearOverlay {
		layer = ApplyShearOverlay(layer, shearThreshold)
	}

	combined := image.NewRGBA(g.base.Bounds())
	copy(combined.Pix, g.base.Pix)
	CompositeOver(combined, layer)

	dc := gg.NewContextForRGBA(combined)
	drawGrid(dc, v, g.gridCol)
	drawBlindSpot(dc, v, g.faces)
	drawTitleBlock(dc, opts.Product, g.clock.Now().UTC(), g.faces)
	drawColorbar(dc, v, opts.Product, g.faces)

	if v.Decorations {
		if opts.Polygon {
			drawWarningPolygon(combined, v, rng, g.faces)
		}
		dc = gg.NewContextForRGBA(combined)
		drawAttributesPanel(dc, v, g.attrs, g.faces)
	}
	return combined
}

// RenderStill renders a single frame at rotation zero and flattens it.
func (g *Generator) RenderStill() *image.RGBA {
	rng := rand.New(rand.NewSource(g.frameSeed()))
	frame := g.RenderFrame(0, rng)
	flatten(frame)
	return frame
}

// RenderAnimation renders the looping animation: Frames frames at evenly
// spaced rotations, quantized against a palette extracted from the first
// frame, 100 ms per frame, infinite loop.
func (g *Generator) RenderAnimation() *gif.GIF {
	n := g.opts.Frames
	anim := &gif.GIF{LoopCount: 0}

	// Only the animated reflectivity generator reseeds per frame; every other
	// product continues the stream across frames.
	reseedPerFrame := !g.opts.Variant.TimeBucketSeed && g.opts.Product == Reflectivity
	rng := rand.New(rand.NewSource(g.frameSeed()))

	var palette color.Palette
	for i := 0; i < n; i++ {
		if reseedPerFrame {
			rng = rand.New(rand.NewSource(g.frameSeed()))
		}
		rotation := 2 * math.Pi * float64(i) / float64(n)
		frame := g.RenderFrame(rotation, rng)
		flatten(frame)
		if palette == nil {
			palette = utils.FramePalette(frame, 256)
		}
		paletted := image.NewPaletted(frame.Bounds(), palette)
		draw.Draw(paletted, paletted.Bounds(), frame, image.Point{}, draw.Src)
		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, 10) // hundredths of a second
	}
	return anim
}

// Run renders per the options and writes the output file, returning its
// path.
func (g *Generator) Run() (string, error) {
	ts := g.clock.Now().UTC()
	if g.opts.GIF {
		path := filepath.Join(g.opts.OutDir, gifFilename(g.opts.Product, g.opts.Frames, ts))
		anim := g.RenderAnimation()
		f, err := os.Create(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		if err := gif.EncodeAll(f, anim); err != nil {
			return "", fmt.Errorf("encode gif: %w", err)
		}
		return path, nil
	}

	path := filepath.Join(g.opts.OutDir, stillFilename(g.opts.Product, ts))
	if err := utils.SaveImage(g.RenderStill(), path); err != nil {
		return "", err
	}
	return path, nil
}

// flatten forces every pixel opaque. Output files carry no alpha; the base
// is opaque so only the alpha channel needs squashing.
func flatten(img *image.RGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
}

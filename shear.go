package stormscope

import (
	"image"
	"image/color"
)

// shearThreshold is the red-channel difference between horizontal neighbors
// above which a pixel pair counts as gate-to-gate shear. It operates on the
// already-classified colors, not the continuous velocity field.
const shearThreshold = 40

// ApplyShearOverlay marks horizontal color discontinuities in the velocity
// layer bright magenta and composites the highlight over the layer.
func ApplyShearOverlay(layer *image.RGBA, threshold int) *image.RGBA {
	b := layer.Bounds()
	overlay := image.NewRGBA(b)
	mark := color.RGBA{255, 0, 255, 180}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X-1; x++ {
			r1 := int(layer.RGBAAt(x, y).R)
			r2 := int(layer.RGBAAt(x+1, y).R)
			diff := r1 - r2
			if diff < 0 {
				diff = -diff
			}
			if diff > threshold {
				overlay.SetRGBA(x, y, mark)
				overlay.SetRGBA(x+1, y, mark)
			}
		}
	}

	out := image.NewRGBA(b)
	copy(out.Pix, layer.Pix)
	CompositeOver(out, overlay)
	return out
}

// CompositeOver source-over composites src onto dst in place, straight
// (non-premultiplied) alpha. dst alpha saturates toward opaque.
func CompositeOver(dst *image.RGBA, src *image.RGBA) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			s := src.RGBAAt(x, y)
			if s.A == 0 {
				continue
			}
			if s.A == 255 {
				dst.SetRGBA(x, y, s)
				continue
			}
			d := dst.RGBAAt(x, y)
			a := float64(s.A) / 255
			oneMinus := 1 - a
			dst.SetRGBA(x, y, color.RGBA{
				R: uint8(a*float64(s.R) + oneMinus*float64(d.R)),
				G: uint8(a*float64(s.G) + oneMinus*float64(d.G)),
				B: uint8(a*float64(s.B) + oneMinus*float64(d.B)),
				A: uint8(min(255, float64(s.A)+oneMinus*float64(d.A))),
			})
		}
	}
}

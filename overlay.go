package stormscope

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"time"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
)

// Station identity shown on the display. Entirely fictitious.
const (
	RadarName   = "Bordeaux KBDX (KRAD Bordeaux)"
	stationCode = "KBDX"
	stationSub  = "(KRAD Bordeaux)"
	filePrefix  = "BORDEAUX"
)

const gridSpacing = 80

// GridColor picks the reference-grid gray. Over a solid background it is the
// fixed dim gray; over a bright map it drops darker so rings stay visible.
func GridColor(dominant *colorful.Color) color.RGBA {
	if dominant != nil {
		if l, _, _ := dominant.Lab(); l > 0.6 {
			return color.RGBA{40, 40, 40, 255}
		}
	}
	return color.RGBA{60, 60, 60, 255}
}

// drawGrid strokes concentric range rings at fixed spacing and 12 radial
// spokes at 30 degree increments.
func drawGrid(dc *gg.Context, v Variant, col color.RGBA) {
	c := float64(v.Size / 2)
	dc.SetColor(col)
	dc.SetLineWidth(1)
	for r := gridSpacing; r < v.Size/2; r += gridSpacing {
		dc.DrawCircle(c, c, float64(r))
		dc.Stroke()
	}
	for deg := 0; deg < 360; deg += 30 {
		a := gg.Radians(float64(deg))
		dc.DrawLine(c, c, c+math.Cos(a)*c, c+math.Sin(a)*c)
		dc.Stroke()
	}
}

// drawBlindSpot fills the central sensor-shadow disk and centers the
// two-line station label on top of it.
func drawBlindSpot(dc *gg.Context, v Variant, faces Faces) {
	c := float64(v.Size / 2)
	dc.SetRGB(0, 0, 0)
	dc.DrawCircle(c, c, v.BlindSpotRadius)
	dc.Fill()

	dc.SetFontFace(faces.Small)
	dc.SetRGB(1, 1, 1)
	lines := []string{stationCode, stationSub}
	lineH := dc.FontHeight()
	startY := c - lineH*float64(len(lines))/2
	for i, line := range lines {
		dc.DrawStringAnchored(line, c, startY+lineH*float64(i), 0.5, 1)
	}
}

// drawTitleBlock writes the radar name, product title and UTC timestamp in
// the top-left corner.
func drawTitleBlock(dc *gg.Context, p Product, ts time.Time, faces Faces) {
	dc.SetFontFace(faces.Big)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored("RADAR: "+RadarName, 20, 20, 0, 1)
	dc.DrawStringAnchored(p.Title(), 20, 50, 0, 1)
	dc.DrawStringAnchored(ts.Format("2006-01-02 15:04 UTC"), 20, 80, 0, 1)
}

// drawColorbar renders one equal-width swatch per color bin and a numeric
// label at every bin boundary.
func drawColorbar(dc *gg.Context, v Variant, p Product, faces Faces) {
	x := 50.0
	y := float64(v.Size) - 80
	width := float64(v.Size) - 108
	height := 30.0

	bins := p.ColorTable()
	segW := width / float64(len(bins))
	for i, bin := range bins {
		dc.SetColor(bin.Color)
		dc.DrawRectangle(x+float64(i)*segW, y, segW, height)
		dc.Fill()
	}

	dc.SetFontFace(faces.Small)
	dc.SetRGB(1, 1, 1)
	for i, label := range p.ColorbarLabels() {
		dc.DrawStringAnchored(label, x+float64(i)*segW-8, y+height+2, 0, 1)
	}
}

// WarningPolygon generates the randomized severe-warning polygon vertices:
// 5 to 7 points around a random center angle at radius 120-200 with
// per-vertex jitter.
func WarningPolygon(v Variant, rng *rand.Rand) []gg.Point {
	c := float64(v.Size / 2)
	radius := float64(120 + rng.Intn(81))
	centerAngle := rng.Float64() * 2 * math.Pi
	n := 5 + rng.Intn(3)
	points := make([]gg.Point, 0, n)
	for i := 0; i < n; i++ {
		a := centerAngle + float64(i)*(2*math.Pi/6) + (rng.Float64()*0.4 - 0.2)
		r := radius + float64(rng.Intn(61)-30)
		points = append(points, gg.Point{X: c + math.Cos(a)*r, Y: c + math.Sin(a)*r})
	}
	return points
}

// drawWarningPolygon composites a semi-transparent filled warning polygon
// with a solid outline and caption over dst, as its own overlay layer.
func drawWarningPolygon(dst *image.RGBA, v Variant, rng *rand.Rand, faces Faces) {
	points := WarningPolygon(v, rng)

	od := gg.NewContext(v.Size, v.Size)
	od.NewSubPath()
	for i, pt := range points {
		if i == 0 {
			od.MoveTo(pt.X, pt.Y)
		} else {
			od.LineTo(pt.X, pt.Y)
		}
	}
	od.ClosePath()
	od.SetRGBA255(255, 255, 0, 102)
	od.FillPreserve()
	od.SetRGB255(255, 255, 0)
	od.SetLineWidth(2)
	od.Stroke()

	od.SetFontFace(faces.Big)
	od.DrawStringAnchored("Severe Thunderstorm Warning", points[0].X+10, points[0].Y-10, 0, 1)

	CompositeOver(dst, od.Image().(*image.RGBA))
}

// drawAttributesPanel renders the fixed-layout storm-attributes box in the
// top-right corner, values right-aligned.
func drawAttributesPanel(dc *gg.Context, v Variant, attrs StormAttributes, faces Faces) {
	const panelWidth = 220.0
	x := float64(v.Size) - panelWidth - 20
	y := 20.0

	dc.SetRGBA255(0, 0, 0, 180)
	dc.DrawRectangle(x, y, panelWidth, 130)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	lines := attrs.panelLines()

	lineY := y + 10
	dc.SetFontFace(faces.Big)
	dc.DrawStringAnchored(lines[0][0], x+10, lineY, 0, 1)
	lineY += 30

	dc.SetFontFace(faces.Small)
	for _, row := range lines[1:] {
		dc.DrawStringAnchored(row[0], x+10, lineY, 0, 1)
		if row[1] != "" {
			w, _ := dc.MeasureString(row[1])
			dc.DrawStringAnchored(row[1], x+panelWidth-w-10, lineY, 0, 1)
		}
		lineY += 22
	}
}

// stillFilename and gifFilename embed the product identifier and a
// zero-padded UTC timestamp in the output name.
func stillFilename(p Product, ts time.Time) string {
	return fmt.Sprintf("%s_%s_%s_VIEW.png", ts.Format("01_02_2006_1504")+"UTC", filePrefix, p)
}

func gifFilename(p Product, frames int, ts time.Time) string {
	return fmt.Sprintf("%s_%s_GIF_%dframes_%s.gif", filePrefix, p, frames, ts.Format("01_02_2006_1504")+"UTC")
}

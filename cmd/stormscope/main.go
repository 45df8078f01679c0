package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/setanarut/stormscope"
)

func main() {
	var (
		stage     = flag.Int("stage", 1, "storm stage 1-3")
		intensity = flag.Int("intensity", 50, "storm intensity 1-99 (clamped)")
		product   = flag.String("product", "reflectivity", "product: reflectivity|velocity|zdr|cc|sw")
		polygon   = flag.Bool("polygon", false, "draw a severe-warning polygon")
		gifMode   = flag.Bool("gif", false, "render a looping GIF animation")
		frames    = flag.Int("frames", 20, "animation frame count")
		static    = flag.Bool("static", false, "render the 1024px static-map variant")
		mapPath   = flag.String("map", "image.png", "background map image path")
		fontPath  = flag.String("font", "arial.ttf", "TTF font path")
		outDir    = flag.String("out", ".", "output directory")
		seed      = flag.Int64("seed", -1, "override the lobe seed (negative = variant default)")
	)
	flag.Parse()

	p, err := stormscope.ParseProduct(*product)
	if err != nil {
		slog.Error("invalid product", "error", err)
		os.Exit(1)
	}

	variant := stormscope.AnimatedVariant()
	if *static {
		variant = stormscope.StaticMapVariant()
	}

	opts := stormscope.Options{
		Variant:   variant,
		Stage:     *stage,
		Intensity: *intensity,
		Product:   p,
		Polygon:   *polygon,
		GIF:       *gifMode,
		Frames:    *frames,
		MapPath:   *mapPath,
		FontPath:  *fontPath,
		OutDir:    *outDir,
		Seed:      *seed,
	}

	slog.Info("generating product", "product", p.String(), "stage", *stage, "intensity", *intensity, "gif", *gifMode)

	gen, err := stormscope.NewGenerator(opts, nil)
	if err != nil {
		slog.Error("generator setup failed", "error", err)
		os.Exit(1)
	}
	if gen.FontFallback {
		slog.Warn("font unavailable, using built-in bitmap face", "path", *fontPath)
	}
	if gen.MapFallback {
		slog.Warn("map asset not found, using solid background", "path", *mapPath)
	}

	path, err := gen.Run()
	if err != nil {
		slog.Error("render failed", "error", err)
		os.Exit(1)
	}
	slog.Info("saved output", "path", path)
}

package stormscope

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Faces bundles the two text sizes used across the display.
type Faces struct {
	Small font.Face
	Big   font.Face
}

// LoadFaces parses the TTF at path at the two display sizes. On any failure
// it returns the built-in bitmap face for both sizes along with the cause; a
// missing or unreadable font must never abort a render, so callers log the
// error and keep going.
func LoadFaces(path string) (Faces, error) {
	fallback := Faces{Small: basicfont.Face7x13, Big: basicfont.Face7x13}

	data, err := os.ReadFile(path)
	if err != nil {
		return fallback, fmt.Errorf("read font: %w", err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return fallback, fmt.Errorf("parse font: %w", err)
	}
	return Faces{
		Small: truetype.NewFace(f, &truetype.Options{Size: 14}),
		Big:   truetype.NewFace(f, &truetype.Options{Size: 24}),
	}, nil
}

package generator

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	placeholderSize = 512
	placeholderText = "AI Generated Outfit"
)

// accentColors is the placeholder palette; one is picked at random per render.
var accentColors = []color.NRGBA{
	{R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF},
	{R: 0xEC, G: 0x48, B: 0x99, A: 0xFF},
	{R: 0x06, G: 0xB6, B: 0xD4, A: 0xFF},
	{R: 0x10, G: 0xB9, B: 0x81, A: 0xFF},
	{R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF},
}

// RenderPlaceholder draws the 512x512 fallback PNG: a flat accent-color
// canvas with a centered caption. It takes the prompt for interface symmetry
// with the provider path but does not consult its content.
func RenderPlaceholder(prompt string) []byte {
	_ = prompt

	accent := accentColors[rand.Intn(len(accentColors))]
	canvas := imaging.New(placeholderSize, placeholderSize, accent)

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, placeholderText).Ceil()

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I((placeholderSize - textWidth) / 2),
			Y: fixed.I(placeholderSize / 2),
		},
	}
	drawer.DrawString(placeholderText)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		// png.Encode cannot fail on an in-memory NRGBA image.
		return nil
	}
	return buf.Bytes()
}

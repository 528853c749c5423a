package geometry

import (
	"image/color"

	"overlay-compositor/internal/mathutil"
	"overlay-compositor/internal/style"
	"overlay-compositor/internal/texture"
)

// MinOpacity is the lowest opacity an assigned overlay is drawn with.
const MinOpacity = 0.05

// Neutral is the tint applied to textured quads.
var Neutral = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Material is either Fill or Textured.
type Material interface {
	Opacity() float64
	material()
}

// Fill paints the quad with a flat colour.
type Fill struct {
	Color color.NRGBA
	Alpha float64
}

// Textured paints the quad with a texture modulated by Tint.
type Textured struct {
	Texture *texture.Texture
	Tint    color.NRGBA
	Alpha   float64
}

func (m Fill) Opacity() float64     { return m.Alpha }
func (m Textured) Opacity() float64 { return m.Alpha }
func (Fill) material()              {}
func (Textured) material()          {}

// NewMaterial returns Textured when tex is loaded and Fill otherwise.
func NewMaterial(s style.Descriptor, tex *texture.Texture) Material {
	alpha := mathutil.Clamp(s.Opacity, MinOpacity, 1)
	if tex != nil && tex.Image != nil {
		return Textured{Texture: tex, Tint: Neutral, Alpha: alpha}
	}
	return Fill{Color: s.RGBA(), Alpha: alpha}
}

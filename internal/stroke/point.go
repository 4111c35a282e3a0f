package stroke

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// Color is a linear RGBA colour with components in [0, 1]. Alpha doubles as a
// validity channel: a colour source reports "no colour" with alpha 0.
type Color struct {
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
	A float32 `json:"a"`
}

var (
	White = Color{R: 1, G: 1, B: 1, A: 1}
	Black = Color{A: 1}
)

// NRGBA converts c to an 8-bit non-premultiplied colour, clamping out of
// range components.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

func to8(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}

// Point is one retained sample of a stroke.
//
// DeltaTime is the time in seconds since the previous retained point, not
// since the previous raw sample.
type Point struct {
	Position        mgl32.Vec3 `json:"position"`
	Rotation        mgl32.Quat `json:"rotation"`
	HandOrientation mgl32.Quat `json:"hand_orientation"`
	Color           Color      `json:"color"`
	Thickness       float32    `json:"thickness"`
	DeltaTime       float32    `json:"delta_time"`
}

// NewPoint returns a point at pos with identity rotations.
func NewPoint(pos mgl32.Vec3, deltaTime float32) Point {
	return Point{
		Position:        pos,
		Rotation:        mgl32.QuatIdent(),
		HandOrientation: mgl32.QuatIdent(),
		DeltaTime:       deltaTime,
	}
}

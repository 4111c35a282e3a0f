package filter

import (
	"LeapPaint/internal/ring"
	"LeapPaint/internal/stroke"
)

// ColorSource reports the colour to paint with right now, e.g. the colour
// picked up by the index fingertip.
type ColorSource interface {
	CurrentColor() (stroke.Color, error)
}

// ColorSourceFunc adapts a function to ColorSource.
type ColorSourceFunc func() (stroke.Color, error)

func (f ColorSourceFunc) CurrentColor() (stroke.Color, error) { return f() }

// MinColorAlpha is the alpha at or below which a sampled colour is treated as
// absent.
const MinColorAlpha = 0.01

// ColorSample stamps the newest point with the colour reported by Source. A
// missing source, a failed read or a transparent colour yield Default.
type ColorSample struct {
	Source  ColorSource
	Default stroke.Color
}

var _ stroke.Filter = (*ColorSample)(nil)

func NewColorSample(src ColorSource) *ColorSample {
	return &ColorSample{Source: src, Default: stroke.White}
}

func (*ColorSample) MemorySize() int { return 0 }
func (*ColorSample) Reset()          {}

func (f *ColorSample) Process(points *ring.Buffer[stroke.Point], _ *ring.Buffer[int]) {
	n := points.Size()
	if n == 0 {
		return
	}
	cur := points.Get(n - 1)
	cur.Color = f.sample()
	points.Set(n-1, cur)
}

func (f *ColorSample) sample() stroke.Color {
	if f.Source == nil {
		return f.Default
	}
	c, err := f.Source.CurrentColor()
	if err != nil {
		stroke.Logger().Debug("colour source unavailable; using default", "component", "filter", "error", err)
		return f.Default
	}
	if c.A <= MinColorAlpha {
		return f.Default
	}
	return c
}

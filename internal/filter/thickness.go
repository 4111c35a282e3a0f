package filter

import (
	"github.com/go-gl/mathgl/mgl32"

	"LeapPaint/internal/ring"
	"LeapPaint/internal/stroke"
)

// ScalarSource reports the scalar driving stroke thickness, such as pinch
// strength or a UI slider value.
type ScalarSource interface {
	CurrentScalar() (float32, error)
}

// ScalarSourceFunc adapts a function to ScalarSource.
type ScalarSourceFunc func() (float32, error)

func (f ScalarSourceFunc) CurrentScalar() (float32, error) { return f() }

// Thickness maps a driving scalar onto the newest point's thickness with a
// clamped linear remap from [InMin, InMax] to [OutMin, OutMax]. OutMin may
// exceed OutMax to invert the mapping.
//
// Without a Source the driver is the speed between the two newest points.
type Thickness struct {
	Source ScalarSource
	// DefaultNormalized is used when Source fails.
	DefaultNormalized float32

	InMin, InMax   float32
	OutMin, OutMax float32

	lastNormalized float32
}

var _ stroke.Filter = (*Thickness)(nil)

// NewSpeedThickness maps speeds in [0, maxSpeed] m/s to thicknesses from
// thick (slow) to thin (fast).
func NewSpeedThickness(maxSpeed, thin, thick float32) *Thickness {
	return &Thickness{
		DefaultNormalized: 0.5,
		InMin:             0,
		InMax:             maxSpeed,
		OutMin:            thick,
		OutMax:            thin,
	}
}

// NewSourceThickness maps a source scalar in [0, 1] to [thin, thick].
func NewSourceThickness(src ScalarSource, thin, thick float32) *Thickness {
	return &Thickness{
		Source:            src,
		DefaultNormalized: 0.5,
		InMin:             0,
		InMax:             1,
		OutMin:            thin,
		OutMax:            thick,
	}
}

func (*Thickness) MemorySize() int { return 1 }

func (f *Thickness) Reset() {
	f.lastNormalized = 0
}

// LastNormalized returns the normalized driver value of the most recent point,
// in [0, 1].
func (f *Thickness) LastNormalized() float32 {
	return f.lastNormalized
}

// Map returns the normalized value and thickness for a driver value.
func (f *Thickness) Map(v float32) (normalized, thickness float32) {
	if f.InMax != f.InMin {
		normalized = mgl32.Clamp((v-f.InMin)/(f.InMax-f.InMin), 0, 1)
	} else if v >= f.InMax {
		normalized = 1
	}
	return normalized, f.OutMin + (f.OutMax-f.OutMin)*normalized
}

func (f *Thickness) Process(points *ring.Buffer[stroke.Point], _ *ring.Buffer[int]) {
	n := points.Size()
	if n == 0 {
		return
	}
	cur := points.Get(n - 1)

	var normalized, thickness float32
	if f.Source != nil {
		v, err := f.Source.CurrentScalar()
		if err != nil {
			stroke.Logger().Debug("thickness source unavailable; using default", "component", "filter", "error", err)
			normalized = mgl32.Clamp(f.DefaultNormalized, 0, 1)
			thickness = f.OutMin + (f.OutMax-f.OutMin)*normalized
		} else {
			normalized, thickness = f.Map(v)
		}
	} else {
		normalized, thickness = f.Map(speed(points, n))
	}

	f.lastNormalized = normalized
	cur.Thickness = thickness
	points.Set(n-1, cur)
}

func speed(points *ring.Buffer[stroke.Point], n int) float32 {
	if n < 2 {
		return 0
	}
	cur := points.Get(n - 1)
	if cur.DeltaTime <= 0 {
		return 0
	}
	return cur.Position.Sub(points.Get(n-2).Position).Len() / cur.DeltaTime
}

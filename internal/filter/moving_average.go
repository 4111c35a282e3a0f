package filter

import (
	"github.com/go-gl/mathgl/mgl32"

	"LeapPaint/internal/ring"
	"LeapPaint/internal/stroke"
)

// PositionMovingAverage replaces the newest point's position with the mean of
// the most recent raw positions, the newest included. Raw positions are kept
// separately so smoothing never feeds back into later averages.
type PositionMovingAverage struct {
	window int
	raw    *ring.Buffer[mgl32.Vec3]
}

var _ stroke.Filter = (*PositionMovingAverage)(nil)

// NewPositionMovingAverage averages over up to window positions. Windows below
// 1 are treated as 1.
func NewPositionMovingAverage(window int) *PositionMovingAverage {
	if window < 1 {
		window = 1
	}
	return &PositionMovingAverage{
		window: window,
		raw:    ring.New[mgl32.Vec3](window),
	}
}

func (f *PositionMovingAverage) MemorySize() int {
	return f.window - 1
}

func (f *PositionMovingAverage) Reset() {
	f.raw.Clear()
}

func (f *PositionMovingAverage) Process(points *ring.Buffer[stroke.Point], indices *ring.Buffer[int]) {
	n := points.Size()
	if n == 0 {
		return
	}
	cur := points.Get(n - 1)
	if idx := indices.Get(n - 1); idx == 0 {
		f.raw.Clear()
	}
	f.raw.Add(cur.Position)

	var sum mgl32.Vec3
	for i := 0; i < f.raw.Size(); i++ {
		sum = sum.Add(f.raw.Get(i))
	}
	cur.Position = sum.Mul(1 / float32(f.raw.Size()))
	points.Set(n-1, cur)
}

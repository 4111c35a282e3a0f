package filter

import (
	"github.com/go-gl/mathgl/mgl32"

	"LeapPaint/internal/ring"
	"LeapPaint/internal/stroke"
)

const frameEpsilon = 1e-6

// PitchYawRoll derives the newest point's rotation from the window: forward
// follows the direction of travel and up follows the averaged hand
// orientation. The result depends only on the window contents.
type PitchYawRoll struct{}

var _ stroke.Filter = PitchYawRoll{}

func NewPitchYawRoll() PitchYawRoll {
	return PitchYawRoll{}
}

func (PitchYawRoll) MemorySize() int {
	return 2
}

func (PitchYawRoll) Reset() {}

func (f PitchYawRoll) Process(points *ring.Buffer[stroke.Point], indices *ring.Buffer[int]) {
	n := points.Size()
	if n == 0 {
		return
	}
	lo := n - 1 - f.MemorySize()
	if lo < 0 {
		lo = 0
	}

	cur := points.Get(n - 1)
	rot, ok := travelFrame(points, lo, n)
	if !ok {
		if n > 1 {
			rot = points.Get(n - 2).Rotation
		} else {
			rot = cur.HandOrientation
		}
	}
	cur.Rotation = rot
	points.Set(n-1, cur)

	// The first point of a stroke has no direction of its own.
	if ok && n-lo == 2 && indices.Get(lo) == 0 {
		first := points.Get(lo)
		first.Rotation = rot
		points.Set(lo, first)
	}
}

func travelFrame(points *ring.Buffer[stroke.Point], lo, n int) (mgl32.Quat, bool) {
	forward := points.Get(n - 1).Position.Sub(points.Get(lo).Position)
	if forward.Len() < frameEpsilon {
		return mgl32.Quat{}, false
	}
	forward = forward.Normalize()

	var up mgl32.Vec3
	for i := lo; i < n; i++ {
		up = up.Add(points.Get(i).HandOrientation.Rotate(mgl32.Vec3{0, 1, 0}))
	}
	right := up.Cross(forward)
	if right.Len() < frameEpsilon {
		return mgl32.Quat{}, false
	}
	right = right.Normalize()
	up = forward.Cross(right)

	m := mgl32.Mat3FromCols(right, up, forward)
	return mgl32.Mat4ToQuat(m.Mat4()).Normalize(), true
}

package input

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Sample is a candidate stroke position with the time elapsed since the
// previous candidate.
type Sample struct {
	Position  mgl32.Vec3
	DeltaTime float32
}

// remainderEpsilon absorbs float error when a jump is an exact multiple of the
// segment length, so no zero-length remainder point is produced.
const remainderEpsilon = 1e-4

// Segment splits the move from `from` to `to`, which took dt seconds, into
// samples no longer than maxLen. Intermediate samples lie on the straight line
// at multiples of maxLen and the last sample is always `to`. Elapsed time is
// spread in proportion to distance and the deltas sum to dt.
func Segment(from, to mgl32.Vec3, dt, maxLen float32) []Sample {
	d := to.Sub(from).Len()
	if maxLen <= 0 || d <= maxLen {
		return []Sample{{Position: to, DeltaTime: dt}}
	}

	fraction := float64(d) / float64(maxLen)
	full := math.Floor(fraction)
	if fraction-full < remainderEpsilon {
		full--
	}
	n := int(full)

	step := to.Sub(from).Normalize().Mul(maxLen)
	segmentDT := float32(float64(dt) / fraction)

	samples := make([]Sample, 0, n+1)
	pos := from
	var elapsed float32
	for i := 0; i < n; i++ {
		pos = pos.Add(step)
		samples = append(samples, Sample{Position: pos, DeltaTime: segmentDT})
		elapsed += segmentDT
	}
	return append(samples, Sample{Position: to, DeltaTime: dt - elapsed})
}

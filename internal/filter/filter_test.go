package filter

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LeapPaint/internal/render"
	"LeapPaint/internal/ring"
	"LeapPaint/internal/stroke"
)

// runStroke feeds points through a processor holding filters and returns the
// finalized stroke.
func runStroke(t *testing.T, points []stroke.Point, filters ...stroke.Filter) []stroke.Point {
	t.Helper()
	p := stroke.NewProcessor()
	for _, f := range filters {
		p.RegisterFilter(f)
	}
	rec := &render.Recorder{}
	p.RegisterRenderer(rec)

	require.NoError(t, p.BeginStroke())
	for _, pt := range points {
		require.NoError(t, p.UpdateStroke(pt))
	}
	require.NoError(t, p.EndStroke())
	require.Len(t, rec.Finalized, 1)
	return rec.Finalized[0]
}

// assertNear checks that got lies within eps of want.
func assertNear(t *testing.T, want, got mgl32.Vec3, eps float32, msgAndArgs ...any) bool {
	t.Helper()
	return assert.Less(t, got.Sub(want).Len(), eps, msgAndArgs...)
}

// assertSameRotation checks that two quaternions describe the same rotation.
func assertSameRotation(t *testing.T, want, got mgl32.Quat, eps float32, msgAndArgs ...any) bool {
	t.Helper()
	d := min(got.Sub(want).Len(), got.Add(want).Len())
	return assert.Less(t, d, eps, msgAndArgs...)
}

func jitteryLine(n int) []stroke.Point {
	pts := make([]stroke.Point, n)
	for i := range pts {
		jitter := float32(i%3) * 0.01
		pts[i] = stroke.NewPoint(mgl32.Vec3{float32(i) * 0.02, jitter, -jitter}, 1.0/90)
	}
	return pts
}

func TestPositionMovingAverage(t *testing.T) {
	raw := jitteryLine(20)
	got := runStroke(t, raw, NewPositionMovingAverage(6))
	require.Len(t, got, 20)

	for i := range raw {
		lo := i - 5
		if lo < 0 {
			lo = 0
		}
		var sum mgl32.Vec3
		for j := lo; j <= i; j++ {
			sum = sum.Add(raw[j].Position)
		}
		want := sum.Mul(1 / float32(i-lo+1))
		assertNear(t, want, got[i].Position, 1e-5,
			"point %d: want %v, got %v", i, want, got[i].Position)
	}
}

func TestPositionMovingAverageMemory(t *testing.T) {
	assert.Equal(t, 5, NewPositionMovingAverage(6).MemorySize())
	assert.Equal(t, 0, NewPositionMovingAverage(0).MemorySize())
}

func TestPositionMovingAverageResetsBetweenStrokes(t *testing.T) {
	f := NewPositionMovingAverage(4)
	runStroke(t, jitteryLine(10), f)

	second := []stroke.Point{stroke.NewPoint(mgl32.Vec3{5, 5, 5}, 0)}
	got := runStroke(t, second, f)
	assert.Equal(t, mgl32.Vec3{5, 5, 5}, got[0].Position)
}

func TestPitchYawRollFollowsTravel(t *testing.T) {
	pts := make([]stroke.Point, 4)
	for i := range pts {
		pts[i] = stroke.NewPoint(mgl32.Vec3{0, 0, float32(i) * 0.01}, 0.01)
	}
	got := runStroke(t, pts, NewPitchYawRoll())

	for i, p := range got {
		fwd := p.Rotation.Rotate(mgl32.Vec3{0, 0, 1})
		up := p.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
		assertNear(t, mgl32.Vec3{0, 0, 1}, fwd, 1e-4, "point %d forward %v", i, fwd)
		assertNear(t, mgl32.Vec3{0, 1, 0}, up, 1e-4, "point %d up %v", i, up)
	}
}

func TestPitchYawRollTurn(t *testing.T) {
	pts := []stroke.Point{
		stroke.NewPoint(mgl32.Vec3{0, 0, 0}, 0.01),
		stroke.NewPoint(mgl32.Vec3{0.01, 0, 0}, 0.01),
		stroke.NewPoint(mgl32.Vec3{0.02, 0, 0}, 0.01),
	}
	got := runStroke(t, pts, NewPitchYawRoll())

	fwd := got[2].Rotation.Rotate(mgl32.Vec3{0, 0, 1})
	assertNear(t, mgl32.Vec3{1, 0, 0}, fwd, 1e-4, "forward %v", fwd)
	assertSameRotation(t, got[1].Rotation, got[0].Rotation, 1e-5,
		"first point should inherit the second point's rotation")
}

func TestPitchYawRollSinglePointUsesHand(t *testing.T) {
	hand := mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 1, 0})
	pt := stroke.NewPoint(mgl32.Vec3{}, 0)
	pt.HandOrientation = hand

	got := runStroke(t, []stroke.Point{pt}, NewPitchYawRoll())
	assertSameRotation(t, hand, got[0].Rotation, 1e-6)
}

func TestPitchYawRollStationaryKeepsPrevious(t *testing.T) {
	pts := []stroke.Point{
		stroke.NewPoint(mgl32.Vec3{0, 0, 0}, 0.01),
		stroke.NewPoint(mgl32.Vec3{0.01, 0, 0}, 0.01),
		stroke.NewPoint(mgl32.Vec3{0.01, 0, 0}, 0.01),
		stroke.NewPoint(mgl32.Vec3{0.01, 0, 0}, 0.01),
		stroke.NewPoint(mgl32.Vec3{0.01, 0, 0}, 0.01),
	}
	got := runStroke(t, pts, NewPitchYawRoll())
	fwd := got[1].Rotation.Rotate(mgl32.Vec3{0, 0, 1})
	require.True(t, assertNear(t, mgl32.Vec3{1, 0, 0}, fwd, 1e-4, "forward %v", fwd))
	for i := 0; i < len(got); i++ {
		assertSameRotation(t, got[1].Rotation, got[i].Rotation, 1e-5, "point %d", i)
	}
}

func TestColorSample(t *testing.T) {
	red := stroke.Color{R: 1, A: 1}
	tests := []struct {
		name string
		src  ColorSource
		want stroke.Color
	}{
		{"source", ColorSourceFunc(func() (stroke.Color, error) { return red, nil }), red},
		{"nil source", nil, stroke.White},
		{"failing source", ColorSourceFunc(func() (stroke.Color, error) { return red, errors.New("no hand") }), stroke.White},
		{"transparent", ColorSourceFunc(func() (stroke.Color, error) { return stroke.Color{R: 1}, nil }), stroke.White},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runStroke(t, jitteryLine(3), NewColorSample(tt.src))
			for _, p := range got {
				assert.Equal(t, tt.want, p.Color)
			}
		})
	}
}

func TestColorSampleStampsAtCallTime(t *testing.T) {
	colors := []stroke.Color{{R: 1, A: 1}, {G: 1, A: 1}, {B: 1, A: 1}}
	i := 0
	src := ColorSourceFunc(func() (stroke.Color, error) {
		c := colors[i%len(colors)]
		i++
		return c, nil
	})
	got := runStroke(t, jitteryLine(3), NewColorSample(src))
	for j, p := range got {
		assert.Equal(t, colors[j], p.Color)
	}
}

func TestThicknessMap(t *testing.T) {
	f := &Thickness{InMin: 0, InMax: 2, OutMin: 1, OutMax: 3}
	tests := []struct {
		in             float32
		norm, thickness float32
	}{
		{-1, 0, 1},
		{0, 0, 1},
		{1, 0.5, 2},
		{2, 1, 3},
		{5, 1, 3},
	}
	for _, tt := range tests {
		n, th := f.Map(tt.in)
		assert.InDelta(t, tt.norm, n, 1e-6, "normalized(%v)", tt.in)
		assert.InDelta(t, tt.thickness, th, 1e-6, "thickness(%v)", tt.in)
	}
}

func TestThicknessFromSource(t *testing.T) {
	var v float32 = 0.25
	f := NewSourceThickness(ScalarSourceFunc(func() (float32, error) { return v, nil }), 0.002, 0.01)
	got := runStroke(t, jitteryLine(2), f)

	assert.InDelta(t, 0.004, got[1].Thickness, 1e-6)
	assert.InDelta(t, 0.25, f.LastNormalized(), 1e-6)
}

func TestThicknessSourceFailureUsesDefault(t *testing.T) {
	f := NewSourceThickness(ScalarSourceFunc(func() (float32, error) { return 0, errors.New("gone") }), 0, 1)
	f.DefaultNormalized = 0.75
	got := runStroke(t, jitteryLine(2), f)

	assert.InDelta(t, 0.75, got[1].Thickness, 1e-6)
	assert.InDelta(t, 0.75, f.LastNormalized(), 1e-6)
}

func TestThicknessFromSpeed(t *testing.T) {
	f := NewSpeedThickness(2, 0.002, 0.01)
	pts := []stroke.Point{
		stroke.NewPoint(mgl32.Vec3{0, 0, 0}, 0),
		stroke.NewPoint(mgl32.Vec3{0.01, 0, 0}, 0.01), // 1 m/s
		stroke.NewPoint(mgl32.Vec3{0.05, 0, 0}, 0.01), // 4 m/s
	}
	got := runStroke(t, pts, f)

	assert.InDelta(t, 0.01, got[0].Thickness, 1e-6)
	assert.InDelta(t, 0.006, got[1].Thickness, 1e-6)
	assert.InDelta(t, 0.002, got[2].Thickness, 1e-6)
	assert.InDelta(t, 1, f.LastNormalized(), 1e-6)
}

func TestFiltersSeeEarlierFilters(t *testing.T) {
	// The moving average runs first, so the orientation is taken from the
	// smoothed positions.
	pts := []stroke.Point{
		stroke.NewPoint(mgl32.Vec3{0, 0, 0}, 0.01),
		stroke.NewPoint(mgl32.Vec3{0.01, 0, 0.01}, 0.01),
		stroke.NewPoint(mgl32.Vec3{0.02, 0, 0}, 0.01),
		stroke.NewPoint(mgl32.Vec3{0.03, 0, 0.01}, 0.01),
	}
	avg := NewPositionMovingAverage(2)
	got := runStroke(t, pts, avg, NewPitchYawRoll())

	last := len(got) - 1
	fwd := got[last].Rotation.Rotate(mgl32.Vec3{0, 0, 1})
	want := got[last].Position.Sub(got[last-2].Position).Normalize()
	assertNear(t, want, fwd, 1e-4, "forward %v, want %v", fwd, want)
}

func TestProcessOnEmptyBuffer(t *testing.T) {
	points := ring.New[stroke.Point](3)
	indices := ring.New[int](3)
	for _, f := range []stroke.Filter{
		NewPositionMovingAverage(3), NewPitchYawRoll(), NewColorSample(nil), NewSpeedThickness(1, 0, 1),
	} {
		assert.NotPanics(t, func() { f.Process(points, indices) })
	}
}

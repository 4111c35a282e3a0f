package input

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LeapPaint/internal/filter"
	"LeapPaint/internal/stroke"
)

type fakePinch struct {
	active bool
	pos    mgl32.Vec3
	rot    mgl32.Quat
	hand   Handedness
}

// assertNear checks that got lies within eps of want.
func assertNear(t *testing.T, want, got mgl32.Vec3, eps float32, msgAndArgs ...any) bool {
	t.Helper()
	return assert.Less(t, got.Sub(want).Len(), eps, msgAndArgs...)
}

func (f *fakePinch) IsActive() bool         { return f.active }
func (f *fakePinch) Position() mgl32.Vec3   { return f.pos }
func (f *fakePinch) Rotation() mgl32.Quat   { return f.rot }
func (f *fakePinch) Handedness() Handedness { return f.hand }

type fakeSink struct {
	calls  []string
	points []stroke.Point
}

func (s *fakeSink) BeginStroke() error {
	s.calls = append(s.calls, "begin")
	return nil
}

func (s *fakeSink) UpdateStroke(p stroke.Point) error {
	s.calls = append(s.calls, "update")
	s.points = append(s.points, p)
	return nil
}

func (s *fakeSink) EndStroke() error {
	s.calls = append(s.calls, "end")
	return nil
}

type fixedNormalizer float32

func (n fixedNormalizer) LastNormalized() float32 { return float32(n) }

func newTestAdapter() (*Adapter, *fakePinch, *fakeSink) {
	pinch := &fakePinch{rot: mgl32.QuatIdent()}
	sink := &fakeSink{}
	return NewAdapter(DefaultConfig(), pinch, sink), pinch, sink
}

func TestSegmentShortMove(t *testing.T) {
	s := Segment(mgl32.Vec3{}, mgl32.Vec3{0.01, 0, 0}, 0.02, 0.03)
	require.Len(t, s, 1)
	assert.Equal(t, mgl32.Vec3{0.01, 0, 0}, s[0].Position)
	assert.Equal(t, float32(0.02), s[0].DeltaTime)
}

func TestSegmentExactMultiple(t *testing.T) {
	const L, T = 0.03, 0.05
	to := mgl32.Vec3{3 * L, 0, 0}
	s := Segment(mgl32.Vec3{}, to, T, L)
	require.Len(t, s, 3, "two intermediate points and one remainder point")

	assertNear(t, mgl32.Vec3{L, 0, 0}, s[0].Position, 1e-6)
	assertNear(t, mgl32.Vec3{2 * L, 0, 0}, s[1].Position, 1e-6)
	assert.Equal(t, to, s[2].Position)

	var sum float32
	for _, x := range s {
		assert.InDelta(t, T/3, x.DeltaTime, 1e-6)
		sum += x.DeltaTime
	}
	assert.InDelta(t, T, sum, 1e-7)
}

func TestSegmentWithRemainder(t *testing.T) {
	const L, T = 0.03, 0.035
	to := mgl32.Vec3{0, 3.5 * L, 0}
	s := Segment(mgl32.Vec3{}, to, T, L)
	require.Len(t, s, 4)

	var sum float32
	for i, x := range s[:3] {
		assert.InDelta(t, T/3.5, x.DeltaTime, 1e-6, "segment %d", i)
		sum += x.DeltaTime
	}
	assert.InDelta(t, T*0.5/3.5, s[3].DeltaTime, 1e-6)
	sum += s[3].DeltaTime
	assert.InDelta(t, T, sum, 1e-7)
	assert.Equal(t, to, s[3].Position)
}

func TestAdapterLifecycle(t *testing.T) {
	a, pinch, sink := newTestAdapter()

	require.NoError(t, a.Update(0.01))
	assert.Empty(t, sink.calls)

	pinch.active = true
	require.NoError(t, a.Update(0.01))
	assert.True(t, a.Painting())
	require.NoError(t, a.Update(0.01))
	pinch.pos = mgl32.Vec3{0.01, 0, 0}
	require.NoError(t, a.Update(0.01))

	pinch.active = false
	require.NoError(t, a.Update(0.01))
	assert.False(t, a.Painting())
	assert.Equal(t, []string{"begin", "update", "update", "end"}, sink.calls)
}

func TestAdapterJumpIsSegmented(t *testing.T) {
	a, pinch, sink := newTestAdapter()
	pinch.active = true
	require.NoError(t, a.Update(0.01))
	require.NoError(t, a.Update(0.01))

	pinch.pos = mgl32.Vec3{0, 0, 0.09}
	require.NoError(t, a.Update(0.03))

	require.Len(t, sink.points, 4)
	var sum float32
	for _, p := range sink.points[1:] {
		sum += p.DeltaTime
	}
	assert.InDelta(t, 0.03, sum, 1e-7)
	assert.Equal(t, mgl32.Vec3{0, 0, 0.09}, sink.points[3].Position)
}

func TestAdapterDroppedPointsAccumulateTime(t *testing.T) {
	a, pinch, sink := newTestAdapter()
	pinch.active = true
	require.NoError(t, a.Update(0.01))
	require.NoError(t, a.Update(0.01))

	// Three tiny moves below the 1mm threshold are dropped.
	for i := 1; i <= 3; i++ {
		pinch.pos = mgl32.Vec3{float32(i) * 0.0002, 0, 0}
		require.NoError(t, a.Update(0.011))
	}
	require.Len(t, sink.points, 1)

	pinch.pos = mgl32.Vec3{0.005, 0, 0}
	require.NoError(t, a.Update(0.012))
	require.Len(t, sink.points, 2)
	assert.InDelta(t, 3*0.011+0.012, sink.points[1].DeltaTime, 1e-6)
}

func TestAdapterMinSegmentLengthFollowsThickness(t *testing.T) {
	a, _, _ := newTestAdapter()
	assert.InDelta(t, 0.001, a.MinSegmentLength(), 1e-7)

	a.Thickness = fixedNormalizer(1)
	assert.InDelta(t, 0.007, a.MinSegmentLength(), 1e-7)

	a.Thickness = fixedNormalizer(0.5)
	assert.InDelta(t, 0.004, a.MinSegmentLength(), 1e-7)
}

type grabbing bool

func (g grabbing) IsGrabbing() bool { return bool(g) }

func TestAdapterStartGating(t *testing.T) {
	tests := []struct {
		name  string
		grab  GrabChecker
		color filter.ColorSource
		begin bool
	}{
		{"no collaborators", nil, nil, true},
		{"grabbing UI", grabbing(true), nil, false},
		{"not grabbing", grabbing(false), nil, true},
		{"opaque colour", nil, filter.ColorSourceFunc(func() (stroke.Color, error) { return stroke.Black, nil }), true},
		{"translucent colour", nil, filter.ColorSourceFunc(func() (stroke.Color, error) { return stroke.Color{A: 0.5}, nil }), false},
		{"colour unavailable", nil, filter.ColorSourceFunc(func() (stroke.Color, error) { return stroke.Black, errors.New("no tip") }), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, pinch, sink := newTestAdapter()
			a.Grab = tt.grab
			a.Color = tt.color
			pinch.active = true
			require.NoError(t, a.Update(0.01))
			assert.Equal(t, tt.begin, a.Painting())
			assert.Equal(t, tt.begin, len(sink.calls) == 1)
		})
	}
}

func TestAdapterHandOrientation(t *testing.T) {
	a, pinch, sink := newTestAdapter()
	pinch.active = true
	pinch.hand = Left
	require.NoError(t, a.Update(0.01))
	require.NoError(t, a.Update(0.01))

	require.Len(t, sink.points, 1)
	fwd := sink.points[0].HandOrientation.Rotate(mgl32.Vec3{0, 0, 1})
	assertNear(t, mgl32.Vec3{0, 0, -1}, fwd, 1e-5, "forward %v", fwd)
}

func TestAdapterWithProcessor(t *testing.T) {
	proc := stroke.NewProcessor()
	thick := filter.NewSpeedThickness(1, 0.002, 0.01)
	proc.RegisterFilter(filter.NewPositionMovingAverage(3))
	proc.RegisterFilter(thick)

	pinch := &fakePinch{rot: mgl32.QuatIdent(), active: true}
	a := NewAdapter(DefaultConfig(), pinch, proc)
	a.Thickness = thick

	require.NoError(t, a.Update(1.0/90))
	for i := 0; i < 30; i++ {
		pinch.pos = mgl32.Vec3{float32(i) * 0.004, 0, 0}
		require.NoError(t, a.Update(1.0/90))
	}
	pinch.active = false
	require.NoError(t, a.Update(1.0/90))

	got := proc.Stroke()
	require.NotEmpty(t, got)
	for _, p := range got {
		assert.GreaterOrEqual(t, p.DeltaTime, float32(0))
	}
	assert.False(t, proc.Active())
}

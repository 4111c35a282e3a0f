package input

import (
	"github.com/go-gl/mathgl/mgl32"

	"LeapPaint/internal/filter"
	"LeapPaint/internal/stroke"
)

// Handedness identifies the hand holding the pinch.
type Handedness int

const (
	Left Handedness = iota
	Right
)

// PinchSource is the hand-tracking pinch detector polled once per frame.
type PinchSource interface {
	IsActive() bool
	Position() mgl32.Vec3
	Rotation() mgl32.Quat
	Handedness() Handedness
}

// GrabChecker reports whether the pinch is currently holding a UI element,
// in which case no stroke should start.
type GrabChecker interface {
	IsGrabbing() bool
}

// Normalizer exposes the last normalized thickness driver, e.g.
// *filter.Thickness.
type Normalizer interface {
	LastNormalized() float32
}

// Sink receives the stroke lifecycle. *stroke.Processor implements it.
type Sink interface {
	BeginStroke() error
	UpdateStroke(stroke.Point) error
	EndStroke() error
}

// Config holds the segmentation limits in metres and the per-hand correction
// applied to the pinch rotation, as Euler angles in degrees.
type Config struct {
	MaxSegmentLength             float32
	MinThicknessMinSegmentLength float32
	MaxThicknessMinSegmentLength float32
	LeftHandEuler                mgl32.Vec3
	RightHandEuler               mgl32.Vec3
}

// DefaultConfig returns the limits tuned for hand-scale painting.
func DefaultConfig() Config {
	return Config{
		MaxSegmentLength:             0.03,
		MinThicknessMinSegmentLength: 0.001,
		MaxThicknessMinSegmentLength: 0.007,
		LeftHandEuler:                mgl32.Vec3{0, 180, 0},
		RightHandEuler:               mgl32.Vec3{0, 180, 0},
	}
}

// MinColorAlpha is the alpha the painting colour must exceed before a stroke
// may start.
const MinColorAlpha = 0.99

// Adapter polls a PinchSource every frame and drives a Sink: it begins a
// stroke when the pinch engages, feeds retained points while it is held and
// ends the stroke on release.
//
// Long moves are split into segments no longer than MaxSegmentLength. A
// candidate point is retained only if it is far enough from the last retained
// point; elapsed time keeps accumulating across dropped candidates.
type Adapter struct {
	cfg    Config
	source PinchSource
	sink   Sink

	Grab      GrabChecker
	Color     filter.ColorSource
	Thickness Normalizer

	painting  bool
	hasLast   bool
	last      mgl32.Vec3
	sinceLast float32
}

func NewAdapter(cfg Config, source PinchSource, sink Sink) *Adapter {
	return &Adapter{cfg: cfg, source: source, sink: sink}
}

// Painting reports whether the adapter has an open stroke.
func (a *Adapter) Painting() bool {
	return a.painting
}

// Update advances the adapter by one frame that lasted dt seconds.
func (a *Adapter) Update(dt float32) error {
	active := a.source.IsActive()
	switch {
	case active && !a.painting:
		if !a.canBegin() {
			return nil
		}
		if err := a.sink.BeginStroke(); err != nil {
			return err
		}
		a.painting = true
		a.hasLast = false
		a.sinceLast = 0
	case active && a.painting:
		return a.updateStroke(dt)
	case !active && a.painting:
		a.painting = false
		a.hasLast = false
		return a.sink.EndStroke()
	}
	return nil
}

func (a *Adapter) canBegin() bool {
	if a.Grab != nil && a.Grab.IsGrabbing() {
		return false
	}
	if a.Color == nil {
		return true
	}
	c, err := a.Color.CurrentColor()
	if err != nil {
		stroke.Logger().Debug("no painting colour; not starting stroke", "component", "input", "error", err)
		return false
	}
	return c.A > MinColorAlpha
}

func (a *Adapter) updateStroke(dt float32) error {
	pos := a.source.Position()
	if !a.hasLast {
		return a.addPoint(pos, dt)
	}
	for _, s := range Segment(a.last, pos, dt, a.cfg.MaxSegmentLength) {
		if err := a.addPoint(s.Position, s.DeltaTime); err != nil {
			return err
		}
	}
	return nil
}

// MinSegmentLength is the distance a candidate must keep from the last
// retained point, growing with the normalized thickness.
func (a *Adapter) MinSegmentLength() float32 {
	var t float32
	if a.Thickness != nil {
		t = mgl32.Clamp(a.Thickness.LastNormalized(), 0, 1)
	}
	lo, hi := a.cfg.MinThicknessMinSegmentLength, a.cfg.MaxThicknessMinSegmentLength
	return lo + (hi-lo)*t
}

func (a *Adapter) addPoint(pos mgl32.Vec3, dt float32) error {
	a.sinceLast += dt
	if a.hasLast && pos.Sub(a.last).Len() < a.MinSegmentLength() {
		return nil
	}

	pt := stroke.NewPoint(pos, a.sinceLast)
	pt.HandOrientation = a.source.Rotation().Mul(a.handCorrection())
	if err := a.sink.UpdateStroke(pt); err != nil {
		return err
	}
	a.hasLast = true
	a.last = pos
	a.sinceLast = 0
	return nil
}

func (a *Adapter) handCorrection() mgl32.Quat {
	e := a.cfg.RightHandEuler
	if a.source.Handedness() == Left {
		e = a.cfg.LeftHandEuler
	}
	return mgl32.AnglesToQuat(mgl32.DegToRad(e[0]), mgl32.DegToRad(e[1]), mgl32.DegToRad(e[2]), mgl32.XYZ)
}

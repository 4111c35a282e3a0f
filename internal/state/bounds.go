package state

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"LeapPaint/internal/stroke"
)

// Bounds is an axis-aligned box around stroke geometry.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// BoundsOf returns the box around points, padded by half of each point's
// thickness. It reports false for an empty stroke.
func BoundsOf(points []stroke.Point) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b := pointBounds(points[0])
	for _, p := range points[1:] {
		b = b.Union(pointBounds(p))
	}
	return b, true
}

func pointBounds(p stroke.Point) Bounds {
	half := p.Thickness / 2
	pad := mgl32.Vec3{half, half, half}
	return Bounds{Min: p.Position.Sub(pad), Max: p.Position.Add(pad)}
}

// Union returns the smallest box holding both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	for i := 0; i < 3; i++ {
		if o.Min[i] < b.Min[i] {
			b.Min[i] = o.Min[i]
		}
		if o.Max[i] > b.Max[i] {
			b.Max[i] = o.Max[i]
		}
	}
	return b
}

// Pad grows the box by d on every side.
func (b Bounds) Pad(d float32) Bounds {
	pad := mgl32.Vec3{d, d, d}
	return Bounds{Min: b.Min.Sub(pad), Max: b.Max.Add(pad)}
}

// Size returns the box extent along each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Overlaps reports whether b and o intersect.
func (b Bounds) Overlaps(o Bounds) bool {
	for i := 0; i < 3; i++ {
		if b.Max[i] < o.Min[i] || o.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// Bounds returns the box around every stroke in the history.
func (h *History) Bounds() (Bounds, bool) {
	var out Bounds
	found := false
	for _, e := range h.Entries() {
		b, ok := BoundsOf(e.Points)
		if !ok {
			continue
		}
		if !found {
			out, found = b, true
			continue
		}
		out = out.Union(b)
	}
	return out, found
}

// Within returns the strokes whose bounding boxes overlap area. It is a coarse
// query: a long diagonal stroke overlaps most of the area around it.
func (h *History) Within(area Bounds) []Entry {
	var out []Entry
	for _, e := range h.Entries() {
		if b, ok := BoundsOf(e.Points); ok && b.Overlaps(area) {
			out = append(out, e)
		}
	}
	return out
}

// Under returns the strokes passing within radius of c on the XY plane, the
// plane the canvas and the PDF export draw. Half a point's thickness counts
// toward its reach.
func (h *History) Under(c mgl32.Vec2, radius float32) []Entry {
	area := Bounds{
		Min: mgl32.Vec3{c.X(), c.Y(), -math.MaxFloat32},
		Max: mgl32.Vec3{c.X(), c.Y(), math.MaxFloat32},
	}.Pad(radius)

	var out []Entry
	for _, e := range h.Within(area) {
		if touches(e.Points, c, radius) {
			out = append(out, e)
		}
	}
	return out
}

func touches(points []stroke.Point, c mgl32.Vec2, radius float32) bool {
	if len(points) == 1 {
		p := points[0]
		return p.Position.Vec2().Sub(c).Len() <= radius+p.Thickness/2
	}
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		reach := radius + max(a.Thickness, b.Thickness)/2
		if segmentDistance(c, a.Position.Vec2(), b.Position.Vec2()) <= reach {
			return true
		}
	}
	return false
}

// segmentDistance is the distance from p to the segment ab.
func segmentDistance(p, a, b mgl32.Vec2) float32 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Len()
	}
	t := mgl32.Clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
	return p.Sub(a.Add(ab.Mul(t))).Len()
}

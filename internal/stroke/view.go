package stroke

import "LeapPaint/internal/ring"

// View is a read-only window over a point sequence handed to renderers. It is
// only valid for the duration of the call that received it.
type View interface {
	Len() int
	At(i int) Point
}

// Points adapts a slice to View.
type Points []Point

func (p Points) Len() int       { return len(p) }
func (p Points) At(i int) Point { return p[i] }

type bufferView struct {
	b *ring.Buffer[Point]
}

func (v bufferView) Len() int       { return v.b.Size() }
func (v bufferView) At(i int) Point { return v.b.Get(i) }

// Collect copies a view into a new slice.
func Collect(v View) []Point {
	out := make([]Point, v.Len())
	for i := range out {
		out[i] = v.At(i)
	}
	return out
}

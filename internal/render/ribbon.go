package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"LeapPaint/internal/stroke"
)

// Mesh is an engine-agnostic ribbon: one cross section per stroke point, each
// spanning the point's thickness along its local X axis.
type Mesh struct {
	Left   []mgl32.Vec3
	Right  []mgl32.Vec3
	Colors []stroke.Color
}

// Len returns the number of cross sections.
func (m *Mesh) Len() int {
	return len(m.Left)
}

// Triangles returns two triangles per pair of consecutive cross sections,
// indexing vertices laid out as Left[i] at 2i and Right[i] at 2i+1.
func (m *Mesh) Triangles() []uint32 {
	if m.Len() < 2 {
		return nil
	}
	idx := make([]uint32, 0, (m.Len()-1)*6)
	for i := 0; i < m.Len()-1; i++ {
		l0, r0 := uint32(2*i), uint32(2*i+1)
		l1, r1 := l0+2, r0+2
		idx = append(idx, l0, r0, l1, r0, r1, l1)
	}
	return idx
}

func (m *Mesh) truncate(n int) {
	m.Left = m.Left[:n]
	m.Right = m.Right[:n]
	m.Colors = m.Colors[:n]
}

func (m *Mesh) clone() *Mesh {
	return &Mesh{
		Left:   append([]mgl32.Vec3(nil), m.Left...),
		Right:  append([]mgl32.Vec3(nil), m.Right...),
		Colors: append([]stroke.Color(nil), m.Colors...),
	}
}

// CrossSection returns the left and right edge of the ribbon at p.
func CrossSection(p stroke.Point) (left, right mgl32.Vec3) {
	half := p.Rotation.Rotate(mgl32.Vec3{1, 0, 0}).Mul(p.Thickness / 2)
	return p.Position.Sub(half), p.Position.Add(half)
}

// Ribbon builds a Mesh incrementally. Each refresh only rebuilds the trailing
// maxMemory cross sections.
type Ribbon struct {
	// OnFinalized receives the sealed mesh and the final point sequence.
	// Both are owned by the receiver.
	OnFinalized func(mesh *Mesh, points []stroke.Point)

	mesh    Mesh
	points  []stroke.Point
	rebuilt int
}

var _ stroke.Renderer = (*Ribbon)(nil)

func NewRibbon() *Ribbon {
	return &Ribbon{}
}

func (r *Ribbon) InitializeRenderer() {
	r.mesh.truncate(0)
	r.points = r.points[:0]
	r.rebuilt = 0
}

func (r *Ribbon) RefreshRenderer(points stroke.View, maxMemory int) {
	n := points.Len()
	start := n - maxMemory
	if start < 0 {
		start = 0
	}
	if start > len(r.points) {
		// Points between what was built and the window were never seen.
		start = len(r.points)
	}
	r.points = r.points[:start]
	r.mesh.truncate(start)
	for i := start; i < n; i++ {
		p := points.At(i)
		l, rt := CrossSection(p)
		r.points = append(r.points, p)
		r.mesh.Left = append(r.mesh.Left, l)
		r.mesh.Right = append(r.mesh.Right, rt)
		r.mesh.Colors = append(r.mesh.Colors, p.Color)
	}
	r.rebuilt = n - start
}

func (r *Ribbon) FinalizeRenderer() {
	mesh := r.mesh.clone()
	points := append([]stroke.Point(nil), r.points...)
	stroke.Logger().Debug("ribbon finalized", "component", "ribbon", "sections", mesh.Len())
	if r.OnFinalized != nil {
		r.OnFinalized(mesh, points)
	}
}

// Mesh returns the mesh built so far. It must not be modified and is only
// valid until the next renderer call.
func (r *Ribbon) Mesh() *Mesh {
	return &r.mesh
}

// LastRebuilt returns how many cross sections the last refresh rebuilt.
func (r *Ribbon) LastRebuilt() int {
	return r.rebuilt
}

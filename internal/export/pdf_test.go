package export

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LeapPaint/internal/state"
	"LeapPaint/internal/stroke"
)

func TestProjectionFitsPage(t *testing.T) {
	b := state.Bounds{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{2, 1, 0}}
	p := newProjection(b, 297, 210, 10)

	assert.InDelta(t, 138.5, p.scale, 1e-9)

	x, y := p.point(stroke.NewPoint(mgl32.Vec3{0, 1, 0}, 0))
	assert.InDelta(t, 10, x, 1e-6)
	assert.InDelta(t, 35.75, y, 1e-6)

	x, y = p.point(stroke.NewPoint(mgl32.Vec3{2, 0, 0}, 0))
	assert.InDelta(t, 287, x, 1e-6)
	assert.InDelta(t, 35.75+138.5, y, 1e-6)
}

func TestProjectionSinglePoint(t *testing.T) {
	p := newProjection(state.Bounds{}, 210, 297, 10)
	x, y := p.point(stroke.NewPoint(mgl32.Vec3{}, 0))
	assert.InDelta(t, 105, x, 1e-6)
	assert.InDelta(t, 148.5, y, 1e-6)
}

func TestPDF(t *testing.T) {
	h := state.NewHistory()
	var pts []stroke.Point
	for i := 0; i < 10; i++ {
		p := stroke.NewPoint(mgl32.Vec3{float32(i) * 0.01, float32(i%2) * 0.01, 0}, 0.01)
		p.Thickness = 0.005
		p.Color = stroke.Color{R: 1, A: 1}
		pts = append(pts, p)
	}
	h.Add(nil, pts)
	dot := stroke.NewPoint(mgl32.Vec3{0.2, 0.2, 0}, 0)
	dot.Thickness = 0.01
	h.Add(nil, []stroke.Point{dot})

	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, h, DefaultOptions()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFEmptyHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, state.NewHistory(), DefaultOptions()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

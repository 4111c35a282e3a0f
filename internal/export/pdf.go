package export

import (
	"fmt"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"LeapPaint/internal/state"
	"LeapPaint/internal/stroke"
)

// Options controls PDF layout. Strokes are projected onto the XY plane and
// scaled to fit the page inside the margin.
type Options struct {
	Orientation string  // "P" or "L"
	PageSize    string  // e.g. "A4"
	MarginMM    float64 // page margin
	MinLineMM   float64 // thinnest line drawn
}

func DefaultOptions() Options {
	return Options{Orientation: "L", PageSize: "A4", MarginMM: 10, MinLineMM: 0.1}
}

// projection maps scene metres onto page millimetres.
type projection struct {
	scale      float64
	minX, maxY float64
	offX, offY float64
}

func newProjection(b state.Bounds, pageW, pageH, margin float64) projection {
	size := b.Size()
	w, h := float64(size.X()), float64(size.Y())
	availW, availH := pageW-2*margin, pageH-2*margin

	scale := math.Inf(1)
	if w > 0 {
		scale = availW / w
	}
	if h > 0 {
		scale = math.Min(scale, availH/h)
	}
	if math.IsInf(scale, 1) {
		scale = 1000 // a single dot: 1mm per mm
	}
	return projection{
		scale: scale,
		minX:  float64(b.Min.X()),
		maxY:  float64(b.Max.Y()),
		offX:  margin + (availW-w*scale)/2,
		offY:  margin + (availH-h*scale)/2,
	}
}

func (p projection) point(pt stroke.Point) (x, y float64) {
	x = p.offX + (float64(pt.Position.X())-p.minX)*p.scale
	y = p.offY + (p.maxY-float64(pt.Position.Y()))*p.scale
	return x, y
}

// PDF writes the strokes of h to w, one page.
func PDF(w io.Writer, h *state.History, opts Options) error {
	pdf := gofpdf.New(opts.Orientation, "mm", opts.PageSize, "")
	pdf.SetTitle("LeapPaint scene", true)
	pdf.AddPage()
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")

	if b, ok := h.Bounds(); ok {
		pageW, pageH := pdf.GetPageSize()
		proj := newProjection(b, pageW, pageH, opts.MarginMM)
		for _, e := range h.Entries() {
			drawStroke(pdf, proj, e.Points, opts)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export pdf: %w", err)
	}
	return nil
}

func drawStroke(pdf *gofpdf.Fpdf, proj projection, points []stroke.Point, opts Options) {
	if len(points) == 1 {
		x, y := proj.point(points[0])
		c := points[0].Color.NRGBA()
		pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		pdf.Circle(x, y, math.Max(opts.MinLineMM, float64(points[0].Thickness)*proj.scale)/2, "F")
		return
	}
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		c := b.Color.NRGBA()
		pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
		width := float64(a.Thickness+b.Thickness) / 2 * proj.scale
		pdf.SetLineWidth(math.Max(opts.MinLineMM, width))
		x1, y1 := proj.point(a)
		x2, y2 := proj.point(b)
		pdf.Line(x1, y1, x2, y2)
	}
}

package ui

import (
	"context"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"LeapPaint/internal/input"
	"LeapPaint/internal/state"
	"LeapPaint/internal/stroke"
)

const (
	frameInterval = time.Second / 60
	eraseRadius   = 8 // pixels
)

var (
	backgroundColor = color.NRGBA{R: 245, G: 246, B: 248, A: 255}
	windowColor     = color.NRGBA{R: 255, G: 120, B: 0, A: 160}
)

// viewport maps scene metres on the XY plane to widget pixels. The scene
// origin sits at the widget centre, shifted by pan; +Y points up.
type viewport struct {
	ppm  float32
	pan  fyne.Position
	size fyne.Size
}

func (v viewport) toScreen(p mgl32.Vec3) fyne.Position {
	return fyne.NewPos(
		v.size.Width/2+v.pan.X+p.X()*v.ppm,
		v.size.Height/2+v.pan.Y-p.Y()*v.ppm,
	)
}

func (v viewport) toScene(p fyne.Position) mgl32.Vec3 {
	return mgl32.Vec3{
		(p.X - v.size.Width/2 - v.pan.X) / v.ppm,
		(v.size.Height/2 + v.pan.Y - p.Y) / v.ppm,
		0,
	}
}

// mousePinch lets the primary mouse button stand in for the hand pinch.
type mousePinch struct {
	active bool
	pos    mgl32.Vec3
}

var _ input.PinchSource = (*mousePinch)(nil)

func (m *mousePinch) IsActive() bool               { return m.active }
func (m *mousePinch) Position() mgl32.Vec3         { return m.pos }
func (m *mousePinch) Rotation() mgl32.Quat         { return mgl32.QuatIdent() }
func (m *mousePinch) Handedness() input.Handedness { return input.Right }

// liveStroke keeps a copy of the stroke being painted, overwriting the
// trailing window on every refresh. onDraw receives the first index that
// changed.
type liveStroke struct {
	points []stroke.Point
	onDraw func(start int)
}

func (l *liveStroke) InitializeRenderer() {
	l.points = l.points[:0]
}

func (l *liveStroke) RefreshRenderer(points stroke.View, maxMemory int) {
	n := points.Len()
	start := min(max(0, n-maxMemory), len(l.points))
	l.points = l.points[:start]
	for i := start; i < n; i++ {
		l.points = append(l.points, points.At(i))
	}
	if l.onDraw != nil {
		l.onDraw(start)
	}
}

func (l *liveStroke) FinalizeRenderer() {
	l.points = l.points[:0]
	if l.onDraw != nil {
		l.onDraw(0)
	}
}

// windowMarker shows the processing window, the points filters may still
// change.
type windowMarker struct {
	points []stroke.Point
	onDraw func()
}

func (w *windowMarker) InitializeRenderer() { w.points = w.points[:0] }

func (w *windowMarker) RefreshRenderer(points stroke.View, _ int) {
	w.points = append(w.points[:0], stroke.Collect(points)...)
	if w.onDraw != nil {
		w.onDraw()
	}
}

func (w *windowMarker) FinalizeRenderer() {
	w.points = w.points[:0]
	if w.onDraw != nil {
		w.onDraw()
	}
}

// Board is the painting canvas. It draws the history and the live stroke, and
// feeds mouse input through an input.Adapter into the processor. Scrolling
// pans; the secondary button erases strokes under the cursor.
//
// Each layer is redrawn on its own: history strokes when the history changes,
// the live stroke from the first changed point, the window marker on every
// point. Everything is redrawn when the viewport moves.
type Board struct {
	widget.BaseWidget

	history *state.History
	adapter *input.Adapter
	pinch   *mousePinch
	live    *liveStroke
	window  *windowMarker

	historyLayer *fyne.Container
	liveLayer    *fyne.Container
	windowLayer  *fyne.Container
	strokeCache  map[uuid.UUID][]fyne.CanvasObject
	liveIsDot    bool
	drawn        viewport

	ppm  float32
	pan  fyne.Position
	last time.Time

	// OnError receives errors from the stroke pipeline.
	OnError func(error)
}

var _ fyne.Widget = (*Board)(nil)
var _ fyne.Draggable = (*Board)(nil)
var _ desktop.Mouseable = (*Board)(nil)

// NewBoard registers the board's renderers on p and drives it from the mouse.
func NewBoard(p *stroke.Processor, h *state.History, cfg input.Config, ppm float32) *Board {
	b := &Board{
		history:      h,
		pinch:        &mousePinch{},
		historyLayer: container.NewWithoutLayout(),
		liveLayer:    container.NewWithoutLayout(),
		windowLayer:  container.NewWithoutLayout(),
		strokeCache:  make(map[uuid.UUID][]fyne.CanvasObject),
		ppm:          ppm,
	}
	b.live = &liveStroke{onDraw: b.liveChanged}
	b.window = &windowMarker{onDraw: b.windowChanged}
	b.adapter = input.NewAdapter(cfg, b.pinch, p)
	p.RegisterRenderer(b.live)
	p.RegisterPreviewRenderer(b.window)
	b.ExtendBaseWidget(b)
	return b
}

// Adapter exposes the input adapter so callers can attach colour, thickness
// and grab collaborators.
func (b *Board) Adapter() *input.Adapter {
	return b.adapter
}

func (b *Board) viewport() viewport {
	return viewport{ppm: b.ppm, pan: b.pan, size: b.Size()}
}

// HistoryChanged redraws the history layer. Strokes already drawn are reused.
func (b *Board) HistoryChanged() {
	if b.viewport() != b.drawn {
		b.Refresh()
		return
	}
	b.drawHistory()
	canvas.Refresh(b.historyLayer)
}

func (b *Board) drawHistory() {
	entries := b.history.Entries()
	cache := make(map[uuid.UUID][]fyne.CanvasObject, len(entries))
	var objects []fyne.CanvasObject
	for _, e := range entries {
		objs, ok := b.strokeCache[e.ID]
		if !ok {
			objs = appendStroke(nil, b.drawn, e.Points)
		}
		cache[e.ID] = objs
		objects = append(objects, objs...)
	}
	b.strokeCache = cache
	b.historyLayer.Objects = objects
}

func (b *Board) liveChanged(start int) {
	if b.viewport() != b.drawn {
		b.Refresh()
		return
	}
	b.drawLive(start)
	canvas.Refresh(b.liveLayer)
}

// drawLive replaces the segments touching points from start on. Segment k
// joins points k and k+1.
func (b *Board) drawLive(start int) {
	points := b.live.points
	objects := b.liveLayer.Objects
	keep := 0
	if len(points) > 1 && !b.liveIsDot {
		keep = min(max(0, start-1), len(objects))
	}
	b.liveLayer.Objects = appendStroke(objects[:keep], b.drawn, points[keep:])
	b.liveIsDot = len(points) == 1
}

func (b *Board) windowChanged() {
	if b.viewport() != b.drawn {
		b.Refresh()
		return
	}
	b.drawWindow()
	canvas.Refresh(b.windowLayer)
}

func (b *Board) drawWindow() {
	objects := b.windowLayer.Objects[:0]
	for _, p := range b.window.points {
		dot := canvas.NewCircle(windowColor)
		pos := b.drawn.toScreen(p.Position)
		dot.Position1 = pos.SubtractXY(2, 2)
		dot.Position2 = pos.AddXY(2, 2)
		objects = append(objects, dot)
	}
	b.windowLayer.Objects = objects
}

// redraw rebuilds every layer for the current viewport.
func (b *Board) redraw() {
	b.drawn = b.viewport()
	clear(b.strokeCache)
	b.drawHistory()
	b.liveLayer.Objects = b.liveLayer.Objects[:0]
	b.liveIsDot = false
	b.drawLive(0)
	b.drawWindow()
}

// Run advances the adapter once per frame on the UI goroutine until ctx is
// done.
func (b *Board) Run(ctx context.Context) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			fyne.Do(func() { b.tick(now) })
		}
	}
}

func (b *Board) tick(now time.Time) {
	if b.last.IsZero() {
		b.last = now
	}
	dt := float32(now.Sub(b.last).Seconds())
	b.last = now
	b.frame(dt)
}

func (b *Board) frame(dt float32) {
	if err := b.adapter.Update(dt); err != nil {
		stroke.Logger().Warn("stroke update rejected", "component", "ui", "error", err)
		if b.OnError != nil {
			b.OnError(err)
		}
	}
}

func (b *Board) MouseDown(e *desktop.MouseEvent) {
	switch e.Button {
	case desktop.MouseButtonPrimary:
		b.pinch.active = true
		b.pinch.pos = b.viewport().toScene(e.Position)
	case desktop.MouseButtonSecondary:
		b.erase(e.Position)
	}
}

func (b *Board) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.pinch.active = false
	}
}

func (b *Board) MouseIn(*desktop.MouseEvent)    {}
func (b *Board) MouseOut()                      {}
func (b *Board) MouseMoved(*desktop.MouseEvent) {}

func (b *Board) Dragged(e *fyne.DragEvent) {
	if b.pinch.active {
		b.pinch.pos = b.viewport().toScene(e.Position)
	}
}

func (b *Board) DragEnd() {
	b.pinch.active = false
}

func (b *Board) Scrolled(e *fyne.ScrollEvent) {
	b.pan = b.pan.Add(fyne.NewPos(e.Scrolled.DX, e.Scrolled.DY))
	b.Refresh()
}

// ResetView centres the scene origin again.
func (b *Board) ResetView() {
	b.pan = fyne.Position{}
	b.Refresh()
}

// erase removes the strokes passing under the cursor.
func (b *Board) erase(at fyne.Position) {
	c := b.viewport().toScene(at).Vec2()
	for _, e := range b.history.Under(c, eraseRadius/b.ppm) {
		b.history.Remove(e.ID)
	}
}

func (b *Board) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(backgroundColor)
	return &boardRenderer{
		board:      b,
		background: bg,
		objects:    []fyne.CanvasObject{bg, b.historyLayer, b.liveLayer, b.windowLayer},
	}
}

type boardRenderer struct {
	board      *Board
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *boardRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *boardRenderer) Refresh() {
	if r.board.viewport() != r.board.drawn {
		r.board.redraw()
	}
	canvas.Refresh(r.board)
}

func (r *boardRenderer) Layout(size fyne.Size) {
	for _, o := range r.objects {
		o.Resize(size)
	}
	if r.board.viewport() != r.board.drawn {
		r.board.redraw()
	}
}

func (r *boardRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardRenderer) Destroy() {}

// appendStroke adds the canvas objects for one stroke: a line per segment, or
// a dot for a single point.
func appendStroke(objects []fyne.CanvasObject, vp viewport, points []stroke.Point) []fyne.CanvasObject {
	if len(points) == 1 {
		p := points[0]
		rad := max(0.5, p.Thickness*vp.ppm/2)
		pos := vp.toScreen(p.Position)
		dot := canvas.NewCircle(p.Color.NRGBA())
		dot.Position1 = pos.SubtractXY(rad, rad)
		dot.Position2 = pos.AddXY(rad, rad)
		return append(objects, dot)
	}
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		line := canvas.NewLine(b.Color.NRGBA())
		line.StrokeWidth = max(1, (a.Thickness+b.Thickness)/2*vp.ppm)
		line.Position1 = vp.toScreen(a.Position)
		line.Position2 = vp.toScreen(b.Position)
		objects = append(objects, line)
	}
	return objects
}

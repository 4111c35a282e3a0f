package stroke

import (
	"errors"
	"fmt"

	"LeapPaint/internal/ring"
)

var (
	// ErrStrokeInProgress is returned by BeginStroke while a stroke is active.
	ErrStrokeInProgress = errors.New("stroke in progress")
	// ErrNoStroke is returned by UpdateStroke and EndStroke while idle.
	ErrNoStroke = errors.New("no stroke in progress")
)

// Filter is a bounded-lookback transform applied in place to the most recent
// points of a stroke.
//
// Process may read and write any live element of points. indices holds the
// absolute stroke index of each element, in the same order. Neither buffer
// may be retained after Process returns.
type Filter interface {
	// MemorySize is the number of points prior to the current one that the
	// filter needs to see.
	MemorySize() int
	// Reset clears per-stroke state. It is called at the start of every stroke.
	Reset()
	Process(points *ring.Buffer[Point], indices *ring.Buffer[int])
}

// Renderer consumes a stroke incrementally.
type Renderer interface {
	// InitializeRenderer prepares for a new stroke.
	InitializeRenderer()
	// RefreshRenderer is called after every point. Only the last maxMemory
	// points of the view can differ from the previous call.
	RefreshRenderer(points View, maxMemory int)
	// FinalizeRenderer seals the stroke.
	FinalizeRenderer()
}

// Processor runs registered filters over incoming points and fans the result
// out to renderers. It is not safe for concurrent use; every call is expected
// to come from the same per-frame driver.
//
// Filters run in registration order, each seeing the effect of the ones
// before it. Preview renderers run before final renderers, each list in
// registration order.
type Processor struct {
	filters   []Filter
	maxMemory int
	dirty     bool

	renderers        []Renderer
	previewRenderers []Renderer

	active  bool
	buffer  *ring.Buffer[Point]
	indices *ring.Buffer[int]
	next    int
	output  []Point
}

// NewProcessor returns an idle processor with no filters or renderers.
func NewProcessor() *Processor {
	p := &Processor{maxMemory: 1}
	p.Reconfigure()
	return p
}

// RegisterFilter appends f to the filter chain.
//
// While idle the shared buffers are resized at the next BeginStroke. While a
// stroke is active they are reallocated immediately, which discards the
// points currently in the window.
func (p *Processor) RegisterFilter(f Filter) {
	p.filters = append(p.filters, f)
	if m := f.MemorySize() + 1; m > p.maxMemory {
		p.maxMemory = m
	}
	p.dirty = true
	if p.active {
		n := p.Reconfigure()
		Logger().Warn("filter registered during an active stroke; processing window discarded",
			"component", "processor", "discarded", n)
	}
}

// RegisterRenderer appends r to the final renderers.
func (p *Processor) RegisterRenderer(r Renderer) {
	p.renderers = append(p.renderers, r)
	if p.active {
		Logger().Warn("renderer registered during an active stroke; it will not render the whole stroke",
			"component", "processor")
	}
}

// RegisterPreviewRenderer appends r to the preview renderers, which are
// refreshed with the processing window instead of the whole stroke.
func (p *Processor) RegisterPreviewRenderer(r Renderer) {
	p.previewRenderers = append(p.previewRenderers, r)
	if p.active {
		Logger().Warn("preview renderer registered during an active stroke; it will not render the whole preview",
			"component", "processor")
	}
}

// Reconfigure reallocates the shared buffers for the current filter set and
// returns the number of windowed points it discarded.
func (p *Processor) Reconfigure() int {
	discarded := 0
	if p.buffer != nil {
		discarded = p.buffer.Size()
	}
	p.buffer = ring.New[Point](p.maxMemory)
	p.indices = ring.New[int](p.maxMemory)
	p.dirty = false
	return discarded
}

// MaxMemory is the capacity of the processing window: the largest filter
// lookback plus the current point.
func (p *Processor) MaxMemory() int {
	return p.maxMemory
}

// Active reports whether a stroke is in progress.
func (p *Processor) Active() bool {
	return p.active
}

// Stroke returns a copy of the points produced so far for the current or
// most recent stroke.
func (p *Processor) Stroke() []Point {
	return append([]Point(nil), p.output...)
}

// BeginStroke starts a new stroke. It fails with ErrStrokeInProgress, leaving
// the current stroke untouched, if one is already active.
func (p *Processor) BeginStroke() error {
	if p.active {
		Logger().Warn("cannot begin stroke; end the current stroke first", "component", "processor")
		return fmt.Errorf("begin stroke: %w", ErrStrokeInProgress)
	}
	p.active = true

	if p.dirty {
		p.Reconfigure()
	}
	p.buffer.Clear()
	p.indices.Clear()
	p.next = 0
	p.output = nil

	for _, f := range p.filters {
		f.Reset()
	}
	for _, r := range p.previewRenderers {
		r.InitializeRenderer()
	}
	for _, r := range p.renderers {
		r.InitializeRenderer()
	}
	return nil
}

// UpdateStroke appends pt to the active stroke, filters the window and
// refreshes every renderer.
func (p *Processor) UpdateStroke(pt Point) error {
	if !p.active {
		return fmt.Errorf("update stroke: %w", ErrNoStroke)
	}

	p.output = append(p.output, pt)
	p.buffer.Add(pt)
	p.indices.Add(p.next)
	p.next++

	for _, f := range p.filters {
		f.Process(p.buffer, p.indices)
	}

	// Back-patch the tail of the output with the filtered window.
	base := len(p.output) - p.buffer.Size()
	for i := 0; i < p.buffer.Size(); i++ {
		p.output[base+i] = p.buffer.Get(i)
	}

	window := bufferView{p.buffer}
	for _, r := range p.previewRenderers {
		r.RefreshRenderer(window, p.buffer.Size())
	}
	out := Points(p.output)
	for _, r := range p.renderers {
		r.RefreshRenderer(out, p.maxMemory)
	}
	return nil
}

// EndStroke finalizes the active stroke. While idle it does nothing and
// returns ErrNoStroke.
func (p *Processor) EndStroke() error {
	if !p.active {
		return fmt.Errorf("end stroke: %w", ErrNoStroke)
	}
	p.active = false

	for _, r := range p.previewRenderers {
		r.FinalizeRenderer()
	}
	for _, r := range p.renderers {
		r.FinalizeRenderer()
	}
	Logger().Info("stroke finalized", "component", "processor", "points", len(p.output))
	return nil
}

// Replay drives r directly from a finished stroke, bypassing the live
// begin/update/end cycle. It is how stored strokes are rebuilt.
func Replay(r Renderer, points []Point) {
	r.InitializeRenderer()
	r.RefreshRenderer(Points(points), len(points))
	r.FinalizeRenderer()
}

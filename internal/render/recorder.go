package render

import (
	"fmt"

	"LeapPaint/internal/stroke"
)

// Recorder is a renderer that records the calls it receives. It is useful as
// a debugging sink and in tests of the lifecycle ordering.
type Recorder struct {
	Name string
	// Log receives one line per call when set, e.g. a shared slice across
	// recorders to check the relative order of renderers.
	Log *[]string

	Calls     []string
	Refreshes [][]stroke.Point
	Finalized [][]stroke.Point

	last []stroke.Point
}

var _ stroke.Renderer = (*Recorder)(nil)

func (r *Recorder) record(call string) {
	r.Calls = append(r.Calls, call)
	if r.Log != nil {
		*r.Log = append(*r.Log, fmt.Sprintf("%s.%s", r.Name, call))
	}
}

func (r *Recorder) InitializeRenderer() {
	r.record("init")
	r.last = nil
}

func (r *Recorder) RefreshRenderer(points stroke.View, maxMemory int) {
	r.record(fmt.Sprintf("refresh(%d,%d)", points.Len(), maxMemory))
	r.last = stroke.Collect(points)
	r.Refreshes = append(r.Refreshes, r.last)
}

func (r *Recorder) FinalizeRenderer() {
	r.record("finalize")
	r.Finalized = append(r.Finalized, append([]stroke.Point{}, r.last...))
}

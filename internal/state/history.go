package state

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"LeapPaint/internal/render"
	"LeapPaint/internal/stroke"
)

// History is the ordered set of finalized strokes in the scene.
type History struct {
	clock   Clock
	entries []Entry
	byID    map[uuid.UUID]int
	mu      sync.RWMutex

	// OnChange is called after every mutation, outside the lock.
	OnChange func()
}

func NewHistory() *History {
	return &History{byID: make(map[uuid.UUID]int)}
}

// NotifyStroke records a finalized stroke. It has the shape of
// render.Ribbon.OnFinalized so it can be wired directly. Empty strokes are
// ignored.
func (h *History) NotifyStroke(mesh *render.Mesh, points []stroke.Point) {
	h.Add(mesh, points)
}

// Add records a finalized stroke and returns its entry. It reports false for
// an empty stroke, which is not stored.
func (h *History) Add(mesh *render.Mesh, points []stroke.Point) (Entry, bool) {
	if len(points) == 0 {
		return Entry{}, false
	}
	h.mu.Lock()
	e := Entry{
		ID:        uuid.New(),
		Lamport:   h.clock.Tick(),
		CreatedAt: time.Now(),
		Points:    points,
		Mesh:      mesh,
	}
	h.byID[e.ID] = len(h.entries)
	h.entries = append(h.entries, e)
	h.mu.Unlock()

	stroke.Logger().Info("stroke added", "component", "history", "id", e.ID, "points", len(points))
	h.changed()
	return e, true
}

// Entries returns a copy of the entries in lamport order.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Entry(nil), h.entries...)
}

// Len returns the number of strokes.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Get returns the entry with the given ID.
func (h *History) Get(id uuid.UUID) (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	i, ok := h.byID[id]
	if !ok {
		return Entry{}, false
	}
	return h.entries[i], true
}

// Remove deletes the entry with the given ID.
func (h *History) Remove(id uuid.UUID) bool {
	h.mu.Lock()
	i, ok := h.byID[id]
	if ok {
		h.removeAt(i)
	}
	h.mu.Unlock()

	if ok {
		stroke.Logger().Info("stroke removed", "component", "history", "id", id)
		h.changed()
	}
	return ok
}

// Undo removes and returns the most recent stroke.
func (h *History) Undo() (Entry, bool) {
	h.mu.Lock()
	if len(h.entries) == 0 {
		h.mu.Unlock()
		return Entry{}, false
	}
	e := h.entries[len(h.entries)-1]
	h.removeAt(len(h.entries) - 1)
	h.mu.Unlock()

	stroke.Logger().Info("stroke undone", "component", "history", "id", e.ID)
	h.changed()
	return e, true
}

// Clear removes every stroke. The clock keeps running.
func (h *History) Clear() {
	h.mu.Lock()
	h.entries = nil
	h.byID = make(map[uuid.UUID]int)
	h.mu.Unlock()
	h.changed()
}

func (h *History) removeAt(i int) {
	delete(h.byID, h.entries[i].ID)
	h.entries = append(h.entries[:i], h.entries[i+1:]...)
	for j := i; j < len(h.entries); j++ {
		h.byID[h.entries[j].ID] = j
	}
}

func (h *History) changed() {
	if h.OnChange != nil {
		h.OnChange()
	}
}

// Save writes the history as JSON.
func (h *History) Save(w io.Writer) error {
	scene := sceneFile{Version: sceneVersion, Strokes: h.Entries()}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(scene); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	return nil
}

// Load replaces the history with the scene read from r. Each stroke's mesh is
// rebuilt by replaying its points through a ribbon renderer.
func (h *History) Load(r io.Reader) error {
	var scene sceneFile
	if err := json.NewDecoder(r).Decode(&scene); err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	if scene.Version != sceneVersion {
		return fmt.Errorf("load scene: unsupported version %d", scene.Version)
	}

	entries := make([]Entry, 0, len(scene.Strokes))
	seen := make(map[uuid.UUID]bool, len(scene.Strokes))
	for _, e := range scene.Strokes {
		if len(e.Points) == 0 {
			continue
		}
		if seen[e.ID] {
			stroke.Logger().Warn("duplicate stroke id in scene; assigning a new one", "component", "history", "id", e.ID)
			e.ID = uuid.Nil
		}
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		seen[e.ID] = true
		e.Mesh = Rebuild(e.Points)
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Lamport < entries[j].Lamport })

	h.mu.Lock()
	h.entries = entries
	h.byID = make(map[uuid.UUID]int, len(entries))
	for i, e := range entries {
		h.byID[e.ID] = i
		h.clock.Observe(e.Lamport)
	}
	h.mu.Unlock()

	stroke.Logger().Info("scene loaded", "component", "history", "strokes", len(entries))
	h.changed()
	return nil
}

// Rebuild produces the ribbon mesh of a stored stroke through the replay
// path.
func Rebuild(points []stroke.Point) *render.Mesh {
	var mesh *render.Mesh
	r := render.NewRibbon()
	r.OnFinalized = func(m *render.Mesh, _ []stroke.Point) { mesh = m }
	stroke.Replay(r, points)
	return mesh
}

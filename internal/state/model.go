package state

import (
	"time"

	"github.com/google/uuid"

	"LeapPaint/internal/render"
	"LeapPaint/internal/stroke"
)

// Entry is one finalized stroke in the history. A stroke is fully described
// by its ordered points; Mesh is derived from them and never serialized.
type Entry struct {
	ID        uuid.UUID      `json:"id"`
	Lamport   uint64         `json:"lamport"`
	CreatedAt time.Time      `json:"created_at"`
	Points    []stroke.Point `json:"points"`
	Mesh      *render.Mesh   `json:"-"`
}

// sceneFile is the on-disk layout written by Save.
type sceneFile struct {
	Version int     `json:"version"`
	Strokes []Entry `json:"strokes"`
}

const sceneVersion = 1

package net

import (
	"encoding/json"

	"github.com/google/uuid"

	"LeapPaint/internal/stroke"
)

// Message types sent to viewers.
const (
	MsgBegin    = "begin"
	MsgRefresh  = "refresh"
	MsgFinalize = "finalize"
)

// Message is one stroke event on the wire. A refresh carries the points from
// Start to the end of the stroke; viewers overwrite their copy from Start on.
type Message struct {
	Type     string         `json:"type"`
	StrokeID uuid.UUID      `json:"stroke_id"`
	Start    int            `json:"start"`
	Count    int            `json:"count"`
	Points   []stroke.Point `json:"points,omitempty"`
}

// Broadcaster sends an encoded message to every viewer.
type Broadcaster interface {
	Broadcast(data []byte)
}

// Bridge is a renderer that streams strokes to remote viewers.
type Bridge struct {
	out Broadcaster
	id  uuid.UUID
}

func NewBridge(out Broadcaster) *Bridge {
	return &Bridge{out: out}
}

func (b *Bridge) InitializeRenderer() {
	b.id = uuid.New()
	b.send(Message{Type: MsgBegin, StrokeID: b.id})
}

// RefreshRenderer sends only the points that can still change.
func (b *Bridge) RefreshRenderer(points stroke.View, maxMemory int) {
	n := points.Len()
	start := max(0, n-maxMemory)
	msg := Message{Type: MsgRefresh, StrokeID: b.id, Start: start, Count: n}
	msg.Points = make([]stroke.Point, 0, n-start)
	for i := start; i < n; i++ {
		msg.Points = append(msg.Points, points.At(i))
	}
	b.send(msg)
}

func (b *Bridge) FinalizeRenderer() {
	b.send(Message{Type: MsgFinalize, StrokeID: b.id})
}

func (b *Bridge) send(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		stroke.Logger().Error("encode bridge message", "component", "bridge", "type", msg.Type, "error", err)
		return
	}
	b.out.Broadcast(data)
}

// Apply folds msg into a viewer's copy of a stroke and returns the result.
func Apply(points []stroke.Point, msg Message) []stroke.Point {
	switch msg.Type {
	case MsgBegin:
		return points[:0]
	case MsgRefresh:
		start := min(msg.Start, len(points))
		points = append(points[:start], msg.Points...)
	}
	return points
}

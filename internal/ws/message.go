package ws

import (
	"encoding/json"
	"fmt"

	"github.com/coreman2200/particlecloud/internal/diagnostics"
	"github.com/coreman2200/particlecloud/internal/gesture"
	"github.com/coreman2200/particlecloud/internal/template"
)

// GestureMessage is what a hand tracker sends on /gesture. A null or missing
// landmarks field means no hand; a non-empty unavailable ends the source.
type GestureMessage struct {
	Landmarks   []gesture.Point `json:"landmarks"`
	Unavailable string          `json:"unavailable,omitempty"`
}

// DecodeGesture parses one /gesture message into a slot frame.
func DecodeGesture(b []byte) (gesture.Frame, error) {
	var m GestureMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return gesture.Frame{}, fmt.Errorf("decode gesture: %w", err)
	}
	if m.Unavailable != "" {
		return gesture.Frame{Unavailable: m.Unavailable}, nil
	}
	if m.Landmarks == nil {
		return gesture.Frame{}, nil
	}
	h, err := gesture.HandFrom(m.Landmarks)
	if err != nil {
		return gesture.Frame{}, fmt.Errorf("decode gesture: %w", err)
	}
	return gesture.Frame{Hand: h}, nil
}

// EncodeGesture is the inverse of DecodeGesture; a nil hand encodes as no hand.
func EncodeGesture(h *gesture.Hand) ([]byte, error) {
	var m GestureMessage
	if h != nil {
		m.Landmarks = h[:]
	}
	return json.Marshal(m)
}

// EncodeFrame encodes a slot frame, including an unavailable source.
func EncodeFrame(f gesture.Frame) ([]byte, error) {
	if f.Unavailable != "" {
		return json.Marshal(GestureMessage{Unavailable: f.Unavailable})
	}
	return EncodeGesture(f.Hand)
}

type paletteMsg struct {
	Type   string                 `json:"type"`
	Colors map[template.ID]string `json:"colors"`
}

type frameMsg struct {
	Type       string      `json:"type"`
	ID         uint64      `json:"id"`
	Template   template.ID `json:"template"`
	Generation uint64      `json:"generation"`
	Rotation   [2]float64  `json:"rotation"`
	Positions  []float32   `json:"positions"`
	Colors     []float32   `json:"colors"`
}

type statusMsg struct {
	Type string `json:"type"`
	gesture.Status
}

type diagMsg struct {
	Type string `json:"type"`
	diagnostics.Diagnostic
}

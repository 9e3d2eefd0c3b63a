package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"github.com/coreman2200/particlecloud/internal/diagnostics"
	"github.com/coreman2200/particlecloud/internal/gesture"
	"github.com/coreman2200/particlecloud/internal/scene"
	"github.com/coreman2200/particlecloud/internal/template"
)

const (
	writeWait  = 200 * time.Millisecond
	sendBuffer = 16
)

type Options struct {
	Slot     *gesture.Slot
	Throttle time.Duration // minimum spacing of frame broadcasts
	FPS      int           // reported by /health
	Logger   zerolog.Logger
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub bridges the engine and browsers: it feeds /gesture input into the slot
// and fans frames and status out to /frames and /status subscribers. Write
// never blocks on the network; frames are copied and handed to Run.
type Hub struct {
	slot     *gesture.Slot
	throttle time.Duration
	fps      int
	log      zerolog.Logger
	up       websocket.Upgrader
	start    time.Time

	mu         sync.RWMutex
	frames     map[*client]bool
	status     map[*client]bool
	sources    map[*client]bool // /gesture connections; send is unused
	palette    []byte
	lastStatus []byte
	lastEmit   time.Time
	pending    []byte
	frameID    uint64
	template   template.ID
	generation uint64
	count      int

	notify    chan struct{}
	gestures  atomic.Uint64
	malformed atomic.Uint64
}

func NewHub(o Options) *Hub {
	if o.Slot == nil {
		o.Slot = gesture.NewSlot()
	}
	return &Hub{
		slot:     o.Slot,
		throttle: o.Throttle,
		fps:      o.FPS,
		log:      o.Logger,
		up:       websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		start:    time.Now(),
		frames:   map[*client]bool{},
		status:   map[*client]bool{},
		sources:  map[*client]bool{},
		notify:   make(chan struct{}, 1),
	}
}

func (h *Hub) Name() string { return "websocket" }

// Routes registers the hub's endpoints on mux.
func (h *Hub) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/gesture", h.HandleGesture)
	mux.HandleFunc("/frames", h.HandleFrames)
	mux.HandleFunc("/status", h.HandleStatus)
	mux.HandleFunc("/health", h.HandleHealth)
}

func (h *Hub) SetPalette(p map[template.ID]colorful.Color) {
	m := paletteMsg{Type: "palette", Colors: make(map[template.ID]string, len(p))}
	for id, c := range p {
		m.Colors[id] = c.Hex()
	}
	b, _ := json.Marshal(m)
	h.mu.Lock()
	h.palette = b
	h.mu.Unlock()
	h.broadcast(h.frames, b)
}

// Write snapshots f for the broadcaster when a subscriber is listening and
// the throttle allows.
func (h *Hub) Write(f scene.Frame) error {
	at := f.At
	if at.IsZero() {
		at = time.Now()
	}
	h.mu.Lock()
	h.frameID, h.template, h.generation, h.count = f.ID, f.Template, f.Generation, f.Len()
	if len(h.frames) == 0 || (!h.lastEmit.IsZero() && at.Sub(h.lastEmit) < h.throttle) {
		h.mu.Unlock()
		return nil
	}
	h.lastEmit = at
	h.mu.Unlock()

	b, err := json.Marshal(frameMsg{
		Type:       "frame",
		ID:         f.ID,
		Template:   f.Template,
		Generation: f.Generation,
		Rotation:   [2]float64{f.Rotation.X, f.Rotation.Y},
		Positions:  f.Positions,
		Colors:     f.Colors,
	})
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.pending = b
	h.mu.Unlock()
	select {
	case h.notify <- struct{}{}:
	default:
	}
	return nil
}

func (h *Hub) Status(st gesture.Status) {
	b, _ := json.Marshal(statusMsg{Type: "status", Status: st})
	h.mu.Lock()
	h.lastStatus = b
	h.mu.Unlock()
	h.broadcast(h.status, b)
}

func (h *Hub) Diagnostic(d diagnostics.Diagnostic) {
	b, _ := json.Marshal(diagMsg{Type: "diagnostic", Diagnostic: d})
	h.broadcast(h.status, b)
}

// Run delivers pending frames until ctx is cancelled, then drops every
// subscriber.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-h.notify:
			h.mu.Lock()
			b := h.pending
			h.pending = nil
			h.mu.Unlock()
			if b != nil {
				h.broadcast(h.frames, b)
			}
		}
	}
}

func (h *Hub) broadcast(set map[*client]bool, b []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range set {
		select {
		case c.send <- b:
		default:
			h.log.Debug().Str("client", c.id).Msg("client behind; message dropped")
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range []map[*client]bool{h.frames, h.status, h.sources} {
		for c := range set {
			_ = c.conn.Close()
		}
	}
}

// HandleGesture reads tracker messages into the slot. Malformed messages are
// counted and skipped; a disconnect clears the hand.
func (h *Hub) HandleGesture(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{id: uuid.NewString(), conn: conn}
	h.mu.Lock()
	h.sources[c] = true
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.sources, c)
		h.mu.Unlock()
		_ = conn.Close()
	}()
	log := h.log.With().Str("client", c.id).Str("remote", r.RemoteAddr).Logger()
	log.Info().Msg("gesture source connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Info().Err(err).Msg("gesture source disconnected")
			h.slot.Publish(gesture.Frame{})
			return
		}
		f, err := DecodeGesture(data)
		if err != nil {
			if h.malformed.Add(1) == 1 {
				log.Warn().Err(err).Msg("malformed gesture message")
				h.Diagnostic(diagnostics.Malformed(err))
			} else {
				log.Debug().Err(err).Msg("malformed gesture message")
			}
			continue
		}
		h.gestures.Add(1)
		h.slot.Publish(f)
	}
}

func (h *Hub) HandleFrames(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	hello := h.palette
	h.mu.RUnlock()
	h.serve(w, r, h.frames, hello)
}

func (h *Hub) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	hello := h.lastStatus
	h.mu.RUnlock()
	h.serve(w, r, h.status, hello)
}

// serve registers a subscriber on set and blocks until it goes away.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, set map[*client]bool, hello []byte) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	if hello != nil {
		c.send <- hello
	}
	h.mu.Lock()
	set[c] = true
	h.mu.Unlock()
	h.log.Debug().Str("client", c.id).Str("path", r.URL.Path).Msg("subscriber connected")

	go h.writePump(c)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(set, c)
	close(c.send)
	h.mu.Unlock()
	h.log.Debug().Str("client", c.id).Msg("subscriber gone")
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for b := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug().Err(err).Str("client", c.id).Msg("write")
			return
		}
	}
}

type Health struct {
	FrameID       uint64      `json:"frame_id"`
	UptimeS       float64     `json:"uptime_s"`
	Template      template.ID `json:"template"`
	Generation    uint64      `json:"generation"`
	Count         int         `json:"count"`
	FPS           int         `json:"fps"`
	FrameClients  int         `json:"frame_clients"`
	StatusClients int         `json:"status_clients"`
	Sources       int         `json:"sources"`
	Gestures      uint64      `json:"gestures"`
	Malformed     uint64      `json:"malformed"`
}

func (h *Hub) Health() Health {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Health{
		FrameID:       h.frameID,
		UptimeS:       time.Since(h.start).Seconds(),
		Template:      h.template,
		Generation:    h.generation,
		Count:         h.count,
		FPS:           h.fps,
		FrameClients:  len(h.frames),
		StatusClients: len(h.status),
		Sources:       len(h.sources),
		Gestures:      h.gestures.Load(),
		Malformed:     h.malformed.Load(),
	}
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.Health())
}

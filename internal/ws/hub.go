package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coreman2200/ledstrip/internal/color"
)

// DefaultFrameThrottle caps preview traffic at about 20 frames a second.
const DefaultFrameThrottle = 50 * time.Millisecond

// Frame is the preview message sent on the frames socket.
type Frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	LEDs    int    `json:"leds"`
	RGB     []byte `json:"rgb"`
}

// Hub is an led.Driver that mirrors rendered frames to websocket clients.
type Hub struct {
	mu       sync.Mutex
	throttle time.Duration
	lastEmit time.Time
	frameID  uint64
	rgb      []byte
	b        *broadcaster
}

func NewHub(throttle time.Duration) *Hub {
	return &Hub{
		throttle: throttle,
		b:        newBroadcaster("frames", 1),
	}
}

// Write counts every frame but only encodes one per throttle interval, and
// only while someone is watching.
func (h *Hub) Write(frame []color.Color) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frameID++

	now := time.Now()
	if h.lastEmit.Add(h.throttle).After(now) || h.b.len() == 0 {
		return nil
	}
	h.lastEmit = now

	h.rgb = h.rgb[:0]
	for _, c := range frame {
		h.rgb = append(h.rgb, c.R, c.G, c.B)
	}
	msg, err := json.Marshal(Frame{T: now.UnixNano(), FrameID: h.frameID, LEDs: len(frame), RGB: h.rgb})
	if err != nil {
		return err
	}
	h.b.publish(msg)
	return nil
}

// Close disconnects every viewer.
func (h *Hub) Close() error {
	h.b.closeAll()
	return nil
}

// Run delivers frames until ctx is done.
func (h *Hub) Run(ctx context.Context) { h.b.run(ctx) }

func (h *Hub) Clients() int { return h.b.len() }

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.b.serve(conn, nil)
}

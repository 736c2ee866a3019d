// Package ws exposes the strip over HTTP: attribute writes on a control
// socket, a live preview, pushed diagnostics and a health report.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/ledstrip/internal/diagnostics"
	"github.com/coreman2200/ledstrip/internal/render"
	"github.com/coreman2200/ledstrip/internal/transport"
)

var ErrEmptyWrite = errors.New("ws: empty binary write")

// StatusSource reports the renderer's latest published status.
type StatusSource interface {
	Status() render.Status
}

// Writer accepts attribute writes; *transport.Adapter implements it.
type Writer interface {
	Write(ev transport.WriteEvent) error
}

type Options struct {
	Driver  string
	NumLEDs int
	// Dropped, if set, reports how many commands the mailbox has discarded.
	Dropped func() uint64
}

type Server struct {
	writer    Writer
	status    StatusSource
	opts      Options
	startTime time.Time
	hub       *Hub
	diag      *broadcaster
}

func NewServer(w Writer, status StatusSource, hub *Hub, opts Options) *Server {
	if hub == nil {
		hub = NewHub(DefaultFrameThrottle)
	}
	return &Server{
		writer:    w,
		status:    status,
		opts:      opts,
		startTime: time.Now(),
		hub:       hub,
		diag:      newBroadcaster("diag", 64),
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// Report queues d for every diag client. It never blocks.
func (s *Server) Report(d diag.Diagnostic) {
	b, err := json.Marshal(d)
	if err != nil {
		log.Warn().Err(err).Str("code", d.Code).Msg("diagnostic encode")
		return
	}
	s.diag.publish(b)
}

func (s *Server) DiagClients() int { return s.diag.len() }

// Run pumps diagnostics and preview frames until ctx is done.
func (s *Server) Run(ctx context.Context) {
	go s.hub.Run(ctx)
	s.diag.run(ctx)
}

// Routes returns the HTTP handler with every endpoint mounted.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/frames", s.hub.HandleWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return withCORS(mux)
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.diag.serve(conn, nil)
}

// ControlMessage is the text form of an attribute write. Attr is the
// attribute name; Data is base64 in JSON.
type ControlMessage struct {
	Attr string `json:"attr"`
	Data []byte `json:"data"`
}

// ControlReply answers every control message.
type ControlReply struct {
	OK       bool     `json:"ok"`
	Error    string   `json:"error,omitempty"`
	Topology Topology `json:"topology"`
}

type Attribute struct {
	Handle uint8  `json:"handle"`
	Name   string `json:"name"`
	UUID   string `json:"uuid"`
	Size   int    `json:"size"`
}

type Topology struct {
	Device     string      `json:"device"`
	Service    string      `json:"service"`
	Attributes []Attribute `json:"attributes"`
	LEDs       int         `json:"leds"`
	Driver     string      `json:"driver"`
}

func (s *Server) topology() Topology {
	top := Topology{
		Device:  transport.DeviceName,
		Service: transport.ServiceUUID.String(),
		LEDs:    s.opts.NumLEDs,
		Driver:  s.opts.Driver,
	}
	for _, c := range transport.Characteristics() {
		top.Attributes = append(top.Attributes, Attribute{
			Handle: uint8(c.Attr),
			Name:   c.Name,
			UUID:   c.UUID.String(),
			Size:   c.Size,
		})
	}
	return top
}

// HandleControlWS reads attribute writes. A binary message is the attribute
// handle followed by the payload; a text message is a ControlMessage.
func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	peer := conn.RemoteAddr().String()
	log.Info().Str("peer", peer).Msg("control connected")
	defer log.Info().Str("peer", peer).Msg("control disconnected")

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var reply ControlReply
		ev, err := parseControl(mt, data)
		if err == nil {
			err = s.writer.Write(ev)
		}
		if err != nil {
			reply.Error = err.Error()
		} else {
			reply.OK = true
		}
		reply.Topology = s.topology()

		b, _ := json.Marshal(reply)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

func parseControl(mt int, data []byte) (transport.WriteEvent, error) {
	if mt == websocket.BinaryMessage {
		if len(data) == 0 {
			return transport.WriteEvent{}, ErrEmptyWrite
		}
		return transport.WriteEvent{Attr: transport.Attribute(data[0]), Data: data[1:]}, nil
	}
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return transport.WriteEvent{}, fmt.Errorf("ws: bad control message: %w", err)
	}
	c, ok := transport.LookupName(msg.Attr)
	if !ok {
		return transport.WriteEvent{}, fmt.Errorf("%w: %q", transport.ErrUnknownAttribute, msg.Attr)
	}
	return transport.WriteEvent{Attr: c.Attr, Data: msg.Data}, nil
}

// Health is served on /health.
type Health struct {
	FrameID    uint64  `json:"frame_id"`
	UptimeS    float64 `json:"uptime_s"`
	Count      int     `json:"count"`
	Driver     string  `json:"driver"`
	Color      string  `json:"color"`
	Brightness float32 `json:"brightness"`
	Skip       uint8   `json:"skip"`
	Animation  string  `json:"animation"`
	Speed      float32 `json:"speed"`
	LiveStars  int     `json:"live_stars"`
	Dropped    uint64  `json:"dropped"`
	Viewers    int     `json:"viewers"`
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.status.Status()
	resp := Health{
		FrameID:    st.Frame,
		UptimeS:    time.Since(s.startTime).Seconds(),
		Count:      s.opts.NumLEDs,
		Driver:     s.opts.Driver,
		Color:      st.BaseColor.String(),
		Brightness: st.Brightness,
		Skip:       st.Skip,
		Animation:  st.Animation.String(),
		Speed:      st.Speed,
		LiveStars:  st.LiveStars,
		Viewers:    s.hub.Clients(),
	}
	if s.opts.Dropped != nil {
		resp.Dropped = s.opts.Dropped()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}

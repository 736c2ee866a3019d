package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 200 * time.Millisecond

// broadcaster fans text messages out to a set of sockets from one pump
// goroutine. Publishers never block; when the queue is full the oldest
// message is dropped.
type broadcaster struct {
	name    string
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	out     chan []byte
	dropped uint64
}

func newBroadcaster(name string, depth int) *broadcaster {
	return &broadcaster{
		name:    name,
		clients: map[*websocket.Conn]bool{},
		out:     make(chan []byte, max(1, depth)),
	}
}

func (b *broadcaster) publish(msg []byte) {
	for {
		select {
		case b.out <- msg:
			return
		default:
		}
		select {
		case <-b.out:
			b.mu.Lock()
			b.dropped++
			b.mu.Unlock()
		default:
		}
	}
}

// serve registers conn, optionally greets it, then reads until the peer goes
// away. Incoming messages are discarded.
func (b *broadcaster) serve(conn *websocket.Conn, hello []byte) {
	b.mu.Lock()
	if hello != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
			b.mu.Unlock()
			conn.Close()
			return
		}
	}
	b.clients[conn] = true
	b.mu.Unlock()
	log.Debug().Str("socket", b.name).Str("peer", conn.RemoteAddr().String()).Msg("client connected")

	go func() {
		defer b.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (b *broadcaster) remove(conn *websocket.Conn) {
	b.mu.Lock()
	_, ok := b.clients[conn]
	delete(b.clients, conn)
	b.mu.Unlock()
	if ok {
		conn.Close()
		log.Debug().Str("socket", b.name).Msg("client disconnected")
	}
}

func (b *broadcaster) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// run pumps queued messages to every client until ctx is done.
func (b *broadcaster) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			return
		case msg := <-b.out:
			b.send(msg)
		}
	}
}

func (b *broadcaster) send(msg []byte) {
	b.mu.Lock()
	var failed []*websocket.Conn
	for c := range b.clients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug().Err(err).Str("socket", b.name).Msg("write")
			failed = append(failed, c)
		}
	}
	b.mu.Unlock()
	for _, c := range failed {
		b.remove(c)
	}
}

func (b *broadcaster) closeAll() {
	b.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(b.clients))
	for c := range b.clients {
		conns = append(conns, c)
	}
	b.mu.Unlock()
	for _, c := range conns {
		b.remove(c)
	}
}

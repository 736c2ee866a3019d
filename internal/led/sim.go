package led

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledstrip/internal/color"
)

// Sim discards frames, logging a compact summary at most once per interval.
type Sim struct {
	mu      sync.Mutex
	count   uint64
	last    []color.Color
	every   time.Duration
	lastLog time.Time
	closed  bool
}

func NewSim() *Sim { return &Sim{every: time.Second} }

func (d *Sim) Write(frame []color.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.count++
	d.last = append(d.last[:0], frame...)

	now := time.Now()
	if now.Sub(d.lastLog) < d.every {
		return nil
	}
	d.lastLog = now

	var r, g, b float64
	lit := 0
	for _, c := range frame {
		r += float64(c.R)
		g += float64(c.G)
		b += float64(c.B)
		if !c.IsBlack() {
			lit++
		}
	}
	n := float64(max(1, len(frame)))
	ev := log.Debug().
		Uint64("frame", d.count).
		Int("lit", lit).
		Floats64("avg", []float64{r / n, g / n, b / n}).
		Float64("amps", EstimateCurrent(frame))
	if len(frame) > 0 {
		ev = ev.Stringer("first", frame[0])
	}
	ev.Msg("sim frame")
	return nil
}

func (d *Sim) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

func (d *Sim) Count() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Last returns a copy of the most recent frame.
func (d *Sim) Last() []color.Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]color.Color(nil), d.last...)
}

package led

import (
	"sync/atomic"

	"github.com/coreman2200/ledstrip/internal/color"
)

// Strip collects one wire word per pixel and hands every completed frame to
// a Driver. It satisfies lighting.Sink and is owned by the render goroutine.
type Strip struct {
	drv      Driver
	frame    []color.Color
	next     int
	whiteCap float64
	frames   atomic.Uint64
}

// NewStrip returns a strip of n pixels. whiteCap in (0,1) limits each pixel's
// channel sum; anything else disables the cap.
func NewStrip(drv Driver, n int, whiteCap float64) *Strip {
	return &Strip{
		drv:      drv,
		frame:    make([]color.Color, n),
		whiteCap: whiteCap,
	}
}

// Send stores the next pixel. The driver error, if any, is returned from the
// Send that completes the frame.
func (s *Strip) Send(word uint32) error {
	s.frame[s.next] = color.FromWire(word)
	s.next++
	if s.next < len(s.frame) {
		return nil
	}
	s.next = 0
	ApplyWhiteCap(s.frame, s.whiteCap)
	s.frames.Add(1)
	return s.drv.Write(s.frame)
}

func (s *Strip) Len() int { return len(s.frame) }

// Frames is the number of completed frames. Safe from any goroutine.
func (s *Strip) Frames() uint64 { return s.frames.Load() }

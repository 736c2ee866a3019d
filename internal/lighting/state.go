// Package lighting holds the renderer's live configuration and the
// animations that draw over it.
package lighting

import (
	"math/rand/v2"

	"github.com/coreman2200/ledstrip/internal/color"
)

// State is the renderer's live configuration. It is owned by the render
// loop and never shared.
type State struct {
	BaseColor  color.Color
	Brightness float32 // 0..1, from an 8-bit wire value
	Skip       uint8   // light one pixel of every Skip+1
}

func DefaultState(base color.Color) State {
	return State{
		BaseColor:  base,
		Brightness: 1.0,
		Skip:       0,
	}
}

// Sink receives one packed wire word per pixel, in pixel order.
type Sink interface {
	Send(word uint32) error
}

// Canvas is what an animation draws with on each tick.
type Canvas struct {
	State State
	Scene Scene
	Rand  *rand.Rand
	Sink  Sink
}

// emit sends c and remembers the first error without stopping the frame.
func (cv *Canvas) emit(c color.Color, errp *error) {
	if err := cv.Sink.Send(c.Wire()); err != nil && *errp == nil {
		*errp = err
	}
}

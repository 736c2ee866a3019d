package render

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledstrip/internal/color"
	"github.com/coreman2200/ledstrip/internal/command"
	"github.com/coreman2200/ledstrip/internal/lighting"
)

const (
	// DefaultBaseRate converts elapsed seconds into animation time.
	DefaultBaseRate = 40.0
	// DefaultTickQuantum is the pause between frames.
	DefaultTickQuantum = 500 * time.Microsecond
)

var (
	ErrNoPixels = errors.New("render: strip needs at least one pixel")
	ErrNoSink   = errors.New("render: sink is nil")
	ErrNoInbox  = errors.New("render: mailbox is nil")
)

// Options tune a Renderer. Zero fields take the defaults.
type Options struct {
	NumLEDs     int
	BaseColor   color.Color
	BaseRate    float32
	TickQuantum time.Duration
	Rand        *rand.Rand

	// OnCommand, if set, is called after each command is applied with
	// whether it changed anything.
	OnCommand func(cmd command.Command, applied bool)
	// OnSinkError, if set, is called from Run when the sink starts failing
	// (with the error) and again when it recovers (with nil).
	OnSinkError func(err error)
}

// Status is a read-only snapshot of the renderer, published once per tick.
type Status struct {
	Frame      uint64
	BaseColor  color.Color
	Brightness float32
	Skip       uint8
	Animation  lighting.Kind
	Speed      float32
	LiveStars  int
}

// Renderer owns the strip's live state and draws one frame per tick.
type Renderer struct {
	numLEDs int
	sink    lighting.Sink
	inbox   *command.Mailbox

	state lighting.State
	anim  lighting.Animation
	scene lighting.Scene
	rng   *rand.Rand

	speed    float32
	baseRate float32
	quantum  time.Duration
	frame    uint64

	onCommand   func(command.Command, bool)
	onSinkError func(error)
	status      atomic.Pointer[Status]
}

// NewRenderer returns a renderer drawing opts.NumLEDs pixels into sink and
// taking commands from inbox.
func NewRenderer(sink lighting.Sink, inbox *command.Mailbox, opts Options) (*Renderer, error) {
	if opts.NumLEDs <= 0 {
		return nil, ErrNoPixels
	}
	if sink == nil {
		return nil, ErrNoSink
	}
	if inbox == nil {
		return nil, ErrNoInbox
	}
	if opts.BaseRate == 0 {
		opts.BaseRate = DefaultBaseRate
	}
	if opts.TickQuantum == 0 {
		opts.TickQuantum = DefaultTickQuantum
	}
	if opts.Rand == nil {
		opts.Rand = EntropyRand()
	}
	r := &Renderer{
		numLEDs:   opts.NumLEDs,
		sink:      sink,
		inbox:     inbox,
		state:     lighting.DefaultState(opts.BaseColor),
		scene:     lighting.NewScene(opts.NumLEDs),
		rng:       opts.Rand,
		speed:     1.0,
		baseRate:  opts.BaseRate,
		quantum:   opts.TickQuantum,
		onCommand: opts.OnCommand,
	}
	r.onSinkError = opts.OnSinkError
	r.publish()
	return r, nil
}

// EntropyRand returns a generator seeded from the OS entropy source.
func EntropyRand() *rand.Rand {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		log.Warn().Err(err).Msg("entropy read failed; seeding from clock")
		binary.LittleEndian.PutUint64(seed[:], uint64(time.Now().UnixNano()))
	}
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:])))
}

func (r *Renderer) NumLEDs() int { return r.numLEDs }

// State returns the live configuration. Only safe from the render goroutine
// or when the loop is not running.
func (r *Renderer) State() lighting.State { return r.state }

func (r *Renderer) Animation() lighting.Animation { return r.anim }

func (r *Renderer) Scene() lighting.Scene { return r.scene }

func (r *Renderer) Speed() float32 { return r.speed }

// Status may be called from any goroutine.
func (r *Renderer) Status() Status { return *r.status.Load() }

// Run ticks until ctx is done. Sink errors are logged, never fatal.
func (r *Renderer) Run(ctx context.Context) error {
	log.Info().Int("leds", r.numLEDs).Dur("quantum", r.quantum).Msg("render loop starting")
	timer := time.NewTimer(r.quantum)
	defer timer.Stop()

	previous := time.Now()
	failing := false
	for {
		if err := r.Step(time.Since(previous)); err != nil {
			if !failing {
				log.Warn().Err(err).Msg("sink write failed")
				if r.onSinkError != nil {
					r.onSinkError(err)
				}
			}
			failing = true
		} else if failing {
			log.Info().Msg("sink recovered")
			if r.onSinkError != nil {
				r.onSinkError(nil)
			}
			failing = false
		}

		timer.Reset(r.quantum)
		select {
		case <-ctx.Done():
			log.Info().Uint64("frames", r.frame).Msg("render loop stopped")
			return ctx.Err()
		case <-timer.C:
		}
		previous = time.Now()
	}
}

// Step runs one tick: apply at most one pending command, then draw a full
// frame. elapsed is the wall time since the end of the previous tick.
func (r *Renderer) Step(elapsed time.Duration) error {
	if cmd, ok := r.inbox.TryReceive(); ok {
		applied := r.apply(cmd)
		log.Debug().Stringer("cmd", cmd).Bool("applied", applied).Msg("command")
		if r.onCommand != nil {
			r.onCommand(cmd, applied)
		}
	}

	var err error
	if r.anim.Active() {
		delta := float32(elapsed.Seconds()) * r.baseRate * r.speed
		err = r.anim.Advance(delta, &lighting.Canvas{
			State: r.state,
			Scene: r.scene,
			Rand:  r.rng,
			Sink:  r.sink,
		})
	} else {
		err = r.drawStatic()
	}
	r.frame++
	r.publish()
	return err
}

// apply changes state for one command and reports whether anything changed.
// Malformed commands are ignored.
func (r *Renderer) apply(cmd command.Command) bool {
	switch cmd.Kind {
	case command.SetColor:
		r.state.BaseColor = cmd.Color
	case command.SetBrightness:
		r.state.Brightness = float32(cmd.Value) / 255
	case command.SetSkip:
		r.state.Skip = cmd.Value
	case command.UseAnimation:
		a, ok := lighting.FromEncoding(cmd.Animation, r.scene, r.rng)
		if !ok {
			return false
		}
		r.anim = a
	case command.SetAnimationSpeed:
		if math.IsNaN(float64(cmd.Speed)) || math.IsInf(float64(cmd.Speed), 0) {
			return false
		}
		r.speed = cmd.Speed
	default:
		return false
	}
	return true
}

// drawStatic lights one pixel in every skip+1, starting with the first.
func (r *Renderer) drawStatic() error {
	lit := r.state.BaseColor.Dim(r.state.Brightness).Wire()
	black := color.Black.Wire()

	var err error
	n := uint8(0)
	for i := 0; i < r.numLEDs; i++ {
		w := black
		if n == 0 {
			w = lit
			n = r.state.Skip
		} else {
			n--
		}
		if e := r.sink.Send(w); e != nil && err == nil {
			err = e
		}
	}
	return err
}

func (r *Renderer) publish() {
	st := &Status{
		Frame:      r.frame,
		BaseColor:  r.state.BaseColor,
		Brightness: r.state.Brightness,
		Skip:       r.state.Skip,
		Animation:  r.anim.Kind(),
		Speed:      r.speed,
	}
	if r.anim.Active() {
		st.LiveStars = len(r.scene) - r.scene.Count(lighting.Dead)
	}
	r.status.Store(st)
}

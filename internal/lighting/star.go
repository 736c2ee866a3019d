package lighting

import (
	"fmt"

	"github.com/x448/float16"
)

type Phase uint8

const (
	Dead Phase = iota
	Starting
	Decaying
)

func (p Phase) String() string {
	switch p {
	case Dead:
		return "dead"
	case Starting:
		return "starting"
	case Decaying:
		return "decaying"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Star is one pixel's twinkle cell. Timers are kept in half precision to
// keep the per-pixel footprint small; values carry roughly three significant
// digits.
//
//	Dead
//	Starting{target, at}: at grows by delta until it reaches target
//	Decaying(value):      value shrinks by delta until it reaches zero
type Star struct {
	phase  Phase
	target float16.Float16
	value  float16.Float16 // "at" while starting, remaining light while decaying
}

var zero16 = float16.Frombits(0)

func DeadStar() Star {
	return Star{}
}

func StartingStar(target float32) Star {
	return Star{phase: Starting, target: float16.Fromfloat32(target), value: zero16}
}

func DecayingStar(f float32) Star {
	return Star{phase: Decaying, value: float16.Fromfloat32(f)}
}

func (s Star) Phase() Phase    { return s.phase }
func (s Star) IsDead() bool    { return s.phase == Dead }
func (s Star) Target() float32 { return s.target.Float32() }

// Tick advances the star by delta and reports whether it died on this tick.
func (s *Star) Tick(delta float32) bool {
	d := float16.Fromfloat32(delta).Float32()
	switch s.phase {
	case Starting:
		s.value = float16.Fromfloat32(s.value.Float32() + d)
		if s.value.Float32() >= s.target.Float32() {
			*s = Star{phase: Decaying, value: s.target}
		}
		return false
	case Decaying:
		s.value = float16.Fromfloat32(s.value.Float32() - d)
		if s.value.Float32() <= 0 {
			*s = DeadStar()
			return true
		}
		return false
	}
	return false
}

// Brightness is the star's luminance multiplier. It is not clamped.
func (s Star) Brightness() float32 {
	if s.phase == Dead {
		return 0
	}
	return s.value.Float32()
}

func (s Star) String() string {
	switch s.phase {
	case Starting:
		return fmt.Sprintf("starting{target: %g, at: %g}", s.target.Float32(), s.value.Float32())
	case Decaying:
		return fmt.Sprintf("decaying(%g)", s.value.Float32())
	}
	return "dead"
}

// Scene is the per-pixel star arena. The renderer owns it and lends it to
// whichever animation is active.
type Scene []Star

func NewScene(n int) Scene {
	return make(Scene, n)
}

func (sc Scene) Reset() {
	for i := range sc {
		sc[i] = DeadStar()
	}
}

func (sc Scene) Count(p Phase) int {
	n := 0
	for _, s := range sc {
		if s.phase == p {
			n++
		}
	}
	return n
}

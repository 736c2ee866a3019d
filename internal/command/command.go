// Package command defines the messages sent from the control transport to
// the renderer and the mailbox that carries them.
package command

import (
	"fmt"

	"github.com/coreman2200/ledstrip/internal/color"
)

// AnimationSize is the length of an encoded animation selection.
const AnimationSize = 16

type Kind uint8

const (
	Noop Kind = iota
	SetColor
	SetBrightness
	SetSkip
	UseAnimation
	SetAnimationSpeed
)

func (k Kind) String() string {
	switch k {
	case Noop:
		return "noop"
	case SetColor:
		return "set_color"
	case SetBrightness:
		return "set_brightness"
	case SetSkip:
		return "set_skip"
	case UseAnimation:
		return "use_animation"
	case SetAnimationSpeed:
		return "set_animation_speed"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Command is a closed union; only the field matching Kind is meaningful.
// Build values with the constructors below.
type Command struct {
	Kind      Kind
	Color     color.Color
	Value     uint8 // brightness or skip
	Animation [AnimationSize]byte
	Speed     float32
}

func NewNoop() Command                  { return Command{Kind: Noop} }
func NewSetColor(c color.Color) Command { return Command{Kind: SetColor, Color: c} }
func NewSetBrightness(b uint8) Command  { return Command{Kind: SetBrightness, Value: b} }
func NewSetSkip(s uint8) Command        { return Command{Kind: SetSkip, Value: s} }

func NewUseAnimation(enc [AnimationSize]byte) Command {
	return Command{Kind: UseAnimation, Animation: enc}
}

func NewSetAnimationSpeed(speed float32) Command {
	return Command{Kind: SetAnimationSpeed, Speed: speed}
}

func (c Command) String() string {
	switch c.Kind {
	case SetColor:
		return fmt.Sprintf("%s(%s)", c.Kind, c.Color)
	case SetBrightness, SetSkip:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Value)
	case UseAnimation:
		return fmt.Sprintf("%s(%x)", c.Kind, c.Animation)
	case SetAnimationSpeed:
		return fmt.Sprintf("%s(%g)", c.Kind, c.Speed)
	}
	return c.Kind.String()
}

package lighting

import (
	"fmt"
	"math/rand/v2"
)

// EncodingSize is the length of an encoded animation selection.
const EncodingSize = 16

type Kind uint8

const (
	KindNone    Kind = 0
	KindTwinkle Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTwinkle:
		return "twinkle"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Animation is one of a closed set of effects. The zero value is no
// animation.
type Animation struct {
	kind    Kind
	twinkle Twinkle
}

// FromEncoding builds the animation selected by enc[0]; the remaining bytes
// are that animation's parameters. It reports false for unknown selections
// and leaves scene untouched in that case.
//
//	1: twinkle, enc[1] = initial star count
func FromEncoding(enc [EncodingSize]byte, scene Scene, rng *rand.Rand) (Animation, bool) {
	switch Kind(enc[0]) {
	case KindTwinkle:
		return Animation{kind: KindTwinkle, twinkle: NewTwinkle(enc[1], scene, rng)}, true
	}
	return Animation{}, false
}

func (a Animation) Kind() Kind     { return a.kind }
func (a Animation) Active() bool   { return a.kind != KindNone }
func (a Animation) String() string { return a.kind.String() }

// Twinkle returns the twinkle payload when a is a twinkle.
func (a Animation) Twinkle() (Twinkle, bool) {
	return a.twinkle, a.kind == KindTwinkle
}

// Advance moves the scene forward by delta and writes exactly one color per
// pixel to the canvas sink, in pixel order. delta may be zero.
func (a Animation) Advance(delta float32, cv *Canvas) error {
	switch a.kind {
	case KindTwinkle:
		return a.twinkle.advance(delta, cv)
	}
	return nil
}

package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/coreman2200/ledstrip/internal/color"
	"github.com/coreman2200/ledstrip/internal/command"
	"github.com/coreman2200/ledstrip/internal/lighting"
)

var (
	ErrUnknownAttribute = errors.New("transport: unknown attribute")
	ErrPayloadLength    = errors.New("transport: wrong payload length")
)

// WriteEvent is one write to an attribute.
type WriteEvent struct {
	Attr Attribute
	Data []byte
}

func (ev WriteEvent) String() string {
	return fmt.Sprintf("%s[% x]", ev.Attr, ev.Data)
}

// Decode turns a write into a command. A speed payload that is the wrong size
// or not a finite number decodes to Noop rather than an error.
func Decode(ev WriteEvent) (command.Command, error) {
	c, ok := Lookup(ev.Attr)
	if !ok {
		return command.NewNoop(), fmt.Errorf("%w: %d", ErrUnknownAttribute, uint8(ev.Attr))
	}
	if ev.Attr == AttrSpeed {
		if len(ev.Data) != c.Size {
			return command.NewNoop(), nil
		}
		speed := math.Float32frombits(binary.LittleEndian.Uint32(ev.Data))
		if math.IsNaN(float64(speed)) || math.IsInf(float64(speed), 0) {
			return command.NewNoop(), nil
		}
		return command.NewSetAnimationSpeed(speed), nil
	}
	if len(ev.Data) != c.Size {
		return command.NewNoop(), fmt.Errorf("%w: %s wants %d bytes, got %d", ErrPayloadLength, c.Name, c.Size, len(ev.Data))
	}

	switch ev.Attr {
	case AttrBaseColor:
		return command.NewSetColor(color.New(ev.Data[0], ev.Data[1], ev.Data[2])), nil
	case AttrBrightness:
		return command.NewSetBrightness(ev.Data[0]), nil
	case AttrSkip:
		return command.NewSetSkip(ev.Data[0]), nil
	default:
		var enc [command.AnimationSize]byte
		copy(enc[:], ev.Data)
		return command.NewUseAnimation(enc), nil
	}
}

func EncodeColor(c color.Color) WriteEvent {
	return WriteEvent{Attr: AttrBaseColor, Data: []byte{c.R, c.G, c.B}}
}

func EncodeBrightness(b uint8) WriteEvent { return WriteEvent{Attr: AttrBrightness, Data: []byte{b}} }
func EncodeSkip(s uint8) WriteEvent       { return WriteEvent{Attr: AttrSkip, Data: []byte{s}} }

func EncodeSpeed(f float32) WriteEvent {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, math.Float32bits(f))
	return WriteEvent{Attr: AttrSpeed, Data: data}
}

func EncodeAnimation(enc [command.AnimationSize]byte) WriteEvent {
	return WriteEvent{Attr: AttrAnimation, Data: append([]byte(nil), enc[:]...)}
}

// EncodeTwinkle selects the twinkle animation with the given star count.
func EncodeTwinkle(stars uint8) WriteEvent {
	var enc [command.AnimationSize]byte
	enc[0] = byte(lighting.KindTwinkle)
	enc[1] = stars
	return EncodeAnimation(enc)
}

package color

import (
	"encoding/hex"
	"errors"
	"fmt"
	imgcolor "image/color"
	"strings"
)

// Bit offsets of each channel inside the wire word pushed to the strip.
// The layout is fixed by the LED hardware: green in the low byte, then red,
// then blue, top byte unused.
const (
	GREEN_OFFSET uint8 = 0x00
	RED_OFFSET   uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x10
)

const wireMask uint32 = 0x00FFFFFF

var ErrBadHex = errors.New("color: expected 6 hex digits")

// Color is an 8-bit per channel RGB value.
type Color struct {
	R, G, B uint8
}

var (
	Black  = New(0, 0, 0)
	Red    = New(255, 0, 0)
	Green  = New(0, 255, 0)
	Blue   = New(0, 0, 255)
	Yellow = New(255, 255, 0)
	Cyan   = New(0, 255, 255)
	Purple = New(255, 0, 255)
	White  = New(255, 255, 255)
)

func New(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

func (c Color) WithRed(r uint8) Color {
	c.R = r
	return c
}

func (c Color) WithGreen(g uint8) Color {
	c.G = g
	return c
}

func (c Color) WithBlue(b uint8) Color {
	c.B = b
	return c
}

// Dim scales every channel by factor and truncates toward zero.
// Negative and NaN factors give black; results saturate at 255.
func (c Color) Dim(factor float32) Color {
	if !(factor > 0) {
		return Black
	}
	return Color{
		R: scale(c.R, factor),
		G: scale(c.G, factor),
		B: scale(c.B, factor),
	}
}

func scale(ch uint8, factor float32) uint8 {
	if ch == 0 {
		return 0
	}
	v := float32(ch) * factor
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func setcolor(c uint32, n uint8, off uint8) uint32 {
	var val uint32 = uint32(n) << off
	var mask uint32 = 0xFF << off
	return (c & (^mask)) | val
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & mask) >> off)
}

// Wire packs the color into the word the strip hardware expects.
func (c Color) Wire() uint32 {
	var w uint32
	w = setcolor(w, c.G, GREEN_OFFSET)
	w = setcolor(w, c.R, RED_OFFSET)
	w = setcolor(w, c.B, BLUE_OFFSET)
	return w
}

// FromWire is the inverse of Wire. The unused top byte is ignored.
func FromWire(w uint32) Color {
	w &= wireMask
	return Color{
		R: getcolor(w, RED_OFFSET),
		G: getcolor(w, GREEN_OFFSET),
		B: getcolor(w, BLUE_OFFSET),
	}
}

func (c Color) NRGBA() imgcolor.NRGBA {
	return imgcolor.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

func (c Color) IsBlack() bool {
	return c == Black
}

func (c Color) String() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex reads "rrggbb", optionally prefixed with '#' or "0x".
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "#"), "0x")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %v", ErrBadHex, err)
	}
	return New(b[0], b[1], b[2]), nil
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseHex(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

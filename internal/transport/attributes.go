// Package transport maps attribute writes arriving on a control channel to
// renderer commands.
package transport

import (
	"errors"
	"fmt"
	"strings"
)

// DeviceName is what the controller advertises itself as.
const DeviceName = "mansion lighting"

var ErrNameTooLong = errors.New("transport: uuid name longer than 16 bytes")

// UUID is a 128-bit attribute identifier, stored least significant byte
// first.
type UUID [16]byte

// NewUUID derives an identifier from a short ASCII name: the name's bytes are
// written backwards into the tail of 16 zero bytes, so the printed form spells
// the name.
func NewUUID(name string) (UUID, error) {
	var u UUID
	if len(name) > len(u) {
		return u, fmt.Errorf("%w: %q", ErrNameTooLong, name)
	}
	for i := 0; i < len(name); i++ {
		u[len(u)-1-i] = name[i]
	}
	return u, nil
}

func mustUUID(name string) UUID {
	u, err := NewUUID(name)
	if err != nil {
		panic(err)
	}
	return u
}

// String prints the identifier most significant byte first.
func (u UUID) String() string {
	var sb strings.Builder
	for i := len(u) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%02x", u[i])
	}
	return sb.String()
}

// Attribute is the handle of a writable characteristic.
type Attribute uint8

const (
	AttrBaseColor Attribute = iota + 1
	AttrBrightness
	AttrSkip
	AttrSpeed
	AttrAnimation
)

// Characteristic describes one writable attribute.
type Characteristic struct {
	Attr Attribute `json:"handle"`
	Name string    `json:"name"`
	UUID UUID      `json:"-"`
	Size int       `json:"size"`
}

// ServiceUUID identifies the lighting service.
var ServiceUUID = mustUUID("michaels mansion")

var characteristics = []Characteristic{
	{AttrBaseColor, "base color", mustUUID("base color"), 3},
	{AttrBrightness, "brightness", mustUUID("brightness"), 1},
	{AttrSkip, "skip", mustUUID("skip"), 1},
	{AttrSpeed, "speed", mustUUID("speed"), 4},
	{AttrAnimation, "animation", mustUUID("animation"), 16},
}

// Characteristics returns the attribute table in handle order.
func Characteristics() []Characteristic {
	return append([]Characteristic(nil), characteristics...)
}

func Lookup(a Attribute) (Characteristic, bool) {
	for _, c := range characteristics {
		if c.Attr == a {
			return c, true
		}
	}
	return Characteristic{}, false
}

// LookupName accepts the attribute name with spaces or underscores.
func LookupName(name string) (Characteristic, bool) {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", " ")
	for _, c := range characteristics {
		if c.Name == name {
			return c, true
		}
	}
	return Characteristic{}, false
}

func (a Attribute) String() string {
	if c, ok := Lookup(a); ok {
		return c.Name
	}
	return fmt.Sprintf("attr(%d)", uint8(a))
}

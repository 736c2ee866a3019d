package led

import (
	"fmt"
	"strings"

	"github.com/coreman2200/ledstrip/internal/color"
)

// OrderWire sends each pixel's packed wire word least significant bit first:
// eight green bits, eight red, eight blue.
const OrderWire = "wire"

// NRZEncoder expands pixels for an NRZ strip clocked by SPI. Every data bit
// becomes three SPI bits: 110 for one, 100 for zero.
type NRZEncoder struct {
	order [3]byte
	wire  bool
	msb   [256][3]byte
	lsb   [256][3]byte
}

// NewNRZEncoder accepts OrderWire (or "") or a channel order such as "GRB",
// in which case each channel is sent most significant bit first.
func NewNRZEncoder(order string) (*NRZEncoder, error) {
	e := &NRZEncoder{}
	order = strings.ToUpper(strings.TrimSpace(order))
	switch {
	case order == "" || order == strings.ToUpper(OrderWire):
		e.wire = true
	case len(order) == 3 && strings.Count(order, "R") == 1 && strings.Count(order, "G") == 1 && strings.Count(order, "B") == 1:
		e.order = [3]byte{order[0], order[1], order[2]}
	default:
		return nil, fmt.Errorf("led: bad color order %q", order)
	}

	for v := 0; v < 256; v++ {
		var msb, lsb uint32
		for i := 0; i < 8; i++ {
			msb = msb<<3 | symbol(v>>(7-i)&1)
			lsb = lsb<<3 | symbol(v>>i&1)
		}
		e.msb[v] = [3]byte{byte(msb >> 16), byte(msb >> 8), byte(msb)}
		e.lsb[v] = [3]byte{byte(lsb >> 16), byte(lsb >> 8), byte(lsb)}
	}
	return e, nil
}

func symbol(bit int) uint32 {
	if bit == 1 {
		return 0b110
	}
	return 0b100
}

// Encode appends 9 bytes per pixel to dst.
func (e *NRZEncoder) Encode(dst []byte, frame []color.Color) []byte {
	for _, c := range frame {
		if e.wire {
			w := c.Wire()
			for k := 0; k < 3; k++ {
				dst = append(dst, e.lsb[byte(w>>(8*k))][:]...)
			}
			continue
		}
		for _, ch := range e.order {
			var v uint8
			switch ch {
			case 'R':
				v = c.R
			case 'G':
				v = c.G
			case 'B':
				v = c.B
			}
			dst = append(dst, e.msb[v][:]...)
		}
	}
	return dst
}

// ResetBytes is how many zero bytes hold the line low for resetUs at speedHz.
func ResetBytes(speedHz, resetUs int) int {
	bits := int64(speedHz) * int64(resetUs) / 1_000_000
	return int((bits + 7) / 8)
}

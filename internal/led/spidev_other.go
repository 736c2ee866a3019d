//go:build !linux

package led

import (
	"errors"

	"github.com/coreman2200/ledstrip/internal/color"
)

var errNoSPIDev = errors.New("spidev driver not supported on this platform")

type SPIDev struct{}

func NewSPIDev(spiDev string, count int, order string, speedHz, resetUs int) (*SPIDev, error) {
	return nil, errNoSPIDev
}

func (s *SPIDev) Write(frame []color.Color) error { return errNoSPIDev }

func (s *SPIDev) Close() error { return nil }

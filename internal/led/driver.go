// Package led turns rendered frames into output on a physical strip, a
// terminal or a simulation.
package led

import (
	"errors"

	"github.com/coreman2200/ledstrip/internal/color"
)

var ErrClosed = errors.New("led: driver closed")

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes one complete frame, pixel 0 first. Implementations must
	// not keep frame after returning.
	Write(frame []color.Color) error
	// Close releases resources and darkens the strip where possible.
	Close() error
}

// Multi writes every frame to each driver in turn. The first error is
// returned after all drivers have been written.
type Multi []Driver

func (m Multi) Write(frame []color.Color) error {
	var first error
	for _, d := range m {
		if err := d.Write(frame); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Close() error {
	var errs []error
	for _, d := range m {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

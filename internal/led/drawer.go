package led

import (
	"fmt"
	"image"
	"sync"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/ledstrip/internal/color"
)

// DefaultNRZFreq drives WS281x-style strips through nrzled.
const DefaultNRZFreq = 2500 * physic.KiloHertz

// Drawer writes frames through a periph display as a single row image.
type Drawer struct {
	mu     sync.Mutex
	d      display.Drawer
	img    *image.NRGBA
	closer func() error
	closed bool
}

// NewDrawer wraps any periph display that is n pixels wide.
func NewDrawer(d display.Drawer, n int) *Drawer {
	return &Drawer{d: d, img: image.NewNRGBA(image.Rect(0, 0, n, 1))}
}

// NewNRZ drives an NRZ strip of n pixels on an already opened SPI port.
func NewNRZ(p spi.Port, n int, freq physic.Frequency) (*Drawer, error) {
	if freq == 0 {
		freq = DefaultNRZFreq
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{NumPixels: n, Channels: 3, Freq: freq})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	if err := d.Halt(); err != nil {
		return nil, fmt.Errorf("nrzled halt: %w", err)
	}
	return NewDrawer(d, n), nil
}

// OpenNRZ opens the named SPI port, or the first one registered when name is
// empty. periph's host drivers must already be initialised.
func OpenNRZ(name string, n int, freq physic.Frequency) (*Drawer, error) {
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", name, err)
	}
	dr, err := NewNRZ(p, n, freq)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	dr.closer = p.Close
	log.Info().Str("port", p.String()).Int("leds", n).Stringer("freq", freq).Msg("nrz strip ready")
	return dr, nil
}

// NewConsole prints frames to the terminal as ANSI colored blocks.
func NewConsole(n int) *Drawer {
	return NewDrawer(screen.New(n), n)
}

func (dr *Drawer) Write(frame []color.Color) error {
	dr.mu.Lock()
	defer dr.mu.Unlock()
	if dr.closed {
		return ErrClosed
	}
	if len(frame) != dr.img.Rect.Dx() {
		return fmt.Errorf("led: frame has %d pixels, display has %d", len(frame), dr.img.Rect.Dx())
	}
	for i, c := range frame {
		dr.img.SetNRGBA(i, 0, c.NRGBA())
	}
	return dr.d.Draw(dr.d.Bounds(), dr.img, image.Point{})
}

func (dr *Drawer) String() string { return dr.d.String() }

// Close darkens the display and releases the port.
func (dr *Drawer) Close() error {
	dr.mu.Lock()
	defer dr.mu.Unlock()
	if dr.closed {
		return nil
	}
	dr.closed = true
	err := dr.d.Halt()
	if dr.closer != nil {
		if cerr := dr.closer(); err == nil {
			err = cerr
		}
	}
	return err
}

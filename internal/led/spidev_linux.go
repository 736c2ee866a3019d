//go:build linux

package led

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/coreman2200/ledstrip/internal/color"
)

const (
	spiIOCWriteMode        = 0x40016b01
	spiIOCWriteBitsPerWord = 0x40016b03
	spiIOCWriteMaxSpeedHz  = 0x40046b04
)

// SPIDev writes NRZ-encoded frames straight to a spidev node.
type SPIDev struct {
	mu    sync.Mutex
	f     *os.File
	count int
	enc   *NRZEncoder
	buf   []byte
	reset int
}

// NewSPIDev opens spiDev (e.g. "/dev/spidev0.0"). speedHz in the
// 2.4–3.2MHz range suits the 3x expansion. resetUs is the latch time.
func NewSPIDev(spiDev string, count int, order string, speedHz, resetUs int) (*SPIDev, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if speedHz <= 0 {
		speedHz = 2400000
	}
	if resetUs <= 0 {
		resetUs = 300
	}
	enc, err := NewNRZEncoder(order)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(spiDev, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open spidev: %w", err)
	}

	mode := byte(0)
	if err := ioctlByte(f, spiIOCWriteMode, &mode); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("SPI set mode: %w", err)
	}
	bpw := byte(8)
	if err := ioctlByte(f, spiIOCWriteBitsPerWord, &bpw); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("SPI set bits-per-word: %w", err)
	}
	if err := unix.IoctlSetPointerInt(int(f.Fd()), spiIOCWriteMaxSpeedHz, speedHz); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("SPI set speed: %w", err)
	}

	return &SPIDev{
		f:     f,
		count: count,
		enc:   enc,
		reset: ResetBytes(speedHz, resetUs),
	}, nil
}

func ioctlByte(f *os.File, req uintptr, v *byte) error {
	if _, _, e := unix.Syscall(unix.SYS_IOCTL, f.Fd(), req, uintptr(unsafe.Pointer(v))); e != 0 {
		return e
	}
	return nil
}

// Write sends the frame followed by the latch.
func (s *SPIDev) Write(frame []color.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return ErrClosed
	}
	if len(frame) != s.count {
		return fmt.Errorf("frame length %d does not match count %d", len(frame), s.count)
	}

	s.buf = s.enc.Encode(s.buf[:0], frame)
	s.buf = append(s.buf, make([]byte, s.reset)...)
	if _, err := s.f.Write(s.buf); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}

func (s *SPIDev) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	dark := s.enc.Encode(nil, make([]color.Color, s.count))
	_, _ = s.f.Write(append(dark, make([]byte, s.reset)...))
	err := s.f.Close()
	s.f = nil
	return err
}

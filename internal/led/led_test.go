package led

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/coreman2200/ledstrip/internal/color"
)

// captureDriver keeps a copy of every frame.
type captureDriver struct {
	frames [][]color.Color
	err    error
	closed bool
}

func (c *captureDriver) Write(frame []color.Color) error {
	c.frames = append(c.frames, append([]color.Color(nil), frame...))
	return c.err
}

func (c *captureDriver) Close() error {
	c.closed = true
	return c.err
}

func TestStripAssemblesFrames(t *testing.T) {
	drv := &captureDriver{}
	s := NewStrip(drv, 3, 0)

	require.NoError(t, s.Send(color.Red.Wire()))
	require.NoError(t, s.Send(color.Green.Wire()))
	assert.Empty(t, drv.frames, "frame is incomplete")
	require.NoError(t, s.Send(color.Blue.Wire()))
	require.Len(t, drv.frames, 1)
	assert.Equal(t, []color.Color{color.Red, color.Green, color.Blue}, drv.frames[0])

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Send(color.White.Wire()))
	}
	require.Len(t, drv.frames, 2)
	assert.Equal(t, []color.Color{color.White, color.White, color.White}, drv.frames[1])
	assert.Equal(t, uint64(2), s.Frames())
	assert.Equal(t, 3, s.Len())
}

func TestStripReturnsDriverErrorOnFrameEnd(t *testing.T) {
	boom := errors.New("boom")
	s := NewStrip(&captureDriver{err: boom}, 2, 0)
	assert.NoError(t, s.Send(0))
	assert.ErrorIs(t, s.Send(0), boom)
}

func TestStripAppliesWhiteCap(t *testing.T) {
	drv := &captureDriver{}
	s := NewStrip(drv, 2, 0.5)
	require.NoError(t, s.Send(color.White.Wire()))
	require.NoError(t, s.Send(color.Red.Wire()))
	assert.Equal(t, color.New(128, 128, 128), drv.frames[0][0])
	assert.Equal(t, color.Red, drv.frames[0][1], "under the cap")
}

func TestWhiteCap(t *testing.T) {
	frame := []color.Color{color.White, color.Yellow, color.Black}
	ApplyWhiteCap(frame, 0.5)
	for _, c := range frame {
		sum := int(c.R) + int(c.G) + int(c.B)
		assert.LessOrEqual(t, sum, 384, "within rounding of the cap")
	}
	assert.Equal(t, color.New(191, 191, 0), frame[1])

	same := []color.Color{color.White}
	ApplyWhiteCap(same, 1)
	ApplyWhiteCap(same, 0)
	assert.Equal(t, color.White, same[0])
}

func TestEstimateCurrent(t *testing.T) {
	assert.InDelta(t, 0.120, EstimateCurrent([]color.Color{color.White, color.White}), 1e-9)
	assert.Zero(t, EstimateCurrent(nil))
}

func TestMulti(t *testing.T) {
	a, b := &captureDriver{}, &captureDriver{err: errors.New("b")}
	m := Multi{a, b}
	assert.EqualError(t, m.Write([]color.Color{color.Cyan}), "b")
	assert.Len(t, a.frames, 1)
	assert.Len(t, b.frames, 1)
	assert.Error(t, m.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestSim(t *testing.T) {
	d := NewSim()
	require.NoError(t, d.Write([]color.Color{color.Purple, color.Black}))
	require.NoError(t, d.Write([]color.Color{color.Cyan, color.Black}))
	assert.Equal(t, uint64(2), d.Count())
	assert.Equal(t, []color.Color{color.Cyan, color.Black}, d.Last())
	require.NoError(t, d.Close())
	assert.ErrorIs(t, d.Write(nil), ErrClosed)
}

func TestNRZEncoderWireOrder(t *testing.T) {
	e, err := NewNRZEncoder("")
	require.NoError(t, err)

	black := e.Encode(nil, []color.Color{color.Black})
	assert.Equal(t, bytes.Repeat([]byte{0x92, 0x49, 0x24}, 3), black)

	// green is the low byte of the wire word, so its bit 0 goes out first
	got := e.Encode(nil, []color.Color{color.New(0, 1, 0)})
	assert.Equal(t, []byte{0xd2, 0x49, 0x24, 0x92, 0x49, 0x24, 0x92, 0x49, 0x24}, got)

	got = e.Encode(nil, []color.Color{color.New(1, 0, 0)})
	assert.Equal(t, []byte{0x92, 0x49, 0x24, 0xd2, 0x49, 0x24, 0x92, 0x49, 0x24}, got)
}

func TestNRZEncoderChannelOrder(t *testing.T) {
	e, err := NewNRZEncoder("rgb")
	require.NoError(t, err)
	got := e.Encode(nil, []color.Color{color.New(0, 0, 1)})
	assert.Equal(t, []byte{0x92, 0x49, 0x24, 0x92, 0x49, 0x24, 0x92, 0x49, 0x26}, got)

	full := e.Encode(nil, []color.Color{color.White, color.Black})
	assert.Len(t, full, 18)
	assert.Equal(t, []byte{0xdb, 0x6d, 0xb6}, full[:3])

	for _, bad := range []string{"RRB", "RG", "XYZ"} {
		_, err := NewNRZEncoder(bad)
		assert.Error(t, err, bad)
	}
}

func TestResetBytes(t *testing.T) {
	assert.Equal(t, 90, ResetBytes(2400000, 300))
	assert.Equal(t, 1, ResetBytes(8000000, 1))
}

func TestNRZDrawer(t *testing.T) {
	buf := bytes.Buffer{}
	dr, err := NewNRZ(spitest.NewRecordRaw(&buf), 4, 0)
	require.NoError(t, err)
	assert.Equal(t, "nrzled{recordraw}", dr.String())

	buf.Reset()
	require.NoError(t, dr.Write([]color.Color{color.Black, color.Black, color.Black, color.Black}))
	dark := append([]byte(nil), buf.Bytes()...)
	require.NotEmpty(t, dark)

	buf.Reset()
	require.NoError(t, dr.Write([]color.Color{color.Red, color.Black, color.Black, color.Black}))
	assert.Len(t, buf.Bytes(), len(dark))
	assert.NotEqual(t, dark, buf.Bytes())

	assert.Error(t, dr.Write([]color.Color{color.Red}), "wrong frame size")
	require.NoError(t, dr.Close())
	assert.ErrorIs(t, dr.Write(nil), ErrClosed)
}

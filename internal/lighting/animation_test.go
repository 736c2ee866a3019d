package lighting

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledstrip/internal/color"
)

// recordSink keeps every color it was sent.
type recordSink struct {
	colors []color.Color
	err    error
}

func (r *recordSink) Send(word uint32) error {
	r.colors = append(r.colors, color.FromWire(word))
	return r.err
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func twinkleEncoding(count byte) [EncodingSize]byte {
	var enc [EncodingSize]byte
	enc[0] = byte(KindTwinkle)
	enc[1] = count
	return enc
}

func TestFromEncodingTwinkle(t *testing.T) {
	scene := NewScene(60)
	scene[3] = StartingStar(0.9)

	a, ok := FromEncoding(twinkleEncoding(5), scene, testRand())
	require.True(t, ok)
	assert.Equal(t, KindTwinkle, a.Kind())
	assert.True(t, a.Active())
	assert.Equal(t, "twinkle", a.String())

	assert.Equal(t, 5, scene.Count(Decaying))
	assert.Equal(t, 55, scene.Count(Dead))
	assert.Equal(t, 0, scene.Count(Starting), "construction clears old stars")

	tw, ok := a.Twinkle()
	require.True(t, ok)
	assert.Equal(t, 5, tw.StarCount())
}

func TestFromEncodingClampsStarCount(t *testing.T) {
	scene := NewScene(10)
	a, ok := FromEncoding(twinkleEncoding(200), scene, testRand())
	require.True(t, ok)
	assert.Equal(t, 10, scene.Count(Decaying))
	tw, _ := a.Twinkle()
	assert.Equal(t, 10, tw.StarCount())
}

func TestFromEncodingUnknown(t *testing.T) {
	scene := NewScene(10)
	scene[1] = DecayingStar(0.5)

	for _, tag := range []byte{0, 2, 255} {
		var enc [EncodingSize]byte
		enc[0] = tag
		a, ok := FromEncoding(enc, scene, testRand())
		assert.False(t, ok, "tag %d", tag)
		assert.False(t, a.Active())
	}
	assert.Equal(t, 1, scene.Count(Decaying), "unknown encodings leave the scene alone")
}

func TestZeroAnimationDrawsNothing(t *testing.T) {
	sink := &recordSink{}
	var a Animation
	require.NoError(t, a.Advance(1, &Canvas{Scene: NewScene(5), Rand: testRand(), Sink: sink}))
	assert.Empty(t, sink.colors)
}

func TestTwinkleEmitsOneColorPerPixel(t *testing.T) {
	scene := NewScene(10)
	sink := &recordSink{}
	cv := &Canvas{State: DefaultState(color.White), Scene: scene, Rand: testRand(), Sink: sink}

	a, ok := FromEncoding(twinkleEncoding(0), scene, cv.Rand)
	require.True(t, ok)
	scene[2] = DecayingStar(0.5)

	require.NoError(t, a.Advance(0, cv))
	require.Len(t, sink.colors, 10)
	for i, c := range sink.colors {
		if i == 2 {
			assert.Equal(t, color.New(127, 127, 127), c)
		} else {
			assert.Equal(t, color.Black, c, "pixel %d", i)
		}
	}
}

func TestTwinkleScalesByBrightness(t *testing.T) {
	scene := NewScene(3)
	sink := &recordSink{}
	st := DefaultState(color.New(200, 100, 0))
	st.Brightness = 0.5
	cv := &Canvas{State: st, Scene: scene, Rand: testRand(), Sink: sink}

	a, _ := FromEncoding(twinkleEncoding(0), scene, cv.Rand)
	scene[0] = DecayingStar(0.5)

	require.NoError(t, a.Advance(0, cv))
	assert.Equal(t, color.New(50, 25, 0), sink.colors[0])
}

func TestTwinkleReseedsDeadStar(t *testing.T) {
	scene := NewScene(20)
	sink := &recordSink{}
	cv := &Canvas{State: DefaultState(color.White), Scene: scene, Rand: testRand(), Sink: sink}

	a, _ := FromEncoding(twinkleEncoding(0), scene, cv.Rand)
	scene[7] = DecayingStar(0.05)

	require.NoError(t, a.Advance(0.06, cv))
	assert.Equal(t, 0, scene.Count(Decaying))
	assert.Equal(t, 1, scene.Count(Starting), "the dying star relights a dead pixel")
	for _, s := range scene {
		if s.Phase() == Starting {
			assert.GreaterOrEqual(t, s.Target(), float32(0.0999))
			assert.Less(t, s.Target(), float32(1.0001))
		}
	}
}

func TestTwinkleRunsIndefinitely(t *testing.T) {
	scene := NewScene(30)
	cv := &Canvas{State: DefaultState(color.White), Scene: scene, Rand: testRand(), Sink: &recordSink{}}
	a, _ := FromEncoding(twinkleEncoding(8), scene, cv.Rand)

	for i := 0; i < 2000; i++ {
		require.NoError(t, a.Advance(0.05, cv))
		live := scene.Count(Starting) + scene.Count(Decaying)
		require.Equal(t, 8, live, "tick %d", i)
	}
}

func TestTwinkleFinishesFrameOnSinkError(t *testing.T) {
	scene := NewScene(4)
	boom := errors.New("boom")
	sink := &recordSink{err: boom}
	cv := &Canvas{State: DefaultState(color.White), Scene: scene, Rand: testRand(), Sink: sink}
	a, _ := FromEncoding(twinkleEncoding(1), scene, cv.Rand)

	assert.ErrorIs(t, a.Advance(0, cv), boom)
	assert.Len(t, sink.colors, 4)
}

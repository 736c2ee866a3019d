package lighting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartingBecomesDecayingAtTarget(t *testing.T) {
	s := StartingStar(0.5)
	assert.False(t, s.Tick(0.25))
	assert.Equal(t, Starting, s.Phase())
	assert.Equal(t, float32(0.25), s.Brightness())

	assert.False(t, s.Tick(0.25))
	assert.Equal(t, Decaying, s.Phase())
	assert.Equal(t, float32(0.5), s.Brightness(), "decay starts from the target")
}

func TestStartingOvershootDecaysFromTarget(t *testing.T) {
	s := StartingStar(0.5)
	assert.False(t, s.Tick(2))
	assert.Equal(t, Decaying, s.Phase())
	assert.Equal(t, float32(0.5), s.Brightness())
}

func TestDecayingDiesExactlyOnce(t *testing.T) {
	s := DecayingStar(0.5)
	assert.False(t, s.Tick(0.25))
	assert.Equal(t, float32(0.25), s.Brightness())

	assert.True(t, s.Tick(0.25), "reaching zero is a death")
	assert.True(t, s.IsDead())
	assert.Equal(t, float32(0), s.Brightness())

	assert.False(t, s.Tick(0.25), "dead stars never die again")
	assert.True(t, s.IsDead())
}

func TestZeroDelta(t *testing.T) {
	for _, s := range []Star{DeadStar(), StartingStar(0.5), DecayingStar(0.5)} {
		before := s
		assert.False(t, s.Tick(0))
		assert.Equal(t, before, s)
	}
}

func TestHalfPrecisionStallsTinyDeltas(t *testing.T) {
	s := DecayingStar(1.0)
	for i := 0; i < 100; i++ {
		assert.False(t, s.Tick(0.0001))
	}
	assert.Equal(t, float32(1.0), s.Brightness(), "1.0-0.0001 rounds back to 1.0 in half precision")
}

func TestHalfPrecisionRounding(t *testing.T) {
	s := DecayingStar(0.1)
	assert.NotEqual(t, float32(0.1), s.Brightness())
	assert.InDelta(t, 0.1, s.Brightness(), 0.0001)
}

func TestSceneResetAndCount(t *testing.T) {
	sc := NewScene(4)
	sc[0] = DecayingStar(0.3)
	sc[2] = StartingStar(0.8)
	assert.Equal(t, 2, sc.Count(Dead))
	assert.Equal(t, 1, sc.Count(Decaying))
	assert.Equal(t, 1, sc.Count(Starting))

	sc.Reset()
	assert.Equal(t, 4, sc.Count(Dead))
}

func TestStarString(t *testing.T) {
	assert.Equal(t, "dead", DeadStar().String())
	assert.Equal(t, "decaying(0.5)", DecayingStar(0.5).String())
	assert.Equal(t, "starting{target: 0.5, at: 0}", StartingStar(0.5).String())
}

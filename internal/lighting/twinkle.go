package lighting

import (
	"math/rand/v2"
)

// minStartTarget is the dimmest peak a reseeded star may aim for.
const minStartTarget = 0.1

// Twinkle is a field of stars that light up and fade independently. Each
// star that dies relights a random dead pixel, so the number of live stars
// stays roughly where it started.
type Twinkle struct {
	starCount int
}

// NewTwinkle clears scene and scatters up to starCount stars across it,
// already part way through decaying so the field is visible immediately.
func NewTwinkle(starCount uint8, scene Scene, rng *rand.Rand) Twinkle {
	scene.Reset()

	n := int(starCount)
	if n > len(scene) {
		n = len(scene)
	}
	for _, idx := range rng.Perm(len(scene))[:n] {
		scene[idx] = DecayingStar(rng.Float32())
	}
	return Twinkle{starCount: n}
}

func (t Twinkle) StarCount() int { return t.starCount }

func (t Twinkle) advance(delta float32, cv *Canvas) error {
	var err error
	scene := cv.Scene
	for idx := range scene {
		if scene[idx].Tick(delta) {
			for {
				other := cv.Rand.IntN(len(scene))
				if scene[other].IsDead() {
					scene[other] = StartingStar(max(cv.Rand.Float32(), minStartTarget))
					break
				}
			}
		}
		c := cv.State.BaseColor.Dim(scene[idx].Brightness() * cv.State.Brightness)
		cv.emit(c, &err)
	}
	return err
}

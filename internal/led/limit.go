package led

import (
	"math"

	"github.com/coreman2200/ledstrip/internal/color"
)

// ApplyWhiteCap scales any pixel whose r+g+b exceeds whiteCap*3*255 down to
// that limit, keeping its hue. whiteCap outside (0,1) is a no-op.
func ApplyWhiteCap(frame []color.Color, whiteCap float64) {
	if whiteCap <= 0 || whiteCap >= 1 {
		return
	}
	limit := whiteCap * 3.0 * 255.0
	for i, c := range frame {
		s := float64(c.R) + float64(c.G) + float64(c.B)
		if s > limit {
			scale := limit / s
			frame[i] = color.New(
				uint8(math.Round(float64(c.R)*scale)),
				uint8(math.Round(float64(c.G)*scale)),
				uint8(math.Round(float64(c.B)*scale)),
			)
		}
	}
}

// EstimateCurrent returns the approximate draw in amps at 20mA per channel
// at full scale.
func EstimateCurrent(frame []color.Color) float64 {
	var sum float64
	for _, c := range frame {
		sum += float64(c.R) + float64(c.G) + float64(c.B)
	}
	return sum / 255.0 * 0.020
}

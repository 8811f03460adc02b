package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

const (
	thumpLength = 120 * time.Millisecond
	thumpFreq   = 90.0
	// Impact speed mapped to full amplitude
	thumpFullSpeed = 20.0
)

// Thump synthesizes a short decaying low tone for an impact of the given speed.
// Harder impacts are louder; the amplitude saturates at thumpFullSpeed.
func Thump(sr beep.SampleRate, speed float64) beep.Streamer {
	total := sr.N(thumpLength)
	amp := math.Min(math.Abs(speed)/thumpFullSpeed, 1)
	pos := 0

	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= total {
				break
			}
			t := float64(pos) / float64(sr)
			decay := 1 - float64(pos)/float64(total)
			v := amp * decay * decay * math.Sin(2*math.Pi*thumpFreq*t)
			samples[i][0], samples[i][1] = v, v
			pos++
			n++
		}
		return n, true
	})
}

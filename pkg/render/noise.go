package render

import (
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/abworrall/galsynth/pkg/emath"
)

// NoiseSources is the random state for the two noise stages. Each source
// advances as it is used, so reusing a NoiseSources gives a fresh noise
// realisation; building new ones from the same seeds repeats it exactly.
type NoiseSources struct {
	Photon     rand.Source
	Background rand.Source
}

// NewNoiseSources seeds both stages. A seed of 0 means "seed from the
// clock", i.e. a different realisation every run.
func NewNoiseSources(photonSeed, backgroundSeed uint64) NoiseSources {
	return NoiseSources{
		Photon:     rand.NewSource(orClock(photonSeed)),
		Background: rand.NewSource(orClock(backgroundSeed)),
	}
}

func orClock(seed uint64) uint64 {
	if seed == 0 {
		return uint64(time.Now().UnixNano())
	}
	return seed
}

// PoissonNoise replaces every pixel with a Poisson draw whose mean is the
// pixel's value. Negative values (FFT round-off) are treated as zero.
func PoissonNoise(img *emath.FloatGrid, src rand.Source) {
	vals := img.Values()
	for i, v := range vals {
		if v <= 0 {
			vals[i] = 0
			continue
		}
		vals[i] = distuv.Poisson{Lambda: v, Src: src}.Rand()
	}
}

// GaussianNoise draws an nx by ny field of N(0, sigma^2) samples.
func GaussianNoise(nx, ny int, sigma float64, src rand.Source) emath.FloatGrid {
	g := emath.NewFloatGrid(nx, ny)
	dist := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	vals := g.Values()
	for i := range vals {
		vals[i] = dist.Rand()
	}
	return g
}

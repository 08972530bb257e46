package render

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/abworrall/galsynth/pkg/emath"
	"github.com/abworrall/galsynth/pkg/profile"
	"github.com/abworrall/galsynth/pkg/simerr"
)

// A Result is everything one synthesis produces. Nothing modifies it
// after Synthesize returns.
type Result struct {
	Noiseless emath.FloatGrid
	Noisy     emath.FloatGrid
	PSF       emath.FloatGrid

	SNR    float64
	G1, G2 float64
}

func (r *Result) String() string {
	return fmt.Sprintf("snr=%.2f g1=%.4f g2=%.4f noiseless=%s", r.SNR, r.G1, r.G2, r.Noiseless.Stats())
}

// SNR is the matched-filter signal to noise of a noiseless image against
// a flat background of the given sigma.
func SNR(noiseless emath.FloatGrid, sigma float64) float64 {
	return math.Sqrt(noiseless.SumSquares()) / sigma
}

// Synthesize draws the galaxy through the PSF, adds photon and background
// noise, and draws the bare PSF. Photon noise comes from noise.Photon and
// the background field from noise.Background; both advance.
func Synthesize(m profile.Model, noiseSigma float64, noise NoiseSources, d Drawer) (*Result, error) {
	if err := simerr.RequirePositive("noise", noiseSigma); err != nil {
		return nil, err
	}
	if noise.Photon == nil || noise.Background == nil {
		return nil, simerr.Invalid("noise_sources", 0, "photon and background sources must both be set")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	// 1,2. convolve and draw
	noiseless, err := d.draw("noiseless", m.Observed(), ImageSize, ImageSize)
	if err != nil {
		return nil, err
	}

	// 3. the pixels can all be finite while their squares overflow
	snr := SNR(noiseless, noiseSigma)
	if !emath.IsFinite(snr) {
		return nil, &simerr.RenderError{Stage: "snr", Err: fmt.Errorf("snr overflowed (%g) for flux %g", snr, noiseless.Sum())}
	}

	// 4. photon noise, on a copy so the noiseless image survives
	noisy := noiseless.Copy()
	PoissonNoise(noisy, noise.Photon)

	// 5.
	bg := GaussianNoise(ImageSize, ImageSize, noiseSigma, noise.Background)
	if err := noisy.Add(bg); err != nil {
		return nil, &simerr.RenderError{Stage: "background", Err: err}
	}

	// 6.
	psf, err := d.draw("psf", m.PSF, ImageSize, ImageSize)
	if err != nil {
		return nil, err
	}

	r := &Result{
		Noiseless: noiseless,
		Noisy:     *noisy,
		PSF:       psf,
		SNR:       snr,
		G1:        m.Shear.G1,
		G2:        m.Shear.G2,
	}
	log.Debugf("synthesize: %s", r)
	return r, nil
}

package profile

import (
	"fmt"
	"math"

	"github.com/abworrall/galsynth/pkg/simerr"
)

// A Moffat profile, I(r) = I0 * (1 + (r/alpha)^2)^-beta. The usual model
// for a seeing-limited PSF; beta > 1 for the flux to be finite.
type Moffat struct {
	Beta float64
	FWHM float64

	flux  float64
	alpha float64 // scale radius
	i0    float64
}

func NewMoffat(beta, fwhm, flux float64) (Moffat, error) {
	if err := simerr.RequireFinite("psf_beta", beta); err != nil {
		return Moffat{}, err
	} else if beta <= 1 {
		return Moffat{}, simerr.Invalid("psf_beta", beta, "must be > 1")
	}
	if err := simerr.RequirePositive("psf_re", fwhm); err != nil {
		return Moffat{}, err
	}
	if err := simerr.RequirePositive("psf_flux", flux); err != nil {
		return Moffat{}, err
	}

	alpha := fwhm / (2 * math.Sqrt(math.Pow(2, 1/beta)-1))
	return Moffat{
		Beta:  beta,
		FWHM:  fwhm,
		flux:  flux,
		alpha: alpha,
		i0:    flux * (beta - 1) / (math.Pi * alpha * alpha),
	}, nil
}

func (m Moffat) FluxDensity(x, y float64) float64 {
	r2 := (x*x + y*y) / (m.alpha * m.alpha)
	return m.i0 * math.Pow(1+r2, -m.Beta)
}

func (m Moffat) Flux() float64 { return m.flux }

func (m Moffat) WithFlux(flux float64) Profile {
	m.i0 *= flux / m.flux
	m.flux = flux
	return m
}

func (m Moffat) Shear(s Shear) Profile {
	return Transform(m, s.Matrix())
}

// Enclosed flux is 1 - (1 + (r/alpha)^2)^(1-beta), which inverts directly.
func (m Moffat) Extent() float64 {
	return m.alpha * math.Sqrt(math.Pow(1-Containment, 1/(1-m.Beta))-1)
}

func (m Moffat) Check() error { return nil }

func (m Moffat) String() string {
	return fmt.Sprintf("Moffat{beta=%.2f, fwhm=%.3f, flux=%.4g}", m.Beta, m.FWHM, m.flux)
}

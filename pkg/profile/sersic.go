package profile

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"

	"github.com/abworrall/galsynth/pkg/simerr"
)

// The range of Sersic indices over which the profile is evaluated. Outside
// of it b_n and the normalisation lose precision fast.
const (
	MinSersicIndex = 0.3
	MaxSersicIndex = 6.2
)

// A Sersic profile, I(r) = I0 * exp(-b_n * (r/re)^(1/n)), where b_n is
// chosen so that half the flux falls inside re.
type Sersic struct {
	N               float64
	HalfLightRadius float64

	flux float64
	b    float64 // b_n
	i0   float64 // central density
}

func NewSersic(n, halfLightRadius, flux float64) (Sersic, error) {
	if err := simerr.RequirePositive("bulge_n", n); err != nil {
		return Sersic{}, err
	}
	if err := simerr.RequirePositive("bulge_re", halfLightRadius); err != nil {
		return Sersic{}, err
	}
	if err := simerr.RequirePositive("gal_flux", flux); err != nil {
		return Sersic{}, err
	}

	s := Sersic{N: n, HalfLightRadius: halfLightRadius, flux: flux}
	s.b = SersicB(n)
	s.i0 = flux * sersicUnitDensity(n, halfLightRadius, s.b)
	return s, nil
}

// SersicB solves P(2n, b) = 1/2 for b, where P is the regularized lower
// incomplete gamma function.
func SersicB(n float64) float64 {
	return mathext.GammaIncRegInv(2*n, 0.5)
}

// The central density of a unit flux profile. The total flux of a Sersic is
// 2*pi*n*re^2 * I0 * Gamma(2n) / b^(2n); done in logs, as Gamma(2n) and
// b^(2n) both get large for big n.
func sersicUnitDensity(n, re, b float64) float64 {
	lg, _ := math.Lgamma(2 * n)
	return math.Exp(2*n*math.Log(b) - math.Log(2*math.Pi*n*re*re) - lg)
}

func (s Sersic) FluxDensity(x, y float64) float64 {
	r := math.Hypot(x, y)
	return s.i0 * math.Exp(-s.b*math.Pow(r/s.HalfLightRadius, 1/s.N))
}

func (s Sersic) Flux() float64 { return s.flux }

func (s Sersic) WithFlux(flux float64) Profile {
	s.i0 *= flux / s.flux
	s.flux = flux
	return s
}

func (s Sersic) Shear(sh Shear) Profile {
	return Transform(s, sh.Matrix())
}

// Extent inverts the enclosed flux fraction, P(2n, b*(r/re)^(1/n)).
func (s Sersic) Extent() float64 {
	x := mathext.GammaIncRegInv(2*s.N, Containment)
	return s.HalfLightRadius * math.Pow(x/s.b, s.N)
}

func (s Sersic) Check() error {
	if s.N < MinSersicIndex || s.N > MaxSersicIndex {
		return fmt.Errorf("sersic index %g outside stable range [%g,%g]", s.N, MinSersicIndex, MaxSersicIndex)
	}
	if math.IsNaN(s.b) || math.IsInf(s.i0, 0) || math.IsNaN(s.i0) || s.i0 <= 0 {
		return fmt.Errorf("sersic n=%g re=%g: normalisation failed (b=%g, I0=%g)", s.N, s.HalfLightRadius, s.b, s.i0)
	}
	return nil
}

func (s Sersic) String() string {
	return fmt.Sprintf("Sersic{n=%.3f, re=%.3f, flux=%.4g, b=%.5f}", s.N, s.HalfLightRadius, s.flux, s.b)
}

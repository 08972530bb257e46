package profile

import (
	"fmt"
	"math"

	"github.com/abworrall/galsynth/pkg/emath"
)

// Transformed is a profile seen through a linear map: a point u of the
// inner profile lands on the sky at Jac*u. Density is divided by |det| so
// the flux stays put.
type Transformed struct {
	Inner Profile
	Jac   emath.Aff3

	inv emath.Aff3
	det float64
}

// Transform wraps p in the map m. A singular m can't be produced by a
// Shear (|g| < 1 means det = 1), so it just panics.
func Transform(p Profile, m emath.Aff3) Transformed {
	inv, err := m.Invert()
	if err != nil {
		panic(fmt.Sprintf("profile.Transform: %v", err))
	}
	return Transformed{Inner: p, Jac: m, inv: inv, det: math.Abs(m.Det())}
}

func (t Transformed) FluxDensity(x, y float64) float64 {
	u, v := t.inv.Apply(x, y)
	return t.Inner.FluxDensity(u, v) / t.det
}

func (t Transformed) Flux() float64 { return t.Inner.Flux() }

func (t Transformed) WithFlux(flux float64) Profile {
	t.Inner = t.Inner.WithFlux(flux)
	return t
}

// Shear composes; the new distortion is applied after the existing one.
func (t Transformed) Shear(s Shear) Profile {
	return Transform(t.Inner, s.Matrix().Mult(t.Jac))
}

func (t Transformed) Extent() float64 {
	return t.Inner.Extent() * t.Jac.MaxStretch()
}

// MinorExtent is Extent along the most squashed axis.
func (t Transformed) MinorExtent() float64 {
	return t.Inner.Extent() * t.Jac.MinStretch()
}

func (t Transformed) Check() error { return t.Inner.Check() }

func (t Transformed) String() string {
	return fmt.Sprintf("Transformed{%v, %s}", t.Inner, t.Jac)
}

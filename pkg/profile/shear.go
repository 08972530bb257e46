package profile

import (
	"math"

	"github.com/abworrall/galsynth/pkg/emath"
	"github.com/abworrall/galsynth/pkg/simerr"
)

// A Shear is the reduced shear (g1, g2) of an ellipse. |g| < 1.
type Shear struct {
	G1, G2 float64
}

func NewShear(g1, g2 float64) (Shear, error) {
	if err := simerr.RequireFinite("g1", g1); err != nil {
		return Shear{}, err
	}
	if err := simerr.RequireFinite("g2", g2); err != nil {
		return Shear{}, err
	}
	if g := math.Hypot(g1, g2); g >= 1 {
		return Shear{}, simerr.Invalid("g", g, "shear magnitude must be < 1")
	}
	return Shear{g1, g2}, nil
}

// ShearFromAxisRatio is the shear that turns a circle into an ellipse with
// axis ratio q (minor/major) whose major axis sits at beta radians.
func ShearFromAxisRatio(q, beta float64) (Shear, error) {
	if math.IsNaN(q) || q <= 0 || q > 1 {
		return Shear{}, simerr.Invalid("gal_q", q, "must be in (0,1]")
	}
	if err := simerr.RequireFinite("gal_beta", beta); err != nil {
		return Shear{}, err
	}

	a := (1 - q) / (1 + q)
	if a == 0 {
		return Shear{}, nil
	}
	return Shear{G1: a * math.Cos(2*beta), G2: a * math.Sin(2*beta)}, nil
}

func (s Shear) Magnitude() float64 { return math.Hypot(s.G1, s.G2) }
func (s Shear) IsZero() bool       { return s.G1 == 0 && s.G2 == 0 }

// AxisRatio inverts ShearFromAxisRatio.
func (s Shear) AxisRatio() float64 {
	g := s.Magnitude()
	return (1 - g) / (1 + g)
}

// PositionAngle is the angle of the major axis, in (-pi/2, pi/2].
func (s Shear) PositionAngle() float64 {
	return 0.5 * math.Atan2(s.G2, s.G1)
}

// Matrix is the area-preserving distortion,
//
//	1/sqrt(1-g^2) [ 1+g1   g2 ]
//	              [  g2  1-g1 ]
func (s Shear) Matrix() emath.Aff3 {
	f := 1 / math.Sqrt(1-s.G1*s.G1-s.G2*s.G2)
	return emath.Linear(f*(1+s.G1), f*s.G2, f*s.G2, f*(1-s.G1))
}

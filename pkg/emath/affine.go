package emath

// Basic 2D affine transformations, used to shear profiles on the sky plane.

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64" // Will be "image/math/f64" at some point, hopefully make this file redundant
)

// Use a local type so we can hang methods off it. Row-major, the last
// column is the translation:
//
//	[ a b tx ]
//	[ c d ty ]
type Aff3 f64.Aff3

// Cut-n-pasted from image@0.7.0/draw/scale:matMul
func (p Aff3) Mult(q Aff3) Aff3 {
	return Aff3{
		p[3*0+0]*q[3*0+0] + p[3*0+1]*q[3*1+0],
		p[3*0+0]*q[3*0+1] + p[3*0+1]*q[3*1+1],
		p[3*0+0]*q[3*0+2] + p[3*0+1]*q[3*1+2] + p[3*0+2],
		p[3*1+0]*q[3*0+0] + p[3*1+1]*q[3*1+0],
		p[3*1+0]*q[3*0+1] + p[3*1+1]*q[3*1+1],
		p[3*1+0]*q[3*0+2] + p[3*1+1]*q[3*1+2] + p[3*1+2],
	}
}

func Identity() Aff3 {
	return Aff3{1, 0, 0, 0, 1, 0}
}

// Linear builds a transform with no translation part.
func Linear(a, b, c, d float64) Aff3 {
	return Aff3{a, b, 0, c, d, 0}
}

func (m Aff3) Translate(tx, ty float64) Aff3 {
	return m.Mult(Aff3{1, 0, tx, 0, 1, ty})
}

func (m Aff3) Rotate(thetaRad float64) Aff3 {
	cosTheta := math.Cos(thetaRad)
	sinTheta := math.Sin(thetaRad)
	return m.Mult(Aff3{cosTheta, -1 * sinTheta, 0, sinTheta, cosTheta, 0})
}

// Det is the determinant of the linear part; 1.0 means area is preserved.
func (m Aff3) Det() float64 {
	return m[0]*m[4] - m[1]*m[3]
}

// Invert returns the inverse transform. A singular matrix gives an error,
// not a matrix full of Infs.
func (m Aff3) Invert() (Aff3, error) {
	det := m.Det()
	if det == 0 || math.IsNaN(det) {
		return Aff3{}, fmt.Errorf("affine transform %s is singular", m)
	}
	a, b, c, d := m[4]/det, -m[1]/det, -m[3]/det, m[0]/det
	return Aff3{
		a, b, -(a*m[2] + b*m[5]),
		c, d, -(c*m[2] + d*m[5]),
	}, nil
}

// Apply maps the point (x,y).
func (m Aff3) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// MaxStretch is the largest singular value of the linear part, i.e. how
// far a unit circle gets pulled out along its longest axis.
func (m Aff3) MaxStretch() float64 {
	a, b, c, d := m[0], m[1], m[3], m[4]
	s := a*a + b*b + c*c + d*d
	det := a*d - b*c
	disc := math.Sqrt(math.Max(0, s*s-4*det*det))
	return math.Sqrt((s + disc) / 2)
}

// MinStretch is the smallest singular value; how thin a unit circle gets.
func (m Aff3) MinStretch() float64 {
	max := m.MaxStretch()
	if max == 0 {
		return 0
	}
	return math.Abs(m.Det()) / max
}

func (m Aff3) String() string {
	return fmt.Sprintf("[%8.5f %8.5f %8.5f; %8.5f %8.5f %8.5f]", m[0], m[1], m[2], m[3], m[4], m[5])
}

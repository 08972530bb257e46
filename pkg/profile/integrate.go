package profile

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// An Integrator integrates a density over an axis-aligned box using
// tensor-product Gauss-Legendre rules. Boxes that are close to the
// origin, relative to their size, are split into four and integrated
// recursively; that's where Sersic profiles have their cusp.
type Integrator struct {
	Order    int     // Gauss-Legendre points per axis at the leaves
	Split    float64 // subdivide boxes nearer the origin than Split*size
	MaxDepth int
}

// DefaultIntegrator is accurate to ~1e-6 of the total flux for the
// profiles in this package, and is slow; fine for one-off integrals.
var DefaultIntegrator = Integrator{Order: 8, Split: 2, MaxDepth: 16}

type glRule struct {
	x, w []float64 // nodes and weights on [-1,1]
}

var glRules = map[int]glRule{}

func init() {
	for _, n := range []int{1, 2, 3, 4, 6, 8, 12, 16} {
		r := glRule{x: make([]float64, n), w: make([]float64, n)}
		quad.Legendre{}.FixedLocations(r.x, r.w, -1, 1)
		glRules[n] = r
	}
}

func ruleFor(n int) glRule {
	if r, exists := glRules[n]; exists {
		return r
	}
	r := glRule{x: make([]float64, n), w: make([]float64, n)}
	quad.Legendre{}.FixedLocations(r.x, r.w, -1, 1)
	return r
}

// Integrate returns the flux of p inside the box [x0,x1]x[y0,y1].
func Integrate(p Profile, x0, y0, x1, y1 float64) float64 {
	return DefaultIntegrator.Box(p.FluxDensity, x0, y0, x1, y1)
}

// Box integrates f over [x0,x1]x[y0,y1].
func (in Integrator) Box(f func(x, y float64) float64, x0, y0, x1, y1 float64) float64 {
	order := in.Order
	if order < 1 {
		order = 1
	}
	return in.box(f, ruleFor(order), x0, y0, x1, y1, 0)
}

func (in Integrator) box(f func(x, y float64) float64, r glRule, x0, y0, x1, y1 float64, depth int) float64 {
	size := x1 - x0
	if y1-y0 > size {
		size = y1 - y0
	}

	if depth < in.MaxDepth && distToOrigin(x0, y0, x1, y1) < in.Split*size {
		xm, ym := (x0+x1)/2, (y0+y1)/2
		return in.box(f, r, x0, y0, xm, ym, depth+1) +
			in.box(f, r, xm, y0, x1, ym, depth+1) +
			in.box(f, r, x0, ym, xm, y1, depth+1) +
			in.box(f, r, xm, ym, x1, y1, depth+1)
	}

	return gaussLegendre2D(f, r, x0, y0, x1, y1)
}

func gaussLegendre2D(f func(x, y float64) float64, r glRule, x0, y0, x1, y1 float64) float64 {
	hx, hy := (x1-x0)/2, (y1-y0)/2
	cx, cy := (x0+x1)/2, (y0+y1)/2

	sum := 0.0
	for j, yj := range r.x {
		row := 0.0
		y := cy + hy*yj
		for i, xi := range r.x {
			row += r.w[i] * f(cx+hx*xi, y)
		}
		sum += r.w[j] * row
	}
	return sum * hx * hy
}

// distToOrigin is the chessboard distance from (0,0) to the nearest
// point of the box.
func distToOrigin(x0, y0, x1, y1 float64) float64 {
	dx, dy := 0.0, 0.0
	if x0 > 0 {
		dx = x0
	} else if x1 < 0 {
		dx = -x1
	}
	if y0 > 0 {
		dy = y0
	} else if y1 < 0 {
		dy = -y1
	}
	return math.Max(dx, dy)
}

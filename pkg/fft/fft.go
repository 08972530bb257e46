package fft

// 2D FFTs over emath.FloatGrids, as needed to convolve rendered
// profiles. Built from gonum's 1D complex transforms, run over the rows
// and then the columns.
//
// gonum's transforms are unnormalized: a forward pass followed by an
// inverse pass multiplies by the number of samples, so Inverse divides
// it back out.

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/abworrall/galsynth/pkg/emath"
)

// A Plan holds the row and column transforms for a fixed grid shape.
// Not safe for concurrent use; the transforms keep scratch space.
type Plan struct {
	w, h   int
	rowFFT *fourier.CmplxFFT
	colFFT *fourier.CmplxFFT
	row    []complex128
	col    []complex128
}

func NewPlan(w, h int) *Plan {
	return &Plan{
		w:      w,
		h:      h,
		rowFFT: fourier.NewCmplxFFT(w),
		colFFT: fourier.NewCmplxFFT(h),
		row:    make([]complex128, w),
		col:    make([]complex128, h),
	}
}

// A Spectrum is a complex grid, row-major, same shape as its plan.
type Spectrum []complex128

// Forward transforms a real grid into its spectrum.
func (p *Plan) Forward(g emath.FloatGrid) (Spectrum, error) {
	if g.Dx() != p.w || g.Dy() != p.h {
		return nil, fmt.Errorf("fft forward: grid %dx%d, plan %dx%d", g.Dx(), g.Dy(), p.w, p.h)
	}
	s := make(Spectrum, p.w*p.h)
	for i, v := range g.Values() {
		s[i] = complex(v, 0)
	}
	p.transform(s, true)
	return s, nil
}

// Inverse transforms a spectrum back into a real grid, dropping the
// (round-off sized) imaginary part.
func (p *Plan) Inverse(s Spectrum) emath.FloatGrid {
	p.transform(s, false)
	g := emath.NewFloatGrid(p.w, p.h)
	vals := g.Values()
	for i := range vals {
		vals[i] = real(s[i])
	}
	g.Scale(1.0 / float64(p.w*p.h))
	return g
}

func (p *Plan) transform(s Spectrum, forward bool) {
	// rows
	for y := 0; y < p.h; y++ {
		copy(p.row, s[y*p.w:(y+1)*p.w])
		if forward {
			p.rowFFT.Coefficients(p.row, p.row)
		} else {
			p.rowFFT.Sequence(p.row, p.row)
		}
		copy(s[y*p.w:(y+1)*p.w], p.row)
	}

	// cols
	for x := 0; x < p.w; x++ {
		for y := 0; y < p.h; y++ {
			p.col[y] = s[y*p.w+x]
		}
		if forward {
			p.colFFT.Coefficients(p.col, p.col)
		} else {
			p.colFFT.Sequence(p.col, p.col)
		}
		for y := 0; y < p.h; y++ {
			s[y*p.w+x] = p.col[y]
		}
	}
}

// Convolve returns the circular convolution of img with each of the
// kernels in turn. Kernels must already be shifted so their origin sits
// at [0,0] (see ShiftToOrigin); img keeps its own alignment.
func Convolve(img emath.FloatGrid, kernels ...emath.FloatGrid) (emath.FloatGrid, error) {
	p := NewPlan(img.Dx(), img.Dy())

	acc, err := p.Forward(img)
	if err != nil {
		return emath.FloatGrid{}, fmt.Errorf("convolve image: %v", err)
	}
	for i, k := range kernels {
		ks, err := p.Forward(k)
		if err != nil {
			return emath.FloatGrid{}, fmt.Errorf("convolve kernel %d: %v", i, err)
		}
		for j := range acc {
			acc[j] *= ks[j]
		}
	}

	return p.Inverse(acc), nil
}

// ShiftToOrigin circularly shifts a grid whose origin is the cell at
// [w/2,h/2] so that the origin moves to [0,0]. (numpy's ifftshift, for
// even sizes.)
func ShiftToOrigin(g emath.FloatGrid) emath.FloatGrid {
	w, h := g.Dx(), g.Dy()
	out := g.NewFromThis()
	for y := 0; y < h; y++ {
		yy := (y + h/2) % h
		for x := 0; x < w; x++ {
			xx := (x + w/2) % w
			out.Set(x, y, g.Get(xx, yy))
		}
	}
	return out
}

package render

// Rasterization of profiles onto pixel grids. Every pixel holds the flux
// integrated over its footprint: each pixel is cut into Oversample^2 fine
// cells, each fine cell is integrated with Gauss-Legendre quadrature
// (refined near the profile centre, where Sersic profiles have a cusp),
// and the cells are summed back up into pixels.
//
// Convolutions are drawn one component at a time onto a padded fine grid,
// multiplied together in Fourier space, then cropped back down.

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/abworrall/galsynth/pkg/emath"
	"github.com/abworrall/galsynth/pkg/fft"
	"github.com/abworrall/galsynth/pkg/profile"
	"github.com/abworrall/galsynth/pkg/simerr"
)

const (
	ImageSize  = 64   // pixels per side
	PixelScale = 0.23 // arcsec per pixel
)

type Drawer struct {
	Scale      float64 // arcsec per pixel
	Oversample int     // fine cells per pixel, per axis
	PadFactor  int     // the FFT grid is this many times bigger than the image
}

func DefaultDrawer() Drawer {
	return Drawer{Scale: PixelScale, Oversample: 4, PadFactor: 2}
}

func (d Drawer) Validate() error {
	if err := simerr.RequirePositive("pixel_scale", d.Scale); err != nil {
		return err
	}
	if d.Oversample < 1 {
		return simerr.Invalid("oversample", float64(d.Oversample), "must be >= 1")
	}
	if d.PadFactor < 1 {
		return simerr.Invalid("pad_factor", float64(d.PadFactor), "must be >= 1")
	}
	return nil
}

// Fine cells within this many cells (chessboard distance) of the profile
// centre get the refining integrator; the rest a plain 2x2 rule.
const nearCells = 6

var (
	nearIntegrator = profile.Integrator{Order: 4, Split: 1, MaxDepth: 10}
	farIntegrator  = profile.Integrator{Order: 2}
)

// DrawImage renders p, centred, onto an nx by ny pixel grid.
func (d Drawer) DrawImage(p profile.Profile, nx, ny int) (emath.FloatGrid, error) {
	return d.draw("image", p, nx, ny)
}

func (d Drawer) draw(stage string, p profile.Profile, nx, ny int) (emath.FloatGrid, error) {
	if err := d.Validate(); err != nil {
		return emath.FloatGrid{}, err
	}
	if nx < 1 || ny < 1 {
		return emath.FloatGrid{}, simerr.Invalid("image_size", float64(min(nx, ny)), "must be >= 1")
	}
	if err := p.Check(); err != nil {
		return emath.FloatGrid{}, &simerr.RenderError{Stage: stage, Err: err}
	}

	var fine emath.FloatGrid
	if c, isConv := p.(profile.Convolution); isConv && len(c.Components) > 1 {
		var err error
		if fine, err = d.drawConvolution(c, nx, ny); err != nil {
			return emath.FloatGrid{}, &simerr.RenderError{Stage: stage, Err: err}
		}
	} else {
		fine = d.drawFine(p, nx*d.Oversample, ny*d.Oversample, 0)
	}

	img := fine.BlockSum(d.Oversample)
	if !img.AllFinite() {
		return emath.FloatGrid{}, &simerr.RenderError{Stage: stage, Err: errors.New("non-finite pixel values")}
	}

	log.Debugf("draw %s: %v -> %s", stage, p, img.Stats())
	return img, nil
}

// drawFine integrates p over a w x h grid of fine cells, with the origin
// at the corner between cells [w/2-1] and [w/2] (so, the grid centre) when
// offset is 0. An offset of 0.5 puts the origin at the centre of cell
// [w/2,h/2] instead, which is where ShiftToOrigin expects a kernel.
//
// Away from the centre each cell gets a fixed 2x2 rule, which needs the
// profile to be at least about a cell across in every direction. Extreme
// shears squash a galaxy thinner than that and lose flux; those get a
// warning rather than a refusal.
func (d Drawer) drawFine(p profile.Profile, w, h int, offset float64) emath.FloatGrid {
	cell := d.Scale / float64(d.Oversample)
	near := nearCells * cell
	warnIfThin(p, cell)
	g := emath.NewFloatGrid(w, h)

	cx := float64(w/2) + offset
	cy := float64(h/2) + offset

	rows := make(chan int, h)
	var wg sync.WaitGroup

	nWorkers := runtime.NumCPU()
	for i := 0; i < nWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				y0 := (float64(y) - cy) * cell
				y1 := y0 + cell
				for x := 0; x < w; x++ {
					x0 := (float64(x) - cx) * cell
					x1 := x0 + cell
					in := farIntegrator
					if max(-x1, x0, -y1, y0) < near {
						in = nearIntegrator
					}
					g.Set(x, y, in.Box(p.FluxDensity, x0, y0, x1, y1))
				}
			}
		}()
	}

	for y := 0; y < h; y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()

	return g
}

func warnIfThin(p profile.Profile, cell float64) {
	if t, isTransformed := p.(profile.Transformed); isTransformed && t.MinorExtent() < cell {
		log.Warnf("profile is %.3g arcsec across its minor axis, thinner than a %.3g arcsec cell; flux will be lost", t.MinorExtent(), cell)
	}
}

// drawConvolution returns the convolution on the fine grid of an nx by ny
// image. The first component keeps the image alignment; the rest are drawn
// as kernels. Drawing both with cell integrals smooths by one extra fine
// cell, which is well below the pixel scale.
func (d Drawer) drawConvolution(c profile.Convolution, nx, ny int) (emath.FloatGrid, error) {
	mx, my := nx*d.Oversample, ny*d.Oversample
	lx, ly := mx*d.PadFactor, my*d.PadFactor

	img := d.drawFine(c.Components[0], lx, ly, 0)

	kernels := []emath.FloatGrid{}
	for _, k := range c.Components[1:] {
		kernels = append(kernels, fft.ShiftToOrigin(d.drawFine(k, lx, ly, 0.5)))
	}

	out, err := fft.Convolve(img, kernels...)
	if err != nil {
		return emath.FloatGrid{}, fmt.Errorf("fft convolution on %dx%d grid: %w", lx, ly, err)
	}

	return out.Crop((lx-mx)/2, (ly-my)/2, mx, my), nil
}

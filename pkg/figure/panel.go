package figure

import (
	"fmt"
	"image"
	"image/color"

	"github.com/mdouchement/hdr/tmo"
	xdraw "golang.org/x/image/draw"

	"github.com/abworrall/galsynth/pkg/emath"
)

var Stretches = []string{"linear", "drago03", "reinhard05"}

// Levels returns every pixel of g mapped into [0,1] for display, in image
// order (row 0 of the result is the top row), using the named stretch.
// "linear" is a plain min/max rescale; the others are HDR tone mapping
// operators, which lift faint structure out of the background.
func Levels(g emath.FloatGrid, stretch string) ([]float64, error) {
	w, h := g.Dx(), g.Dy()
	out := make([]float64, w*h)

	if stretch == "" || stretch == "linear" {
		min, max := g.MinMax()
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out[y*w+x] = emath.Normalize(g.Get(x, h-1-y), min, max)
			}
		}
		return out, nil
	}

	// The operators work on log luminance, so keep the darkest pixel off zero.
	hg := NewHDRGrid(g)
	min, max := g.MinMax()
	hg.Offset += 1e-3*(max-min) + 1e-9

	op, err := newTonemapper(hg, stretch)
	if err != nil {
		return nil, err
	}
	ldr := op.Perform()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gray := color.Gray16Model.Convert(ldr.At(x, y)).(color.Gray16)
			out[y*w+x] = float64(gray.Y) / 0xFFFF
		}
	}
	return out, nil
}

// The operators' defaults are tuned for photographs; galaxy images are
// mostly empty sky with one small bright peak.
func newTonemapper(hg HDRGrid, name string) (tmo.ToneMappingOperator, error) {
	switch name {
	case "drago03":
		op := tmo.NewDefaultDrago03(hg)
		op.Bias = 0.85 // Lower than the default, otherwise the sky swamps the galaxy
		return op, nil

	case "reinhard05":
		op := tmo.NewDefaultReinhard05(hg)
		op.Chromatic = 0
		op.Light = 0.5
		return op, nil
	}
	return nil, fmt.Errorf("no stretch named '%s', wanted one of %v", name, Stretches)
}

// Panel renders a grid through a colormap, scaled up by an integer factor
// with nearest neighbour sampling so that pixels stay square.
func Panel(g emath.FloatGrid, cm Colormap, stretch string, scale int) (*image.RGBA, error) {
	if scale < 1 {
		scale = 1
	}
	levels, err := Levels(g, stretch)
	if err != nil {
		return nil, err
	}

	w, h := g.Dx(), g.Dy()
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			small.Set(x, y, cm.At(levels[y*w+x]))
		}
	}

	big := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	xdraw.NearestNeighbor.Scale(big, big.Bounds(), small, small.Bounds(), xdraw.Src, nil)
	return big, nil
}

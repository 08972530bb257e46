package figure

import (
	"image"
	"image/color"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/galsynth/pkg/emath"
)

// HDRGrid presents a FloatGrid as a grey hdr.Image, so it can be tone
// mapped or written out as Radiance RGBE. HDR pixels can't be negative, so
// Offset is added to every value; NewHDRGrid picks it to lift the minimum
// to zero. Row 0 of the grid is the bottom row of the image.
type HDRGrid struct {
	Grid   emath.FloatGrid
	Offset float64
}

func NewHDRGrid(g emath.FloatGrid) HDRGrid {
	min, _ := g.MinMax()
	offset := 0.0
	if min < 0 {
		offset = -min
	}
	return HDRGrid{Grid: g, Offset: offset}
}

// Implement image.Image
func (hg HDRGrid) ColorModel() color.Model { return hdrcolor.RGBModel }
func (hg HDRGrid) Bounds() image.Rectangle {
	return image.Rect(0, 0, hg.Grid.Dx(), hg.Grid.Dy())
}
func (hg HDRGrid) At(x, y int) color.Color { return hg.HDRAt(x, y) }

// Implement hdr.Image
func (hg HDRGrid) HDRAt(x, y int) hdrcolor.Color {
	v := hg.Grid.Get(x, hg.Grid.Dy()-1-y) + hg.Offset
	return hdrcolor.RGB{R: v, G: v, B: v}
}
func (hg HDRGrid) Size() int { return hg.Grid.Dx() * hg.Grid.Dy() }

package figure

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/mdouchement/hdr/codec/rgbe"
	"golang.org/x/image/tiff"

	"github.com/abworrall/galsynth/pkg/emath"
)

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}

// WriteTIFF writes g as a 16 bit greyscale TIFF, with the grid's min and
// max mapped onto 0 and 65535. Returns the min and max so the pixel values
// can be scaled back.
func WriteTIFF(g emath.FloatGrid, filename string) (float64, float64, error) {
	min, max := g.MinMax()
	w, h := g.Dx(), g.Dy()
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := emath.Normalize(g.Get(x, h-1-y), min, max)
			img.SetGray16(x, y, color.Gray16{Y: uint16(v*0xFFFF + 0.5)})
		}
	}

	writer, err := os.Create(filename)
	if err != nil {
		return 0, 0, fmt.Errorf("WriteTIFF, open+w '%s': %v", filename, err)
	}
	defer writer.Close()

	if err := tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		return 0, 0, fmt.Errorf("WriteTIFF, encoding '%s': %v", filename, err)
	}
	return min, max, nil
}

// WriteHDR writes g as a Radiance RGBE file, which keeps the dynamic range
// (to about 1%). Returns the offset that was added to make every value
// non-negative.
func WriteHDR(g emath.FloatGrid, filename string) (float64, error) {
	hg := NewHDRGrid(g)
	if writer, err := os.Create(filename); err != nil {
		return 0, fmt.Errorf("WriteHDR, open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		if err := rgbe.Encode(writer, hg); err != nil {
			return 0, fmt.Errorf("WriteHDR, encoding RGBE file '%s': %v", filename, err)
		}
	}
	return hg.Offset, nil
}

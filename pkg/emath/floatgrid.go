package emath

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
	"gonum.org/v1/gonum/floats"
)

// A FloatGrid is a grid of floats, with some operations. Pixel images
// are FloatGrids, with [x,y] = [column,row] and row 0 at the bottom of
// the sky plane (the most negative y).
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

func (g1 *FloatGrid) NewFromThis() FloatGrid    { return NewFloatGrid(g1.Dx(), g1.Dy()) }
func (fg *FloatGrid) Set(x, y int, v float64)   { fg.values[fg.stride*y+x] = v }
func (fg *FloatGrid) Get(x, y int) float64      { return fg.values[fg.stride*y+x] }
func (fg *FloatGrid) AddAt(x, y int, v float64) { fg.values[fg.stride*y+x] += v }
func (fg *FloatGrid) Dx() int                   { return fg.stride }
func (fg *FloatGrid) Dy() int {
	if fg.stride == 0 {
		return 0
	}
	return len(fg.values) / fg.stride
}

// Values exposes the backing slice, row-major. Callers that mutate it
// mutate the grid.
func (fg *FloatGrid) Values() []float64 { return fg.values }

func (g1 *FloatGrid) Copy() *FloatGrid {
	g2 := FloatGrid{stride: g1.stride, values: make([]float64, len(g1.values))}
	copy(g2.values, g1.values)
	return &g2
}

func (fg *FloatGrid) Sum() float64        { return floats.Sum(fg.values) }
func (fg *FloatGrid) SumSquares() float64 { return floats.Dot(fg.values, fg.values) }
func (fg *FloatGrid) Scale(f float64)     { floats.Scale(f, fg.values) }

// Add adds g2 into fg element-wise. The grids must be the same shape.
func (fg *FloatGrid) Add(g2 FloatGrid) error {
	if fg.Dx() != g2.Dx() || fg.Dy() != g2.Dy() {
		return fmt.Errorf("grid add: shape %dx%d != %dx%d", fg.Dx(), fg.Dy(), g2.Dx(), g2.Dy())
	}
	floats.Add(fg.values, g2.values)
	return nil
}

func (fg *FloatGrid) MinMax() (float64, float64) {
	if len(fg.values) == 0 {
		return 0, 0
	}
	return floats.Min(fg.values), floats.Max(fg.values)
}

// AllFinite is false if any value is NaN or Inf.
func (fg *FloatGrid) AllFinite() bool {
	for _, v := range fg.values {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}

// BlockSum returns a grid that is 1/k the size on each axis, each value
// the sum of a kxk block of the original. Summing (rather than averaging)
// keeps the total flux.
func (g1 *FloatGrid) BlockSum(k int) FloatGrid {
	width := g1.Dx() / k
	height := g1.Dy() / k
	g2 := NewFloatGrid(width, height)

	for y := 0; y < height*k; y++ {
		for x := 0; x < width*k; x++ {
			g2.AddAt(x/k, y/k, g1.Get(x, y))
		}
	}

	return g2
}

// Crop copies out the w x h block whose bottom left corner is at (x0,y0).
func (g1 *FloatGrid) Crop(x0, y0, w, h int) FloatGrid {
	g2 := NewFloatGrid(w, h)
	for y := 0; y < h; y++ {
		copy(g2.values[y*w:(y+1)*w], g1.values[(y0+y)*g1.stride+x0:(y0+y)*g1.stride+x0+w])
	}
	return g2
}

// Rows returns a fresh [row][col] copy, for handing off to code that
// wants nested slices.
func (fg *FloatGrid) Rows() [][]float64 {
	rows := make([][]float64, fg.Dy())
	for y := range rows {
		rows[y] = make([]float64, fg.stride)
		copy(rows[y], fg.values[y*fg.stride:(y+1)*fg.stride])
	}
	return rows
}

func (fg *FloatGrid) Stats() string {
	min, max := fg.MinMax()
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}, sum=%f]", fg.Dx(), fg.Dy(), min, max, fg.Sum())
}

// ToImg saves a simple grayscale, based on the range of values in the grid, and gamma scaling the
// gray to look normal for human vision. Row 0 of the grid ends up at the bottom of the image.
func (fg *FloatGrid) ToImg(title, filename string) error {
	min, max := math.Inf(1), math.Inf(-1)
	for i := 0; i < len(fg.values); i++ {
		if fg.values[i] > max {
			max = fg.values[i]
		}
		if fg.values[i] < min {
			min = fg.values[i]
		}
	}

	img := image.NewRGBA64(image.Rectangle{Max: image.Point{fg.Dx(), fg.Dy()}})
	for x := 0; x < fg.Dx(); x++ {
		for y := 0; y < fg.Dy(); y++ {
			lum := fg.Get(x, y)
			gray := GammaExpand_F64(Normalize(lum, min, max))
			col := color.RGBA64{uint16(gray * 65535.0), uint16(gray * 65535.0), uint16(gray * 65535.0), 0xFFFF}
			img.Set(x, fg.Dy()-1-y, col)
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1, 0, 0)
	dc.DrawString(title, 2, 12)
	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("FloatGrid.ToImg '%s': %v", filename, err)
	}
	return nil
}

package figure

// The three panel figure: noiseless image, noisy image and PSF side by
// side, with a small table of the computed quantities underneath.

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/abworrall/galsynth/pkg/emath"
	"github.com/abworrall/galsynth/pkg/render"
)

var PanelTitles = []string{"Noiseless Image", "Noisy Image", "Point Spread Function"}

type Options struct {
	Scale    int    // screen pixels per image pixel
	Stretch  string // see Stretches
	Colormap Colormap
	FontSize float64 // points, at 72 DPI
}

func DefaultOptions() Options {
	return Options{Scale: 4, Stretch: "linear", Colormap: Viridis, FontSize: 14}
}

const margin = 16

func loadFace(size float64) (font.Face, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse goregular: %v", err)
	}
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Composite draws the figure for one result.
func Composite(r *render.Result, opts Options) (image.Image, error) {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if len(opts.Colormap) == 0 {
		opts.Colormap = Viridis
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 14
	}

	face, err := loadFace(opts.FontSize)
	if err != nil {
		return nil, err
	}

	grids := []emath.FloatGrid{r.Noiseless, r.Noisy, r.PSF}
	panels := []image.Image{}
	for i, g := range grids {
		p, err := Panel(g, opts.Colormap, opts.Stretch, opts.Scale)
		if err != nil {
			return nil, fmt.Errorf("panel '%s': %v", PanelTitles[i], err)
		}
		panels = append(panels, p)
	}

	pw, ph := panels[0].Bounds().Dx(), panels[0].Bounds().Dy()
	line := opts.FontSize * 1.6
	titleH := int(line) + margin/2
	tableH := int(2*line) + margin

	width := len(panels)*pw + (len(panels)+1)*margin
	height := margin + titleH + ph + margin + tableH + margin

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(face)
	dc.SetRGB(0, 0, 0)

	top := float64(margin + titleH)
	for i, p := range panels {
		x := margin + i*(pw+margin)
		dc.DrawImage(p, x, int(top))
		dc.DrawStringAnchored(PanelTitles[i], float64(x)+float64(pw)/2, top-float64(margin)/2, 0.5, 0)
	}

	drawStatsTable(dc, r, float64(margin), top+float64(ph+margin), float64(width-2*margin), line)

	return dc.Image(), nil
}

func drawStatsTable(dc *gg.Context, r *render.Result, x, y, w, line float64) {
	headers := []string{"", "Signal-to-Noise Ratio", "g1", "g2"}
	values := []string{"Computed Quantities", fmt.Sprintf("%.4f", r.SNR), fmt.Sprintf("%.4f", r.G1), fmt.Sprintf("%.4f", r.G2)}
	colW := w / float64(len(headers))

	dc.SetLineWidth(1)
	for row, cells := range [][]string{headers, values} {
		base := y + float64(row)*line
		for i, s := range cells {
			dc.DrawStringAnchored(s, x+(float64(i)+0.5)*colW, base+line/2, 0.5, 0.35)
		}
		dc.DrawLine(x, base+line, x+w, base+line)
		dc.Stroke()
	}
}

package figure

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// A Colormap maps [0,1] onto colours by blending, in CIE L*a*b*, between
// evenly spaced anchor colours.
type Colormap []colorful.Color

// Viridis anchors, every 1/9th of the way along matplotlib's colormap.
var viridisHex = []string{
	"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

var Viridis = mustColormap(viridisHex...)

// Gray is black to white.
var Gray = mustColormap("#000000", "#ffffff")

func NewColormap(hexes ...string) (Colormap, error) {
	cm := Colormap{}
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, err
		}
		cm = append(cm, c)
	}
	return cm, nil
}

func mustColormap(hexes ...string) Colormap {
	cm, err := NewColormap(hexes...)
	if err != nil {
		panic(err)
	}
	return cm
}

// At returns the colour for f, which is clipped to [0,1].
func (cm Colormap) At(f float64) color.Color {
	if len(cm) == 1 {
		return cm[0]
	}
	if f <= 0 {
		return cm[0]
	} else if f >= 1 {
		return cm[len(cm)-1]
	}

	pos := f * float64(len(cm)-1)
	i := int(pos)
	return cm[i].BlendLab(cm[i+1], pos-float64(i)).Clamped()
}

package profile

import (
	"errors"
	"fmt"
	"strings"
)

// A Convolution of profiles. The renderer draws these with FFTs; the
// FluxDensity here is a direct real-space quadrature, which is slow and is
// only good to the truncation of the first component at its Extent().
type Convolution struct {
	Components []Profile
}

// pointIntegrator is what FluxDensity uses per point. Coarser than the
// default, since it's nested inside whatever is integrating the result.
var pointIntegrator = Integrator{Order: 8, Split: 2, MaxDepth: 8}

func Convolve(ps ...Profile) (Convolution, error) {
	if len(ps) == 0 {
		return Convolution{}, errors.New("convolve: no profiles")
	}
	c := Convolution{Components: make([]Profile, len(ps))}
	copy(c.Components, ps)
	return c, nil
}

func (c Convolution) FluxDensity(x, y float64) float64 {
	if len(c.Components) == 1 {
		return c.Components[0].FluxDensity(x, y)
	}

	f := c.Components[0]
	var g Profile = Convolution{Components: c.Components[1:]}
	e := f.Extent()

	// (f*g)(x) = integral f(u) g(x-u) du
	return pointIntegrator.Box(func(u, v float64) float64 {
		return f.FluxDensity(u, v) * g.FluxDensity(x-u, y-v)
	}, -e, -e, e, e)
}

func (c Convolution) Flux() float64 {
	flux := 1.0
	for _, p := range c.Components {
		flux *= p.Flux()
	}
	return flux
}

// WithFlux rescales the first component.
func (c Convolution) WithFlux(flux float64) Profile {
	out := Convolution{Components: make([]Profile, len(c.Components))}
	copy(out.Components, c.Components)
	out.Components[0] = c.Components[0].WithFlux(c.Components[0].Flux() * flux / c.Flux())
	return out
}

// Shear distributes over convolution, since the map is linear and keeps area.
func (c Convolution) Shear(s Shear) Profile {
	out := Convolution{Components: make([]Profile, len(c.Components))}
	for i, p := range c.Components {
		out.Components[i] = p.Shear(s)
	}
	return out
}

// Extent is a loose upper bound; the sum of the components' extents.
func (c Convolution) Extent() float64 {
	e := 0.0
	for _, p := range c.Components {
		e += p.Extent()
	}
	return e
}

func (c Convolution) Check() error {
	for i, p := range c.Components {
		if err := p.Check(); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
	}
	return nil
}

func (c Convolution) String() string {
	strs := []string{}
	for _, p := range c.Components {
		strs = append(strs, fmt.Sprintf("%v", p))
	}
	return fmt.Sprintf("Convolution{%s}", strings.Join(strs, " * "))
}

package galsynth

import (
	"fmt"
	"strings"
)

// Params are the seven knobs of the generative model.
type Params struct {
	PsfRe   float64 `yaml:"psf_re"`   // PSF FWHM, arcsec
	BulgeRe float64 `yaml:"bulge_re"` // Sersic half-light radius, arcsec
	BulgeN  float64 `yaml:"bulge_n"`  // Sersic index
	GalQ    float64 `yaml:"gal_q"`    // axis ratio, (0,1]
	GalBeta float64 `yaml:"gal_beta"` // position angle, radians
	Noise   float64 `yaml:"noise"`    // background sigma
	GalFlux float64 `yaml:"gal_flux"` // total flux
}

// A ParamSpec describes one parameter the way a slider would: its range,
// starting value and step. The ranges are advice for the UI; the engine
// checks the hard domain limits itself.
type ParamSpec struct {
	Name        string
	Description string
	Min, Max    float64
	Default     float64
	Step        float64
}

var Catalog = []ParamSpec{
	{"psf_re", "PSF moffat scale radius (in arcsec)", 0.5, 1.0, 0.75, 0.05},
	{"bulge_re", "Sersic radius (in arcsec)", 0.1, 0.6, 0.35, 0.05},
	{"bulge_n", "Sersic index", 0.5, 6.0, 3.25, 0.25},
	{"gal_q", "Ellipticity", 0.1976, 1.0, 0.6, 0.1},
	{"gal_beta", "Orientation (in radians)", 0.0, 3.14, 3.14 / 2, 0.1},
	{"noise", "Noise level", 200, 400, 300, 10},
	{"gal_flux", "Flux", 0.3e5, 4.0e5, 2.15e5, 0.1e5},
}

func LookupSpec(name string) (ParamSpec, error) {
	for _, s := range Catalog {
		if s.Name == name {
			return s, nil
		}
	}
	return ParamSpec{}, fmt.Errorf("no parameter named '%s'", name)
}

func DefaultParams() Params {
	p := Params{}
	for _, s := range Catalog {
		p.Set(s.Name, s.Default)
	}
	return p
}

// Field points at the named parameter, or is nil for unknown names.
func (p *Params) Field(name string) *float64 {
	switch name {
	case "psf_re":
		return &p.PsfRe
	case "bulge_re":
		return &p.BulgeRe
	case "bulge_n":
		return &p.BulgeN
	case "gal_q":
		return &p.GalQ
	case "gal_beta":
		return &p.GalBeta
	case "noise":
		return &p.Noise
	case "gal_flux":
		return &p.GalFlux
	}
	return nil
}

func (p Params) Get(name string) (float64, error) {
	f := p.Field(name)
	if f == nil {
		return 0, fmt.Errorf("no parameter named '%s'", name)
	}
	return *f, nil
}

func (p *Params) Set(name string, v float64) error {
	f := p.Field(name)
	if f == nil {
		return fmt.Errorf("no parameter named '%s'", name)
	}
	*f = v
	return nil
}

// OutOfRange lists the parameters that sit outside their catalog range.
// Nothing stops you rendering them.
func (p Params) OutOfRange() []string {
	out := []string{}
	for _, s := range Catalog {
		v, _ := p.Get(s.Name)
		if v < s.Min || v > s.Max {
			out = append(out, s.Name)
		}
	}
	return out
}

func (p Params) String() string {
	strs := []string{}
	for _, s := range Catalog {
		v, _ := p.Get(s.Name)
		strs = append(strs, fmt.Sprintf("%s=%g", s.Name, v))
	}
	return strings.Join(strs, " ")
}

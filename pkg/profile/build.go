package profile

import (
	"github.com/charmbracelet/log"

	"github.com/abworrall/galsynth/pkg/simerr"
)

// A Model is everything the renderer needs for one image: the sheared,
// flux-normalised galaxy, the PSF, and the shear that was applied.
type Model struct {
	Galaxy Profile
	PSF    Profile
	Shear  Shear
}

// Observed is the galaxy as seen through the PSF.
func (m Model) Observed() Convolution {
	c, _ := Convolve(m.Galaxy, m.PSF)
	return c
}

// BuildProfiles turns the scalar inputs into a Model. All domain checks
// happen here, before anything is drawn.
func BuildProfiles(bulgeRe, bulgeN, galQ, galBeta, galFlux, psfFWHM float64) (Model, error) {
	if err := simerr.RequirePositive("psf_re", psfFWHM); err != nil {
		return Model{}, err
	}
	if err := simerr.RequirePositive("gal_flux", galFlux); err != nil {
		return Model{}, err
	}

	shear, err := ShearFromAxisRatio(galQ, galBeta)
	if err != nil {
		return Model{}, err
	}

	sersic, err := NewSersic(bulgeN, bulgeRe, 1.0)
	if err != nil {
		return Model{}, err
	}
	galaxy := sersic.WithFlux(galFlux)
	if !shear.IsZero() {
		galaxy = galaxy.Shear(shear)
	}

	psf, err := NewMoffat(PSFBeta, psfFWHM, 1.0)
	if err != nil {
		return Model{}, err
	}

	log.Debugf("profiles: galaxy=%v psf=%v g=(%.4f,%.4f)", galaxy, psf, shear.G1, shear.G2)

	return Model{Galaxy: galaxy, PSF: psf, Shear: shear}, nil
}

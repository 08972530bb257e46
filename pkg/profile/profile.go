package profile

// Analytic light profiles on the sky plane. Coordinates are in arcsec,
// with every profile centred on the origin.

// A Profile is a continuous, non-negative flux density.
type Profile interface {
	// FluxDensity is flux per square arcsec at (x,y).
	FluxDensity(x, y float64) float64

	// Flux is the total, analytic, integrated flux.
	Flux() float64

	// WithFlux returns a copy rescaled to the given total flux.
	WithFlux(flux float64) Profile

	// Shear returns a copy distorted by s. Area, and so flux, is preserved.
	Shear(s Shear) Profile

	// Extent is a radius (arcsec) that encloses 99.5% of the flux.
	Extent() float64

	// Check returns an error if the profile can't be evaluated reliably;
	// e.g. a Sersic index outside the range where its normalisation is
	// numerically stable.
	Check() error
}

// PSFBeta is the Moffat concentration exponent used for every PSF.
const PSFBeta = 2.0

// Containment is the flux fraction that Extent() encloses.
const Containment = 0.995

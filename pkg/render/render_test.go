package render

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/abworrall/galsynth/pkg/emath"
	"github.com/abworrall/galsynth/pkg/profile"
	"github.com/abworrall/galsynth/pkg/simerr"
)

type scenario struct {
	psf, re, n, q, beta, noise, flux float64
}

var defaultScenario = scenario{0.75, 0.35, 3.25, 0.6, math.Pi / 2, 300, 2.15e5}

func (s scenario) synthesize(t *testing.T, seeds ...uint64) *Result {
	t.Helper()
	m, err := profile.BuildProfiles(s.re, s.n, s.q, s.beta, s.flux, s.psf)
	if err != nil {
		t.Fatal(err)
	}
	photon, bg := uint64(1314663), uint64(42)
	if len(seeds) == 2 {
		photon, bg = seeds[0], seeds[1]
	}
	r, err := Synthesize(m, s.noise, NewNoiseSources(photon, bg), DefaultDrawer())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestScenario(t *testing.T) {
	r := defaultScenario.synthesize(t)

	for name, g := range map[string]emath.FloatGrid{"noiseless": r.Noiseless, "noisy": r.Noisy, "psf": r.PSF} {
		if g.Dx() != ImageSize || g.Dy() != ImageSize {
			t.Errorf("%s is %dx%d", name, g.Dx(), g.Dy())
		}
	}

	if sum := r.Noiseless.Sum(); math.Abs(sum/2.15e5-1) > 0.01 {
		t.Errorf("noiseless flux %f, want 2.15e5 +/- 1%%", sum)
	}
	if math.Abs(r.G1+0.25) > 1e-12 || math.Abs(r.G2) > 1e-12 {
		t.Errorf("shear (%g,%g), want (-0.25,0)", r.G1, r.G2)
	}

	ss := 0.0
	for _, v := range r.Noiseless.Values() {
		ss += v * v
	}
	if want := math.Sqrt(ss) / 300; math.Abs(r.SNR-want) > 1e-9*want {
		t.Errorf("snr %f, recomputed %f", r.SNR, want)
	}
}

func TestPSFImageSumsToOne(t *testing.T) {
	tests := []scenario{
		defaultScenario,
		{0.75, 0.1, 0.5, 0.2, 0, 200, 3e4},
		{0.75, 0.6, 6, 1, 3, 400, 4e5},
	}
	for _, s := range tests {
		r := s.synthesize(t)
		if sum := r.PSF.Sum(); math.Abs(sum-1) > 0.01 {
			t.Errorf("%+v: psf sum %f", s, sum)
		}
	}
}

func TestCompactProfileFlux(t *testing.T) {
	s := scenario{0.5, 0.3, 1, 0.8, 0.3, 300, 1e5}
	r := s.synthesize(t)
	if sum := r.Noiseless.Sum(); math.Abs(sum/1e5-1) > 0.005 {
		t.Errorf("noiseless flux %f, want 1e5 +/- 0.5%%", sum)
	}
}

func TestFootprintIntegration(t *testing.T) {
	sersic, _ := profile.NewSersic(3.25, 0.35, 1000)
	img, err := DefaultDrawer().DrawImage(sersic, ImageSize, ImageSize)
	if err != nil {
		t.Fatal(err)
	}

	half := PixelScale * ImageSize / 2
	want := profile.Integrate(sersic, -half, -half, half, half)
	if got := img.Sum(); math.Abs(got/want-1) > 1e-4 {
		t.Errorf("pixel sum %f, direct integral %f", got, want)
	}

	// the four pixels around the centre share the cusp equally
	a, b := img.Get(31, 31), img.Get(32, 32)
	if math.Abs(a-b) > 1e-9*a {
		t.Errorf("central pixels differ: %g vs %g", a, b)
	}
}

func TestImageOrientationAndSymmetry(t *testing.T) {
	r := defaultScenario.synthesize(t) // beta=pi/2, major axis along y
	g := r.Noiseless
	_, max := g.MinMax()

	if g.Get(32, 37) <= g.Get(37, 32) {
		t.Errorf("expected more flux along y: %g vs %g", g.Get(32, 37), g.Get(37, 32))
	}
	for y := 0; y < ImageSize; y++ {
		for x := 0; x < ImageSize; x++ {
			if d := math.Abs(g.Get(x, y) - g.Get(ImageSize-1-x, y)); d > 1e-6*max {
				t.Fatalf("[%d,%d] not mirror symmetric: %g vs %g", x, y, g.Get(x, y), g.Get(ImageSize-1-x, y))
			}
		}
	}
}

func TestIdempotence(t *testing.T) {
	r1 := defaultScenario.synthesize(t, 7, 11)
	r2 := defaultScenario.synthesize(t, 7, 11)

	for name, pair := range map[string][2]emath.FloatGrid{
		"noiseless": {r1.Noiseless, r2.Noiseless},
		"noisy":     {r1.Noisy, r2.Noisy},
		"psf":       {r1.PSF, r2.PSF},
	} {
		a, b := pair[0].Values(), pair[1].Values()
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("%s differs at %d: %v vs %v", name, i, a[i], b[i])
			}
		}
	}
	if r1.SNR != r2.SNR {
		t.Errorf("snr differs: %v vs %v", r1.SNR, r2.SNR)
	}

	// a new background seed changes only the noisy image
	r3 := defaultScenario.synthesize(t, 7, 12)
	if r3.Noiseless.Values()[2080] != r1.Noiseless.Values()[2080] {
		t.Errorf("noiseless image depends on the background seed")
	}
	same := true
	for i, v := range r3.Noisy.Values() {
		if v != r1.Noisy.Values()[i] {
			same = false
			break
		}
	}
	if same {
		t.Errorf("different background seeds gave identical noisy images")
	}
}

func TestSNRScaling(t *testing.T) {
	base := defaultScenario.synthesize(t)

	doubleFlux := defaultScenario
	doubleFlux.flux *= 2
	if got := doubleFlux.synthesize(t).SNR / base.SNR; math.Abs(got-2) > 1e-9 {
		t.Errorf("doubling flux scaled snr by %f", got)
	}

	doubleNoise := defaultScenario
	doubleNoise.noise *= 2
	if got := doubleNoise.synthesize(t).SNR / base.SNR; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("doubling noise scaled snr by %f", got)
	}
}

func TestSynthesizeErrors(t *testing.T) {
	m, err := profile.BuildProfiles(0.35, 3.25, 0.6, 0, 1e5, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	noise := NewNoiseSources(1, 2)

	for _, sigma := range []float64{0, -300, math.NaN()} {
		_, err := Synthesize(m, sigma, noise, DefaultDrawer())
		var ipe *simerr.InvalidParameterError
		if !errors.As(err, &ipe) || ipe.Param != "noise" {
			t.Errorf("sigma=%g: got %v, want InvalidParameterError for noise", sigma, err)
		}
	}

	var ipe *simerr.InvalidParameterError
	for _, ns := range []NoiseSources{{}, {Photon: noise.Photon}, {Background: noise.Background}} {
		if _, err := Synthesize(m, 300, ns, DefaultDrawer()); !errors.As(err, &ipe) || ipe.Param != "noise_sources" {
			t.Errorf("missing noise sources: got %v, want InvalidParameterError", err)
		}
	}

	bad := DefaultDrawer()
	bad.Oversample = 0
	if _, err := Synthesize(m, 300, noise, bad); !errors.As(err, &ipe) {
		t.Errorf("oversample=0: got %v", err)
	}

	for _, n := range []float64{0.2, 7} {
		m, err := profile.BuildProfiles(0.35, n, 0.6, 0, 1e5, 0.75)
		if err != nil {
			t.Fatalf("n=%g: %v", n, err)
		}
		r, err := Synthesize(m, 300, noise, DefaultDrawer())
		var re *simerr.RenderError
		if !errors.As(err, &re) {
			t.Errorf("n=%g: got %v, want RenderError", n, err)
		}
		if r != nil {
			t.Errorf("n=%g: got a partial result", n)
		}
	}
}

func TestSNROverflow(t *testing.T) {
	// every pixel is finite, but the sum of their squares is not
	m, err := profile.BuildProfiles(0.35, 3.25, 0.6, 0, 1e300, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	r, err := Synthesize(m, 300, NewNoiseSources(1, 2), DefaultDrawer())
	var re *simerr.RenderError
	if !errors.As(err, &re) || re.Stage != "snr" {
		t.Errorf("got %v, want RenderError at the snr stage", err)
	}
	if r != nil {
		t.Errorf("got a partial result: %v", r)
	}
}

func TestCatalogEdgeAxisRatioFlux(t *testing.T) {
	s := scenario{0.75, 0.35, 1, 0.1976, 0.4, 300, 1e5}
	r := s.synthesize(t)
	if sum := r.Noiseless.Sum(); math.Abs(sum/s.flux-1) > 0.01 {
		t.Errorf("q=%g: noiseless flux %f, want %g +/- 1%%", s.q, sum, s.flux)
	}
}

func TestThinProfileWarns(t *testing.T) {
	var buf bytes.Buffer
	old := log.Default()
	log.SetDefault(log.New(&buf))
	defer log.SetDefault(old)

	sersic, _ := profile.NewSersic(1, 0.35, 1)
	cell := PixelScale / 4

	fat, _ := profile.ShearFromAxisRatio(0.1976, 0)
	warnIfThin(sersic.Shear(fat), cell)
	if buf.Len() != 0 {
		t.Errorf("unexpected warning at q=0.1976: %s", buf.String())
	}

	thin, _ := profile.ShearFromAxisRatio(1e-9, 0)
	warnIfThin(sersic.Shear(thin), cell)
	if !strings.Contains(buf.String(), "flux will be lost") {
		t.Errorf("no warning at q=1e-9, log: %q", buf.String())
	}
}

func TestPoissonNoise(t *testing.T) {
	img := emath.NewFloatGrid(64, 64)
	vals := img.Values()
	for i := range vals {
		vals[i] = 100
	}
	vals[0] = -1e-9 // round-off from the FFT
	vals[1] = 0

	PoissonNoise(&img, rand.NewSource(99))

	if vals[0] != 0 || vals[1] != 0 {
		t.Errorf("non-positive means should give zero counts: %g, %g", vals[0], vals[1])
	}
	for _, v := range vals {
		if v != math.Trunc(v) || v < 0 {
			t.Fatalf("non-integer count %g", v)
		}
	}
	mean, std := stat.MeanStdDev(vals[2:], nil)
	if math.Abs(mean-100) > 1 || math.Abs(std-10) > 1 {
		t.Errorf("mean %f std %f, want ~100, ~10", mean, std)
	}
}

func TestGaussianNoise(t *testing.T) {
	g := GaussianNoise(64, 64, 300, rand.NewSource(5))
	mean, std := stat.MeanStdDev(g.Values(), nil)
	if math.Abs(mean) > 20 || math.Abs(std/300-1) > 0.05 {
		t.Errorf("mean %f std %f, want ~0, ~300", mean, std)
	}

	g2 := GaussianNoise(64, 64, 300, rand.NewSource(5))
	if g.Values()[100] != g2.Values()[100] {
		t.Errorf("same seed, different field")
	}
}

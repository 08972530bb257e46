package galsynth

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v2"

	"github.com/abworrall/galsynth/pkg/render"
	"github.com/abworrall/galsynth/pkg/simerr"
)

/* Example config file ...

verbosity: 1
oversample: 4
padfactor: 2
photonseed: 1314663
backgroundseed: 0     # 0 means seed from the clock
params:
  psf_re: 0.75
  bulge_re: 0.35
  bulge_n: 3.25
  gal_q: 0.6
  gal_beta: 1.57
  noise: 300
  gal_flux: 215000
batch:
  count: 500
  minsnr: 10
  maxsnr: 100
  workers: 8

*/

// The default photon noise seed, so that single renders repeat.
const DefaultPhotonSeed = 1314662 + 1

// Environment variables that override the config file. A .env file in
// the working dir is loaded first, if there is one.
const (
	EnvPhotonSeed     = "GALSYNTH_PHOTON_SEED"
	EnvBackgroundSeed = "GALSYNTH_BACKGROUND_SEED"
	EnvOversample     = "GALSYNTH_OVERSAMPLE"
)

type Config struct {
	Verbosity int

	Oversample int // fine cells per pixel, per axis
	PadFactor  int // FFT grid size, relative to the image

	PhotonSeed     uint64 // 0 means seed from the clock
	BackgroundSeed uint64 // 0 means seed from the clock

	Params Params
	Batch  Batch
}

// Batch controls dataset generation.
type Batch struct {
	Count       int     // samples to keep
	MinSNR      float64 // samples outside [MinSNR,MaxSNR] are thrown away
	MaxSNR      float64
	Workers     int
	MaxAttempts int // stop after this many draws; 0 means 20*Count
}

func NewConfig() Config {
	return Config{
		Oversample:     4,
		PadFactor:      2,
		PhotonSeed:     DefaultPhotonSeed,
		BackgroundSeed: 0,
		Params:         DefaultParams(),
		Batch: Batch{
			Count:   100,
			MinSNR:  10,
			MaxSNR:  100,
			Workers: runtime.NumCPU(),
		},
	}
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

// LoadConfig reads a YAML config file, applies any environment overrides,
// and finalizes it.
func LoadConfig(filename string) (Config, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("read config '%s': %w", filename, err)
	}
	c, err := newConfigFromYaml(contents)
	if err != nil {
		return Config{}, fmt.Errorf("parse config '%s': %w", filename, err)
	}
	if err := c.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return c, c.FinalizeConfig()
}

func (c Config) AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v", err)
	}
	return string(b)
}

// ApplyEnv overrides seeds and oversampling from the environment.
func (c *Config) ApplyEnv() error {
	if err := envUint64(EnvPhotonSeed, &c.PhotonSeed); err != nil {
		return err
	}
	if err := envUint64(EnvBackgroundSeed, &c.BackgroundSeed); err != nil {
		return err
	}
	return envInt(EnvOversample, &c.Oversample)
}

func envUint64(key string, dst *uint64) error {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("env %s='%s': %w", key, v, err)
		}
		*dst = n
	}
	return nil
}

func envInt(key string, dst *int) error {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env %s='%s': %w", key, v, err)
		}
		*dst = n
	}
	return nil
}

// SetSeed sets both noise seeds, for full reproducibility.
func (c *Config) SetSeed(seed uint64) {
	c.PhotonSeed = seed
	c.BackgroundSeed = seed
}

// FinalizeConfig does sanity checks, and fills in any zero values that
// have sensible defaults.
func (c *Config) FinalizeConfig() error {
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = runtime.NumCPU()
	}
	if c.Batch.MaxAttempts <= 0 {
		c.Batch.MaxAttempts = 20 * c.Batch.Count
	}
	if c.Batch.Count < 0 {
		return simerr.Invalid("batch.count", float64(c.Batch.Count), "must be >= 0")
	}
	if c.Batch.MaxSNR < c.Batch.MinSNR {
		return simerr.Invalid("batch.maxsnr", c.Batch.MaxSNR, fmt.Sprintf("must be >= minsnr (%g)", c.Batch.MinSNR))
	}

	if err := c.Drawer().Validate(); err != nil {
		return err
	}

	if out := c.Params.OutOfRange(); len(out) > 0 {
		log.Warnf("params outside the usual ranges: %v", out)
	}
	return nil
}

func (c Config) Drawer() render.Drawer {
	return render.Drawer{
		Scale:      render.PixelScale,
		Oversample: c.Oversample,
		PadFactor:  c.PadFactor,
	}
}

// NoiseSources builds fresh generators from the configured seeds.
func (c Config) NoiseSources() render.NoiseSources {
	return render.NewNoiseSources(c.PhotonSeed, c.BackgroundSeed)
}

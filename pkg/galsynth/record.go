package galsynth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/galsynth/pkg/profile"
	"github.com/abworrall/galsynth/pkg/render"
)

// A Record is the YAML sidecar written next to a rendered image: what went
// in, what came out, and where the pixels went.
type Record struct {
	Index          int `yaml:",omitempty"`
	Params         Params
	PhotonSeed     uint64
	BackgroundSeed uint64

	SNR float64
	G1  float64
	G2  float64

	// The axis ratio and position angle (radians) read back off G1, G2.
	Q    float64
	Beta float64

	Flux float64 // sum of the noiseless image

	Files map[string]string `yaml:",omitempty"`

	// HDR files can't hold negative values; add these back after loading.
	HDROffsets map[string]float64 `yaml:",omitempty"`
}

func NewRecord(p Params, cfg Config, r *render.Result) Record {
	shear := profile.Shear{G1: r.G1, G2: r.G2}
	return Record{
		Params:         p,
		PhotonSeed:     cfg.PhotonSeed,
		BackgroundSeed: cfg.BackgroundSeed,
		SNR:            r.SNR,
		G1:             r.G1,
		G2:             r.G2,
		Q:              shear.AxisRatio(),
		Beta:           shear.PositionAngle(),
		Flux:           r.Noiseless.Sum(),
		Files:          map[string]string{},
		HDROffsets:     map[string]float64{},
	}
}

// WriteYaml writes v (a Record, or a slice of them) as YAML.
func WriteYaml(v interface{}, filename string) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal '%s': %w", filename, err)
	}
	if err := os.WriteFile(filename, b, 0644); err != nil {
		return fmt.Errorf("write '%s': %w", filename, err)
	}
	return nil
}

func LoadRecords(filename string) ([]Record, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read '%s': %w", filename, err)
	}
	recs := []Record{}
	if err := yaml.Unmarshal(contents, &recs); err != nil {
		return nil, fmt.Errorf("parse '%s': %w", filename, err)
	}
	return recs, nil
}

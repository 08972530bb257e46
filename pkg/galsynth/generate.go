package galsynth

import (
	"github.com/abworrall/galsynth/pkg/profile"
	"github.com/abworrall/galsynth/pkg/render"
)

// Generate renders one image from fresh noise sources seeded from cfg. With
// both seeds set, the same inputs always give bit-identical results.
func Generate(p Params, cfg Config) (*render.Result, error) {
	return generate(p, cfg.NoiseSources(), cfg.Drawer())
}

func generate(p Params, noise render.NoiseSources, d render.Drawer) (*render.Result, error) {
	m, err := profile.BuildProfiles(p.BulgeRe, p.BulgeN, p.GalQ, p.GalBeta, p.GalFlux, p.PsfRe)
	if err != nil {
		return nil, err
	}
	return render.Synthesize(m, p.Noise, noise, d)
}

// A Simulator keeps its noise sources between calls, so successive images
// get successive noise realisations, the way an interactive session does.
// Not safe for concurrent use; give each goroutine its own.
type Simulator struct {
	noise  render.NoiseSources
	drawer render.Drawer
}

func NewSimulator(cfg Config) *Simulator {
	return &Simulator{
		noise:  cfg.NoiseSources(),
		drawer: cfg.Drawer(),
	}
}

func (s *Simulator) Generate(p Params) (*render.Result, error) {
	return generate(p, s.noise, s.drawer)
}

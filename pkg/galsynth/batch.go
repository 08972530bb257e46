package galsynth

// Dataset generation: draw random parameters from the catalog ranges,
// render them, and keep the samples whose SNR falls inside a window.

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/skypies/util/histogram"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/abworrall/galsynth/pkg/render"
)

type Sample struct {
	Index  int // draw number; the seeds are derived from it
	Params Params
	Result *render.Result
}

// BatchStats tallies every draw a batch made, kept or not.
type BatchStats struct {
	Draws     int
	InWindow  int // may be more than were returned, the last chunk overshoots
	TooFaint  int
	TooBright int

	// SNR of every draw; the last bucket catches everything above snrHistMax.
	SNRHist histogram.Histogram `yaml:"-"`
}

const (
	snrHistMax     = 200
	snrHistBuckets = 40
)

func (bs *BatchStats) add(snr float64, minSNR, maxSNR float64) bool {
	bs.Draws++
	bs.SNRHist.Add(histogram.ScalarVal(int(math.Min(snr, snrHistMax-1))))
	switch {
	case snr < minSNR:
		bs.TooFaint++
	case snr > maxSNR:
		bs.TooBright++
	default:
		bs.InWindow++
		return true
	}
	return false
}

// Seed streams, mixed with the base seed and draw index.
const (
	streamParams uint64 = iota + 1
	streamPhoton
	streamBackground
)

// GenerateBatch draws samples until b.Count of them land inside the SNR
// window, or b.MaxAttempts draws have been made. Every draw is seeded from
// its index, and draws are kept in index order, so the result doesn't
// depend on how the workers were scheduled.
func GenerateBatch(ctx context.Context, cfg Config, b Batch) ([]Sample, BatchStats, error) {
	if b.Workers <= 0 {
		b.Workers = 1
	}
	if b.MaxAttempts <= 0 {
		b.MaxAttempts = 20 * b.Count
	}

	photonBase := cfg.PhotonSeed
	if photonBase == 0 {
		photonBase = uint64(time.Now().UnixNano())
	}
	bgBase := cfg.BackgroundSeed
	if bgBase == 0 {
		bgBase = uint64(time.Now().UnixNano()) + 1
	}

	stats := BatchStats{
		SNRHist: histogram.Histogram{NumBuckets: snrHistBuckets, ValMin: 0, ValMax: snrHistMax},
	}
	kept := []Sample{}
	next := 0
	chunk := 4 * b.Workers

	for len(kept) < b.Count && next < b.MaxAttempts {
		end := min(next+chunk, b.MaxAttempts)
		samples, err := runBatchChunk(ctx, cfg.Drawer(), photonBase, bgBase, next, end, b.Workers)
		if err != nil {
			return nil, stats, err
		}
		for _, s := range samples {
			if stats.add(s.Result.SNR, b.MinSNR, b.MaxSNR) {
				kept = append(kept, s)
			}
		}
		next = end
		log.Debugf("batch: %d draws, %d kept", next, len(kept))
	}

	if len(kept) > b.Count {
		kept = kept[:b.Count]
	}

	log.Infof("batch: kept %d of %d draws (%d below snr %g, %d above snr %g)",
		len(kept), stats.Draws, stats.TooFaint, b.MinSNR, stats.TooBright, b.MaxSNR)
	log.Debugf("batch: snr histogram %v", stats.SNRHist)

	if len(kept) < b.Count {
		return kept, stats, fmt.Errorf("batch: only %d of %d samples inside snr window [%g,%g] after %d draws",
			len(kept), b.Count, b.MinSNR, b.MaxSNR, stats.Draws)
	}
	return kept, stats, nil
}

type batchJob struct {
	Index  int
	Sample Sample
	Err    error
}

// runBatchChunk renders draws [start,end) with a pool of workers, and
// returns them sorted by index.
func runBatchChunk(ctx context.Context, d render.Drawer, photonBase, bgBase uint64, start, end, nWorkers int) ([]Sample, error) {
	var wg sync.WaitGroup
	jobsChan := make(chan batchJob, end-start)
	resultsChan := make(chan batchJob, end-start)

	for i := 0; i < nWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobsChan {
				if err := ctx.Err(); err != nil {
					job.Err = err
				} else {
					job.Sample, job.Err = drawSample(job.Index, d, photonBase, bgBase)
				}
				resultsChan <- job
			}
		}()
	}

	for i := start; i < end; i++ {
		jobsChan <- batchJob{Index: i}
	}
	close(jobsChan)

	wg.Wait()
	close(resultsChan)

	jobs := []batchJob{}
	for job := range resultsChan {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Index < jobs[j].Index })

	samples := []Sample{}
	for _, job := range jobs {
		if job.Err != nil {
			return nil, fmt.Errorf("batch draw %d: %w", job.Index, job.Err)
		}
		samples = append(samples, job.Sample)
	}
	return samples, nil
}

func drawSample(index int, d render.Drawer, photonBase, bgBase uint64) (Sample, error) {
	p := RandomParams(rand.NewSource(mixSeed(photonBase, index, streamParams)))
	noise := render.NoiseSources{
		Photon:     rand.NewSource(mixSeed(photonBase, index, streamPhoton)),
		Background: rand.NewSource(mixSeed(bgBase, index, streamBackground)),
	}

	r, err := generate(p, noise, d)
	if err != nil {
		return Sample{}, fmt.Errorf("%s: %w", p, err)
	}
	return Sample{Index: index, Params: p, Result: r}, nil
}

// RandomParams draws every parameter uniformly from its catalog range.
func RandomParams(src rand.Source) Params {
	p := Params{}
	for _, s := range Catalog {
		p.Set(s.Name, distuv.Uniform{Min: s.Min, Max: s.Max, Src: src}.Rand())
	}
	return p
}

// mixSeed derives an independent seed for one stream of one draw, using
// the splitmix64 finalizer. Never returns 0.
func mixSeed(base uint64, index int, stream uint64) uint64 {
	z := base ^ (uint64(index)<<8 | stream)
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	if z == 0 {
		return 1
	}
	return z
}

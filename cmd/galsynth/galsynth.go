package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abworrall/galsynth/pkg/galsynth"
)

type options struct {
	configFile     string
	verbose        bool
	seed           uint64
	photonSeed     uint64
	backgroundSeed uint64
	oversample     int
	params         galsynth.Params

	outDir  string
	formats []string // of "png", "tiff", "hdr", "dump"
	stretch string
	scale   int
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "galsynth",
		Short:        "galsynth simulates images of a single galaxy seen through a PSF",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if opts.verbose {
				level = log.DebugLevel
			}
			log.SetDefault(newLogger(os.Stderr, level))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "YAML config file")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	pf.Uint64Var(&opts.seed, "seed", 0, "seed for both noise stages (overrides the two below)")
	pf.Uint64Var(&opts.photonSeed, "photon-seed", galsynth.DefaultPhotonSeed, "seed for the photon noise; 0 seeds from the clock")
	pf.Uint64Var(&opts.backgroundSeed, "background-seed", 0, "seed for the background noise; 0 seeds from the clock")
	pf.IntVar(&opts.oversample, "oversample", 4, "fine cells per pixel, per axis, when integrating profiles")
	pf.StringVarP(&opts.outDir, "out", "o", ".", "output directory")
	pf.StringSliceVar(&opts.formats, "format", []string{"png"}, "outputs to write: png, tiff, hdr, dump")

	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newBatchCmd(opts))
	root.AddCommand(newParamsCmd(opts))

	return root
}

// loadConfig layers the config: defaults, then the config file, then the
// environment (after loading any .env), then command line flags.
func loadConfig(cmd *cobra.Command, opts *options) (galsynth.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return galsynth.Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg galsynth.Config
	if opts.configFile != "" {
		c, err := galsynth.LoadConfig(opts.configFile)
		if err != nil {
			return cfg, err
		}
		cfg = c
	} else {
		cfg = galsynth.NewConfig()
		if err := cfg.ApplyEnv(); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("photon-seed") {
		cfg.PhotonSeed = opts.photonSeed
	}
	if flags.Changed("background-seed") {
		cfg.BackgroundSeed = opts.backgroundSeed
	}
	if flags.Changed("seed") {
		cfg.SetSeed(opts.seed)
	}
	if flags.Changed("oversample") {
		cfg.Oversample = opts.oversample
	}
	for _, s := range galsynth.Catalog {
		if flags.Changed(s.Name) {
			v, _ := opts.params.Get(s.Name)
			cfg.Params.Set(s.Name, v)
		}
	}

	if cfg.Verbosity > 0 {
		log.SetLevel(log.DebugLevel)
	}

	return cfg, cfg.FinalizeConfig()
}

// addParamFlags adds a flag per model parameter, named as in the catalog.
func addParamFlags(cmd *cobra.Command, opts *options) {
	opts.params = galsynth.DefaultParams()
	for _, s := range galsynth.Catalog {
		ptr := opts.params.Field(s.Name)
		cmd.Flags().Float64Var(ptr, s.Name, *ptr, fmt.Sprintf("%s [%g, %g]", s.Description, s.Min, s.Max))
	}
}

func newGenerateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render one galaxy, and write the three panel figure",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			log.Infof("generating: %s", cfg.Params)
			r, err := galsynth.Generate(cfg.Params, cfg)
			if err != nil {
				log.Errorf("generate failed: %v", err)
				return err
			}
			log.Infof("result: snr=%.3f g1=%.4f g2=%.4f flux=%.1f", r.SNR, r.G1, r.G2, r.Noiseless.Sum())

			rec := galsynth.NewRecord(cfg.Params, cfg, r)
			if err := writeResult(opts, "galsynth", r, &rec); err != nil {
				return err
			}
			return galsynth.WriteYaml(rec, outPath(opts, "galsynth.yaml"))
		},
	}
	addParamFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.stretch, "stretch", "linear", "display stretch for the figure: linear, drago03, reinhard05")
	cmd.Flags().IntVar(&opts.scale, "scale", 4, "screen pixels per image pixel in the figure")
	return cmd
}

func newBatchCmd(opts *options) *cobra.Command {
	var count, workers int
	var minSNR, maxSNR float64

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Render a dataset of random galaxies, keeping those inside an SNR window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			b := cfg.Batch
			if cmd.Flags().Changed("count") {
				b.Count = count
				b.MaxAttempts = 20 * count
			}
			if cmd.Flags().Changed("workers") {
				b.Workers = workers
			}
			if cmd.Flags().Changed("min-snr") {
				b.MinSNR = minSNR
			}
			if cmd.Flags().Changed("max-snr") {
				b.MaxSNR = maxSNR
			}

			samples, stats, err := galsynth.GenerateBatch(cmd.Context(), cfg, b)
			if err != nil {
				return err
			}

			recs := []galsynth.Record{}
			for _, s := range samples {
				rec := galsynth.NewRecord(s.Params, cfg, s.Result)
				rec.Index = s.Index
				if err := writeResult(opts, fmt.Sprintf("sample-%05d", s.Index), s.Result, &rec); err != nil {
					return err
				}
				recs = append(recs, rec)
			}

			if err := os.MkdirAll(opts.outDir, 0755); err != nil {
				return fmt.Errorf("mkdir '%s': %w", opts.outDir, err)
			}
			if err := galsynth.WriteYaml(stats, outPath(opts, "batch-stats.yaml")); err != nil {
				return err
			}

			filename := outPath(opts, "index.yaml")
			log.Infof("writing %d records to '%s'", len(recs), filename)
			return galsynth.WriteYaml(recs, filename)
		},
	}
	cmd.Flags().IntVar(&count, "count", 100, "number of samples to keep")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (default: one per CPU)")
	cmd.Flags().Float64Var(&minSNR, "min-snr", 10, "discard samples below this SNR")
	cmd.Flags().Float64Var(&maxSNR, "max-snr", 100, "discard samples above this SNR")
	return cmd
}

func newParamsCmd(opts *options) *cobra.Command {
	var asYaml bool
	cmd := &cobra.Command{
		Use:   "params",
		Short: "List the model parameters and their ranges",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asYaml {
				cfg, err := loadConfig(cmd, opts)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), cfg.AsYaml())
				return nil
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-10s %10s %10s %10s %8s  %s\n", "name", "min", "max", "default", "step", "description")
			for _, s := range galsynth.Catalog {
				fmt.Fprintf(w, "%-10s %10g %10g %10g %8g  %s\n", s.Name, s.Min, s.Max, s.Default, s.Step, s.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYaml, "yaml", false, "print the full effective config as YAML instead")
	return cmd
}

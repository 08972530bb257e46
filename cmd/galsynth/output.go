package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/abworrall/galsynth/pkg/emath"
	"github.com/abworrall/galsynth/pkg/figure"
	"github.com/abworrall/galsynth/pkg/galsynth"
	"github.com/abworrall/galsynth/pkg/render"
)

func outPath(opts *options, name string) string {
	return filepath.Join(opts.outDir, name)
}

// writeResult writes the requested outputs for one result, noting the
// filenames in rec.
func writeResult(opts *options, stem string, r *render.Result, rec *galsynth.Record) error {
	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return fmt.Errorf("mkdir '%s': %w", opts.outDir, err)
	}

	grids := map[string]emath.FloatGrid{
		"noiseless": r.Noiseless,
		"noisy":     r.Noisy,
		"psf":       r.PSF,
	}

	for _, format := range opts.formats {
		switch format {
		case "png":
			fo := figure.DefaultOptions()
			if opts.stretch != "" {
				fo.Stretch = opts.stretch
			}
			if opts.scale > 0 {
				fo.Scale = opts.scale
			}
			img, err := figure.Composite(r, fo)
			if err != nil {
				return err
			}
			filename := outPath(opts, stem+".png")
			if err := figure.WritePNG(img, filename); err != nil {
				return err
			}
			rec.Files["figure"] = filename

		case "tiff":
			for name, g := range grids {
				filename := outPath(opts, fmt.Sprintf("%s-%s.tiff", stem, name))
				if _, _, err := figure.WriteTIFF(g, filename); err != nil {
					return err
				}
				rec.Files[name+".tiff"] = filename
			}

		case "hdr":
			for name, g := range grids {
				filename := outPath(opts, fmt.Sprintf("%s-%s.hdr", stem, name))
				offset, err := figure.WriteHDR(g, filename)
				if err != nil {
					return err
				}
				rec.Files[name+".hdr"] = filename
				rec.HDROffsets[name] = offset
			}

		case "dump":
			// quick grayscale looks at each grid, no colormap or stretch
			for name, g := range grids {
				filename := outPath(opts, fmt.Sprintf("%s-%s-dump.png", stem, name))
				if err := g.ToImg(fmt.Sprintf("%s %s", stem, name), filename); err != nil {
					return err
				}
				rec.Files[name+".dump"] = filename
			}

		default:
			return fmt.Errorf("no output format named '%s'", format)
		}
	}

	log.Debugf("wrote %s: %v", stem, rec.Files)
	return nil
}

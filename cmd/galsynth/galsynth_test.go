package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/galsynth/pkg/galsynth"
)

func TestParamsCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"params"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, s := range galsynth.Catalog {
		if !strings.Contains(out.String(), s.Name) {
			t.Errorf("params output is missing %s:\n%s", s.Name, out.String())
		}
	}
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir) // keep godotenv away from any real .env

	root := newRootCmd()
	root.SetArgs([]string{"generate", "-o", dir, "--format", "png,tiff,hdr,dump", "--seed", "5", "--oversample", "2", "--gal_q", "0.8"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"galsynth.png", "galsynth-noisy.tiff", "galsynth-psf.hdr", "galsynth-noiseless-dump.png", "galsynth.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output: %v", err)
		}
	}

	b, err := os.ReadFile(filepath.Join(dir, "galsynth.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	rec := galsynth.Record{}
	if err := yaml.Unmarshal(b, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Params.GalQ != 0.8 || rec.PhotonSeed != 5 || rec.BackgroundSeed != 5 {
		t.Errorf("record = %+v", rec)
	}
	if rec.SNR <= 0 || len(rec.Files) != 10 {
		t.Errorf("record = %+v", rec)
	}
}

func TestGenerateCommandInvalid(t *testing.T) {
	chdir(t, t.TempDir())
	root := newRootCmd()
	root.SetArgs([]string{"generate", "-o", t.TempDir(), "--gal_q", "0"})
	if err := root.Execute(); err == nil {
		t.Errorf("expected gal_q=0 to fail")
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	root := newRootCmd()
	root.SetArgs([]string{"batch", "-o", filepath.Join(dir, "out"), "--format", "tiff", "--seed", "9", "--oversample", "2",
		"--count", "2", "--workers", "2", "--min-snr", "0", "--max-snr", "1e9"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	recs, err := galsynth.LoadRecords(filepath.Join(dir, "out", "index.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[1].Index != 1 {
		t.Errorf("index = %+v", recs)
	}

	b, err := os.ReadFile(filepath.Join(dir, "out", "batch-stats.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	stats := galsynth.BatchStats{}
	if err := yaml.Unmarshal(b, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Draws < 2 || stats.InWindow != stats.Draws {
		t.Errorf("stats = %+v", stats)
	}
}

// chdir changes the working directory for the duration of the test,
// like testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

package emath

import (
	"math"
	"path/filepath"
	"testing"
)

func TestBlockSumKeepsTotal(t *testing.T) {
	g := NewFloatGrid(8, 6)
	for y := 0; y < g.Dy(); y++ {
		for x := 0; x < g.Dx(); x++ {
			g.Set(x, y, float64(x+10*y))
		}
	}

	b := g.BlockSum(2)
	if b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("BlockSum(2) shape = %dx%d, want 4x3", b.Dx(), b.Dy())
	}
	if b.Sum() != g.Sum() {
		t.Errorf("BlockSum total %f != original %f", b.Sum(), g.Sum())
	}
	// block (1,2) is x in {2,3}, y in {4,5}
	want := float64(2+40) + float64(3+40) + float64(2+50) + float64(3+50)
	if got := b.Get(1, 2); got != want {
		t.Errorf("block (1,2) = %f, want %f", got, want)
	}
}

func TestCrop(t *testing.T) {
	g := NewFloatGrid(6, 6)
	g.Set(3, 4, 7)
	c := g.Crop(2, 2, 3, 3)
	if c.Get(1, 2) != 7 {
		t.Errorf("crop lost the value: %s", c.Stats())
	}
	if c.Sum() != 7 {
		t.Errorf("crop sum = %f, want 7", c.Sum())
	}
}

func TestAddShapeMismatch(t *testing.T) {
	a := NewFloatGrid(4, 4)
	if err := a.Add(NewFloatGrid(4, 5)); err == nil {
		t.Errorf("expected shape mismatch error")
	}
	b := NewFloatGrid(4, 4)
	b.Set(0, 0, 2)
	if err := a.Add(b); err != nil {
		t.Fatal(err)
	}
	if a.Get(0, 0) != 2 {
		t.Errorf("Add did not add")
	}
}

func TestSumSquares(t *testing.T) {
	g := NewFloatGrid(2, 2)
	g.Set(0, 0, 3)
	g.Set(1, 1, 4)
	if got := g.SumSquares(); got != 25 {
		t.Errorf("SumSquares = %f, want 25", got)
	}

	g.AddAt(1, 1, -1)
	g.Scale(2)
	if g.Get(0, 0) != 6 || g.Get(1, 1) != 6 || g.Sum() != 12 {
		t.Errorf("AddAt+Scale gave %v", g.Rows())
	}
}

func TestAffineInvert(t *testing.T) {
	m := Linear(1.2, 0.3, -0.1, 0.9).Translate(0.5, -2)
	inv, err := m.Invert()
	if err != nil {
		t.Fatal(err)
	}

	x, y := m.Apply(1.5, -0.75)
	x, y = inv.Apply(x, y)
	if math.Abs(x-1.5) > 1e-12 || math.Abs(y+0.75) > 1e-12 {
		t.Errorf("inverse round trip gave (%f,%f)", x, y)
	}

	if _, err := Linear(1, 2, 2, 4).Invert(); err == nil {
		t.Errorf("expected singular matrix error")
	}
}

func TestAffineStretch(t *testing.T) {
	tests := []struct {
		name     string
		m        Aff3
		max, min float64
	}{
		{"identity", Identity(), 1, 1},
		{"diag", Linear(2, 0, 0, 0.5), 2, 0.5},
		{"rotated", Identity().Rotate(0.7).Mult(Linear(3, 0, 0, 1)), 3, 1},
		{"singular", Linear(1, 2, 2, 4), 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.MaxStretch(); math.Abs(got-tt.max) > 1e-12 {
				t.Errorf("MaxStretch = %f, want %f", got, tt.max)
			}
			if got := tt.m.MinStretch(); math.Abs(got-tt.min) > 1e-12 {
				t.Errorf("MinStretch = %f, want %f", got, tt.min)
			}
		})
	}
}

func TestToImg(t *testing.T) {
	g := NewFloatGrid(16, 16)
	g.Set(8, 8, 1)
	if err := g.ToImg("test", filepath.Join(t.TempDir(), "grid.png")); err != nil {
		t.Fatal(err)
	}
}

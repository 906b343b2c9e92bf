package grid

import "testing"

func TestNewRejectsBadDimensions(t *testing.T) {
	tests := []struct {
		name string
		rows int
		cols int
	}{
		{"zero rows", 0, 4},
		{"zero cols", 4, 0},
		{"negative", -1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.rows, tt.cols); err == nil {
				t.Fatalf("expected error for %dx%d", tt.rows, tt.cols)
			}
		})
	}
}

func TestFromSliceLengthMismatch(t *testing.T) {
	if _, err := FromSlice(2, 3, make([]float64, 5)); err == nil {
		t.Fatal("expected error for short slice")
	}
}

func TestAtSetRowMajor(t *testing.T) {
	g, err := New(3, 4)
	if err != nil {
		t.Fatal(err)
	}
	g.Set(1, 2, 7.5)
	if got := g.At(1, 2); got != 7.5 {
		t.Fatalf("At(1,2) = %v, want 7.5", got)
	}
	if got := g.Pix[1*4+2]; got != 7.5 {
		t.Fatalf("row-major index holds %v, want 7.5", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g, _ := Constant(2, 2, 1)
	c := g.Clone()
	c.Set(0, 0, 99)
	if g.At(0, 0) != 1 {
		t.Fatal("mutating the clone changed the original")
	}
}

func TestTrimTrailing(t *testing.T) {
	// 4x5 grid with distinct values so the kept region is verifiable.
	g, _ := New(4, 5)
	for r := 0; r < 4; r++ {
		for c := 0; c < 5; c++ {
			g.Set(r, c, float64(r*10+c))
		}
	}

	out, err := g.TrimTrailing(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows != 3 || out.Cols != 3 {
		t.Fatalf("trimmed shape = %s, want 3x3", out.Shape())
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if got, want := out.At(r, c), float64(r*10+c); got != want {
				t.Fatalf("At(%d,%d) = %v, want %v", r, c, got, want)
			}
		}
	}
}

func TestTrimTrailingZeroExtentsIsIdentity(t *testing.T) {
	g, _ := Constant(3, 3, 2)
	out, err := g.TrimTrailing(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !out.SameShape(g) {
		t.Fatalf("shape changed: %s", out.Shape())
	}
	for i, v := range out.Pix {
		if v != g.Pix[i] {
			t.Fatalf("pixel %d changed", i)
		}
	}
}

func TestTrimTrailingRejectsExcessiveExtents(t *testing.T) {
	g, _ := New(3, 3)
	tests := []struct {
		name  string
		rover int
		cover int
	}{
		{"rover too large", 3, 0},
		{"cover too large", 0, 3},
		{"negative rover", -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.TrimTrailing(tt.rover, tt.cover); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestColumnSums(t *testing.T) {
	g, _ := New(2, 3)
	g.Set(0, 0, 1)
	g.Set(0, 1, 2)
	g.Set(0, 2, 3)
	g.Set(1, 0, 4)
	g.Set(1, 1, 5)
	g.Set(1, 2, 6)

	sums := g.ColumnSums()
	want := []float64{5, 7, 9}
	for i, w := range want {
		if sums[i] != w {
			t.Fatalf("column %d sum = %v, want %v", i, sums[i], w)
		}
	}
}

package calib

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/taracrutchfield/Messier-67-Lab/internal/domain"
	"github.com/taracrutchfield/Messier-67-Lab/internal/grid"
)

func TestBiasAveragesZeroExposureFrames(t *testing.T) {
	source := &memSource{dirs: map[string][]domain.Frame{
		"Bias": {
			constFrame("b1.fits", 98, 0),
			constFrame("b2.fits", 100, 0),
			constFrame("b3.fits", 102, 0),
		},
	}}
	b := NewBuilder(BuilderConfig{}, source, nil)

	master, err := b.Bias(context.Background(), "Bias")
	if err != nil {
		t.Fatal(err)
	}
	if master.Rows != 5 || master.Cols != 5 {
		t.Fatalf("master shape = %s, want 5x5", master.Shape())
	}
	for i, v := range master.Pix {
		if math.Abs(v-100) > 1e-12 {
			t.Fatalf("pixel %d = %v, want 100", i, v)
		}
	}
}

func TestBiasSkipsNonBiasFrames(t *testing.T) {
	source := &memSource{dirs: map[string][]domain.Frame{
		"Bias": {
			constFrame("b1.fits", 100, 0),
			constFrame("sneaky_dark.fits", 500, 30),
			constFrame("b2.fits", 100, 0),
		},
	}}
	b := NewBuilder(BuilderConfig{}, source, nil)

	master, err := b.Bias(context.Background(), "Bias")
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range master.Pix {
		if v != 100 {
			t.Fatalf("pixel %d = %v, want 100 (exposed frame leaked into bias)", i, v)
		}
	}
}

func TestBiasEmptyDirectory(t *testing.T) {
	source := &memSource{dirs: map[string][]domain.Frame{
		"Empty":    {},
		"AllDarks": {constFrame("d1.fits", 500, 30)},
	}}
	b := NewBuilder(BuilderConfig{}, source, nil)

	for _, dir := range []string{"Empty", "AllDarks"} {
		if _, err := b.Bias(context.Background(), dir); !errors.Is(err, domain.ErrEmptyDirectory) {
			t.Fatalf("dir %s: expected ErrEmptyDirectory, got %v", dir, err)
		}
	}
}

func TestBiasShapeMismatch(t *testing.T) {
	source := &memSource{dirs: map[string][]domain.Frame{
		"Bias": {
			constFrame("b1.fits", 100, 0),
			plainFrame("b2.fits", 7, 7, 100, 0),
		},
	}}
	b := NewBuilder(BuilderConfig{}, source, nil)

	if _, err := b.Bias(context.Background(), "Bias"); !errors.Is(err, domain.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestDarkBuildsRateMap(t *testing.T) {
	source := &memSource{dirs: map[string][]domain.Frame{
		"Dark": {
			constFrame("d1.fits", 160, 60),
			constFrame("d2.fits", 160, 60),
			constFrame("d3.fits", 160, 60),
		},
	}}
	b := NewBuilder(BuilderConfig{}, source, nil)
	bias, _ := grid.Constant(5, 5, 100)

	master, err := b.Dark(context.Background(), "Dark", FromMaster(bias))
	if err != nil {
		t.Fatal(err)
	}
	// (160 - 100) / 60 = 1 count per second.
	for i, v := range master.Pix {
		if math.Abs(v-1) > 1e-12 {
			t.Fatalf("pixel %d = %v, want 1", i, v)
		}
	}
}

func TestDarkResolvesBiasFromDirectory(t *testing.T) {
	source := &memSource{dirs: map[string][]domain.Frame{
		"Bias": {constFrame("b1.fits", 100, 0)},
		"Dark": {constFrame("d1.fits", 160, 60)},
	}}
	b := NewBuilder(BuilderConfig{}, source, nil)

	master, err := b.Dark(context.Background(), "Dark", FromDir("Bias"))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range master.Pix {
		if math.Abs(v-1) > 1e-12 {
			t.Fatalf("pixel %d = %v, want 1", i, v)
		}
	}
}

func TestDarkRejectsNonPositiveExposure(t *testing.T) {
	source := &memSource{dirs: map[string][]domain.Frame{
		"Dark": {constFrame("d1.fits", 160, 0)},
	}}
	b := NewBuilder(BuilderConfig{}, source, nil)
	bias, _ := grid.Constant(5, 5, 100)

	if _, err := b.Dark(context.Background(), "Dark", FromMaster(bias)); !errors.Is(err, domain.ErrMalformedFrame) {
		t.Fatalf("expected ErrMalformedFrame, got %v", err)
	}
}

func TestDarkInputNeedsMasterOrDirectory(t *testing.T) {
	source := &memSource{dirs: map[string][]domain.Frame{}}
	b := NewBuilder(BuilderConfig{}, source, nil)

	if _, err := b.Dark(context.Background(), "Dark", Input{}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestFlatNormalizesEachFrame(t *testing.T) {
	source := &memSource{dirs: map[string][]domain.Frame{
		"Flat": {
			constFrame("f1.fits", 1000, 30),
			constFrame("f2.fits", 4000, 30),
		},
	}}
	b := NewBuilder(BuilderConfig{}, source, nil)
	bias, _ := grid.Constant(5, 5, 100)
	dark, _ := grid.Constant(5, 5, 1)

	// Both frames reduce to a constant after correction, so normalizing by
	// their own minimum maps each to exactly 1 despite the 4x flux gap.
	master, err := b.Flat(context.Background(), "Flat", FromMaster(bias), FromMaster(dark))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range master.Pix {
		if math.Abs(v-1) > 1e-12 {
			t.Fatalf("pixel %d = %v, want 1", i, v)
		}
	}
}

func TestFlatMasterMinimumIsOne(t *testing.T) {
	raw, _ := grid.New(5, 5)
	for i := range raw.Pix {
		raw.Pix[i] = float64(i + 1)
	}
	source := &memSource{dirs: map[string][]domain.Frame{
		"Flat": {{
			Meta:   domain.FrameMeta{Name: "f1.fits", ExposureTime: 1},
			Pixels: raw,
		}},
	}}
	b := NewBuilder(BuilderConfig{}, source, nil)
	bias, _ := grid.Constant(5, 5, 0)
	dark, _ := grid.Constant(5, 5, 0)

	master, err := b.Flat(context.Background(), "Flat", FromMaster(bias), FromMaster(dark))
	if err != nil {
		t.Fatal(err)
	}
	min := master.Pix[0]
	for _, v := range master.Pix {
		if v < min {
			min = v
		}
	}
	if math.Abs(min-1) > 1e-12 {
		t.Fatalf("master flat minimum = %v, want 1", min)
	}
	if got := master.At(4, 4); math.Abs(got-25) > 1e-12 {
		t.Fatalf("pixel (4,4) = %v, want 25", got)
	}
}

func TestFlatRejectsZeroMinimum(t *testing.T) {
	source := &memSource{dirs: map[string][]domain.Frame{
		"Flat": {constFrame("f1.fits", 100, 30)},
	}}
	b := NewBuilder(BuilderConfig{}, source, nil)
	bias, _ := grid.Constant(5, 5, 100)
	dark, _ := grid.Constant(5, 5, 0)

	// Bias subtraction leaves a frame of zeros; normalization is undefined.
	if _, err := b.Flat(context.Background(), "Flat", FromMaster(bias), FromMaster(dark)); !errors.Is(err, domain.ErrMalformedFrame) {
		t.Fatalf("expected ErrMalformedFrame, got %v", err)
	}
}

func TestBiasIgnoresInjectedOutlier(t *testing.T) {
	clean := []domain.Frame{
		plainFrame("b1.fits", 10, 10, 100, 0),
		plainFrame("b2.fits", 10, 10, 100, 0),
		plainFrame("b3.fits", 10, 10, 100, 0),
	}
	hot := plainFrame("b2.fits", 10, 10, 100, 0)
	hot.Pixels = hot.Pixels.Clone()
	hot.Pixels.Set(2, 2, 1e6)
	dirty := []domain.Frame{clean[0], hot, clean[2]}

	source := &memSource{dirs: map[string][]domain.Frame{
		"Clean": clean,
		"Dirty": dirty,
	}}
	b := NewBuilder(BuilderConfig{}, source, nil)

	want, err := b.Bias(context.Background(), "Clean")
	if err != nil {
		t.Fatal(err)
	}
	got, err := b.Bias(context.Background(), "Dirty")
	if err != nil {
		t.Fatal(err)
	}
	for i := range want.Pix {
		if math.Abs(got.Pix[i]-want.Pix[i]) > 1e-9 {
			t.Fatalf("pixel %d = %v, want %v (cosmic ray perturbed the master)", i, got.Pix[i], want.Pix[i])
		}
	}
}

package messier67_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	messier67 "github.com/taracrutchfield/Messier-67-Lab"
	"github.com/taracrutchfield/Messier-67-Lab/internal/domain"
	"github.com/taracrutchfield/Messier-67-Lab/internal/fits"
	"github.com/taracrutchfield/Messier-67-Lab/internal/grid"
)

func writeRawFrame(t *testing.T, root, dir, name string, value, exptime float64, extra ...fits.Card) {
	t.Helper()
	full := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(full, 0o755))

	// 6x6 raw frame with a one-pixel overscan border of junk values.
	raw, err := grid.Constant(6, 6, value)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		raw.Set(5, i, -999)
		raw.Set(i, 5, -999)
	}
	cards := append([]fits.Card{
		fits.FloatCard("EXPTIME", exptime),
		fits.IntCard("COVER", 1),
		fits.IntCard("ROVER", 1),
	}, extra...)
	require.NoError(t, fits.WriteFile(filepath.Join(full, name), raw, cards...))
}

func TestRunEndToEnd(t *testing.T) {
	rawDir := t.TempDir()
	cleanDir := t.TempDir()

	for _, name := range []string{"b1.fits", "b2.fits", "b3.fits"} {
		writeRawFrame(t, rawDir, "Bias", name, 100, 0)
	}
	for _, name := range []string{"d1.fits", "d2.fits"} {
		writeRawFrame(t, rawDir, "Dark", name, 160, 60)
	}
	for _, name := range []string{"f1.fits", "f2.fits"} {
		writeRawFrame(t, rawDir, "Flat/V", name, 1000, 30)
	}
	writeRawFrame(t, rawDir, "M67/V", "s1.fits", 1100, 30, fits.FloatCard("CRDER2S", 0.002))
	writeRawFrame(t, rawDir, "M67/V", "s2.fits", 1100, 30, fits.FloatCard("CRDER2S", 0.003))

	cfg := messier67.DefaultConfig()
	cfg.RawDir = rawDir
	cfg.CleanDir = cleanDir
	cfg.Flats = map[string]string{"V": "Flat/V"}
	cfg.Targets = map[string]messier67.Target{
		"M67": {Paths: []string{"M67/V"}, Bands: []string{"V"}},
	}

	summary, err := messier67.Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FlatBands)
	assert.Equal(t, 1, summary.Targets)
	assert.Equal(t, 2, summary.ScienceImages)

	bias, err := fits.ReadFile(filepath.Join(cleanDir, "Bias", "Bias.fits"))
	require.NoError(t, err)
	require.Equal(t, 5, bias.Data.Rows)
	require.Equal(t, 5, bias.Data.Cols)
	for _, v := range bias.Data.Pix {
		assert.InDelta(t, 100, v, 1e-9)
	}

	dark, err := fits.ReadFile(filepath.Join(cleanDir, "Dark", "Dark.fits"))
	require.NoError(t, err)
	for _, v := range dark.Data.Pix {
		assert.InDelta(t, 1, v, 1e-9)
	}

	flat, err := fits.ReadFile(filepath.Join(cleanDir, "Flat", "V", "Flat.fits"))
	require.NoError(t, err)
	for _, v := range flat.Data.Pix {
		assert.InDelta(t, 1, v, 1e-9)
	}

	// (((1100 - 100) / 30) - 1) / 1 = 97/3 counts per second.
	want := 97.0 / 3.0
	for seq, est := range map[int]float64{1: 0.002, 2: 0.003} {
		sci, err := fits.ReadFile(filepath.Join(cleanDir, "M67", "V", fmt.Sprintf("Sci_%d.fits", seq)))
		require.NoError(t, err)
		for _, v := range sci.Data.Pix {
			assert.InDelta(t, want, v, 1e-9)
		}
		got, err := sci.Header.Float("ERROR")
		require.NoError(t, err)
		assert.InDelta(t, est, got, 1e-12)
	}
}

func TestRunEmptyBiasDirectory(t *testing.T) {
	rawDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(rawDir, "Bias"), 0o755))
	writeRawFrame(t, rawDir, "Dark", "d1.fits", 160, 60)

	cfg := messier67.DefaultConfig()
	cfg.RawDir = rawDir
	cfg.CleanDir = t.TempDir()

	_, err := messier67.Run(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyDirectory), "got %v", err)
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := messier67.DefaultConfig()
	_, err := messier67.Run(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig), "got %v", err)
}

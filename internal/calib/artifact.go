package calib

import "github.com/taracrutchfield/Messier-67-Lab/internal/grid"

// Artifact removal defaults: columns whose sum lies above the 95th or below
// the 10th percentile of the column-sum profile are treated as defects.
const (
	DefaultUpperPercentile = 95.0
	DefaultLowerPercentile = 10.0
)

// windowRadius is the half-width of the row-wise repair window.
const windowRadius = 5

// RemoveLines repairs vertical line defects: column-correlated sensor
// artifacts show up as statistical extremes in total column brightness.
// Every pixel of a flagged column is replaced by the median of the window
// of up to 11 pixels in its row (±windowRadius columns, clipped at the
// array edges, never wrapped). Medians are computed from the input grid, so
// repairs do not feed into each other. Non-flagged columns are returned
// unchanged. Percentiles are given in percent, e.g. 95 and 10.
func RemoveLines(g *grid.Grid, upperPercentile, lowerPercentile float64) *grid.Grid {
	sums := g.ColumnSums()
	flagged := grid.FlagQuantile(sums, lowerPercentile/100, upperPercentile/100)

	out := g.Clone()
	window := make([]float64, 0, 2*windowRadius+1)
	for c, bad := range flagged {
		if !bad {
			continue
		}
		lo := c - windowRadius
		if lo < 0 {
			lo = 0
		}
		hi := c + windowRadius
		if hi > g.Cols-1 {
			hi = g.Cols - 1
		}
		for r := 0; r < g.Rows; r++ {
			window = window[:0]
			for cc := lo; cc <= hi; cc++ {
				window = append(window, g.At(r, cc))
			}
			// The window always contains the pixel's own column, so a
			// median exists even for the extreme edge columns.
			out.Set(r, c, grid.Median(window))
		}
	}
	return out
}

package grid

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MeanStd returns the mean and sample standard deviation of xs.
func MeanStd(xs []float64) (mean, std float64) {
	return stat.MeanStdDev(xs, nil)
}

// Quantile returns the p-quantile (0 <= p <= 1) of xs, interpolating
// linearly between order statistics so that Quantile(xs, 0.5) is the
// conventional median (the mean of the two middle values for even
// lengths). xs is not modified.
func Quantile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	h := p * float64(len(sorted)-1)
	i := int(math.Floor(h))
	frac := h - float64(i)
	if frac == 0 || i+1 == len(sorted) {
		return sorted[i]
	}
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}

// Median returns the middle value of xs.
func Median(xs []float64) float64 {
	return Quantile(xs, 0.5)
}

// FlagSigma marks values farther than sigma standard deviations from the
// mean of xs. The returned slice is parallel to xs; true means outlier.
func FlagSigma(xs []float64, sigma float64) []bool {
	mean, std := MeanStd(xs)
	limit := sigma * std
	flags := make([]bool, len(xs))
	for i, v := range xs {
		d := v - mean
		if d < 0 {
			d = -d
		}
		flags[i] = d > limit
	}
	return flags
}

// FlagQuantile marks values strictly below the lower quantile or strictly
// above the upper quantile of xs. Quantiles are fractions in [0, 1].
func FlagQuantile(xs []float64, lower, upper float64) []bool {
	lo := Quantile(xs, lower)
	hi := Quantile(xs, upper)
	flags := make([]bool, len(xs))
	for i, v := range xs {
		flags[i] = v < lo || v > hi
	}
	return flags
}

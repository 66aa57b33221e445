package plot

import (
	"math"
	"sort"

	"github.com/pivolan/data_visualizer/engine"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const kdeGridSize = 200

// histogramEdges picks bins the way numpy's "auto" estimator does: the
// smaller of the Sturges and Freedman-Diaconis widths.
func histogramEdges(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []float64{lo - 0.5, lo + 0.5}
	}
	n := float64(len(sorted))
	span := hi - lo

	width := span / (math.Log2(n) + 1)
	iqr := engine.Quantile(sorted, 0.75) - engine.Quantile(sorted, 0.25)
	if fd := 2 * iqr * math.Pow(n, -1.0/3); fd > 0 && fd < width {
		width = fd
	}
	bins := int(math.Ceil(span / width))
	if bins < 1 {
		bins = 1
	}

	edges := make([]float64, bins+1)
	step := span / float64(bins)
	for i := range edges {
		edges[i] = lo + float64(i)*step
	}
	edges[bins] = hi
	return edges
}

// histogramCounts counts values per bin; the last bin is closed on the right.
func histogramCounts(values, edges []float64) []float64 {
	bins := len(edges) - 1
	counts := make([]float64, bins)
	for _, v := range values {
		i := sort.SearchFloat64s(edges, v)
		if i < len(edges) && edges[i] == v {
			i++
		}
		i--
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			continue
		}
		counts[i]++
	}
	return counts
}

// kdeCurve evaluates a Gaussian kernel density estimate with Scott's
// bandwidth over the data range, scaled so its area matches the histogram.
// nil means the sample has no spread.
func kdeCurve(values []float64, binWidth float64) (xs, ys []float64) {
	n := float64(len(values))
	if len(values) < 2 {
		return nil, nil
	}
	sd := stat.StdDev(values, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil, nil
	}
	bandwidth := sd * math.Pow(n, -1.0/5)
	kernel := distuv.Normal{Mu: 0, Sigma: bandwidth}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	xs = make([]float64, kdeGridSize)
	ys = make([]float64, kdeGridSize)
	step := (hi - lo) / float64(kdeGridSize-1)
	for i := range xs {
		x := lo + float64(i)*step
		// sum of kernels is n times the pdf, which is the count scale per unit width
		density := 0.0
		for _, v := range values {
			density += kernel.Prob(x - v)
		}
		xs[i] = x
		ys[i] = density * binWidth
	}
	return xs, ys
}

package engine

import (
	"math"
	"sort"
)

// Quantile interpolates linearly between the closest ranks of sorted values.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}

	pos := p * float64(len(sorted)-1)
	floor := math.Floor(pos)
	ceil := math.Ceil(pos)
	if floor == ceil {
		return sorted[int(pos)]
	}

	lower := sorted[int(floor)]
	upper := sorted[int(ceil)]
	return lower + (pos-floor)*(upper-lower)
}

// FiveNumbers holds the box plot summary of a sample.
type FiveNumbers struct {
	Q1, Median, Q3 float64
	// Whiskers reach the furthest observations within 1.5 IQR of the box.
	LowerWhisker, UpperWhisker float64
	Outliers                   []float64
}

// Summarize computes quartiles, whiskers and outliers. ok is false for an empty sample.
func Summarize(values []float64) (FiveNumbers, bool) {
	if len(values) == 0 {
		return FiveNumbers{}, false
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s := FiveNumbers{
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
	}
	iqr := s.Q3 - s.Q1
	lowerBound := s.Q1 - 1.5*iqr
	upperBound := s.Q3 + 1.5*iqr

	s.LowerWhisker, s.UpperWhisker = s.Q1, s.Q3
	s.Outliers = make([]float64, 0)
	for _, v := range sorted {
		if v < lowerBound || v > upperBound {
			s.Outliers = append(s.Outliers, v)
			continue
		}
		if v < s.LowerWhisker {
			s.LowerWhisker = v
		}
		if v > s.UpperWhisker {
			s.UpperWhisker = v
		}
	}
	return s, true
}

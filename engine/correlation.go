package engine

import (
	"math"

	"github.com/pivolan/data_visualizer/domain/models"
	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix computes pairwise Pearson coefficients between the numeric
// columns of the view. Each pair uses only rows where both cells are present.
func CorrelationMatrix(view *models.Dataset) models.CorrelationMatrix {
	var numeric []models.Column
	for _, c := range view.Columns() {
		if c.IsNumeric() {
			numeric = append(numeric, c)
		}
	}

	m := models.CorrelationMatrix{
		Columns: make([]string, len(numeric)),
		Values:  make([][]float64, len(numeric)),
	}
	for i, c := range numeric {
		m.Columns[i] = c.Name
		m.Values[i] = make([]float64, len(numeric))
	}
	for i := range numeric {
		for j := i; j < len(numeric); j++ {
			r := pearson(numeric[i], numeric[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func pearson(a, b models.Column) float64 {
	x := make([]float64, 0, len(a.Values))
	y := make([]float64, 0, len(a.Values))
	for k := range a.Values {
		if a.Values[k].IsMissing() || b.Values[k].IsMissing() {
			continue
		}
		x = append(x, a.Values[k].Num)
		y = append(y, b.Values[k].Num)
	}
	if len(x) < 2 {
		return math.NaN()
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	if a.Name == b.Name {
		return 1
	}
	return math.Max(-1, math.Min(1, r))
}

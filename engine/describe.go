package engine

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/pivolan/data_visualizer/domain/models"
)

var (
	NumericStats     = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	CategoricalStats = []string{"count", "unique", "top", "freq"}
)

// Summary is a describe() table: one column per described dataset column,
// one row per statistic. Cells are float64 or string.
type Summary struct {
	Stats   []string
	Columns []string
	Cells   [][]interface{}
}

// Describe summarizes numeric columns (count, mean, std, min, quartiles, max).
// A dataset without numeric columns gets count, unique, top and freq of every column.
func Describe(ds *models.Dataset) Summary {
	var numeric []models.Column
	for _, c := range ds.Columns() {
		if c.IsNumeric() {
			numeric = append(numeric, c)
		}
	}
	if len(numeric) > 0 {
		return describeNumeric(numeric)
	}
	return describeCategorical(ds.Columns())
}

func describeNumeric(columns []models.Column) Summary {
	s := Summary{Stats: NumericStats}
	for _, c := range columns {
		s.Columns = append(s.Columns, c.Name)
	}
	s.Cells = make([][]interface{}, len(NumericStats))
	for i := range s.Cells {
		s.Cells[i] = make([]interface{}, len(columns))
	}

	for j, c := range columns {
		data := stats.Float64Data(c.Floats())
		sorted := make([]float64, len(data))
		copy(sorted, data)
		sort.Float64s(sorted)

		mean, std, lo, hi := math.NaN(), math.NaN(), math.NaN(), math.NaN()
		if len(data) > 0 {
			mean, _ = stats.Mean(data)
			lo, _ = stats.Min(data)
			hi, _ = stats.Max(data)
		}
		if len(data) > 1 {
			std, _ = stats.StandardDeviationSample(data)
		}

		column := []float64{float64(len(data)), mean, std, lo,
			Quantile(sorted, 0.25), Quantile(sorted, 0.5), Quantile(sorted, 0.75), hi}
		for i, v := range column {
			s.Cells[i][j] = v
		}
	}
	return s
}

func describeCategorical(columns []models.Column) Summary {
	s := Summary{Stats: CategoricalStats}
	for _, c := range columns {
		s.Columns = append(s.Columns, c.Name)
	}
	s.Cells = make([][]interface{}, len(CategoricalStats))
	for i := range s.Cells {
		s.Cells[i] = make([]interface{}, len(columns))
	}

	for j, c := range columns {
		counts := make(map[string]int)
		order := make([]string, 0)
		total := 0
		for _, v := range c.Values {
			if v.IsMissing() {
				continue
			}
			total++
			key := v.String()
			if counts[key] == 0 {
				order = append(order, key)
			}
			counts[key]++
		}
		top, freq := "", 0
		for _, key := range order {
			if counts[key] > freq {
				top, freq = key, counts[key]
			}
		}
		var topCell interface{} = top
		if total == 0 {
			topCell = math.NaN()
		}
		s.Cells[0][j] = float64(total)
		s.Cells[1][j] = float64(len(order))
		s.Cells[2][j] = topCell
		s.Cells[3][j] = float64(freq)
	}
	return s
}

// Value looks a cell up by statistic and column name.
func (s Summary) Value(stat, column string) (interface{}, bool) {
	for i, st := range s.Stats {
		if st != stat {
			continue
		}
		for j, c := range s.Columns {
			if c == column {
				return s.Cells[i][j], true
			}
		}
	}
	return nil, false
}

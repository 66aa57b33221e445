package plot

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/data_visualizer/engine"
)

var (
	errEmptyView     = errors.New("no rows to plot")
	errNothingToPlot = errors.New("no values to plot")
	errNoCorrelation = errors.New("no numeric columns to correlate")
	errInfiniteRange = errors.New("range of values is not finite")
)

type notNumericError struct {
	column string
}

func (e notNumericError) Error() string {
	return fmt.Sprintf("column %q is not numeric", e.column)
}

func requireNumeric(col models.Column) error {
	if !col.IsNumeric() {
		return notNumericError{column: col.Name}
	}
	return nil
}

func newArtifact(p models.PlotType, x, y string) models.ChartArtifact {
	return models.ChartArtifact{
		PlotType: p,
		Title:    fmt.Sprintf("%s of %s vs %s", p, y, x),
		XLabel:   x,
		YLabel:   y,
	}
}

// buildLine connects the (x, y) pairs in row order.
func buildLine(art *models.ChartArtifact, xCol, yCol models.Column) error {
	if err := requireNumeric(yCol); err != nil {
		return err
	}
	return buildPoints(art, xCol, yCol)
}

// buildScatter places one point per row; text columns are spread over category positions.
func buildScatter(art *models.ChartArtifact, xCol, yCol models.Column) error {
	return buildPoints(art, xCol, yCol)
}

func buildPoints(art *models.ChartArtifact, xCol, yCol models.Column) error {
	xa, ya := newAxis(xCol), newAxis(yCol)
	art.XTicks, art.YTicks = xa.labels, ya.labels
	for i := range xCol.Values {
		x, okX := xa.coordinate(xCol.Values[i])
		y, okY := ya.coordinate(yCol.Values[i])
		if !okX || !okY {
			continue
		}
		art.Points = append(art.Points, models.Point{X: x, Y: y})
	}
	if len(art.Points) == 0 {
		return errNothingToPlot
	}
	return nil
}

// buildBar draws one bar per X category with the mean of Y.
func buildBar(art *models.ChartArtifact, xCol, yCol models.Column) error {
	if err := requireNumeric(yCol); err != nil {
		return err
	}
	groups := make(map[string][]float64)
	for i, xv := range xCol.Values {
		yv := yCol.Values[i]
		if xv.IsMissing() || yv.IsMissing() {
			continue
		}
		groups[xv.Key()] = append(groups[xv.Key()], yv.Num)
	}
	for _, c := range categoryOrder(xCol) {
		values, ok := groups[c.Key()]
		if !ok {
			continue
		}
		mean, err := stats.Mean(values)
		if err != nil {
			return err
		}
		art.Categories = append(art.Categories, c.String())
		art.Values = append(art.Values, mean)
	}
	if len(art.Categories) == 0 {
		return errNothingToPlot
	}
	return nil
}

// buildCount draws one bar per X category with its number of rows.
func buildCount(art *models.ChartArtifact, xCol models.Column) error {
	counts := make(map[string]int)
	for _, v := range xCol.Values {
		if !v.IsMissing() {
			counts[v.Key()]++
		}
	}
	for _, c := range categoryOrder(xCol) {
		art.Categories = append(art.Categories, c.String())
		art.Values = append(art.Values, float64(counts[c.Key()]))
	}
	if len(art.Categories) == 0 {
		return errNothingToPlot
	}
	art.YLabel = "count"
	return nil
}

// buildDistribution bins X into a histogram and overlays a density curve scaled to counts.
func buildDistribution(art *models.ChartArtifact, xCol models.Column) error {
	if err := requireNumeric(xCol); err != nil {
		return err
	}
	values := xCol.Floats()
	if len(values) == 0 {
		return errNothingToPlot
	}
	for _, v := range values {
		if math.IsInf(v, 0) {
			return errInfiniteRange
		}
	}
	edges := histogramEdges(values)
	counts := histogramCounts(values, edges)
	for i, c := range counts {
		art.Categories = append(art.Categories, fmt.Sprintf("%g-%g", roundTo(edges[i], 4), roundTo(edges[i+1], 4)))
		art.Values = append(art.Values, c)
	}
	art.Edges = edges
	xs, ys := kdeCurve(values, edges[1]-edges[0])
	for i := range xs {
		art.Curve = append(art.Curve, models.Point{X: xs[i], Y: ys[i]})
	}
	art.YLabel = "count"
	return nil
}

// buildBox summarizes Y per X category: quartiles, 1.5 IQR whiskers and outliers.
func buildBox(art *models.ChartArtifact, xCol, yCol models.Column) error {
	if err := requireNumeric(yCol); err != nil {
		return err
	}
	groups := make(map[string][]float64)
	for i, xv := range xCol.Values {
		yv := yCol.Values[i]
		if xv.IsMissing() || yv.IsMissing() {
			continue
		}
		groups[xv.Key()] = append(groups[xv.Key()], yv.Num)
	}
	for _, c := range categoryOrder(xCol) {
		s, ok := engine.Summarize(groups[c.Key()])
		if !ok {
			continue
		}
		art.Boxes = append(art.Boxes, models.BoxSummary{
			Category:     c.String(),
			Min:          s.LowerWhisker,
			Q1:           s.Q1,
			Median:       s.Median,
			Q3:           s.Q3,
			Max:          s.UpperWhisker,
			Outliers:     s.Outliers,
			Observations: len(groups[c.Key()]),
		})
	}
	if len(art.Boxes) == 0 {
		return errNothingToPlot
	}
	return nil
}

// buildPie makes one slice per X value, largest count first.
func buildPie(art *models.ChartArtifact, xCol models.Column) error {
	counts := make(map[string]int)
	order := make([]models.Value, 0)
	total := 0
	for _, v := range xCol.Values {
		if v.IsMissing() {
			continue
		}
		if counts[v.Key()] == 0 {
			order = append(order, v)
		}
		counts[v.Key()]++
		total++
	}
	if total == 0 {
		return errNothingToPlot
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i].Key()] > counts[order[j].Key()] })
	for _, v := range order {
		n := counts[v.Key()]
		art.Slices = append(art.Slices, models.PieSlice{
			Label:   v.String(),
			Count:   n,
			Percent: float64(n) * 100 / float64(total),
		})
	}
	return nil
}

// buildHeatmap annotates every cell of the matrix with two decimals.
func buildHeatmap(art *models.ChartArtifact, m models.CorrelationMatrix) error {
	if m.IsEmpty() {
		return errNoCorrelation
	}
	art.Labels = append([]string(nil), m.Columns...)
	art.Matrix = make([][]float64, len(m.Values))
	art.Cells = make([][]string, len(m.Values))
	for i, row := range m.Values {
		art.Matrix[i] = append([]float64(nil), row...)
		art.Cells[i] = make([]string, len(row))
		for j, v := range row {
			art.Cells[i][j] = formatCoefficient(v)
		}
	}
	return nil
}

func formatCoefficient(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.2f", v)
}

func roundTo(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

package plot

import (
	"bytes"
	"fmt"
	"math"

	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	lineColor    = chart.GetDefaultColor(0)
	densityColor = drawing.ColorFromHex("dd8452")
	medianColor  = drawing.ColorFromHex("c44e52")
)

func calculateGridStep(maxValue float64) float64 {
	if maxValue <= 0 {
		return 0
	}
	if maxValue < 1e-10 {
		return 1e-10
	}

	magnitude := math.Pow(10, math.Floor(math.Log10(maxValue)))
	normalized := maxValue / magnitude

	var step float64
	switch {
	case normalized <= 1:
		step = 0.2
	case normalized <= 2:
		step = 0.5
	case normalized <= 5:
		step = 1.0
	default:
		step = 2.0
	}

	finalStep := step * magnitude
	// Округляем большие шаги до "красивых" чисел
	if finalStep >= 1000 {
		return math.Round(finalStep/100) * 100
	}
	if finalStep >= 100 {
		return math.Round(finalStep/10) * 10
	}
	return finalStep
}

// generateGrid returns y ticks from zero to the largest value. Empty when
// values are not all positive, go-chart then picks ticks itself.
func generateGrid(values []float64) []chart.Tick {
	var ticks []chart.Tick
	max := findMaxValue(values)
	for _, v := range values {
		if v < 0 {
			return nil
		}
	}
	gridStep := calculateGridStep(max)
	if gridStep <= 0 {
		return nil
	}
	for i := 0.0; i <= max+gridStep/2; i += gridStep {
		ticks = append(ticks, chart.Tick{
			Value: i,
			Label: formatTick(i),
		})
	}
	return ticks
}

func findMaxValue(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	max := y[0]
	for _, v := range y {
		if v > max {
			max = v
		}
	}
	return max
}

func findMinValue(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	min := y[0]
	for _, v := range y {
		if v < min {
			min = v
		}
	}
	return min
}

// calculateChartDimensions grows the canvas with the number of bars.
func calculateChartDimensions(bars, values int, minBarWidth float64) (width, height int) {
	if values == 0 || bars <= 0 || minBarWidth <= 0 {
		return 0, 0
	}
	x := 1.1
	if bars < 2 {
		x = 2.0
	} else if bars < 10 {
		x = 1.5
	}

	const (
		paddingY     = 100
		spacingRatio = 0.2
		aspectRatio  = 9.0 / 16.0
	)

	barSpacing := minBarWidth * spacingRatio
	totalWidth := (minBarWidth+barSpacing)*float64(bars) + paddingY
	width = int(totalWidth*x) + paddingY
	height = int(float64(width) * aspectRatio)
	return width, height
}

func customizePaddingXBottom(labels []string) int {
	count := 0
	for _, l := range labels {
		if len(l) > count {
			count = len(l)
		}
	}
	return count * 8
}

func formatTick(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func valueFormatter(v interface{}) string {
	if vf, isFloat := v.(float64); isFloat {
		return formatTick(vf)
	}
	return ""
}

// paddedRange spans the values with a margin and never collapses to a point.
func paddedRange(values ...float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	if lo == hi {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// categoryTicks puts one labeled tick per category and blank ticks half a
// step outside, so the first and last category are not drawn on the border.
func categoryTicks(labels []string) []chart.Tick {
	ticks := []chart.Tick{{Value: -0.5, Label: ""}}
	for i, l := range labels {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: l})
	}
	return append(ticks, chart.Tick{Value: float64(len(labels)) - 0.5, Label: ""})
}

func background(labels []string) chart.Style {
	return chart.Style{
		Padding: chart.Box{
			Top:    50,
			Left:   20,
			Right:  20,
			Bottom: 20 + customizePaddingXBottom(labels)/2,
		},
		FillColor:   drawing.ColorWhite,
		StrokeWidth: 1,
		StrokeColor: drawing.ColorFromHex("efefef"),
	}
}

func axisStyle(rotate bool) chart.Style {
	s := chart.Style{StrokeWidth: 1, StrokeColor: chart.ColorBlack, FontSize: 10}
	if rotate {
		s.TextRotationDegrees = 45
	}
	return s
}

// DrawPlotBar renders Bar and Count charts.
func DrawPlotBar(data dataForGraph, width, height int) ([]byte, error) {
	values := data.getYValues()
	barValues := data.generateBarValues()
	if w, _ := data.calculateChartDimensions(40); w > width {
		width = w
	}

	lo := math.Min(0, findMinValue(values))
	hi := math.Max(0, findMaxValue(values))
	if hi == lo {
		hi = lo + 1
	}

	bar := chart.BarChart{
		Title:      data.GetNameGraph(),
		Background: background(data.getLabels()),
		Width:      width,
		Height:     height + customizePaddingXBottom(data.getLabels()),
		BarWidth:   40,
		Bars:       barValues,
		XAxis:      axisStyle(len(barValues) > 8),
		YAxis: chart.YAxis{
			Name:           data.getNameYAxis(),
			Range:          &chart.ContinuousRange{Min: lo, Max: hi * 1.05},
			Style:          axisStyle(false),
			ValueFormatter: valueFormatter,
			Ticks:          data.generateGrid(),
			GridMajorStyle: chart.Style{
				StrokeColor:     chart.ColorBlack,
				StrokeWidth:     1,
				DotWidth:        1,
				StrokeDashArray: []float64{5.0, 5.0},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := bar.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// DrawPoints renders Line (connected) and Scatter (dots) charts.
func DrawPoints(art models.ChartArtifact, width, height int) ([]byte, error) {
	xs := make([]float64, len(art.Points))
	ys := make([]float64, len(art.Points))
	for i, p := range art.Points {
		xs[i], ys[i] = p.X, p.Y
	}

	style := chart.Style{StrokeColor: lineColor, StrokeWidth: 2}
	if art.PlotType == models.PlotScatter || len(art.Points) == 1 {
		style = chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    4,
			DotColor:    lineColor.WithAlpha(200),
		}
	}

	xAxis := chart.XAxis{Name: art.XLabel, Style: axisStyle(len(art.XTicks) > 8), ValueFormatter: valueFormatter}
	if art.XTicks != nil {
		xAxis.Ticks = categoryTicks(art.XTicks)
	} else {
		xAxis.Range = paddedRange(xs...)
	}
	yAxis := chart.YAxis{Name: art.YLabel, Style: axisStyle(false), ValueFormatter: valueFormatter}
	if art.YTicks != nil {
		yAxis.Ticks = categoryTicks(art.YTicks)
	} else {
		yAxis.Range = paddedRange(ys...)
	}

	graph := chart.Chart{
		Title:      art.Title,
		Background: background(art.XTicks),
		Width:      width,
		Height:     height,
		XAxis:      xAxis,
		YAxis:      yAxis,
		Series: []chart.Series{
			chart.ContinuousSeries{Name: art.YLabel, XValues: xs, YValues: ys, Style: style},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// DrawDistribution renders the histogram bars with the density curve on top.
func DrawDistribution(art models.ChartArtifact, width, height int) ([]byte, error) {
	data := NewDataRangeXValuesForGraph(art)
	lo, hi := data.bounds()
	counts := data.getYValues()

	curveX := make([]float64, len(art.Curve))
	curveY := make([]float64, len(art.Curve))
	for i, p := range art.Curve {
		curveX[i], curveY[i] = p.X, p.Y
	}
	top := math.Max(findMaxValue(counts), findMaxValue(curveY))
	if top <= 0 {
		top = 1
	}

	series := []chart.Series{
		chart.HistogramSeries{
			Name: "count",
			Style: chart.Style{
				FillColor:   lineColor.WithAlpha(120),
				StrokeColor: lineColor,
				StrokeWidth: 1,
			},
			InnerSeries: chart.ContinuousSeries{XValues: data.centers(), YValues: counts},
		},
	}
	if len(curveX) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    "density",
			XValues: curveX,
			YValues: curveY,
			Style:   chart.Style{StrokeColor: densityColor, StrokeWidth: 2},
		})
	}

	graph := chart.Chart{
		Title:      art.Title,
		Background: background(nil),
		Width:      width,
		Height:     height,
		XAxis: chart.XAxis{
			Name:           data.getNameXAxis(),
			Style:          axisStyle(false),
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: valueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           data.getNameYAxis(),
			Style:          axisStyle(false),
			Range:          &chart.ContinuousRange{Min: 0, Max: top * 1.05},
			ValueFormatter: valueFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// DrawBox renders one box per category with whiskers, median and outlier dots.
func DrawBox(art models.ChartArtifact, width, height int) ([]byte, error) {
	const half = 0.3
	labels := make([]string, len(art.Boxes))
	var series []chart.Series
	var extent []float64
	var outX, outY []float64

	for i, b := range art.Boxes {
		labels[i] = b.Category
		x := float64(i)
		color := chart.GetDefaultColor(i)
		outline := chart.Style{StrokeColor: color, StrokeWidth: 2}

		series = append(series,
			chart.ContinuousSeries{
				XValues: []float64{x - half, x + half, x + half, x - half, x - half},
				YValues: []float64{b.Q1, b.Q1, b.Q3, b.Q3, b.Q1},
				Style:   outline,
			},
			chart.ContinuousSeries{
				XValues: []float64{x - half, x + half},
				YValues: []float64{b.Median, b.Median},
				Style:   chart.Style{StrokeColor: medianColor, StrokeWidth: 2},
			},
			chart.ContinuousSeries{
				XValues: []float64{x, x, x - half/2, x + half/2},
				YValues: []float64{b.Q3, b.Max, b.Max, b.Max},
				Style:   outline,
			},
			chart.ContinuousSeries{
				XValues: []float64{x, x, x - half/2, x + half/2},
				YValues: []float64{b.Q1, b.Min, b.Min, b.Min},
				Style:   outline,
			},
		)
		extent = append(extent, b.Min, b.Max)
		for _, o := range b.Outliers {
			outX = append(outX, x)
			outY = append(outY, o)
			extent = append(extent, o)
		}
	}
	if len(outX) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    "outliers",
			XValues: outX,
			YValues: outY,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    3,
				DotColor:    chart.ColorBlack,
			},
		})
	}

	graph := chart.Chart{
		Title:      art.Title,
		Background: background(labels),
		Width:      width,
		Height:     height,
		XAxis: chart.XAxis{
			Name:  art.XLabel,
			Style: axisStyle(len(labels) > 8),
			Ticks: categoryTicks(labels),
		},
		YAxis: chart.YAxis{
			Name:           art.YLabel,
			Style:          axisStyle(false),
			Range:          paddedRange(extent...),
			ValueFormatter: valueFormatter,
		},
		Series: series,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// DrawPie renders slices labeled with their value and share.
func DrawPie(art models.ChartArtifact, width, height int) ([]byte, error) {
	size := width
	if height < size {
		size = height
	}
	values := make([]chart.Value, len(art.Slices))
	for i, s := range art.Slices {
		values[i] = chart.Value{
			Value: float64(s.Count),
			Label: fmt.Sprintf("%s %s", s.Label, s.PercentLabel()),
			Style: chart.Style{FillColor: chart.GetDefaultColor(i)},
		}
	}
	pie := chart.PieChart{
		Title:      art.Title,
		Width:      size,
		Height:     size,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		Values:     values,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

package plot

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pivolan/data_visualizer/domain/models"
)

var coolwarmScale = []string{"#3b4cc0", "#dddddd", "#b40426"}

type htmlChart interface {
	Render(w io.Writer) error
}

func initOpts(art models.ChartArtifact, width, height int) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: art.Title,
		Width:     fmt.Sprintf("%dpx", width),
		Height:    fmt.Sprintf("%dpx", height),
	})
}

// RenderHTML builds an interactive page for the artifact.
func RenderHTML(art models.ChartArtifact, width, height int) ([]byte, error) {
	var c htmlChart
	switch art.PlotType {
	case models.PlotLine, models.PlotScatter:
		c = echartsPoints(art, width, height)
	case models.PlotBar, models.PlotCount:
		c = echartsBar(NewDataXStringsForGraph(art), art, width, height)
	case models.PlotDistribution:
		c = echartsDistribution(art, width, height)
	case models.PlotBox:
		c = echartsBox(art, width, height)
	case models.PlotPie:
		c = echartsPie(art, width, height)
	case models.PlotHeatmap:
		c = echartsHeatmap(art, width, height)
	default:
		return nil, fmt.Errorf("unsupported plot type %s", art.PlotType)
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := c.Render(buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func axisType(ticks []string) string {
	if ticks != nil {
		return "category"
	}
	return "value"
}

func echartsPoints(art models.ChartArtifact, width, height int) htmlChart {
	pairs := make([][2]interface{}, len(art.Points))
	for i, p := range art.Points {
		var x, y interface{} = p.X, p.Y
		if art.XTicks != nil {
			x = art.XTicks[int(p.X)]
		}
		if art.YTicks != nil {
			y = art.YTicks[int(p.Y)]
		}
		pairs[i] = [2]interface{}{x, y}
	}
	xAxis := opts.XAxis{Name: art.XLabel, Type: axisType(art.XTicks), Scale: opts.Bool(true)}
	if art.XTicks != nil {
		xAxis.Data = art.XTicks
	}
	yAxis := opts.YAxis{Name: art.YLabel, Type: axisType(art.YTicks), Scale: opts.Bool(true)}
	if art.YTicks != nil {
		yAxis.Data = art.YTicks
	}
	global := []charts.GlobalOpts{
		initOpts(art, width, height),
		charts.WithTitleOpts(opts.Title{Title: art.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(yAxis),
	}

	if art.PlotType == models.PlotLine {
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		data := make([]opts.LineData, len(pairs))
		for i, p := range pairs {
			data[i] = opts.LineData{Value: p[:]}
		}
		line.AddSeries(art.YLabel, data)
		return line
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(global...)
	data := make([]opts.ScatterData, len(pairs))
	for i, p := range pairs {
		data[i] = opts.ScatterData{Value: p[:]}
	}
	scatter.AddSeries(art.YLabel, data)
	return scatter
}

func echartsBar(data dataForGraph, art models.ChartArtifact, width, height int) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(art, width, height),
		charts.WithTitleOpts(opts.Title{Title: data.GetNameGraph()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: data.getNameXAxis(), Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: data.getNameYAxis()}),
	)
	values := data.getYValues()
	items := make([]opts.BarData, len(values))
	for i, v := range values {
		items[i] = opts.BarData{Value: v}
	}
	bar.SetXAxis(data.getLabels()).AddSeries(data.getNameYAxis(), items)
	return bar
}

func echartsDistribution(art models.ChartArtifact, width, height int) htmlChart {
	hist := NewDataRangeXValuesForGraph(art)
	bar := echartsBar(hist, art, width, height)
	if len(art.Curve) == 0 {
		return bar
	}

	// the curve is sampled at bin centers so it shares the category axis
	centers := hist.centers()
	points := make([]opts.LineData, len(centers))
	for i, c := range centers {
		points[i] = opts.LineData{Value: roundTo(interpolateCurve(art.Curve, c), 4)}
	}
	line := charts.NewLine()
	line.SetXAxis(hist.getLabels()).AddSeries("density", points,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	bar.Overlap(line)
	return bar
}

// interpolateCurve reads the curve at x; points outside it are zero.
func interpolateCurve(curve []models.Point, x float64) float64 {
	if len(curve) == 0 || x < curve[0].X || x > curve[len(curve)-1].X {
		return 0
	}
	for i := 1; i < len(curve); i++ {
		a, b := curve[i-1], curve[i]
		if x <= b.X {
			if b.X == a.X {
				return b.Y
			}
			return a.Y + (b.Y-a.Y)*(x-a.X)/(b.X-a.X)
		}
	}
	return curve[len(curve)-1].Y
}

func echartsBox(art models.ChartArtifact, width, height int) htmlChart {
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		initOpts(art, width, height),
		charts.WithTitleOpts(opts.Title{Title: art.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: art.XLabel, Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: art.YLabel, Scale: opts.Bool(true)}),
	)
	labels := make([]string, len(art.Boxes))
	items := make([]opts.BoxPlotData, len(art.Boxes))
	var outliers []opts.ScatterData
	for i, b := range art.Boxes {
		labels[i] = b.Category
		items[i] = opts.BoxPlotData{Name: b.Category, Value: []float64{b.Min, b.Q1, b.Median, b.Q3, b.Max}}
		for _, o := range b.Outliers {
			outliers = append(outliers, opts.ScatterData{Value: []interface{}{b.Category, o}})
		}
	}
	box.SetXAxis(labels).AddSeries(art.YLabel, items)
	if len(outliers) > 0 {
		scatter := charts.NewScatter()
		scatter.SetXAxis(labels).AddSeries("outliers", outliers)
		box.Overlap(scatter)
	}
	return box
}

func echartsPie(art models.ChartArtifact, width, height int) htmlChart {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		initOpts(art, width, height),
		charts.WithTitleOpts(opts.Title{Title: art.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	items := make([]opts.PieData, len(art.Slices))
	for i, s := range art.Slices {
		items[i] = opts.PieData{Name: fmt.Sprintf("%s %s", s.Label, s.PercentLabel()), Value: s.Count}
	}
	pie.AddSeries(art.XLabel, items,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
		charts.WithPieChartOpts(opts.PieChart{Radius: "65%"}))
	return pie
}

func echartsHeatmap(art models.ChartArtifact, width, height int) htmlChart {
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		initOpts(art, width, height),
		charts.WithTitleOpts(opts.Title{Title: art.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: art.Labels}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: art.Labels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: coolwarmScale},
		}),
	)
	var items []opts.HeatMapData
	for i := range art.Labels {
		for j := range art.Labels {
			var v interface{} = "-"
			if c := art.Matrix[i][j]; !math.IsNaN(c) {
				v = roundTo(c, 2)
			}
			items = append(items, opts.HeatMapData{Value: [3]interface{}{j, i, v}})
		}
	}
	hm.SetXAxis(art.Labels).AddSeries("correlation", items,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return hm
}

package plot

import (
	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/wcharczuk/go-chart/v2"
)

// dataXStringsForGraph is one bar per category label.
type dataXStringsForGraph struct {
	xValues   []string
	yValues   []float64
	nameXAxis string
	nameYAxis string
	nameGraph string
}

func NewDataXStringsForGraph(art models.ChartArtifact) dataXStringsForGraph {
	return dataXStringsForGraph{
		xValues:   art.Categories,
		yValues:   art.Values,
		nameXAxis: art.XLabel,
		nameYAxis: art.YLabel,
		nameGraph: art.Title,
	}
}

func (d dataXStringsForGraph) GetNameGraph() string {
	return d.nameGraph
}
func (d dataXStringsForGraph) getNameXAxis() string {
	return d.nameXAxis
}
func (d dataXStringsForGraph) getNameYAxis() string {
	return d.nameYAxis
}
func (d dataXStringsForGraph) getYValues() []float64 {
	return d.yValues
}
func (d dataXStringsForGraph) getLabels() []string {
	return d.xValues
}

func (d dataXStringsForGraph) calculateChartDimensions(minBarWidth float64) (width, height int) {
	return calculateChartDimensions(len(d.xValues), len(d.yValues), minBarWidth)
}

func (d dataXStringsForGraph) generateBarValues() []chart.Value {
	bars := make([]chart.Value, 0, len(d.xValues))
	for i := range d.xValues {
		bars = append(bars, chart.Value{
			Value: d.yValues[i],
			Label: d.xValues[i],
			Style: chart.Style{
				FillColor:   chart.GetDefaultColor(i).WithAlpha(200),
				StrokeColor: chart.GetDefaultColor(i),
			},
		})
	}
	return bars
}

func (d dataXStringsForGraph) generateGrid() []chart.Tick {
	return generateGrid(d.yValues)
}

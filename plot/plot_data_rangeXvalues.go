package plot

import (
	"fmt"

	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// dataRangeXValuesForGraph is a histogram: one bar per [xStart, xEnd) bin.
type dataRangeXValuesForGraph struct {
	xStart, xEnd []float64
	yValues      []float64
	nameXAxis    string
	nameYAxis    string
	nameGraph    string
}

func NewDataRangeXValuesForGraph(art models.ChartArtifact) dataRangeXValuesForGraph {
	d := dataRangeXValuesForGraph{
		yValues:   art.Values,
		nameXAxis: art.XLabel,
		nameYAxis: art.YLabel,
		nameGraph: art.Title,
	}
	for i := 0; i+1 < len(art.Edges); i++ {
		d.xStart = append(d.xStart, art.Edges[i])
		d.xEnd = append(d.xEnd, art.Edges[i+1])
	}
	return d
}

func (d dataRangeXValuesForGraph) GetNameGraph() string {
	return d.nameGraph
}
func (d dataRangeXValuesForGraph) getNameXAxis() string {
	return d.nameXAxis
}
func (d dataRangeXValuesForGraph) getNameYAxis() string {
	return d.nameYAxis
}
func (d dataRangeXValuesForGraph) getYValues() []float64 {
	return d.yValues
}
func (d dataRangeXValuesForGraph) getXValues() ([]float64, []float64) {
	return d.xStart, d.xEnd
}

func (d dataRangeXValuesForGraph) getLabels() []string {
	labels := make([]string, len(d.xStart))
	for i := range d.xStart {
		labels[i] = fmt.Sprintf("%g-%g", roundTo(d.xStart[i], 4), roundTo(d.xEnd[i], 4))
	}
	return labels
}

// centers are the bar positions on a continuous x axis.
func (d dataRangeXValuesForGraph) centers() []float64 {
	out := make([]float64, len(d.xStart))
	for i := range d.xStart {
		out[i] = (d.xStart[i] + d.xEnd[i]) / 2
	}
	return out
}

func (d dataRangeXValuesForGraph) bounds() (float64, float64) {
	if len(d.xStart) == 0 {
		return 0, 0
	}
	return d.xStart[0], d.xEnd[len(d.xEnd)-1]
}

func (d dataRangeXValuesForGraph) calculateChartDimensions(minBarWidth float64) (width, height int) {
	return calculateChartDimensions(len(d.xStart), len(d.yValues), minBarWidth)
}

func (d dataRangeXValuesForGraph) generateBarValues() []chart.Value {
	labels := d.getLabels()
	bars := make([]chart.Value, 0, len(d.xStart))
	for i := range d.xStart {
		bars = append(bars, chart.Value{
			Value: d.yValues[i],
			Label: labels[i],
			Style: chart.Style{
				FillColor: drawing.ColorPurple.WithAlpha(100),
			},
		})
	}
	return bars
}

func (d dataRangeXValuesForGraph) generateGrid() []chart.Tick {
	return generateGrid(d.yValues)
}

package plot

import "github.com/wcharczuk/go-chart/v2"

// dataForGraph is the bar-shaped data behind Bar, Count and Distribution charts.
type dataForGraph interface {
	GetNameGraph() string
	getNameXAxis() string
	getNameYAxis() string
	getYValues() []float64
	getLabels() []string
	calculateChartDimensions(float64) (int, int)
	generateBarValues() []chart.Value
	generateGrid() []chart.Tick
}

package models

import (
	"fmt"
	"math"
	"strings"
)

// AxisNone is the axis selection meaning "no column".
const AxisNone = "None"

// IsNone reports whether an axis selection names no column.
func IsNone(axis string) bool {
	axis = strings.TrimSpace(axis)
	return axis == "" || strings.EqualFold(axis, AxisNone)
}

type PlotType int

const (
	PlotLine PlotType = iota + 1
	PlotBar
	PlotScatter
	PlotDistribution
	PlotCount
	PlotBox
	PlotHeatmap
	PlotPie
)

var plotTypeLabels = map[PlotType]string{
	PlotLine:         "Line Plot",
	PlotBar:          "Bar Chart",
	PlotScatter:      "Scatter Plot",
	PlotDistribution: "Distribution Plot",
	PlotCount:        "Count Plot",
	PlotBox:          "Box Plot",
	PlotHeatmap:      "Heatmap",
	PlotPie:          "Pie Chart",
}

var plotTypeAliases = map[string]PlotType{
	"line":         PlotLine,
	"bar":          PlotBar,
	"scatter":      PlotScatter,
	"distribution": PlotDistribution,
	"dist":         PlotDistribution,
	"hist":         PlotDistribution,
	"count":        PlotCount,
	"box":          PlotBox,
	"heatmap":      PlotHeatmap,
	"pie":          PlotPie,
}

// PlotTypes lists every plot type in menu order.
func PlotTypes() []PlotType {
	return []PlotType{PlotLine, PlotBar, PlotScatter, PlotDistribution, PlotCount, PlotBox, PlotHeatmap, PlotPie}
}

func (p PlotType) String() string {
	if label, ok := plotTypeLabels[p]; ok {
		return label
	}
	return fmt.Sprintf("PlotType(%d)", int(p))
}

func (p PlotType) Valid() bool {
	_, ok := plotTypeLabels[p]
	return ok
}

// SingleAxis reports whether the chart only consumes the X axis.
func (p PlotType) SingleAxis() bool {
	return p == PlotDistribution || p == PlotCount || p == PlotPie
}

// ParsePlotType accepts menu labels ("Line Plot") and short names ("line").
func ParsePlotType(s string) (PlotType, error) {
	s = strings.TrimSpace(s)
	for p, label := range plotTypeLabels {
		if strings.EqualFold(label, s) {
			return p, nil
		}
	}
	if p, ok := plotTypeAliases[strings.ToLower(s)]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("unknown plot type %q", s)
}

type PlotRequest struct {
	XAxis    string
	YAxis    string
	PlotType PlotType
}

type ValidationResult int

const (
	ValidationOk ValidationResult = iota
	MissingAxes
)

func (v ValidationResult) String() string {
	if v == MissingAxes {
		return "MissingAxes"
	}
	return "Ok"
}

// Message is the user-facing text for a failed validation.
func (v ValidationResult) Message() string {
	if v == MissingAxes {
		return "Please select both X and Y axes."
	}
	return ""
}

// CorrelationMatrix is a square table of Pearson coefficients over numeric columns.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

func (m CorrelationMatrix) Len() int      { return len(m.Columns) }
func (m CorrelationMatrix) IsEmpty() bool { return len(m.Columns) == 0 }

// Get looks a coefficient up by column names.
func (m CorrelationMatrix) Get(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, name := range m.Columns {
		if name == a {
			i = k
		}
		if name == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return m.Values[i][j], true
}

type ChartFormat string

const (
	FormatPNG  ChartFormat = "png"
	FormatHTML ChartFormat = "html"
)

func ParseChartFormat(s string) (ChartFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown chart format %q", s)
}

func (f ChartFormat) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "image/png"
}

type Point struct {
	X float64
	Y float64
}

type PieSlice struct {
	Label   string
	Count   int
	Percent float64
}

// PercentLabel renders the share to one decimal place.
func (s PieSlice) PercentLabel() string {
	return fmt.Sprintf("%.1f%%", s.Percent)
}

type BoxSummary struct {
	Category     string
	Min          float64
	Q1           float64
	Median       float64
	Q3           float64
	Max          float64
	Outliers     []float64
	Observations int
}

// ChartArtifact is a rendered chart plus the data it was drawn from.
type ChartArtifact struct {
	PlotType PlotType
	Title    string
	XLabel   string
	YLabel   string
	Format   ChartFormat
	Content  []byte

	// Bar, Count, Distribution: one entry per bar.
	Categories []string
	Values     []float64
	// Line, Scatter.
	Points []Point
	XTicks []string
	YTicks []string
	// Distribution bin edges and density curve, scaled to counts.
	Edges  []float64
	Curve  []Point
	Boxes  []BoxSummary
	Slices []PieSlice
	// Heatmap coefficients and their annotations.
	Labels []string
	Matrix [][]float64
	Cells  [][]string
}

// ContentType is the MIME type of Content.
func (a ChartArtifact) ContentType() string {
	return a.Format.ContentType()
}

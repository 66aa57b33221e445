package visualizer

import (
	"fmt"

	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/data_visualizer/engine"
	"github.com/pivolan/data_visualizer/logging"
	"github.com/pivolan/data_visualizer/plot"
)

const PreviewRows = 5

// DatasetSource resolves a dataset name to its parsed contents.
type DatasetSource interface {
	Load(name string) (*models.Dataset, error)
}

// Request is one interaction: every selection the user made, nothing else.
// Blank filter fields fall back to the first column and its first value.
type Request struct {
	Dataset      string
	FilterColumn string
	FilterValue  string
	XAxis        string
	YAxis        string
	PlotType     models.PlotType
	Generate     bool
	Format       models.ChartFormat
}

// Result is everything one interaction shows back to the user.
type Result struct {
	Dataset string
	Columns []models.ColumnInfo
	Preview *models.Dataset
	Summary engine.Summary

	FilterColumn string
	FilterValue  models.Value
	FilterValues []models.Value
	Filtered     *models.Dataset
	Caption      string

	Correlation *models.CorrelationMatrix
	Heatmap     *models.ChartArtifact

	Generated  bool
	Validation models.ValidationResult
	Charts     []models.ChartArtifact

	Warnings []string
	Errors   []string
	// Err is the first failure, kept for callers that map error types.
	Err error
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *Result) fail(err error) {
	if r.Err == nil {
		r.Err = err
	}
	r.Errors = append(r.Errors, err.Error())
}

// OK reports whether the interaction produced no errors.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

type Visualizer struct {
	source     DatasetSource
	dispatcher *plot.Dispatcher
}

func New(source DatasetSource, dispatcher *plot.Dispatcher) *Visualizer {
	return &Visualizer{source: source, dispatcher: dispatcher}
}

// Handle loads the requested dataset and runs the request against it.
func (v *Visualizer) Handle(req Request) Result {
	ds, err := v.source.Load(req.Dataset)
	if err != nil {
		logging.Warn("failed to load %s: %v", req.Dataset, err)
		res := Result{Dataset: req.Dataset}
		res.fail(err)
		return res
	}
	return v.Run(ds, req)
}

// Run filters the dataset, computes the heatmap for heatmap selections and,
// when asked to generate, validates the axes and dispatches the plot.
// Failures end up in Result.Errors; the session always continues.
func (v *Visualizer) Run(ds *models.Dataset, req Request) Result {
	res := Result{
		Dataset: ds.Name(),
		Columns: ds.Schema(),
		Preview: ds.Head(PreviewRows),
		Summary: engine.Describe(ds),
	}
	if ds.Len() == 0 {
		res.warn("dataset has no columns")
		return res
	}

	filtered, err := v.filter(ds, req, &res)
	if err != nil {
		res.fail(err)
		return res
	}

	dispatcher := v.dispatcher
	if req.Format != "" && req.Format != dispatcher.Format {
		d := *dispatcher
		d.Format = req.Format
		dispatcher = &d
	}

	plotType := req.PlotType
	if plotType == 0 {
		plotType = models.PlotLine
	}

	if plotType == models.PlotHeatmap {
		matrix := engine.CorrelationMatrix(filtered)
		res.Correlation = &matrix
		art, err := dispatcher.RenderHeatmap(matrix)
		if err != nil {
			res.fail(err)
		} else {
			res.Heatmap = &art
		}
	}

	if !req.Generate {
		return res
	}
	res.Generated = true
	res.Validation = engine.Validate(req.XAxis, req.YAxis, plotType)
	if res.Validation == models.MissingAxes {
		res.warn(res.Validation.Message())
		return res
	}

	charts, err := dispatcher.Render(filtered, req.XAxis, req.YAxis, plotType)
	if err != nil {
		logging.Info("plot %s of %s vs %s on %s failed: %v", plotType, req.YAxis, req.XAxis, ds.Name(), err)
		res.fail(err)
		return res
	}
	res.Charts = charts
	return res
}

func (v *Visualizer) filter(ds *models.Dataset, req Request, res *Result) (*models.Dataset, error) {
	column := req.FilterColumn
	if column == "" {
		column = ds.ColumnNames()[0]
	}
	values, err := engine.DistinctValues(ds, column)
	if err != nil {
		return nil, err
	}
	res.FilterColumn = column
	res.FilterValues = values

	value := models.Missing()
	switch {
	case req.FilterValue != "":
		if value, err = engine.ParseFilterValue(ds, column, req.FilterValue); err != nil {
			return nil, err
		}
	case len(values) > 0:
		value = values[0]
	}
	res.FilterValue = value

	filtered, err := engine.ApplyFilter(ds, column, value)
	if err != nil {
		return nil, err
	}
	res.Filtered = filtered
	res.Caption = fmt.Sprintf("Filtered Data (%s = %s):", column, value)
	return filtered, nil
}

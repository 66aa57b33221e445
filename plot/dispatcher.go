package plot

import (
	"fmt"

	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/data_visualizer/engine"
	"github.com/pivolan/data_visualizer/logging"
)

const heatmapTitle = "Correlation Heatmap"

// Dispatcher turns a validated plot selection into encoded chart artifacts.
type Dispatcher struct {
	Width  int
	Height int
	Format models.ChartFormat
}

func NewDispatcher(width, height int, format models.ChartFormat) *Dispatcher {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 500
	}
	if format == "" {
		format = models.FormatPNG
	}
	return &Dispatcher{Width: width, Height: height, Format: format}
}

// Render builds the chart for plotType from the view. Only the axes the plot
// type uses are looked up, so y may name anything for single-axis types.
func (d *Dispatcher) Render(view *models.Dataset, x, y string, plotType models.PlotType) (arts []models.ChartArtifact, err error) {
	if !plotType.Valid() {
		return nil, models.NewRenderFailure(plotType, fmt.Errorf("unknown plot type %d", int(plotType)))
	}
	if view == nil {
		return nil, models.NewRenderFailure(plotType, errEmptyView)
	}

	var xCol, yCol models.Column
	if plotType != models.PlotHeatmap {
		if xCol, err = view.Column(x); err != nil {
			return nil, err
		}
	}
	if usesY(plotType) {
		if yCol, err = view.Column(y); err != nil {
			return nil, err
		}
	}
	if view.RowCount() == 0 {
		return nil, models.NewRenderFailure(plotType, errEmptyView)
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Error("panic while drawing %s of %s vs %s: %v", plotType, y, x, r)
			arts, err = nil, models.NewRenderFailure(plotType, fmt.Errorf("%v", r))
		}
	}()

	art := newArtifact(plotType, x, y)
	switch plotType {
	case models.PlotLine:
		err = buildLine(&art, xCol, yCol)
	case models.PlotBar:
		err = buildBar(&art, xCol, yCol)
	case models.PlotScatter:
		err = buildScatter(&art, xCol, yCol)
	case models.PlotDistribution:
		err = buildDistribution(&art, xCol)
	case models.PlotCount:
		err = buildCount(&art, xCol)
	case models.PlotBox:
		err = buildBox(&art, xCol, yCol)
	case models.PlotPie:
		err = buildPie(&art, xCol)
	case models.PlotHeatmap:
		err = buildHeatmap(&art, engine.CorrelationMatrix(view))
	}
	if err != nil {
		return nil, models.NewRenderFailure(plotType, err)
	}

	if err = d.encode(&art); err != nil {
		return nil, models.NewRenderFailure(plotType, err)
	}
	logging.Debug("rendered %s (%s, %d bytes)", art.Title, art.Format, len(art.Content))
	return []models.ChartArtifact{art}, nil
}

// RenderHeatmap draws an annotated correlation matrix.
func (d *Dispatcher) RenderHeatmap(m models.CorrelationMatrix) (art models.ChartArtifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("panic while drawing heatmap: %v", r)
			art, err = models.ChartArtifact{}, models.NewRenderFailure(models.PlotHeatmap, fmt.Errorf("%v", r))
		}
	}()

	art = models.ChartArtifact{PlotType: models.PlotHeatmap, Title: heatmapTitle}
	if err = buildHeatmap(&art, m); err != nil {
		return models.ChartArtifact{}, models.NewRenderFailure(models.PlotHeatmap, err)
	}
	if err = d.encode(&art); err != nil {
		return models.ChartArtifact{}, models.NewRenderFailure(models.PlotHeatmap, err)
	}
	return art, nil
}

func (d *Dispatcher) encode(art *models.ChartArtifact) error {
	art.Format = d.Format
	if d.Format == models.FormatHTML {
		content, err := RenderHTML(*art, d.Width, d.Height)
		if err != nil {
			return err
		}
		art.Content = content
		return nil
	}

	var content []byte
	var err error
	switch art.PlotType {
	case models.PlotLine, models.PlotScatter:
		content, err = DrawPoints(*art, d.Width, d.Height)
	case models.PlotBar, models.PlotCount:
		content, err = DrawPlotBar(NewDataXStringsForGraph(*art), d.Width, d.Height)
	case models.PlotDistribution:
		content, err = DrawDistribution(*art, d.Width, d.Height)
	case models.PlotBox:
		content, err = DrawBox(*art, d.Width, d.Height)
	case models.PlotPie:
		content, err = DrawPie(*art, d.Width, d.Height)
	case models.PlotHeatmap:
		content, err = DrawHeatmap(*art, d.Width, d.Height)
	default:
		err = fmt.Errorf("unsupported plot type %s", art.PlotType)
	}
	if err != nil {
		return err
	}
	art.Content = content
	return nil
}

func usesY(p models.PlotType) bool {
	switch p {
	case models.PlotLine, models.PlotBar, models.PlotScatter, models.PlotBox:
		return true
	}
	return false
}

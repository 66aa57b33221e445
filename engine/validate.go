package engine

import "github.com/pivolan/data_visualizer/domain/models"

// Validate requires both axes for every plot type, single-axis charts included.
func Validate(x, y string, plotType models.PlotType) models.ValidationResult {
	if models.IsNone(x) || models.IsNone(y) {
		return models.MissingAxes
	}
	return models.ValidationOk
}

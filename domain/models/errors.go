package models

import (
	"errors"
	"fmt"
)

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrRenderFailure  = errors.New("render failure")
	ErrLoadFailure    = errors.New("load failure")
)

// ColumnNotFoundError is returned when a column reference is absent from the current dataset.
type ColumnNotFoundError struct {
	Column  string
	Dataset string
}

func (e *ColumnNotFoundError) Error() string {
	if e.Dataset == "" {
		return fmt.Sprintf("column %q not found", e.Column)
	}
	return fmt.Sprintf("column %q not found in %s", e.Column, e.Dataset)
}

func (e *ColumnNotFoundError) Is(target error) bool {
	return target == ErrColumnNotFound
}

// RenderFailure wraps an error raised while constructing a chart.
type RenderFailure struct {
	PlotType PlotType
	Cause    error
}

func NewRenderFailure(p PlotType, cause error) *RenderFailure {
	return &RenderFailure{PlotType: p, Cause: cause}
}

func (e *RenderFailure) Error() string {
	return fmt.Sprintf("Error generating plot: %v", e.Cause)
}

func (e *RenderFailure) Unwrap() error { return e.Cause }

func (e *RenderFailure) Is(target error) bool {
	return target == ErrRenderFailure
}

// LoadFailure is returned when a selected file cannot be parsed.
type LoadFailure struct {
	Path  string
	Cause error
}

func (e *LoadFailure) Error() string {
	return fmt.Sprintf("Error loading file %s: %v", e.Path, e.Cause)
}

func (e *LoadFailure) Unwrap() error { return e.Cause }

func (e *LoadFailure) Is(target error) bool {
	return target == ErrLoadFailure
}

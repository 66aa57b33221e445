package engine

import (
	"strconv"
	"strings"

	"github.com/pivolan/data_visualizer/domain/models"
)

// DistinctValues returns the unique non-missing values of a column in the
// order they first appear.
func DistinctValues(ds *models.Dataset, column string) ([]models.Value, error) {
	col, err := ds.Column(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	values := make([]models.Value, 0)
	for _, v := range col.Values {
		if v.IsMissing() {
			continue
		}
		key := v.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		values = append(values, v)
	}
	return values, nil
}

// ApplyFilter keeps the rows whose column equals value, in their original
// order. No match gives an empty view with the same columns.
func ApplyFilter(ds *models.Dataset, column string, value models.Value) (*models.Dataset, error) {
	col, err := ds.Column(column)
	if err != nil {
		return nil, err
	}
	rows := make([]int, 0)
	for i, v := range col.Values {
		if v.Equal(value) {
			rows = append(rows, i)
		}
	}
	return ds.SelectRows(rows), nil
}

// ParseFilterValue turns user input into a filter value: an observed value
// with the same display text (surrounding spaces ignored) wins, otherwise the
// text is parsed per column kind.
func ParseFilterValue(ds *models.Dataset, column, raw string) (models.Value, error) {
	values, err := DistinctValues(ds, column)
	if err != nil {
		return models.Value{}, err
	}
	for _, v := range values {
		if v.String() == raw {
			return v, nil
		}
	}
	trimmed := strings.TrimSpace(raw)
	for _, v := range values {
		if v.String() == trimmed {
			return v, nil
		}
	}

	col, _ := ds.Column(column)
	switch col.Kind {
	case models.KindNumber:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return models.Number(f), nil
		}
	case models.KindBool:
		if b, err := strconv.ParseBool(trimmed); err == nil {
			return models.BoolValue(b), nil
		}
	}
	return models.TextValue(raw), nil
}

package main

import (
	"math"
	"strings"
	"testing"

	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/data_visualizer/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, "NaN"},
		{math.NaN(), "NaN"},
		{3.0, "3"},
		{-12.0, "-12"},
		{2.5, "2.5"},
		{1.0 / 3, "0.333333"},
		{"NY", "NY"},
		{true, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCell(tt.in))
	}
}

func TestFormatCoefficient(t *testing.T) {
	assert.Equal(t, "NaN", formatCoefficient(math.NaN()))
	assert.Equal(t, "-0.46", formatCoefficient(-0.4567))
	assert.Equal(t, "1.00", formatCoefficient(1))
}

func TestGeneratePreviewTable(t *testing.T) {
	store := newTestStore(t)
	ds, err := store.Load("sales.csv")
	require.NoError(t, err)

	out := GeneratePreviewTable(ds.Head(2))
	lines := strings.Split(out, "\n")
	assert.Contains(t, out, "CITY")
	assert.Contains(t, out, "SALES")
	assert.Contains(t, out, "| 0 | NY")
	assert.Contains(t, out, "| 1 | LA")
	assert.NotContains(t, out, "| 2 |")
	assert.Len(t, lines, 6)
}

func TestGenerateDescribeTable(t *testing.T) {
	store := newTestStore(t)
	ds, err := store.Load("sales.csv")
	require.NoError(t, err)

	out := GenerateDescribeTable(engine.Describe(ds))
	rows := map[string][]string{}
	for _, line := range strings.Split(out, "\n") {
		var cells []string
		for _, f := range strings.Fields(line) {
			if f != "|" {
				cells = append(cells, f)
			}
		}
		if len(cells) > 0 {
			rows[cells[0]] = cells[1:]
		}
	}
	assert.Equal(t, []string{"UNITS"}, rows["SALES"])
	assert.Equal(t, []string{"3", "3"}, rows["count"])
	assert.Equal(t, []string{"20", "2"}, rows["mean"])
	assert.Equal(t, []string{"30", "3"}, rows["max"])
}

func TestGenerateCorrelationTable(t *testing.T) {
	m := models.CorrelationMatrix{
		Columns: []string{"a", "b"},
		Values:  [][]float64{{1, -0.5}, {-0.5, math.NaN()}},
	}
	out := GenerateCorrelationTable(m)
	assert.Contains(t, out, "-0.50")
	assert.Contains(t, out, "NaN")
	assert.Equal(t, "no numeric columns", GenerateCorrelationTable(models.CorrelationMatrix{}))
}

func TestGenerateSchemaTable(t *testing.T) {
	out := GenerateSchemaTable([]models.ColumnInfo{{Name: "city", Type: "String"}, {Name: "sales", Type: "Float64"}})
	assert.Contains(t, out, "| city   | String  |")
	assert.Contains(t, out, "| sales  | Float64 |")
}

func TestGenerateValuesList(t *testing.T) {
	values := []models.Value{models.TextValue("NY"), models.TextValue("LA"), models.Number(3), models.BoolValue(true)}

	assert.Equal(t, "NY\nLA\n3\ntrue\n", GenerateValuesList(values, 0))
	assert.Equal(t, "NY\nLA\n... and 2 more\n", GenerateValuesList(values, 2))
	assert.Equal(t, "", GenerateValuesList(nil, 5))
}

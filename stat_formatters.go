package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/data_visualizer/engine"
)

func formatCell(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return "NaN"
	case float64:
		if math.IsNaN(value) {
			return "NaN"
		}
		if value == math.Trunc(value) && math.Abs(value) < 1e15 {
			return fmt.Sprintf("%.0f", value)
		}
		return fmt.Sprintf("%.6g", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func formatCoefficient(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}

// GeneratePreviewTable prints the rows of a dataset with a leading row index.
func GeneratePreviewTable(ds *models.Dataset) string {
	t := table.NewWriter()
	header := table.Row{""}
	for _, name := range ds.ColumnNames() {
		header = append(header, name)
	}
	t.AppendHeader(header)

	for i := 0; i < ds.RowCount(); i++ {
		row := table.Row{i}
		for _, v := range ds.Row(i) {
			row = append(row, formatCell(v.Interface()))
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// GenerateDescribeTable prints one line per statistic and one column per dataset column.
func GenerateDescribeTable(s engine.Summary) string {
	t := table.NewWriter()
	header := table.Row{""}
	for _, c := range s.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)

	for i, stat := range s.Stats {
		row := table.Row{stat}
		for _, v := range s.Cells[i] {
			row = append(row, formatCell(v))
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// GenerateCorrelationTable prints the matrix with two decimals.
func GenerateCorrelationTable(m models.CorrelationMatrix) string {
	if m.IsEmpty() {
		return "no numeric columns"
	}
	t := table.NewWriter()
	header := table.Row{""}
	for _, c := range m.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)

	for i, c := range m.Columns {
		row := table.Row{c}
		for _, v := range m.Values[i] {
			row = append(row, formatCoefficient(v))
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// GenerateSchemaTable lists column names with their inferred types.
func GenerateSchemaTable(columns []models.ColumnInfo) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Column", "Type"})
	for _, c := range columns {
		t.AppendRow(table.Row{c.Name, c.Type})
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// GenerateValuesList joins filter values one per line, capped at limit.
func GenerateValuesList(values []models.Value, limit int) string {
	var sb strings.Builder
	for i, v := range values {
		if limit > 0 && i == limit {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(values)-limit))
			break
		}
		sb.WriteString(v.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

package models

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the inferred scalar type of a cell or a whole column.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindBool
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "Float64"
	case KindBool:
		return "Bool"
	case KindText:
		return "String"
	default:
		return "Missing"
	}
}

// Value is a single dataset cell.
type Value struct {
	Kind Kind
	Num  float64
	Bool bool
	Text string
}

func Missing() Value            { return Value{Kind: KindMissing} }
func Number(v float64) Value    { return Value{Kind: KindNumber, Num: v} }
func BoolValue(v bool) Value    { return Value{Kind: KindBool, Bool: v} }
func TextValue(v string) Value  { return Value{Kind: KindText, Text: v} }
func (v Value) IsMissing() bool { return v.Kind == KindMissing || (v.Kind == KindNumber && math.IsNaN(v.Num)) }

// Equal reports whether both values hold the same kind and payload.
// A missing value is never equal to anything, itself included.
func (v Value) Equal(other Value) bool {
	if v.IsMissing() || other.IsMissing() || v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == other.Num
	case KindBool:
		return v.Bool == other.Bool
	default:
		return v.Text == other.Text
	}
}

// Key is a map key unique per kind and payload. Values that are Equal share a key.
func (v Value) Key() string {
	if v.Kind == KindNumber && v.Num == 0 {
		v.Num = 0
	}
	return fmt.Sprintf("%d:%s", v.Kind, v.String())
}

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		if math.IsNaN(v.Num) {
			return ""
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindText:
		return v.Text
	default:
		return ""
	}
}

// Interface returns the Go value for encoders: float64, bool, string or nil.
func (v Value) Interface() interface{} {
	if v.IsMissing() {
		return nil
	}
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	default:
		return v.Text
	}
}

type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// IsNumeric reports whether the column holds numbers only.
func (c Column) IsNumeric() bool {
	return c.Kind == KindNumber
}

// Floats returns the numeric payload of every non-missing cell.
func (c Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if v.Kind == KindNumber && !v.IsMissing() {
			out = append(out, v.Num)
		}
	}
	return out
}

type ColumnInfo struct {
	Name string
	Type string
}

// Dataset is an immutable table of equally long, uniquely named columns.
type Dataset struct {
	name    string
	columns []Column
	index   map[string]int
	rows    int
}

// NewDataset validates the columns and takes ownership of them.
func NewDataset(name string, columns []Column) (*Dataset, error) {
	ds := &Dataset{name: name, columns: columns, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, exists := ds.index[c.Name]; exists {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if i == 0 {
			ds.rows = len(c.Values)
		} else if len(c.Values) != ds.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, len(c.Values), ds.rows)
		}
		ds.index[c.Name] = i
	}
	return ds, nil
}

func (d *Dataset) Name() string  { return d.name }
func (d *Dataset) RowCount() int { return d.rows }
func (d *Dataset) Len() int      { return len(d.columns) }

func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

func (d *Dataset) Schema() []ColumnInfo {
	info := make([]ColumnInfo, len(d.columns))
	for i, c := range d.columns {
		info[i] = ColumnInfo{Name: c.Name, Type: c.Kind.String()}
	}
	return info
}

func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a copy of the named column or a ColumnNotFoundError.
func (d *Dataset) Column(name string) (Column, error) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, &ColumnNotFoundError{Column: name, Dataset: d.name}
	}
	c := d.columns[i]
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return Column{Name: c.Name, Kind: c.Kind, Values: values}, nil
}

func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.columns))
	for i, c := range d.columns {
		out[i], _ = d.Column(c.Name)
	}
	return out
}

// Row returns the cells of row i in column order.
func (d *Dataset) Row(i int) []Value {
	row := make([]Value, len(d.columns))
	for j, c := range d.columns {
		row[j] = c.Values[i]
	}
	return row
}

// SelectRows builds a new dataset holding the given rows in the given order.
func (d *Dataset) SelectRows(rows []int) *Dataset {
	columns := make([]Column, len(d.columns))
	for j, c := range d.columns {
		values := make([]Value, len(rows))
		for k, r := range rows {
			values[k] = c.Values[r]
		}
		columns[j] = Column{Name: c.Name, Kind: c.Kind, Values: values}
	}
	index := make(map[string]int, len(d.index))
	for k, v := range d.index {
		index[k] = v
	}
	return &Dataset{name: d.name, columns: columns, index: index, rows: len(rows)}
}

// Head returns at most n leading rows.
func (d *Dataset) Head(n int) *Dataset {
	if n > d.rows {
		n = d.rows
	}
	if n < 0 {
		n = 0
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return d.SelectRows(rows)
}

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/data_visualizer/logging"
	"github.com/xuri/excelize/v2"
)

const SEPARATOR = ','

var (
	errEmptyFile       = errors.New("file has no rows")
	errUnsupportedType = errors.New("unsupported file type")
)

// Load opens a .csv or .xlsx file and parses it into a dataset named after the file.
func Load(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.LoadFailure{Path: path, Cause: err}
	}
	defer f.Close()

	name := filepath.Base(path)
	var ds *models.Dataset
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		ds, err = ReadCSV(f, name)
	case ".xlsx", ".xlsm":
		ds, err = ReadExcel(f, name)
	default:
		return nil, &models.LoadFailure{Path: path, Cause: fmt.Errorf("%w: %s", errUnsupportedType, filepath.Ext(path))}
	}
	if err != nil {
		var lf *models.LoadFailure
		if errors.As(err, &lf) {
			lf.Path = path
		}
		return nil, err
	}
	logging.Debug("loaded %s: %d rows, %d columns", path, ds.RowCount(), ds.Len())
	return ds, nil
}

// ReadCSV parses comma separated text; the first row is used as header when it looks like one.
func ReadCSV(r io.Reader, name string) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = SEPARATOR
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &models.LoadFailure{Path: name, Cause: fmt.Errorf("failed to read CSV: %w", err)}
	}
	return FromRows(name, rows)
}

// ReadExcel parses the first sheet of a workbook.
func ReadExcel(r io.Reader, name string) (*models.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &models.LoadFailure{Path: name, Cause: fmt.Errorf("failed to open Excel file: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &models.LoadFailure{Path: name, Cause: errEmptyFile}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &models.LoadFailure{Path: name, Cause: fmt.Errorf("failed to read %s: %w", sheets[0], err)}
	}
	return FromRows(name, rows)
}

// FromRows builds a dataset from raw string rows. Short rows are padded with
// missing cells; a data row wider than the header is rejected.
func FromRows(name string, rows [][]string) (*models.Dataset, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &models.LoadFailure{Path: name, Cause: errEmptyFile}
	}

	analysis := AnalyzeHeaders(rows[0])
	data := rows[1:]
	if analysis.FirstRowIsData {
		data = rows
	}
	width := len(analysis.Headers)

	cells := make([][]string, width)
	for j := range cells {
		cells[j] = make([]string, 0, len(data))
	}
	for i, row := range data {
		if isBlankRow(row) {
			continue
		}
		if len(row) > width {
			return nil, &models.LoadFailure{Path: name, Cause: fmt.Errorf("row %d has %d fields, expected %d", i+2, len(row), width)}
		}
		for j := 0; j < width; j++ {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			cells[j] = append(cells[j], cell)
		}
	}

	columns := make([]models.Column, width)
	for j, header := range analysis.Headers {
		columns[j] = BuildColumn(header, cells[j])
	}
	ds, err := models.NewDataset(name, columns)
	if err != nil {
		return nil, &models.LoadFailure{Path: name, Cause: err}
	}
	return ds, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

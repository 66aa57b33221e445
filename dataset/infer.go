package dataset

import (
	"strconv"
	"strings"

	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/go_utils"
)

// naTokens are read as missing cells
var naTokens = []string{"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan", "null", "NULL", "None", "#N/A", "#NA", "<NA>", "-1.#IND", "1.#QNAN"}

var boolTokens = map[string]bool{
	"true": true, "True": true, "TRUE": true,
	"false": false, "False": false, "FALSE": false,
}

// Inference order: a column takes the heaviest kind seen among its cells.
// Bool and numbers mixed together degrade to text.
var typesWeight = []models.Kind{models.KindMissing, models.KindBool, models.KindNumber, models.KindText}

func kindWeight(k models.Kind) int {
	for i, t := range typesWeight {
		if t == k {
			return i
		}
	}
	return -1
}

func isNA(cell string) bool {
	return go_utils.InArray(strings.TrimSpace(cell), naTokens)
}

func cellKind(cell string) models.Kind {
	cell = strings.TrimSpace(cell)
	if isNA(cell) {
		return models.KindMissing
	}
	if _, ok := boolTokens[cell]; ok {
		return models.KindBool
	}
	if _, err := strconv.ParseFloat(cell, 64); err == nil {
		return models.KindNumber
	}
	return models.KindText
}

// InferKind returns the column kind for raw cells
func InferKind(cells []string) models.Kind {
	kind := models.KindMissing
	seenBool, seenNumber := false, false
	for _, cell := range cells {
		k := cellKind(cell)
		switch k {
		case models.KindBool:
			seenBool = true
		case models.KindNumber:
			seenNumber = true
		}
		if kindWeight(k) > kindWeight(kind) {
			kind = k
		}
	}
	if seenBool && seenNumber {
		return models.KindText
	}
	return kind
}

// ParseCell converts one raw cell into a value of the given column kind
func ParseCell(cell string, kind models.Kind) models.Value {
	if isNA(cell) {
		return models.Missing()
	}
	trimmed := strings.TrimSpace(cell)
	switch kind {
	case models.KindNumber:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return models.Number(f)
		}
	case models.KindBool:
		if b, ok := boolTokens[trimmed]; ok {
			return models.BoolValue(b)
		}
	case models.KindText:
		return models.TextValue(cell)
	}
	return models.Missing()
}

// BuildColumn infers the kind of raw cells and parses them
func BuildColumn(name string, cells []string) models.Column {
	kind := InferKind(cells)
	values := make([]models.Value, len(cells))
	for i, cell := range cells {
		values[i] = ParseCell(cell, kind)
	}
	return models.Column{Name: name, Kind: kind, Values: values}
}

package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeHeaders(t *testing.T) {
	tests := []struct {
		name        string
		input       []string
		wantHeaders []string
		wantIsData  bool
	}{
		{
			name:        "Valid headers",
			input:       []string{"Name", "Age", "Email", "Phone"},
			wantHeaders: []string{"Name", "Age", "Email", "Phone"},
		},
		{
			name:        "Numeric data",
			input:       []string{"123", "456", "789", "101"},
			wantHeaders: []string{"column_1", "column_2", "column_3", "column_4"},
			wantIsData:  true,
		},
		{
			name:        "Date data",
			input:       []string{"2024-01-01", "2024-01-02", "2024-01-03"},
			wantHeaders: []string{"column_1", "column_2", "column_3"},
			wantIsData:  true,
		},
		{
			name:        "Headers are trimmed",
			input:       []string{" city ", "sales"},
			wantHeaders: []string{"city", "sales"},
		},
		{
			name:        "Duplicate headers",
			input:       []string{"Name", "Name", "Name", "Age"},
			wantHeaders: []string{"Name", "Name_1", "Name_2", "Age"},
		},
		{
			name:        "Empty headers",
			input:       []string{"", "", "", ""},
			wantHeaders: []string{"column_1", "column_2", "column_3", "column_4"},
			wantIsData:  true,
		},
		{
			name:        "Blank header among names",
			input:       []string{"product_name", "", "unit_price"},
			wantHeaders: []string{"product_name", "column_2", "unit_price"},
		},
		{
			name:        "Mostly numbers",
			input:       []string{"John", "30", "12.5", "123-456-7890"},
			wantHeaders: []string{"column_1", "column_2", "column_3", "column_4"},
			wantIsData:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeHeaders(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantHeaders, got.Headers)
			assert.Equal(t, tt.wantIsData, got.FirstRowIsData)
			assert.Equal(t, tt.input, got.FirstDataRow)
		})
	}
}

func TestAnalyzeHeadersEmptyRow(t *testing.T) {
	assert.Nil(t, AnalyzeHeaders(nil))
}

func TestIsLikelyHeader(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"sales", true},
		{"User Name", true},
		{"x1", true},
		{"42", false},
		{"-3.5", false},
		{"2024-01-01", false},
		{"01/02/2024", false},
		{"   ", false},
		{"123-456-7890", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, isLikelyHeader(tt.in))
		})
	}
}

func TestValidateHeaders(t *testing.T) {
	assert.Equal(t, []string{"a", "a_1", "b", "a_2"}, ValidateHeaders([]string{"a", "a", "b", "a"}))
	assert.Equal(t, []string{"a_1", "a", "a_1_1"}, ValidateHeaders([]string{"a_1", "a", "a_1"}))
}

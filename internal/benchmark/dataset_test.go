package benchmark

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	errs "address-similarity/pkg/errors"
)

func TestReadCSVWithBOMAndMixedCaseHeader(t *testing.T) {
	in := "\ufeffAddress,Matched_Address,SEMANTIC_SIMILARITY\n" +
		"123 Main St,123 Main Street,0.95\n" +
		"\"12 Oak Ave, Apt 4\",12 Oak Avenue,0.8\n"

	ds, err := ReadCSV(strings.NewReader(in), "inline.csv")
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "123 Main St", ds.Rows[0].Address)
	assert.Equal(t, "123 Main Street", ds.Rows[0].MatchedAddress)
	assert.InDelta(t, 0.95, ds.Rows[0].Reference, 1e-12)
	assert.Equal(t, 2, ds.Rows[0].Line)
	assert.Equal(t, "12 Oak Ave, Apt 4", ds.Rows[1].Address)
	assert.Zero(t, ds.Skipped)
}

func TestReadCSVSkipsBadRows(t *testing.T) {
	in := "id,address,matched_address,semantic_similarity\n" +
		"1,a st,a street,0.9\n" +
		"2,,b street,0.5\n" +
		"3,c st,c street,n/a\n" +
		"4,d st,d street,1.5\n" +
		"5,e st,e street\n" +
		"6,f st,f street,0\n"

	ds, err := ReadCSV(strings.NewReader(in), "skips.csv")
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, 4, ds.Skipped)
	assert.Equal(t, "f st", ds.Rows[1].Address)
	assert.Equal(t, 7, ds.Rows[1].Line)
}

func TestReadCSVKeepsStrayQuotes(t *testing.T) {
	in := "address,matched_address,semantic_similarity\n" +
		"1 Elm St,1 Elm Street,0.9\n" +
		"Building \"A\" 5 Oak Ave,Bldg A 5 Oak Avenue,0.8\n" +
		"7 Pine Rd,7 Pine Road,0.95\n"

	ds, err := ReadCSV(strings.NewReader(in), "quotes.csv")
	require.NoError(t, err)
	require.Len(t, ds.Rows, 3)
	assert.Zero(t, ds.Skipped)
	assert.Equal(t, `Building "A" 5 Oak Ave`, ds.Rows[1].Address)
	assert.Equal(t, 3, ds.Rows[1].Line)
}

func TestReadCSVLineNumbersFollowMultilineFields(t *testing.T) {
	in := "address,matched_address,semantic_similarity\n" +
		"\"Flat 3\n12 High Road\",12 High Rd Flat 3,0.9\n" +
		"9 Elm Road,9 Elm Rd,0.95\n"

	ds, err := ReadCSV(strings.NewReader(in), "multiline.csv")
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "Flat 3\n12 High Road", ds.Rows[0].Address)
	assert.Equal(t, 2, ds.Rows[0].Line)
	assert.Equal(t, 4, ds.Rows[1].Line)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty file", "", "empty file"},
		{"missing column", "address,semantic_similarity\nx,0.5\n", "matched_address"},
		{"no usable rows", "address,matched_address,semantic_similarity\n,,\n", "no usable rows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in), "bad.csv")
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrValidation))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDatasetRejectsUnknownExtension(t *testing.T) {
	_, err := LoadDataset("pairs.parquet")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrValidation))
}

func TestLoadDatasetXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.xlsx")
	f := excelize.NewFile()
	rows := [][]any{
		{"Address", "Matched_Address", "Semantic_Similarity"},
		{"1 Elm St", "1 Elm Street", 0.9},
		{"2 Pine Rd", "", 0.4},
		{"3 Birch Ln", "3 Birch Lane", 0.85},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := LoadDataset(path)
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, 1, ds.Skipped)
	assert.Equal(t, "3 Birch Lane", ds.Rows[1].MatchedAddress)
	assert.InDelta(t, 0.85, ds.Rows[1].Reference, 1e-12)
	assert.Equal(t, 4, ds.Rows[1].Line)
}

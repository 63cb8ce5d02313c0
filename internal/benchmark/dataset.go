// Package benchmark scores every similarity method against a labeled
// dataset of address pairs and ranks them by mean absolute error.
package benchmark

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	errs "address-similarity/pkg/errors"
)

// Dataset column names, matched case-insensitively.
const (
	ColAddress        = "address"
	ColMatchedAddress = "matched_address"
	ColReference      = "semantic_similarity"
)

// Row is one labeled pair. Line is the 1-based source line (or sheet row).
type Row struct {
	Address        string  `json:"address"`
	MatchedAddress string  `json:"matched_address"`
	Reference      float64 `json:"semantic_similarity"`
	Line           int     `json:"line"`
}

// Dataset is the usable rows of a source plus how many were skipped.
type Dataset struct {
	Source  string
	Rows    []Row
	Skipped int
}

// LoadDataset reads a .csv or .xlsx file.
func LoadDataset(path string) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()
		return ReadCSV(f, path)
	case ".xlsx":
		return ReadXLSX(path)
	default:
		return nil, errs.NewValidation("benchmark.LoadDataset", "unsupported dataset type "+filepath.Ext(path)+" (want .csv or .xlsx)", nil)
	}
}

// ReadCSV parses CSV from r. A leading byte-order mark is dropped and
// UTF-16 input announced by its BOM is decoded. Stray quotes inside fields
// are kept as text; a record that still fails to parse is skipped.
func ReadCSV(r io.Reader, source string) (*Dataset, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errs.NewValidation("benchmark.ReadCSV", source+": empty file", nil)
	}
	if err != nil {
		return nil, errs.NewValidation("benchmark.ReadCSV", source+": bad header", err)
	}
	cols, err := locateColumns(header)
	if err != nil {
		return nil, errs.NewValidation("benchmark.ReadCSV", source, err)
	}

	ds := &Dataset{Source: source}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			ds.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		line, _ := cr.FieldPos(0)
		ds.add(cols, rec, line)
	}
	return ds.finish("benchmark.ReadCSV")
}

// ReadXLSX reads the first sheet of an Excel workbook; row 1 is the header.
func ReadXLSX(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errs.NewValidation("benchmark.ReadXLSX", path+": workbook has no sheets", nil)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, errs.NewValidation("benchmark.ReadXLSX", path+": empty sheet", nil)
	}
	cols, err := locateColumns(rows[0])
	if err != nil {
		return nil, errs.NewValidation("benchmark.ReadXLSX", path, err)
	}

	ds := &Dataset{Source: path}
	for i, rec := range rows[1:] {
		ds.add(cols, rec, i+2)
	}
	return ds.finish("benchmark.ReadXLSX")
}

type columns struct{ address, matched, reference int }

func locateColumns(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	var missing []string
	get := func(name string) int {
		i, ok := idx[name]
		if !ok {
			missing = append(missing, name)
		}
		return i
	}
	c := columns{address: get(ColAddress), matched: get(ColMatchedAddress), reference: get(ColReference)}
	if len(missing) > 0 {
		return c, fmt.Errorf("missing column(s): %s", strings.Join(missing, ", "))
	}
	return c, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

// add appends rec, or counts it as skipped when a field is empty or the
// label is not a number in [0,1].
func (ds *Dataset) add(c columns, rec []string, line int) {
	a, b, ref := field(rec, c.address), field(rec, c.matched), field(rec, c.reference)
	if a == "" || b == "" || ref == "" {
		ds.Skipped++
		return
	}
	v, err := strconv.ParseFloat(ref, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 1 {
		ds.Skipped++
		return
	}
	ds.Rows = append(ds.Rows, Row{Address: a, MatchedAddress: b, Reference: v, Line: line})
}

func (ds *Dataset) finish(op string) (*Dataset, error) {
	if len(ds.Rows) == 0 {
		return nil, errs.NewValidation(op, fmt.Sprintf("%s: no usable rows (%d skipped)", ds.Source, ds.Skipped), nil)
	}
	return ds, nil
}

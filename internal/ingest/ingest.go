package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/godilite/evalreport/internal/survey"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrEmptyDataset      = errors.New("dataset has no header row")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var decoders = map[string]func(io.Reader) (*survey.Table, error){
	".csv":  LoadCSV,
	".txt":  LoadCSV,
	".xlsx": LoadXLSX,
	".xlsm": LoadXLSX,
}

// Supported reports whether Load has a decoder for filename.
func Supported(filename string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Load decodes a survey export into a table, choosing the decoder from the
// file extension.
func Load(filename string, r io.Reader) (*survey.Table, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
	return decode(r)
}

// LoadCSV reads a comma separated export. Rows may have differing lengths.
func LoadCSV(r io.Reader) (*survey.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return build(rows)
}

// LoadXLSX reads the first worksheet of a workbook. Cells are read
// unformatted so date cells reach the filter as serial numbers.
func LoadXLSX(r io.Reader) (*survey.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyDataset
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return build(rows)
}

func build(rows [][]string) (*survey.Table, error) {
	if len(rows) == 0 || blank(rows[0]) {
		return nil, ErrEmptyDataset
	}

	header := Header(rows[0])
	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		body = append(body, row)
	}
	return survey.NewTable(header, body), nil
}

// Header trims header cells and suffixes repeated names with ".1", ".2",
// ... so that every column stays addressable. The survey wording is kept
// as is; quote folding happens only when columns are resolved.
func Header(cells []string) []string {
	out := make([]string, len(cells))
	taken := make(map[string]bool, len(cells))
	counts := make(map[string]int, len(cells))
	for i, c := range cells {
		name := strings.TrimSpace(c)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for taken[candidate] {
			counts[name]++
			candidate = fmt.Sprintf("%s.%d", name, counts[name])
		}
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

package artifacts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"estate_hub/internal/domain"
)

// readRows returns all rows of a .csv or .xlsx (first sheet) artifact.
func readRows(name string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		// every record must be as wide as the header; a short row is corrupt
		// data, not missing cells
		recs, err := csv.NewReader(r).ReadAll()
		if errors.Is(err, csv.ErrFieldCount) {
			return nil, fmt.Errorf("%w: %v", domain.ErrAlignment, err)
		}
		return recs, err
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("xlsx has no sheets")
		}
		return f.GetRows(sheets[0])
	default:
		return nil, fmt.Errorf("unsupported artifact format %q", filepath.Ext(name))
	}
}

// labeledTable is the pandas DataFrame.to_csv layout: the first row holds
// column labels (its first cell is the index name and is ignored) and every
// following row starts with its row label.
type labeledTable struct {
	rows   []string
	cols   []string
	values [][]float64
}

func parseLabeledTable(name string, r io.Reader) (labeledTable, error) {
	recs, err := readRows(name, r)
	if err != nil {
		return labeledTable{}, fmt.Errorf("%s: %w", name, err)
	}
	if len(recs) == 0 {
		return labeledTable{}, fmt.Errorf("%s: empty table", name)
	}
	header := recs[0]
	if len(header) < 2 {
		return labeledTable{}, fmt.Errorf("%s: header has no columns", name)
	}
	t := labeledTable{cols: trimAll(header[1:])}
	for n, rec := range recs[1:] {
		if isBlank(rec) {
			continue
		}
		// xlsx rows may be short because excelize drops trailing empty cells
		if len(rec) > len(header) {
			return labeledTable{}, fmt.Errorf("%s: line %d has %d cells, header has %d", name, n+2, len(rec), len(header))
		}
		row := make([]float64, len(t.cols))
		for j := range t.cols {
			cell := ""
			if j+1 < len(rec) {
				cell = rec[j+1]
			}
			v, err := parseCell(cell)
			if err != nil {
				return labeledTable{}, fmt.Errorf("%s: line %d column %q: %w", name, n+2, t.cols[j], err)
			}
			row[j] = v
		}
		t.rows = append(t.rows, strings.TrimSpace(rec[0]))
		t.values = append(t.values, row)
	}
	return t, nil
}

// parseCell reads a numeric cell; an empty cell is NaN like a missing pandas value.
func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

package similarity

import (
	"fmt"
	"math"
	"sort"

	"estate_hub/internal/domain"
)

// DistanceTable holds distances in meters from each row entry (property or
// location) to each named location column.
type DistanceTable struct {
	rows   []string
	cols   []string
	colIdx map[string]int
	values [][]float64
}

func NewDistanceTable(rows, cols []string, values [][]float64) (*DistanceTable, error) {
	if len(values) != len(rows) {
		return nil, fmt.Errorf("%w: %d row labels for %d rows", domain.ErrAlignment, len(rows), len(values))
	}
	idx, err := indexLabels(cols)
	if err != nil {
		return nil, err
	}
	for i, r := range values {
		if len(r) != len(cols) {
			return nil, fmt.Errorf("%w: row %q has %d columns, want %d", domain.ErrAlignment, rows[i], len(r), len(cols))
		}
	}
	return &DistanceTable{rows: rows, cols: cols, colIdx: idx, values: values}, nil
}

func (d *DistanceTable) Rows() []string      { return append([]string(nil), d.rows...) }
func (d *DistanceTable) Locations() []string { return append([]string(nil), d.cols...) }

type Hit struct {
	Name           string
	DistanceMeters float64
}

// Within returns the rows strictly closer than radiusKm to location, nearest
// first. A row labeled with location itself is left out.
func (d *DistanceTable) Within(location string, radiusKm float64) ([]Hit, error) {
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius_km must be positive, got %v", domain.ErrInvalidArgument, radiusKm)
	}
	c, ok := d.colIdx[location]
	if !ok {
		return nil, fmt.Errorf("location %q: %w", location, domain.ErrNotFound)
	}

	limit := radiusKm * 1000
	var out []Hit
	for i, row := range d.values {
		if d.rows[i] == location {
			continue
		}
		if dist := row[c]; dist < limit {
			out = append(out, Hit{Name: d.rows[i], DistanceMeters: dist})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].DistanceMeters < out[b].DistanceMeters })
	return out, nil
}

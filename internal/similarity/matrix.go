// Package similarity holds the precomputed similarity and distance tables and
// the pure ranking operations over them.
package similarity

import (
	"fmt"

	"estate_hub/internal/domain"
)

// Matrix is a square, labeled score matrix. Row i and column i share labels[i].
type Matrix struct {
	labels []string
	index  map[string]int
	values [][]float64
}

// NewMatrix validates shape and label uniqueness. values is not copied.
func NewMatrix(labels []string, values [][]float64) (*Matrix, error) {
	if len(values) != len(labels) {
		return nil, fmt.Errorf("%w: %d labels for %d rows", domain.ErrAlignment, len(labels), len(values))
	}
	idx, err := indexLabels(labels)
	if err != nil {
		return nil, err
	}
	for i, row := range values {
		if len(row) != len(labels) {
			return nil, fmt.Errorf("%w: row %q has %d columns, want %d", domain.ErrAlignment, labels[i], len(row), len(labels))
		}
	}
	return &Matrix{labels: labels, index: idx, values: values}, nil
}

func indexLabels(labels []string) (map[string]int, error) {
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, dup := idx[l]; dup {
			return nil, fmt.Errorf("%w: duplicate label %q", domain.ErrAlignment, l)
		}
		idx[l] = i
	}
	return idx, nil
}

func (m *Matrix) Len() int            { return len(m.labels) }
func (m *Matrix) Labels() []string    { return append([]string(nil), m.labels...) }
func (m *Matrix) At(i, j int) float64 { return m.values[i][j] }

// IndexOf returns the position of label, or -1.
func (m *Matrix) IndexOf(label string) int {
	if i, ok := m.index[label]; ok {
		return i
	}
	return -1
}

// sameIndex reports whether m and o carry identical labels in identical order.
func (m *Matrix) sameIndex(o *Matrix) error {
	if m.Len() != o.Len() {
		return fmt.Errorf("%w: shape %dx%d vs %dx%d", domain.ErrAlignment, m.Len(), m.Len(), o.Len(), o.Len())
	}
	for i := range m.labels {
		if m.labels[i] != o.labels[i] {
			return fmt.Errorf("%w: label %d is %q vs %q", domain.ErrAlignment, i, m.labels[i], o.labels[i])
		}
	}
	return nil
}

package similarity

import (
	"fmt"
	"sort"

	"estate_hub/internal/domain"
)

type Scored struct {
	Name  string
	Score float64
}

// Recommend ranks every other property by its combined score against ref.
// Scores below minScore (and NaN) are dropped; ties keep index order.
func (m *Matrix) Recommend(ref string, topN int, minScore float64) ([]Scored, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be positive, got %d", domain.ErrInvalidArgument, topN)
	}
	i := m.IndexOf(ref)
	if i < 0 {
		return nil, fmt.Errorf("property %q: %w", ref, domain.ErrNotFound)
	}

	row := m.values[i]
	out := make([]Scored, 0, len(row))
	for j, s := range row {
		if j == i || !(s >= minScore) {
			continue
		}
		out = append(out, Scored{Name: m.labels[j], Score: s})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

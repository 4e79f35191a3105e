package similarity

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"estate_hub/internal/domain"
)

// Weights scale the facilities, price and location similarity dimensions.
type Weights struct {
	W1, W2, W3 float64
}

func DefaultWeights() Weights { return Weights{W1: 0.5, W2: 0.8, W3: 1.0} }

func (w Weights) Validate() error {
	for i, v := range []float64{w.W1, w.W2, w.W3} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: weight w%d=%v must be a non-negative real", domain.ErrInvalidArgument, i+1, v)
		}
	}
	return nil
}

func (w Weights) String() string {
	return fmt.Sprintf("%g,%g,%g", w.W1, w.W2, w.W3)
}

// ParseWeights reads "w1,w2,w3". Exactly three non-negative values are accepted.
func ParseWeights(s string) (Weights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Weights{}, fmt.Errorf("%w: want 3 weights, got %d", domain.ErrInvalidArgument, len(parts))
	}
	var vals [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Weights{}, fmt.Errorf("%w: weight %q: %v", domain.ErrInvalidArgument, p, err)
		}
		vals[i] = f
	}
	w := Weights{W1: vals[0], W2: vals[1], W3: vals[2]}
	return w, w.Validate()
}

// Combine returns w1*a + w2*b + w3*c. The sum is not clamped.
func Combine(a, b, c *Matrix, w Weights) (*Matrix, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if a == nil || b == nil || c == nil {
		return nil, fmt.Errorf("%w: nil similarity matrix", domain.ErrInvalidArgument)
	}
	if err := a.sameIndex(b); err != nil {
		return nil, fmt.Errorf("matrices 1 and 2: %w", err)
	}
	if err := a.sameIndex(c); err != nil {
		return nil, fmt.Errorf("matrices 1 and 3: %w", err)
	}

	n := a.Len()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = w.W1*a.values[i][j] + w.W2*b.values[i][j] + w.W3*c.values[i][j]
		}
		out[i] = row
	}
	return &Matrix{labels: a.labels, index: a.index, values: out}, nil
}

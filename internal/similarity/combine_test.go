package similarity_test

import (
	"errors"
	"math"
	"testing"

	"estate_hub/internal/domain"
	"estate_hub/internal/similarity"
)

func mustMatrix(t *testing.T, labels []string, values [][]float64) *similarity.Matrix {
	t.Helper()
	m, err := similarity.NewMatrix(labels, values)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	return m
}

func TestCombine_WeightedSum(t *testing.T) {
	labels := []string{"A", "B"}
	a := mustMatrix(t, labels, [][]float64{{1, 0.4}, {0.4, 1}})
	b := mustMatrix(t, labels, [][]float64{{1, 0.5}, {0.5, 1}})
	c := mustMatrix(t, labels, [][]float64{{1, 0.6}, {0.6, 1}})

	got, err := similarity.Combine(a, b, c, similarity.DefaultWeights())
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if v := got.At(0, 1); math.Abs(v-1.0) > 1e-12 {
		t.Fatalf("combined[A][B] = %v, want 1.0", v)
	}
	// diagonal: 0.5 + 0.8 + 1.0, not clamped to 1
	if v := got.At(1, 1); math.Abs(v-2.3) > 1e-12 {
		t.Fatalf("combined[B][B] = %v, want 2.3", v)
	}
}

func TestCombine_EveryCellMatchesFormula(t *testing.T) {
	labels := []string{"p0", "p1", "p2", "p3"}
	gen := func(seed float64) [][]float64 {
		out := make([][]float64, len(labels))
		for i := range out {
			out[i] = make([]float64, len(labels))
			for j := range out[i] {
				out[i][j] = math.Mod(seed*float64(i+1)*float64(j+3), 1)
			}
		}
		return out
	}
	s1, s2, s3 := gen(0.137), gen(0.291), gen(0.773)
	w := similarity.Weights{W1: 0.5, W2: 0.8, W3: 1.0}
	got, err := similarity.Combine(mustMatrix(t, labels, s1), mustMatrix(t, labels, s2), mustMatrix(t, labels, s3), w)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	for i := range labels {
		for j := range labels {
			want := 0.5*s1[i][j] + 0.8*s2[i][j] + 1.0*s3[i][j]
			if math.Abs(got.At(i, j)-want) > 1e-12 {
				t.Fatalf("cell (%d,%d) = %v, want %v", i, j, got.At(i, j), want)
			}
		}
	}
}

func TestCombine_MisalignedLabels(t *testing.T) {
	a := mustMatrix(t, []string{"A", "B"}, [][]float64{{1, 0}, {0, 1}})
	b := mustMatrix(t, []string{"B", "A"}, [][]float64{{1, 0}, {0, 1}})
	_, err := similarity.Combine(a, a, b, similarity.DefaultWeights())
	if !errors.Is(err, domain.ErrAlignment) {
		t.Fatalf("expected ErrAlignment, got %v", err)
	}
}

func TestCombine_ShapeMismatch(t *testing.T) {
	a := mustMatrix(t, []string{"A", "B"}, [][]float64{{1, 0}, {0, 1}})
	b := mustMatrix(t, []string{"A"}, [][]float64{{1}})
	if _, err := similarity.Combine(a, b, a, similarity.DefaultWeights()); !errors.Is(err, domain.ErrAlignment) {
		t.Fatalf("expected ErrAlignment, got %v", err)
	}
}

func TestCombine_RejectsNegativeWeight(t *testing.T) {
	a := mustMatrix(t, []string{"A"}, [][]float64{{1}})
	_, err := similarity.Combine(a, a, a, similarity.Weights{W1: 0.5, W2: -0.1, W3: 1})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestNewMatrix_Invalid(t *testing.T) {
	if _, err := similarity.NewMatrix([]string{"A", "A"}, [][]float64{{1, 0}, {0, 1}}); !errors.Is(err, domain.ErrAlignment) {
		t.Fatalf("duplicate labels: expected ErrAlignment, got %v", err)
	}
	if _, err := similarity.NewMatrix([]string{"A", "B"}, [][]float64{{1, 0}, {0}}); !errors.Is(err, domain.ErrAlignment) {
		t.Fatalf("ragged rows: expected ErrAlignment, got %v", err)
	}
}

func TestParseWeights(t *testing.T) {
	w, err := similarity.ParseWeights(" 0.5, 0.8 ,1")
	if err != nil {
		t.Fatalf("ParseWeights: %v", err)
	}
	if w != similarity.DefaultWeights() {
		t.Fatalf("unexpected weights: %+v", w)
	}
	for _, in := range []string{"0.5,0.8", "0.5,0.8,1,2", "a,b,c", "0.5,-1,1", "0.5,NaN,1"} {
		if _, err := similarity.ParseWeights(in); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("%q: expected ErrInvalidArgument, got %v", in, err)
		}
	}
}

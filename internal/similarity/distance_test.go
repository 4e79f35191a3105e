package similarity_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"estate_hub/internal/domain"
	"estate_hub/internal/similarity"
)

func TestWithin_RadiusScenario(t *testing.T) {
	d, err := similarity.NewDistanceTable(
		[]string{"Z", "X", "Y"},
		[]string{"L"},
		[][]float64{{3000}, {0}, {1500}},
	)
	if err != nil {
		t.Fatalf("NewDistanceTable: %v", err)
	}
	got, err := d.Within("L", 2.0)
	if err != nil {
		t.Fatalf("Within: %v", err)
	}
	want := []similarity.Hit{{Name: "X", DistanceMeters: 0}, {Name: "Y", DistanceMeters: 1500}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestWithin_StrictThreshold(t *testing.T) {
	d, _ := similarity.NewDistanceTable([]string{"A", "B"}, []string{"L"}, [][]float64{{2000}, {1999.9}})
	got, _ := d.Within("L", 2)
	if len(got) != 1 || got[0].Name != "B" {
		t.Fatalf("expected only B strictly inside 2 km, got %+v", got)
	}
}

func TestWithin_ExcludesReferenceInSquareTable(t *testing.T) {
	labels := []string{"L", "M", "N"}
	d, err := similarity.NewDistanceTable(labels, labels, [][]float64{
		{0, 800, 2500},
		{800, 0, 1200},
		{2500, 1200, 0},
	})
	if err != nil {
		t.Fatalf("NewDistanceTable: %v", err)
	}
	got, _ := d.Within("L", 5)
	want := []similarity.Hit{{Name: "M", DistanceMeters: 800}, {Name: "N", DistanceMeters: 2500}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestWithin_MonotonicInclusion(t *testing.T) {
	rows := []string{"a", "b", "c", "d", "e", "f"}
	d, _ := similarity.NewDistanceTable(rows, []string{"L"}, [][]float64{{4200}, {150}, {900}, {math.NaN()}, {2750}, {10000}})
	prev := map[string]bool{}
	for _, r := range []float64{0.1, 0.5, 1, 2, 3, 5, 20} {
		got, err := d.Within("L", r)
		if err != nil {
			t.Fatalf("Within(%v): %v", r, err)
		}
		seen := map[string]bool{}
		for i, h := range got {
			if h.DistanceMeters >= r*1000 {
				t.Fatalf("radius %v: %s at %v m is outside", r, h.Name, h.DistanceMeters)
			}
			if i > 0 && got[i-1].DistanceMeters > h.DistanceMeters {
				t.Fatalf("radius %v: not ascending: %+v", r, got)
			}
			seen[h.Name] = true
		}
		for name := range prev {
			if !seen[name] {
				t.Fatalf("radius %v dropped %s present at a smaller radius", r, name)
			}
		}
		prev = seen
	}
	if prev["d"] {
		t.Fatalf("NaN distance must never match")
	}
}

func TestWithin_Errors(t *testing.T) {
	d, _ := similarity.NewDistanceTable([]string{"A"}, []string{"L"}, [][]float64{{10}})
	if _, err := d.Within("Unknown Location", 2.0); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := d.Within("L", r); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("radius %v: expected ErrInvalidArgument, got %v", r, err)
		}
	}
}

func TestNewDistanceTable_Invalid(t *testing.T) {
	if _, err := similarity.NewDistanceTable([]string{"A"}, []string{"L", "L"}, [][]float64{{1, 2}}); !errors.Is(err, domain.ErrAlignment) {
		t.Fatalf("expected ErrAlignment, got %v", err)
	}
	if _, err := similarity.NewDistanceTable([]string{"A", "B"}, []string{"L"}, [][]float64{{1}}); !errors.Is(err, domain.ErrAlignment) {
		t.Fatalf("expected ErrAlignment, got %v", err)
	}
}

func TestNearbyResult_DistanceKm(t *testing.T) {
	if got := (domain.NearbyResult{DistanceMeters: 1234.5}).DistanceKm(); got != 1.23 {
		t.Fatalf("DistanceKm = %v, want 1.23", got)
	}
}

package similarity

import (
	"fmt"
	"sort"

	"estate_hub/internal/domain"
)

// Store is the read-only state every request works against. It is safe for
// concurrent use because nothing mutates it after NewStore returns.
type Store struct {
	combined  *Matrix
	distances *DistanceTable
	weights   Weights
}

// NewStore checks that the three matrices are aligned and precomputes their
// weighted combination.
func NewStore(facilities, price, location *Matrix, distances *DistanceTable, w Weights) (*Store, error) {
	if distances == nil {
		return nil, fmt.Errorf("%w: nil distance table", domain.ErrInvalidArgument)
	}
	combined, err := Combine(facilities, price, location, w)
	if err != nil {
		return nil, err
	}
	return &Store{combined: combined, distances: distances, weights: w}, nil
}

func (s *Store) Weights() Weights  { return s.weights }
func (s *Store) Combined() *Matrix { return s.combined }

func (s *Store) Recommend(ref string, topN int, minScore float64) ([]Scored, error) {
	return s.combined.Recommend(ref, topN, minScore)
}

func (s *Store) Nearby(location string, radiusKm float64) ([]Hit, error) {
	return s.distances.Within(location, radiusKm)
}

// Properties returns the property names sorted alphabetically.
func (s *Store) Properties() []string {
	out := s.combined.Labels()
	sort.Strings(out)
	return out
}

// Locations returns the searchable location names sorted alphabetically.
func (s *Store) Locations() []string {
	out := s.distances.Locations()
	sort.Strings(out)
	return out
}

package domain

import "math"

type Recommendation struct {
	PropertyName    string            `json:"property_name"`
	SimilarityScore float64           `json:"similarity_score"`
	Link            *string           `json:"link"`
	Price           *string           `json:"price"`
	Fields          map[string]string `json:"fields,omitempty"`
}

type NearbyResult struct {
	LocationName   string  `json:"location_name"`
	DistanceMeters float64 `json:"distance_meters"`
}

// DistanceKm is the distance in kilometres rounded to two decimals.
func (n NearbyResult) DistanceKm() float64 {
	return math.Round(n.DistanceMeters/1000*100) / 100
}

type RecommendQuery struct {
	PropertyName string
	TopN         int
	MinScore     float64
}

type NearbyQuery struct {
	Location string
	RadiusKm float64
}

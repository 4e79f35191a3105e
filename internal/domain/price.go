package domain

// PriceQuery carries the features the price model was trained on.
type PriceQuery struct {
	PropertyType   string  `json:"property_type" validate:"required,oneof=flat house"`
	Sector         string  `json:"sector" validate:"required"`
	Bedrooms       float64 `json:"bedrooms" validate:"gte=0,lte=20"`
	Bathrooms      float64 `json:"bathrooms" validate:"gte=0,lte=20"`
	Balcony        string  `json:"balcony" validate:"required"`
	AgePossession  string  `json:"age_possession" validate:"required"`
	BuiltUpArea    float64 `json:"built_up_area" validate:"gt=0"`
	ServantRoom    float64 `json:"servant_room" validate:"min=0,max=1"`
	StoreRoom      float64 `json:"store_room" validate:"min=0,max=1"`
	FurnishingType string  `json:"furnishing_type" validate:"required"`
	LuxuryCategory string  `json:"luxury_category" validate:"required"`
	FloorCategory  string  `json:"floor_category" validate:"required"`
}

// PriceEstimate is in crore.
type PriceEstimate struct {
	PropertyType string  `json:"property_type"`
	Base         float64 `json:"base"`
	Low          float64 `json:"low"`
	High         float64 `json:"high"`
}

package domain

import "context"

type ListingRepository interface {
	// GetListings returns the listings found for names; missing names are absent from the map.
	GetListings(ctx context.Context, names []string) (map[string]Listing, error)
}

type ListingWriter interface {
	UpsertListing(ctx context.Context, l Listing) error
}

// PricePredictor wraps the externally trained regression pipeline.
// The returned value is on the model's log1p scale.
type PricePredictor interface {
	Predict(ctx context.Context, q PriceQuery) (float64, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
}

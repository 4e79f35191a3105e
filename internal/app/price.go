package app

import (
	"context"
	"fmt"
	"math"

	"estate_hub/internal/domain"
	"estate_hub/internal/validation"
)

const (
	minBuiltUpArea = 50
	maxBuiltUpArea = 15000
	// half width of the reported range, in crore
	priceSpread = 0.22
)

type PriceService struct {
	model domain.PricePredictor
}

// NewPriceService; a nil model makes Estimate return ErrUnavailable.
func NewPriceService(m domain.PricePredictor) *PriceService {
	return &PriceService{model: m}
}

func (s *PriceService) Estimate(ctx context.Context, q domain.PriceQuery) (domain.PriceEstimate, error) {
	if err := validation.Struct(q); err != nil {
		return domain.PriceEstimate{}, err
	}
	if q.BuiltUpArea < minBuiltUpArea || q.BuiltUpArea > maxBuiltUpArea {
		return domain.PriceEstimate{}, fmt.Errorf("%w: built_up_area must be between %d and %d sq ft",
			domain.ErrInvalidArgument, minBuiltUpArea, maxBuiltUpArea)
	}
	if s.model == nil {
		return domain.PriceEstimate{}, fmt.Errorf("price model: %w", domain.ErrUnavailable)
	}

	pred, err := s.model.Predict(ctx, q)
	if err != nil {
		// any upstream failure, including a 404 from the model server, means
		// the model is unavailable rather than the query being unknown
		return domain.PriceEstimate{}, fmt.Errorf("%w: price model: %v", domain.ErrUnavailable, err)
	}
	base := math.Expm1(pred)
	return domain.PriceEstimate{
		PropertyType: q.PropertyType,
		Base:         round2(base),
		Low:          round2(base - priceSpread),
		High:         round2(base + priceSpread),
	}, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

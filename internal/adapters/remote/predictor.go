package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"estate_hub/internal/domain"
)

// predictRequest mirrors the column names the regression pipeline was fitted on.
type predictRequest struct {
	PropertyType   string  `json:"property_type"`
	Sector         string  `json:"sector"`
	BedRoom        float64 `json:"bedRoom"`
	Bathroom       float64 `json:"bathroom"`
	Balcony        string  `json:"balcony"`
	AgePossession  string  `json:"agePossession"`
	BuiltUpArea    float64 `json:"built_up_area"`
	ServantRoom    float64 `json:"servant room"`
	StoreRoom      float64 `json:"store room"`
	FurnishingType string  `json:"furnishing_type"`
	LuxuryCategory string  `json:"luxury_category"`
	FloorCategory  string  `json:"floor_category"`
}

type predictResponse struct {
	Prediction *float64 `json:"prediction"`
}

// Predict implements domain.PricePredictor against a model server exposing
// POST /predict.
func (c *Client) Predict(ctx context.Context, q domain.PriceQuery) (float64, error) {
	body, err := json.Marshal(predictRequest{
		PropertyType:   q.PropertyType,
		Sector:         q.Sector,
		BedRoom:        q.Bedrooms,
		Bathroom:       q.Bathrooms,
		Balcony:        q.Balcony,
		AgePossession:  q.AgePossession,
		BuiltUpArea:    q.BuiltUpArea,
		ServantRoom:    q.ServantRoom,
		StoreRoom:      q.StoreRoom,
		FurnishingType: q.FurnishingType,
		LuxuryCategory: q.LuxuryCategory,
		FloorCategory:  q.FloorCategory,
	})
	if err != nil {
		return 0, err
	}

	var out predictResponse
	err = c.do(ctx, http.MethodPost, "/predict", body, func(resp *http.Response) error {
		defer resp.Body.Close()
		return json.NewDecoder(resp.Body).Decode(&out)
	})
	if err != nil {
		return 0, err
	}
	if out.Prediction == nil || math.IsNaN(*out.Prediction) || math.IsInf(*out.Prediction, 0) {
		return 0, fmt.Errorf("%s: response carries no usable prediction", c.service)
	}
	return *out.Prediction, nil
}

package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"estate_hub/internal/app"
	"estate_hub/internal/domain"
	"estate_hub/internal/validation"
)

const (
	defaultTopN     = 5
	maxTopN         = 100
	defaultRadiusKm = 2.0
	maxBodyBytes    = 1 << 16
)

type Handlers struct {
	Q     *app.QueryService
	P     *app.PriceService
	Ready func() bool // nil means always ready
}

type problem struct {
	Type   string                  `json:"type"`
	Title  string                  `json:"title"`
	Status int                     `json:"status"`
	Detail string                  `json:"detail,omitempty"`
	Errors []validation.FieldError `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.ready)
	s.mux.Get("/v1/properties", h.listProperties)
	s.mux.Get("/v1/properties/{name}/recommendations", h.recommend)
	s.mux.Get("/v1/locations", h.listLocations)
	s.mux.Get("/v1/locations/{name}/nearby", h.nearby)
	s.mux.Post("/v1/price-estimates", h.estimatePrice)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string, fields ...validation.FieldError) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	p := problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Errors: fields}
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain sentinels onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "request failed validation", verr.Fields...)
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		writeProblem(w, http.StatusBadRequest, "Invalid Argument", err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if status == http.StatusOK {
		if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
			w.Header().Set("ETag", etag)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

/********** query params **********/

func intParam(r *http.Request, key string, def, lo, hi int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%w: %s must be an integer between %d and %d", domain.ErrInvalidArgument, key, lo, hi)
	}
	return v, nil
}

func floatParam(r *http.Request, key string, def float64) (float64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a finite number", domain.ErrInvalidArgument, key)
	}
	return v, nil
}

// nameParam returns the decoded {name} segment. chi matches on RawPath when
// the request needed one (e.g. an escaped "/"), and then hands back the
// segment still escaped.
func nameParam(r *http.Request) (string, error) {
	v := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return v, nil
	}
	dec, err := url.PathUnescape(v)
	if err != nil {
		return "", fmt.Errorf("%w: malformed name %q", domain.ErrInvalidArgument, v)
	}
	return dec, nil
}

/********** handlers **********/

func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil && !h.Ready() {
		writeProblem(w, http.StatusServiceUnavailable, "Not Ready", "similarity artifacts not loaded yet")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *Handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Properties(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"properties": out})
}

func (h *Handlers) listLocations(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Locations(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"locations": out})
}

func (h *Handlers) recommend(w http.ResponseWriter, r *http.Request) {
	topN, err := intParam(r, "top_n", defaultTopN, 1, maxTopN)
	if err != nil {
		writeError(w, r, err)
		return
	}
	minScore, err := floatParam(r, "min_score", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name, err := nameParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := domain.RecommendQuery{PropertyName: name, TopN: topN, MinScore: minScore}
	out, err := h.Q.Recommend(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"property":        q.PropertyName,
		"recommendations": out,
	})
}

type nearbyItem struct {
	Location       string  `json:"location"`
	DistanceMeters float64 `json:"distance_m"`
	DistanceKm     float64 `json:"distance_km"`
}

func (h *Handlers) nearby(w http.ResponseWriter, r *http.Request) {
	radius, err := floatParam(r, "radius_km", defaultRadiusKm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name, err := nameParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := domain.NearbyQuery{Location: name, RadiusKm: radius}
	hits, err := h.Q.Nearby(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items := make([]nearbyItem, len(hits))
	for i, hit := range hits {
		items[i] = nearbyItem{Location: hit.LocationName, DistanceMeters: hit.DistanceMeters, DistanceKm: hit.DistanceKm()}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"location":  q.Location,
		"radius_km": q.RadiusKm,
		"results":   items,
	})
}

func (h *Handlers) estimatePrice(w http.ResponseWriter, r *http.Request) {
	var q domain.PriceQuery
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&q); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	est, err := h.P.Estimate(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, est)
}

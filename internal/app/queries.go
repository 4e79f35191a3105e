package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"estate_hub/internal/adapters/observability"
	"estate_hub/internal/domain"
)

type QueryService struct {
	snapshots *SnapshotProvider
	listings  domain.ListingRepository
	cache     domain.Cache
	cacheTTL  time.Duration
	sf        singleflight.Group
}

// NewQueryService wires the read side. listings overrides the snapshot's own
// listing table when non-nil; cache may be nil.
func NewQueryService(p *SnapshotProvider, listings domain.ListingRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{snapshots: p, listings: listings, cache: c, cacheTTL: ttl}
}

func (s *QueryService) Recommend(ctx context.Context, q domain.RecommendQuery) ([]domain.Recommendation, error) {
	snap, err := s.snapshots.Get(ctx)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("rec:%s:%s:%d:%s", snap.cacheScope(), q.PropertyName, q.TopN, strconv.FormatFloat(q.MinScore, 'g', -1, 64))
	var out []domain.Recommendation
	if s.cacheGet(ctx, key, &out) {
		return out, nil
	}

	ch := s.sf.DoChan(key, func() (any, error) {
		// shared by every caller waiting on key; one of them leaving must not fail the rest
		ctx := context.WithoutCancel(ctx)
		scored, err := snap.Store.Recommend(q.PropertyName, q.TopN, q.MinScore)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(scored))
		for i, sc := range scored {
			names[i] = sc.Name
		}
		meta, err := s.listingsFor(snap).GetListings(ctx, names)
		if err != nil {
			return nil, fmt.Errorf("listings: %w", err)
		}

		recs := make([]domain.Recommendation, 0, len(scored))
		for _, sc := range scored {
			r := domain.Recommendation{PropertyName: sc.Name, SimilarityScore: sc.Score}
			if l, ok := meta[sc.Name]; ok {
				r.Link, r.Price, r.Fields = l.Link, l.Price, l.Fields
			}
			recs = append(recs, r)
		}
		s.cacheSet(ctx, key, recs)
		return recs, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		recs := res.Val.([]domain.Recommendation)
		observability.ObserveResult("recommend", len(recs))
		return recs, nil
	}
}

func (s *QueryService) Nearby(ctx context.Context, q domain.NearbyQuery) ([]domain.NearbyResult, error) {
	snap, err := s.snapshots.Get(ctx)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("near:%s:%s:%s", snap.cacheScope(), q.Location, strconv.FormatFloat(q.RadiusKm, 'g', -1, 64))
	var out []domain.NearbyResult
	if s.cacheGet(ctx, key, &out) {
		return out, nil
	}

	hits, err := snap.Store.Nearby(q.Location, q.RadiusKm)
	if err != nil {
		return nil, err
	}
	out = make([]domain.NearbyResult, len(hits))
	for i, h := range hits {
		out[i] = domain.NearbyResult{LocationName: h.Name, DistanceMeters: h.DistanceMeters}
	}
	s.cacheSet(ctx, key, out)
	observability.ObserveResult("nearby", len(out))
	return out, nil
}

func (s *QueryService) Properties(ctx context.Context) ([]string, error) {
	snap, err := s.snapshots.Get(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Store.Properties(), nil
}

func (s *QueryService) Locations(ctx context.Context) ([]string, error) {
	snap, err := s.snapshots.Get(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Store.Locations(), nil
}

func (s *QueryService) listingsFor(snap *Snapshot) domain.ListingRepository {
	if s.listings != nil {
		return s.listings
	}
	if snap.Listings != nil {
		return snap.Listings
	}
	return noListings{}
}

// cache failures degrade to recomputation; they never fail a query
func (s *QueryService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return false
	}
	return ok
}

func (s *QueryService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

type noListings struct{}

func (noListings) GetListings(context.Context, []string) (map[string]domain.Listing, error) {
	return map[string]domain.Listing{}, nil
}

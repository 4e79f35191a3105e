package app

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"estate_hub/internal/domain"
	"estate_hub/internal/similarity"
)

// Snapshot is the immutable state queries run against.
type Snapshot struct {
	Store    *similarity.Store
	Listings domain.ListingRepository // nil when listings live elsewhere
	Version  string                   // artifact fingerprint, may be empty
}

// cacheScope namespaces memoized results so a restart with other weights or
// other artifacts never serves scores computed from the previous ones.
func (s *Snapshot) cacheScope() string {
	v := s.Version
	if v == "" {
		v = "-"
	}
	return s.Store.Weights().String() + "@" + v
}

type LoadFunc func(ctx context.Context) (*Snapshot, error)

// SnapshotProvider loads the snapshot on first use. Concurrent first callers
// share one load; a failed load is retried by the next caller.
type SnapshotProvider struct {
	load LoadFunc
	sf   singleflight.Group
	cur  atomic.Pointer[Snapshot]
}

func NewSnapshotProvider(load LoadFunc) *SnapshotProvider {
	return &SnapshotProvider{load: load}
}

func (p *SnapshotProvider) Get(ctx context.Context) (*Snapshot, error) {
	if s := p.cur.Load(); s != nil {
		return s, nil
	}
	ch := p.sf.DoChan("snapshot", func() (any, error) {
		if s := p.cur.Load(); s != nil {
			return s, nil
		}
		// one caller giving up must not fail the load for the others
		s, err := p.load(context.WithoutCancel(ctx))
		if err != nil {
			log.Error().Err(err).Msg("snapshot load failed")
			return nil, err
		}
		p.cur.Store(s)
		return s, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

// Loaded reports whether the snapshot is in memory.
func (p *SnapshotProvider) Loaded() bool { return p.cur.Load() != nil }

package artifacts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"estate_hub/internal/adapters/observability"
	"estate_hub/internal/domain"
	"estate_hub/internal/similarity"
)

// Names lists the artifact file names the loader reads.
type Names struct {
	Facilities string // similarity dimension 1
	Price      string // similarity dimension 2
	Location   string // similarity dimension 3
	Distances  string
	Listings   string
}

func DefaultNames() Names {
	return Names{
		Facilities: "cosine_sim1.csv",
		Price:      "cosine_sim2.csv",
		Location:   "cosine_sim3.csv",
		Distances:  "location_distance.csv",
		Listings:   "appartments.csv",
	}
}

type Loader struct {
	src     Source
	names   Names
	weights similarity.Weights
}

func NewLoader(src Source, names Names, w similarity.Weights) *Loader {
	return &Loader{src: src, names: names, weights: w}
}

// Snapshot is everything loaded from one set of artifacts.
type Snapshot struct {
	Store    *similarity.Store
	Listings *ListingTable
	// Version fingerprints the artifact bytes and the weights; it changes
	// whenever the combined scores could.
	Version string
}

// Load reads every artifact in parallel, then checks alignment and
// precomputes the combined similarity matrix.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	var (
		sims     [3]labeledTable
		dist     labeledTable
		listings []domain.Listing
		digests  [5][]byte // facilities, price, location, distances, listings
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range []string{l.names.Facilities, l.names.Price, l.names.Location} {
		g.Go(func() error {
			t, sum, err := l.table(gctx, name)
			sims[i], digests[i] = t, sum
			return err
		})
	}
	g.Go(func() error {
		t, sum, err := l.table(gctx, l.names.Distances)
		dist, digests[3] = t, sum
		return err
	})
	g.Go(func() error {
		rc, err := l.src.Open(gctx, l.names.Listings)
		if err != nil {
			observability.ObserveArtifact(l.names.Listings, err)
			return err
		}
		defer rc.Close()
		h := sha256.New()
		listings, err = ParseListings(l.names.Listings, io.TeeReader(rc, h))
		digests[4] = h.Sum(nil)
		observability.ObserveArtifact(l.names.Listings, err)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var ms [3]*similarity.Matrix
	for i, t := range sims {
		if err := sameLabels(t); err != nil {
			return nil, fmt.Errorf("similarity matrix %d: %w", i+1, err)
		}
		m, err := similarity.NewMatrix(t.rows, t.values)
		if err != nil {
			return nil, fmt.Errorf("similarity matrix %d: %w", i+1, err)
		}
		ms[i] = m
	}
	dt, err := similarity.NewDistanceTable(dist.rows, dist.cols, dist.values)
	if err != nil {
		return nil, fmt.Errorf("distance table: %w", err)
	}
	st, err := similarity.NewStore(ms[0], ms[1], ms[2], dt, l.weights)
	if err != nil {
		return nil, err
	}

	lt := NewListingTable(listings)
	missing := 0
	for _, name := range ms[0].Labels() {
		if _, ok := lt.byName[name]; !ok {
			missing++
		}
	}
	version := fingerprint(l.weights, digests[:])
	log.Info().
		Str("version", version).
		Int("properties", ms[0].Len()).
		Int("locations", len(dist.cols)).
		Int("listings", lt.Len()).
		Int("without_listing", missing).
		Str("weights", l.weights.String()).
		Dur("took", time.Since(start)).
		Msg("artifacts loaded")
	return &Snapshot{Store: st, Listings: lt, Version: version}, nil
}

// table parses one labeled artifact and returns the sha256 of its bytes.
func (l *Loader) table(ctx context.Context, name string) (labeledTable, []byte, error) {
	rc, err := l.src.Open(ctx, name)
	if err != nil {
		observability.ObserveArtifact(name, err)
		return labeledTable{}, nil, err
	}
	defer rc.Close()
	h := sha256.New()
	t, err := parseLabeledTable(name, io.TeeReader(rc, h))
	observability.ObserveArtifact(name, err)
	return t, h.Sum(nil), err
}

func fingerprint(w similarity.Weights, digests [][]byte) string {
	h := sha256.New()
	io.WriteString(h, w.String())
	for _, d := range digests {
		h.Write(d)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// sameLabels enforces that a similarity table is indexed the same way on
// both axes.
func sameLabels(t labeledTable) error {
	if len(t.rows) != len(t.cols) {
		return fmt.Errorf("%w: %d rows vs %d columns", domain.ErrAlignment, len(t.rows), len(t.cols))
	}
	for i := range t.rows {
		if t.rows[i] != t.cols[i] {
			return fmt.Errorf("%w: row %d is %q but column %d is %q", domain.ErrAlignment, i, t.rows[i], i, t.cols[i])
		}
	}
	return nil
}

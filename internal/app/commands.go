package app

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"estate_hub/internal/domain"
)

type IngestionService struct {
	repo domain.ListingWriter
}

func NewIngestionService(r domain.ListingWriter) *IngestionService {
	return &IngestionService{repo: r}
}

func (s *IngestionService) IngestListing(ctx context.Context, l domain.Listing) error {
	l.PropertyName = strings.TrimSpace(l.PropertyName)
	if l.PropertyName == "" {
		return fmt.Errorf("%w: listing without a property name", domain.ErrInvalidArgument)
	}
	if err := s.repo.UpsertListing(ctx, l); err != nil {
		return fmt.Errorf("upsert %q: %w", l.PropertyName, err)
	}
	return nil
}

// IngestResult counts the outcome of a batch.
type IngestResult struct {
	OK     int64
	Failed int64
}

// IngestAll upserts ls with at most workers concurrent writes. Row failures are
// logged and counted; only cancellation of ctx aborts the batch.
func (s *IngestionService) IngestAll(ctx context.Context, ls []domain.Listing, workers int) (IngestResult, error) {
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var ok, failed atomic.Int64

	for _, l := range ls {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		go func(l domain.Listing) {
			defer sem.Release(1)
			if err := s.IngestListing(ctx, l); err != nil {
				failed.Add(1)
				log.Error().Err(err).Str("property", l.PropertyName).Msg("ingest failed")
				return
			}
			ok.Add(1)
		}(l)
	}
	// wait for in-flight workers
	if err := sem.Acquire(context.WithoutCancel(ctx), int64(workers)); err != nil {
		return IngestResult{}, err
	}

	res := IngestResult{OK: ok.Load(), Failed: failed.Load()}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

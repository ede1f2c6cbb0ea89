package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bluecover-lab/project-bluecover/internal/core/stats"
	"github.com/bluecover-lab/project-bluecover/internal/core/storage"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid stat query")

// Service is the aggregation driver: fetch candidate rows, normalize each,
// fold into buckets, sort and emit. Every call owns its own accumulator;
// no state survives between calls and no locking is involved.
type Service struct {
	store         storage.StatStore
	families      *stats.FamilyRegistry
	defaultLocale string
	strict        bool
}

// NewService creates the aggregation query service. strict enables skipping
// of rows that would poison bucket arithmetic; off, such rows fold NaN into
// their bucket exactly as historical consumers expect.
func NewService(store storage.StatStore, families *stats.FamilyRegistry, defaultLocale string, strict bool) *Service {
	return &Service{
		store:         store,
		families:      families,
		defaultLocale: defaultLocale,
		strict:        strict,
	}
}

// Aggregate runs one single-pass aggregation: fetch, normalize, fold,
// sort. Storage errors surface to the caller untouched; there is no retry.
func (s *Service) Aggregate(ctx context.Context, q AggregateQuery) (*AggregateResult, error) {
	fam, ok := s.families.Get(q.Family)
	if !ok {
		return nil, invalidQueryf("unknown stat family: %s", q.Family)
	}
	if len(q.Locations) == 0 {
		return nil, invalidQueryf("locations must not be empty")
	}
	if q.SubFieldSlug != "" && fam.SubField == "" {
		return nil, invalidQueryf("family %s has no sub-dimension to filter on", fam.Name)
	}

	locale := q.Locale
	if locale == "" {
		locale = s.defaultLocale
	}

	records, err := s.store.QueryStatRecords(ctx, fam.Name, storage.StatFilter{
		LocationCodes:   q.Locations,
		Year:            q.Year,
		EnvironmentSlug: q.Environment,
		SubFieldSlug:    q.SubFieldSlug,
	})
	if err != nil {
		return nil, fmt.Errorf("query stat records: %w", err)
	}

	normalizer := stats.Normalizer{
		Family:      fam,
		Locale:      locale,
		Environment: q.Environment,
	}

	acc := stats.NewAccumulator(fam.TracksSharedMarineArea)
	for _, rec := range records {
		row := normalizer.Normalize(rec)
		if s.strict && !row.WellFormed() {
			slog.Warn("Skipping malformed stat row",
				"family", fam.Name,
				"record_id", rec.ID,
				"location", rec.LocationCode,
				"year", rec.Year,
			)
			continue
		}
		acc.Fold(row)
	}

	return &AggregateResult{Family: fam, Buckets: acc.Buckets()}, nil
}

// Summary aggregates every registered family for one location set. The
// per-family calls run concurrently; each owns its own accumulator, so the
// fan-out does not interleave folds.
func (s *Service) Summary(ctx context.Context, q SummaryQuery) (map[string]*AggregateResult, error) {
	if len(q.Locations) == 0 {
		return nil, invalidQueryf("locations must not be empty")
	}

	names := s.families.Names()
	results := make([]*AggregateResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			res, err := s.Aggregate(gctx, AggregateQuery{
				Family:      name,
				Locations:   q.Locations,
				Year:        q.Year,
				Environment: q.Environment,
				Locale:      q.Locale,
			})
			if err != nil {
				return fmt.Errorf("aggregate family %s: %w", name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*AggregateResult, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out, nil
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}

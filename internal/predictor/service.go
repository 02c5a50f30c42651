package predictor

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/utakatalp/league-predictor/internal/cache"
	"github.com/utakatalp/league-predictor/internal/league"
	"github.com/utakatalp/league-predictor/internal/telemetry"
)

// Source is the read side of the results store.
type Source interface {
	Matches(ctx context.Context) ([]league.MatchRecord, error)
	Fixtures(ctx context.Context) ([]league.FixtureRecord, error)
	// StoredStats returns a precomputed stats row; ok is false when the team
	// has none.
	StoredStats(ctx context.Context, team string) (stats league.TeamStats, ok bool, err error)
}

// StatsCache keeps aggregations keyed by match snapshot fingerprint.
type StatsCache interface {
	Load(ctx context.Context, fingerprint string) (league.StatsMap, bool, error)
	Save(ctx context.Context, fingerprint string, stats league.StatsMap) error
}

// Service ties the store to the prediction engine.
type Service struct {
	source Source
	cache  StatsCache
	batch  *league.Batch
	group  singleflight.Group
}

// NewService creates a service. A nil batch uses the defaults.
func NewService(source Source, batch *league.Batch) *Service {
	if batch == nil {
		batch = league.NewBatch()
	}
	return &Service{source: source, batch: batch}
}

// SetCache enables the aggregation cache.
func (s *Service) SetCache(c StatsCache) {
	s.cache = c
}

func (s *Service) Batch() *league.Batch { return s.batch }

// Stats aggregates the full match history.
func (s *Service) Stats(ctx context.Context) (league.StatsMap, error) {
	matches, err := s.source.Matches(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading matches: %w", err)
	}
	return s.aggregate(ctx, matches)
}

// aggregate folds a snapshot, sharing work between concurrent callers
// that hold the same snapshot.
func (s *Service) aggregate(ctx context.Context, matches []league.MatchRecord) (league.StatsMap, error) {
	fp := cache.Fingerprint(matches)

	v, err, _ := s.group.Do(fp, func() (any, error) {
		if s.cache != nil {
			stats, ok, err := s.cache.Load(ctx, fp)
			if err != nil {
				telemetry.Warnf("[predictor] stats cache load failed: %v", err)
			} else if ok {
				telemetry.Debugf("[predictor] stats cache hit %s", fp)
				return stats, nil
			}
		}

		stats := league.AggregateStats(matches)

		if s.cache != nil {
			if err := s.cache.Save(ctx, fp, stats); err != nil {
				telemetry.Warnf("[predictor] stats cache save failed: %v", err)
			}
		}
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(league.StatsMap), nil
}

// TeamStats resolves one team: stored stats first, then history.
func (s *Service) TeamStats(ctx context.Context, team string) (league.TeamStats, error) {
	history, err := s.Stats(ctx)
	if err != nil {
		return league.TeamStats{}, err
	}
	return s.resolver(history).TeamStats(ctx, strings.TrimSpace(team))
}

// resolver prefers a stored stats row over the aggregated history.
func (s *Service) resolver(history league.StatsMap) league.StatsResolver {
	return league.ResolverFunc(func(ctx context.Context, team string) (league.TeamStats, error) {
		stored, ok, err := s.source.StoredStats(ctx, team)
		if err != nil {
			return league.TeamStats{}, err
		}
		if ok {
			return stored, nil
		}
		return history.Lookup(team), nil
	})
}

// PredictFixture predicts a single pairing.
func (s *Service) PredictFixture(ctx context.Context, home, away string) (league.PredictionResult, error) {
	history, err := s.Stats(ctx)
	if err != nil {
		return league.PredictionResult{}, err
	}
	f := league.FixtureRecord{Home: home, Away: away}
	return s.batch.PredictFixture(ctx, f, s.resolver(history))
}

// PredictAll predicts every stored fixture, in fixture order.
func (s *Service) PredictAll(ctx context.Context) ([]league.FixtureRecord, []league.PredictionResult, error) {
	fixtures, history, err := s.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	preds, err := s.batch.PredictAll(ctx, fixtures, s.resolver(history))
	if err != nil {
		return nil, nil, fmt.Errorf("predicting fixtures: %w", err)
	}
	return fixtures, preds, nil
}

// Top ranks the stored fixtures by metric.
func (s *Service) Top(ctx context.Context, metric league.Metric) ([]league.RankedPrediction, error) {
	fixtures, history, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	ranked, err := s.batch.Rank(ctx, fixtures, s.resolver(history), metric)
	if err != nil {
		return nil, fmt.Errorf("ranking fixtures: %w", err)
	}
	return ranked, nil
}

func (s *Service) snapshot(ctx context.Context) ([]league.FixtureRecord, league.StatsMap, error) {
	fixtures, err := s.source.Fixtures(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading fixtures: %w", err)
	}
	history, err := s.Stats(ctx)
	if err != nil {
		return nil, nil, err
	}
	return fixtures, history, nil
}

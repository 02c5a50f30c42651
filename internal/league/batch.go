package league

import (
	"context"
	"errors"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/utakatalp/league-predictor/internal/telemetry"
)

// DefaultTopN caps the ranked list.
const DefaultTopN = 50

// StatsResolver looks up the stats for a team. Implementations may block,
// e.g. when backed by a database.
type StatsResolver interface {
	TeamStats(ctx context.Context, team string) (TeamStats, error)
}

// ResolverFunc adapts a function to StatsResolver.
type ResolverFunc func(ctx context.Context, team string) (TeamStats, error)

func (f ResolverFunc) TeamStats(ctx context.Context, team string) (TeamStats, error) {
	return f(ctx, team)
}

// Batch runs the predictor over a list of fixtures.
// Workers > 1 resolves fixtures concurrently; output order always
// follows input order.
type Batch struct {
	Predictor Predictor
	Workers   int
	TopN      int
}

// NewBatch returns a sequential batch with the default predictor.
func NewBatch() *Batch {
	return &Batch{Predictor: DefaultPredictor(), Workers: 1, TopN: DefaultTopN}
}

// PredictAll returns one prediction per fixture, in input order.
// The only error is a cancelled context.
func (b *Batch) PredictAll(ctx context.Context, fixtures []FixtureRecord, resolver StatsResolver) ([]PredictionResult, error) {
	results := make([]PredictionResult, len(fixtures))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, b.Workers))
	for i, f := range fixtures {
		i, f := i, f
		g.Go(func() error {
			pred, err := b.predictOne(gctx, f, resolver)
			if err != nil {
				return err
			}
			results[i] = pred
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Rank predicts every fixture and orders them by the metric's final value,
// highest first. Ties keep input order. The list is cut to TopN.
func (b *Batch) Rank(ctx context.Context, fixtures []FixtureRecord, resolver StatsResolver, metric Metric) ([]RankedPrediction, error) {
	preds, err := b.PredictAll(ctx, fixtures, resolver)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedPrediction, len(fixtures))
	for i, f := range fixtures {
		ranked[i] = RankedPrediction{
			Fixture:    f,
			Prediction: preds[i],
			Score:      metric.Value(preds[i].Final),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	topN := b.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked, nil
}

// PredictFixture resolves both teams and predicts a single fixture.
func (b *Batch) PredictFixture(ctx context.Context, f FixtureRecord, resolver StatsResolver) (PredictionResult, error) {
	return b.predictOne(ctx, f, resolver)
}

func (b *Batch) predictOne(ctx context.Context, f FixtureRecord, resolver StatsResolver) (PredictionResult, error) {
	home, err := resolve(ctx, resolver, f.Home)
	if err != nil {
		return PredictionResult{}, err
	}
	away, err := resolve(ctx, resolver, f.Away)
	if err != nil {
		return PredictionResult{}, err
	}
	return b.Predictor.Predict(home, away), nil
}

// resolve falls back to zero stats on any lookup failure except cancellation.
func resolve(ctx context.Context, resolver StatsResolver, team string) (TeamStats, error) {
	if err := ctx.Err(); err != nil {
		return TeamStats{}, err
	}
	team = strings.TrimSpace(team)
	if team == "" || resolver == nil {
		return TeamStats{Team: team}, nil
	}
	stats, err := resolver.TeamStats(ctx, team)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return TeamStats{}, err
		}
		telemetry.Warnf("[league] stats lookup for %q failed, using empty stats: %v", team, err)
		return TeamStats{Team: team}, nil
	}
	return stats, nil
}

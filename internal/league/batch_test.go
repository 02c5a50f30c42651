package league

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// empiricalBatch predicts from history alone so final GG equals the mean of
// the two teams' GG percentages.
func empiricalBatch(workers int) *Batch {
	return &Batch{Predictor: NewPredictor(0, DefaultMaxGoals), Workers: workers, TopN: DefaultTopN}
}

func ggStats(pcts map[string]int) StatsMap {
	stats := StatsMap{}
	for team, pct := range pcts {
		stats[team] = TeamStats{Team: team, Played: 10, PctBothScored: pct}
	}
	return stats
}

func TestBatchRankByGG(t *testing.T) {
	stats := ggStats(map[string]int{"A": 70, "B": 70, "C": 30, "D": 30, "E": 90, "F": 90})
	fixtures := []FixtureRecord{
		{ID: 1, Home: "A", Away: "B"},
		{ID: 2, Home: "C", Away: "D"},
		{ID: 3, Home: "E", Away: "F"},
	}

	ranked, err := empiricalBatch(1).Rank(context.Background(), fixtures, stats, MetricGG)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, int64(3), ranked[0].Fixture.ID)
	assert.Equal(t, int64(1), ranked[1].Fixture.ID)
	assert.Equal(t, int64(2), ranked[2].Fixture.ID)
	assert.InDelta(t, 0.9, ranked[0].Score, 1e-12)
	assert.InDelta(t, 0.7, ranked[1].Score, 1e-12)
	assert.InDelta(t, 0.3, ranked[2].Score, 1e-12)
	assert.Equal(t, ranked[0].Prediction.Final.GG, ranked[0].Score)
}

func TestBatchRankTiesKeepInputOrder(t *testing.T) {
	stats := ggStats(map[string]int{"A": 50, "B": 50, "C": 80})
	fixtures := []FixtureRecord{
		{ID: 1, Home: "A", Away: "B"},
		{ID: 2, Home: "B", Away: "A"},
		{ID: 3, Home: "C", Away: "C"},
		{ID: 4, Home: "A", Away: "A"},
	}

	ranked, err := empiricalBatch(3).Rank(context.Background(), fixtures, stats, MetricGG)
	require.NoError(t, err)

	var ids []int64
	for _, r := range ranked {
		ids = append(ids, r.Fixture.ID)
	}
	assert.Equal(t, []int64{3, 1, 2, 4}, ids)
}

func TestBatchRankOtherMetrics(t *testing.T) {
	stats := StatsMap{
		"A": {Team: "A", Played: 1, PctTwoPlus: 20, PctBothScored: 90},
		"B": {Team: "B", Played: 1, PctTwoPlus: 80, PctBothScored: 10},
	}
	fixtures := []FixtureRecord{{ID: 1, Home: "A", Away: "A"}, {ID: 2, Home: "B", Away: "B"}}
	b := empiricalBatch(1)

	byTwoPlus, err := b.Rank(context.Background(), fixtures, stats, MetricTwoPlus)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byTwoPlus[0].Fixture.ID)

	// NG follows 1 - final GG, so the low GG fixture leads
	byNG, err := b.Rank(context.Background(), fixtures, stats, MetricNG)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byNG[0].Fixture.ID)
	assert.InDelta(t, 0.9, byNG[0].Score, 1e-12)

	// unknown metrics score zero and keep input order
	byUnknown, err := b.Rank(context.Background(), fixtures, stats, Metric("1x2"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), byUnknown[0].Fixture.ID)
	assert.Zero(t, byUnknown[0].Score)
}

func TestBatchRankTruncatesToTopN(t *testing.T) {
	fixtures := make([]FixtureRecord, 75)
	for i := range fixtures {
		fixtures[i] = FixtureRecord{ID: int64(i), Home: "A", Away: "B"}
	}

	ranked, err := NewBatch().Rank(context.Background(), fixtures, StatsMap{}, MetricGG)
	require.NoError(t, err)
	assert.Len(t, ranked, DefaultTopN)
	assert.Equal(t, int64(0), ranked[0].Fixture.ID)

	small := &Batch{Predictor: DefaultPredictor(), TopN: 5}
	ranked, err = small.Rank(context.Background(), fixtures, StatsMap{}, MetricGG)
	require.NoError(t, err)
	assert.Len(t, ranked, 5)
}

func TestBatchPredictAllKeepsOrderWithSlowLookups(t *testing.T) {
	teams := []string{"T0", "T1", "T2", "T3", "T4", "T5", "T6", "T7"}
	stats := StatsMap{}
	for i, team := range teams {
		stats[team] = TeamStats{Team: team, Played: 10, Scored: i * 3, Conceded: 10 - i, PctBothScored: i * 10}
	}

	// earlier teams answer slower, so completion order is reversed
	var calls atomic.Int32
	slow := ResolverFunc(func(ctx context.Context, team string) (TeamStats, error) {
		calls.Add(1)
		s := stats.Lookup(team)
		time.Sleep(time.Duration(len(teams)-s.Scored/3) * time.Millisecond)
		return s, nil
	})

	fixtures := make([]FixtureRecord, len(teams))
	for i, team := range teams {
		fixtures[i] = FixtureRecord{Home: team, Away: teams[len(teams)-1-i]}
	}

	b := &Batch{Predictor: DefaultPredictor(), Workers: 4}
	got, err := b.PredictAll(context.Background(), fixtures, slow)
	require.NoError(t, err)
	require.Len(t, got, len(fixtures))
	assert.Equal(t, int32(2*len(fixtures)), calls.Load())

	for i, f := range fixtures {
		want := b.Predictor.Predict(stats.Lookup(f.Home), stats.Lookup(f.Away))
		assert.Equal(t, want, got[i], "fixture %d", i)
	}

	sequential, err := empiricalBatch(1).PredictAll(context.Background(), fixtures, stats)
	require.NoError(t, err)
	concurrent, err := empiricalBatch(8).PredictAll(context.Background(), fixtures, stats)
	require.NoError(t, err)
	assert.Equal(t, sequential, concurrent)
}

func TestBatchLookupFailureDegradesToZeroStats(t *testing.T) {
	failing := ResolverFunc(func(ctx context.Context, team string) (TeamStats, error) {
		if team == "Broken" {
			return TeamStats{}, errors.New("disk on fire")
		}
		return TeamStats{Team: team, Played: 2, Scored: 4, Conceded: 2}, nil
	})

	got, err := NewBatch().PredictAll(context.Background(), []FixtureRecord{{Home: "Broken", Away: "Fine"}}, failing)
	require.NoError(t, err)

	want := DefaultPredictor().Predict(TeamStats{Team: "Broken"}, TeamStats{Team: "Fine", Played: 2, Scored: 4, Conceded: 2})
	assert.Equal(t, want, got[0])
}

func TestBatchEmptyNamesSkipLookup(t *testing.T) {
	resolver := ResolverFunc(func(ctx context.Context, team string) (TeamStats, error) {
		return TeamStats{}, fmt.Errorf("unexpected lookup for %q", team)
	})

	got, err := NewBatch().PredictFixture(context.Background(), FixtureRecord{Home: " ", Away: ""}, resolver)
	require.NoError(t, err)
	assert.Zero(t, got.Final.GG)
	assert.Equal(t, 1.0, got.Final.NG)
}

func TestBatchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBatch().PredictAll(ctx, []FixtureRecord{{Home: "A", Away: "B"}}, StatsMap{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewBatch().Rank(ctx, []FixtureRecord{{Home: "A", Away: "B"}}, StatsMap{}, MetricGG)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchEmptyInput(t *testing.T) {
	got, err := NewBatch().PredictAll(context.Background(), nil, StatsMap{})
	require.NoError(t, err)
	assert.Empty(t, got)

	ranked, err := NewBatch().Rank(context.Background(), nil, StatsMap{}, MetricGG)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestParseMetric(t *testing.T) {
	for _, name := range []string{"gg", "twoPlus", "ng"} {
		m, ok := ParseMetric(name)
		assert.True(t, ok, name)
		assert.Equal(t, Metric(name), m)
	}

	m, ok := ParseMetric("")
	assert.True(t, ok)
	assert.Equal(t, MetricGG, m)

	_, ok = ParseMetric("over25")
	assert.False(t, ok)
}

package predictor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utakatalp/league-predictor/internal/league"
)

type fakeSource struct {
	matches    []league.MatchRecord
	fixtures   []league.FixtureRecord
	stored     map[string]league.TeamStats
	matchErr   error
	storedErr  error
	matchCalls atomic.Int32
}

func (f *fakeSource) Matches(ctx context.Context) ([]league.MatchRecord, error) {
	f.matchCalls.Add(1)
	return f.matches, f.matchErr
}

func (f *fakeSource) Fixtures(ctx context.Context) ([]league.FixtureRecord, error) {
	return f.fixtures, nil
}

func (f *fakeSource) StoredStats(ctx context.Context, team string) (league.TeamStats, bool, error) {
	if f.storedErr != nil {
		return league.TeamStats{}, false, f.storedErr
	}
	s, ok := f.stored[team]
	return s, ok, nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]league.StatsMap
	loads   int
	saves   int
	loadErr error
}

func (c *memoryCache) Load(ctx context.Context, fp string) (league.StatsMap, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	if c.loadErr != nil {
		return nil, false, c.loadErr
	}
	s, ok := c.entries[fp]
	return s, ok, nil
}

func (c *memoryCache) Save(ctx context.Context, fp string, stats league.StatsMap) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves++
	if c.entries == nil {
		c.entries = map[string]league.StatsMap{}
	}
	c.entries[fp] = stats
	return nil
}

func sampleHistory() []league.MatchRecord {
	return []league.MatchRecord{
		{Home: "Partizan", Away: "Zvezda", Score: "2:1"},
		{Home: "Zvezda", Away: "Vojvodina", Score: "1:1"},
		{Home: "Vojvodina", Away: "Partizan", Score: "0:3"},
	}
}

func TestTeamStatsPrefersStoredRow(t *testing.T) {
	stored := league.TeamStats{Team: "Zvezda", Played: 30, Scored: 60, PctBothScored: 40}
	src := &fakeSource{matches: sampleHistory(), stored: map[string]league.TeamStats{"Zvezda": stored}}
	svc := NewService(src, nil)
	ctx := context.Background()

	got, err := svc.TeamStats(ctx, " Zvezda ")
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	got, err = svc.TeamStats(ctx, "Partizan")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Played)
	assert.Equal(t, 5, got.Scored)

	got, err = svc.TeamStats(ctx, "Radnicki")
	require.NoError(t, err)
	assert.Equal(t, league.TeamStats{Team: "Radnicki"}, got)
}

func TestPredictFixtureUsesResolvedStats(t *testing.T) {
	stored := league.TeamStats{Team: "Zvezda", Played: 30, Scored: 60, Conceded: 15, PctBothScored: 40}
	src := &fakeSource{matches: sampleHistory(), stored: map[string]league.TeamStats{"Zvezda": stored}}
	svc := NewService(src, nil)

	got, err := svc.PredictFixture(context.Background(), "Partizan", "Zvezda")
	require.NoError(t, err)

	partizan := league.AggregateStats(src.matches)["Partizan"]
	assert.Equal(t, league.DefaultPredictor().Predict(partizan, stored), got)
}

func TestPredictAllFollowsFixtureOrder(t *testing.T) {
	src := &fakeSource{
		matches: sampleHistory(),
		fixtures: []league.FixtureRecord{
			{ID: 3, Home: "Zvezda", Away: "Partizan"},
			{ID: 1, Home: "Vojvodina", Away: "Zvezda"},
			{ID: 2, Home: "Unknown", Away: "Partizan"},
		},
	}
	svc := NewService(src, &league.Batch{Predictor: league.DefaultPredictor(), Workers: 3})

	fixtures, preds, err := svc.PredictAll(context.Background())
	require.NoError(t, err)
	require.Len(t, preds, 3)
	assert.Equal(t, src.fixtures, fixtures)

	stats := league.AggregateStats(src.matches)
	for i, f := range fixtures {
		want := league.DefaultPredictor().Predict(stats.Lookup(f.Home), stats.Lookup(f.Away))
		assert.Equal(t, want, preds[i])
	}
}

func TestTopRanksStoredFixtures(t *testing.T) {
	src := &fakeSource{
		stored: map[string]league.TeamStats{
			"A": {Team: "A", Played: 10, PctBothScored: 20},
			"B": {Team: "B", Played: 10, PctBothScored: 90},
		},
		fixtures: []league.FixtureRecord{
			{ID: 1, Home: "A", Away: "A"},
			{ID: 2, Home: "B", Away: "B"},
			{ID: 3, Home: "A", Away: "B"},
		},
	}
	batch := &league.Batch{Predictor: league.NewPredictor(0, 6), TopN: 2}
	svc := NewService(src, batch)
	assert.Same(t, batch, svc.Batch())

	ranked, err := svc.Top(context.Background(), league.MetricGG)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(2), ranked[0].Fixture.ID)
	assert.Equal(t, int64(3), ranked[1].Fixture.ID)
	assert.InDelta(t, 0.55, ranked[1].Score, 1e-12)
}

func TestStoredLookupFailureDegradesInBatch(t *testing.T) {
	src := &fakeSource{
		matches:   sampleHistory(),
		fixtures:  []league.FixtureRecord{{Home: "Partizan", Away: "Zvezda"}},
		storedErr: errors.New("team_stats table locked"),
	}
	svc := NewService(src, nil)

	_, preds, err := svc.PredictAll(context.Background())
	require.NoError(t, err)
	want := league.DefaultPredictor().Predict(league.TeamStats{Team: "Partizan"}, league.TeamStats{Team: "Zvezda"})
	assert.Equal(t, want, preds[0])

	// a direct lookup reports the failure
	_, err = svc.TeamStats(context.Background(), "Partizan")
	assert.ErrorContains(t, err, "team_stats table locked")
}

func TestMatchLoadErrorPropagates(t *testing.T) {
	src := &fakeSource{matchErr: errors.New("db down")}
	svc := NewService(src, nil)

	_, err := svc.Stats(context.Background())
	assert.ErrorContains(t, err, "db down")

	_, _, err = svc.PredictAll(context.Background())
	assert.Error(t, err)

	_, err = svc.Top(context.Background(), league.MetricNG)
	assert.Error(t, err)
}

func TestStatsCacheHitSkipsAggregation(t *testing.T) {
	src := &fakeSource{matches: sampleHistory()}
	c := &memoryCache{}
	svc := NewService(src, nil)
	svc.SetCache(c)
	ctx := context.Background()

	first, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, league.AggregateStats(src.matches), first)
	assert.Equal(t, 1, c.saves)

	second, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, c.loads)
	assert.Equal(t, 1, c.saves)

	// a new result changes the snapshot and misses the cache
	src.matches = append(src.matches, league.MatchRecord{Home: "Partizan", Away: "Vojvodina", Score: "1:1"})
	third, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, third["Partizan"].Played)
	assert.Equal(t, 2, c.saves)
}

func TestStatsCacheErrorFallsBackToAggregation(t *testing.T) {
	src := &fakeSource{matches: sampleHistory()}
	svc := NewService(src, nil)
	svc.SetCache(&memoryCache{loadErr: errors.New("redis: connection refused")})

	got, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, league.AggregateStats(src.matches), got)
}

func TestConcurrentStatsCallsAgree(t *testing.T) {
	src := &fakeSource{matches: sampleHistory()}
	svc := NewService(src, nil)
	want := league.AggregateStats(src.matches)

	var wg sync.WaitGroup
	results := make([]league.StatsMap, 16)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats, err := svc.Stats(context.Background())
			assert.NoError(t, err)
			results[i] = stats
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, want, r)
	}
	assert.Equal(t, int32(16), src.matchCalls.Load())
}

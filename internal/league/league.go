package league

// MatchRecord is one historical result as read from the store.
// Score is kept raw; it is only interpreted through ParseScore.
type MatchRecord struct {
	ID         int64  `json:"id"`
	Home       string `json:"home"`
	Away       string `json:"away"`
	Score      string `json:"score"`
	FirstHalf  string `json:"firstHalf,omitempty"`
	SecondHalf string `json:"secondHalf,omitempty"`
}

// ParsedScore holds the goals read from a raw score string.
type ParsedScore struct {
	HomeGoals int `json:"homeGoals"`
	AwayGoals int `json:"awayGoals"`
}

// FixtureRecord is an upcoming match between two teams.
type FixtureRecord struct {
	ID   int64  `json:"id"`
	Home string `json:"home"`
	Away string `json:"away"`
}

// TeamStats holds the scoring tallies for one team.
type TeamStats struct {
	Team          string `json:"team"`
	Played        int    `json:"played"`
	Scored        int    `json:"scored"`
	Conceded      int    `json:"conceded"`
	BothScored    int    `json:"bothScored"`
	TwoPlus       int    `json:"twoPlus"`
	NoGoal        int    `json:"noGoal"`
	PctBothScored int    `json:"pctBothScored"`
	PctTwoPlus    int    `json:"pctTwoPlus"`
	PctNoGoal     int    `json:"pctNoGoal"`
}

// Outcome groups the three target probabilities.
type Outcome struct {
	GG      float64 `json:"gg"`
	TwoPlus float64 `json:"twoPlus"`
	NG      float64 `json:"ng"`
}

// PredictionResult is the hybrid model output for one fixture.
type PredictionResult struct {
	Poisson    Outcome `json:"poisson"`
	Empirical  Outcome `json:"empirical"`
	Final      Outcome `json:"final"`
	LambdaHome float64 `json:"lambdaHome"`
	LambdaAway float64 `json:"lambdaAway"`
}

// RankedPrediction pairs a fixture with its prediction and ranking score.
type RankedPrediction struct {
	Fixture    FixtureRecord    `json:"fixture"`
	Prediction PredictionResult `json:"prediction"`
	Score      float64          `json:"score"`
}

// Metric names one of the final outcome probabilities.
type Metric string

const (
	MetricGG      Metric = "gg"
	MetricTwoPlus Metric = "twoPlus"
	MetricNG      Metric = "ng"
)

// ParseMetric accepts the metric names used by the report screens.
func ParseMetric(s string) (Metric, bool) {
	switch Metric(s) {
	case MetricGG, MetricTwoPlus, MetricNG:
		return Metric(s), true
	case "":
		return MetricGG, true
	}
	return "", false
}

// Value picks the metric out of an outcome. Unknown metrics score 0.
func (m Metric) Value(o Outcome) float64 {
	switch m {
	case MetricGG:
		return o.GG
	case MetricTwoPlus:
		return o.TwoPlus
	case MetricNG:
		return o.NG
	}
	return 0
}

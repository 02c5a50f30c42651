package league

import "math"

// DefaultAlpha is the weight given to the Poisson term of the blend.
const DefaultAlpha = 0.6

// Predictor blends a Poisson goal model with the teams' historical
// frequencies. A zero Alpha predicts from history alone.
type Predictor struct {
	Alpha float64
	MaxK  int
}

// NewPredictor clamps alpha to [0,1] and maxK to at least 1.
func NewPredictor(alpha float64, maxK int) Predictor {
	if math.IsNaN(alpha) || alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	if maxK < 1 {
		maxK = 1
	}
	return Predictor{Alpha: alpha, MaxK: maxK}
}

// DefaultPredictor uses alpha 0.6 and truncates at 6 goals.
func DefaultPredictor() Predictor {
	return NewPredictor(DefaultAlpha, DefaultMaxGoals)
}

// Predict computes the hybrid probabilities for home against away.
func (p Predictor) Predict(home, away TeamStats) PredictionResult {
	p = NewPredictor(p.Alpha, p.MaxK)
	home, away = home.bounded(), away.bounded()

	// 1) per-game rates; a team without history counts as one empty game
	homePlayed := float64(max(1, home.Played))
	awayPlayed := float64(max(1, away.Played))
	homeScoredPG := float64(home.Scored) / homePlayed
	homeConcededPG := float64(home.Conceded) / homePlayed
	awayScoredPG := float64(away.Scored) / awayPlayed
	awayConcededPG := float64(away.Conceded) / awayPlayed

	// 2) attack and opposing defence weigh the same
	lambdaHome := (homeScoredPG + awayConcededPG) / 2
	lambdaAway := (awayScoredPG + homeConcededPG) / 2

	ph := PoissonPMF(lambdaHome, p.MaxK)
	pa := PoissonPMF(lambdaAway, p.MaxK)

	// 3) joint probabilities for the low score lines
	p00 := ph[0] * pa[0]
	p10 := ph[1] * pa[0]
	p01 := ph[0] * pa[1]

	poissonGG := math.Max(0, 1-ph[0]-pa[0]+p00)
	poisson := Outcome{
		GG:      poissonGG,
		TwoPlus: math.Max(0, 1-(p00+p10+p01)),
		NG:      1 - poissonGG,
	}

	// 4) historical frequencies, both sides weighted equally
	empirical := Outcome{
		GG:      float64(home.PctBothScored+away.PctBothScored) / 2 / 100,
		TwoPlus: float64(home.PctTwoPlus+away.PctTwoPlus) / 2 / 100,
		NG:      float64(home.PctNoGoal+away.PctNoGoal) / 2 / 100,
	}

	// 5) blend; NG follows the blended GG rather than being blended itself
	finalGG := p.Alpha*poisson.GG + (1-p.Alpha)*empirical.GG
	final := Outcome{
		GG:      finalGG,
		TwoPlus: p.Alpha*poisson.TwoPlus + (1-p.Alpha)*empirical.TwoPlus,
		NG:      math.Max(0, 1-finalGG),
	}

	return PredictionResult{
		Poisson:    poisson,
		Empirical:  empirical,
		Final:      final,
		LambdaHome: lambdaHome,
		LambdaAway: lambdaAway,
	}
}

// bounded floors goal tallies at 0 and keeps percentages within 0..100, so a
// hand-edited stats row cannot push the model outside [0,1].
func (s TeamStats) bounded() TeamStats {
	s.Scored = max(0, s.Scored)
	s.Conceded = max(0, s.Conceded)
	s.PctBothScored = min(100, max(0, s.PctBothScored))
	s.PctTwoPlus = min(100, max(0, s.PctTwoPlus))
	s.PctNoGoal = min(100, max(0, s.PctNoGoal))
	return s
}

// Percent renders a probability as a whole percentage.
func Percent(p float64) int {
	return int(math.Round(p * 100))
}

package league

import "math"

// DefaultMaxGoals is the truncation bound used by the predictor.
const DefaultMaxGoals = 6

// PoissonPMF returns P(k) = e^-λ·λ^k/k! for k = 0..maxK.
// The tail above maxK is dropped, not redistributed, so the sum is <= 1.
func PoissonPMF(lambda float64, maxK int) []float64 {
	if lambda < 0 || math.IsNaN(lambda) {
		lambda = 0
	}
	if maxK < 0 {
		maxK = 0
	}

	base := math.Exp(-lambda)
	pmf := make([]float64, maxK+1)
	fact, pow := 1.0, 1.0
	for k := 0; k <= maxK; k++ {
		if k > 0 {
			fact *= float64(k)
			pow *= lambda
		}
		pmf[k] = base * pow / fact
	}
	return pmf
}

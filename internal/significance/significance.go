// Package significance implements the two upper-tail probability tests
// that gate core-point admission in the Poisson and Bernoulli engines
// (spec §4.3). Both are evaluated as a log-space recurrence over the
// summand so moderate k/lambda/n never overflow before the final
// exponentiation.
package significance

import "math"

// PoissonSF returns 1 - sum_{i=0}^{k-1} e^-lambda * lambda^i / i!, the
// probability of observing at least k events under Poisson(lambda). A
// non-positive k is the empty sum, so PoissonSF returns 1.
func PoissonSF(k int, lambda float64) float64 {
	if k <= 0 {
		return 1
	}
	if lambda <= 0 {
		// Degenerate null: any observed count k>0 is infinitely unlikely.
		return 0
	}

	logLambda := math.Log(lambda)
	logTerm := -lambda // log of the i=0 term: e^-lambda
	sum := math.Exp(logTerm)
	for i := 1; i < k; i++ {
		logTerm += logLambda - math.Log(float64(i))
		sum += math.Exp(logTerm)
	}

	sf := 1 - sum
	return clampProbability(sf)
}

// BinomialSF returns 1 - sum_{i=0}^{nCas-1} C(n,i) p^i (1-p)^(n-i), the
// probability of at least nCas successes in n = nCas+nCon Bernoulli(p)
// trials. A non-positive nCas is the empty sum, so BinomialSF returns 1.
func BinomialSF(nCas, nCon int, p float64) float64 {
	if nCas <= 0 {
		return 1
	}
	n := nCas + nCon
	if n <= 0 {
		return 1
	}
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}

	logP := math.Log(p)
	logQ := math.Log(1 - p)
	logTerm := float64(n) * logQ // i=0 term: (1-p)^n
	sum := math.Exp(logTerm)
	for i := 1; i < nCas; i++ {
		logTerm += math.Log(float64(n-i+1)) + logP - math.Log(float64(i)) - logQ
		sum += math.Exp(logTerm)
	}

	sf := 1 - sum
	return clampProbability(sf)
}

// clampProbability guards against the tiny negative/over-1 results
// floating point summation of many terms can produce right at the tail.
func clampProbability(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

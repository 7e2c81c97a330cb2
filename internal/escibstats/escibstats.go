// Package escibstats computes descriptive statistics over a clustering
// run: per-run cluster-size summaries and, when Monte Carlo ran, the
// distribution of the null replicas' max log-likelihood. It exists
// alongside the core significance tests (internal/significance) rather
// than inside them because these are reporting aggregates, not part of
// the admission test itself.
package escibstats

import "gonum.org/v1/gonum/stat"

// SizeSummary describes the distribution of cluster sizes (core counts,
// nCas+nCon, or events, depending on the engine) discovered in a run.
type SizeSummary struct {
	Count  int
	Mean   float64
	Stddev float64
	Min    float64
	Max    float64
}

// SummarizeSizes computes SizeSummary over a run's per-cluster sizes.
// An empty input returns the zero SizeSummary.
func SummarizeSizes(sizes []float64) SizeSummary {
	if len(sizes) == 0 {
		return SizeSummary{}
	}
	mean, stddev := stat.MeanStdDev(sizes, nil)
	lo, hi := sizes[0], sizes[0]
	for _, v := range sizes[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return SizeSummary{Count: len(sizes), Mean: mean, Stddev: stddev, Min: lo, Max: hi}
}

// NullLLSummary describes the distribution of a Monte Carlo driver's
// per-replica maximum log-likelihood, the statistic each detected
// cluster's observed LL is compared against.
type NullLLSummary struct {
	Replicas int
	Mean     float64
	Stddev   float64
}

// SummarizeNullLL computes NullLLSummary over the max-LL values recorded
// across a Monte Carlo driver's replicas.
func SummarizeNullLL(maxLLs []float64) NullLLSummary {
	if len(maxLLs) == 0 {
		return NullLLSummary{}
	}
	mean, stddev := stat.MeanStdDev(maxLLs, nil)
	return NullLLSummary{Replicas: len(maxLLs), Mean: mean, Stddev: stddev}
}

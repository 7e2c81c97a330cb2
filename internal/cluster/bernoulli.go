package cluster

import (
	"math"

	"github.com/tingli3/escib/internal/geometry"
	"github.com/tingli3/escib/internal/grid"
	"github.com/tingli3/escib/internal/significance"
)

// BernoulliSummary is one surviving cluster's accounting (spec §3,
// §4.4.3). PValue is -1 until a Monte Carlo run assigns it.
type BernoulliSummary struct {
	ClusterID int
	NCas      int
	NCon      int
	LL        float64
	PValue    float64
}

// BernoulliResult is the outcome of a Bernoulli-ESCIB invocation.
type BernoulliResult struct {
	Labels   []int
	Clusters []BernoulliSummary
}

// BernoulliParams bundles the tunables spec §4.4.3 adds beyond the shared
// skeleton.
type BernoulliParams struct {
	Radius        float64
	Alpha         float64
	P             float64 // baselineRatio * countCas / (countCas + countCon)
	MinCore       int
	NonCorePoints bool
}

// Bernoulli runs the case-proportion engine over idx, a combined index of
// case (Class 1) and control (Class 0) points. caseCount and
// controlCount are the per-point class-1/class-0 neighbor counts (spec
// §4.4.3's casC/conC), already computed over idx by
// neighbors.CountTwoClass.
func Bernoulli(idx *grid.Index, countCas, countCon int, caseCount, controlCount []int, p BernoulliParams) BernoulliResult {
	isCore := func(i int) bool {
		return significance.BinomialSF(caseCount[i], controlCount[i], p.P) < p.Alpha
	}
	rn := newRun(idx, p.Radius, p.NonCorePoints, isCore)
	pts := idx.Points()
	n := rn.n()

	var clusters []BernoulliSummary
	cID := 0
	for i := 0; i < n; i++ {
		if rn.label[i] != LabelCore || pts[i].Class != geometry.ClassEvent {
			continue
		}

		cID++
		rn.label[i] = Label(cID)
		rn.inCluster[i] = cID
		coreCount := 1
		nCasInCluster := 1
		nConInCluster := 0
		touched := []int{i}
		worklist := []int{i}

		for len(worklist) > 0 {
			q := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]

			for _, j := range rn.neighborsOf(q) {
				if rn.inCluster[j] == cID {
					continue
				}
				switch rn.label[j] {
				case LabelCore:
					rn.label[j] = Label(cID)
					rn.inCluster[j] = cID
					touched = append(touched, j)
					if pts[j].Class == geometry.ClassEvent {
						nCasInCluster++
						coreCount++
						worklist = append(worklist, j)
					} else {
						nConInCluster++
					}
				case LabelRejected:
					if rn.nonCore {
						rn.label[j] = Label(cID)
						rn.inCluster[j] = cID
						touched = append(touched, j)
						if pts[j].Class == geometry.ClassEvent {
							nCasInCluster++
						} else {
							nConInCluster++
						}
					}
				}
			}
		}

		if coreCount <= p.MinCore {
			rn.recycle(touched)
			cID--
			continue
		}

		clusters = append(clusters, BernoulliSummary{
			ClusterID: cID,
			NCas:      nCasInCluster,
			NCon:      nConInCluster,
			LL:        bernoulliLL(nCasInCluster, nConInCluster, countCas, countCon, n),
			PValue:    -1,
		})
	}

	labels := make([]int, n)
	for i, l := range rn.label {
		if l == LabelCore {
			// A candidate core no surviving cluster reached ends as noise.
			l = LabelRejected
		}
		labels[i] = int(l)
	}
	return BernoulliResult{Labels: labels, Clusters: clusters}
}

func bernoulliLL(nCas, nCon, countCas, countCon, n int) float64 {
	nIn := nCas + nCon
	nOut := n - nIn
	ll := 0.0
	if nCas > 0 {
		ll += float64(nCas) * math.Log(float64(nCas)/float64(nIn))
	}
	if nCon > 0 {
		ll += float64(nCon) * math.Log(float64(nCon)/float64(nIn))
	}
	if countCas > nCas {
		ll += float64(countCas-nCas) * math.Log(float64(countCas-nCas)/float64(nOut))
	}
	if countCon > nCon {
		ll += float64(countCon-nCon) * math.Log(float64(countCon-nCon)/float64(nOut))
	}
	return ll
}

// BernoulliMaxLL computes the single highest log-likelihood across all
// candidate clusters that would be discovered under the current labels
// (spec §4.5 step 3), without retaining the discovered clusters
// themselves.
func BernoulliMaxLL(idx *grid.Index, countCas, countCon int, caseCount, controlCount []int, p BernoulliParams) (float64, bool) {
	result := Bernoulli(idx, countCas, countCon, caseCount, controlCount, p)
	if len(result.Clusters) == 0 {
		return 0, false
	}
	best := result.Clusters[0].LL
	for _, c := range result.Clusters[1:] {
		if c.LL > best {
			best = c.LL
		}
	}
	return best, true
}

package cluster

import (
	"math"

	"github.com/tingli3/escib/internal/geometry"
	"github.com/tingli3/escib/internal/grid"
	"github.com/tingli3/escib/internal/significance"
)

// PoissonSummary is one surviving cluster's accounting (spec §3, §4.4.2).
// PValue is -1 until a Monte Carlo run assigns it.
type PoissonSummary struct {
	ClusterID int
	Events    int
	ExpEvents float64
	LL        float64
	PValue    float64
}

// PoissonResult is the outcome of a Poisson-ESCIB invocation.
type PoissonResult struct {
	Labels   []int
	Clusters []PoissonSummary
}

// PoissonParams bundles the tunables spec §4.4.2 adds beyond the shared
// skeleton.
type PoissonParams struct {
	Radius        float64
	Alpha         float64
	BaselineRatio float64
	MinCore       int
	NonCorePoints bool
}

// Poisson runs the local-intensity engine over idx, a combined index of
// background (Class 0) and event (Class 1) points. eventCount and
// backgroundCount are the per-point class-1/class-0 neighbor counts
// (spec §4.4.2's eC and the input to lambda), already computed over idx
// by neighbors.CountTwoClass.
func Poisson(idx *grid.Index, countE, countB int, eventCount, backgroundCount []int, p PoissonParams) PoissonResult {
	lambda := make([]float64, len(backgroundCount))
	for i, bc := range backgroundCount {
		lambda[i] = float64(bc) * float64(countE) * p.BaselineRatio / float64(countB)
	}

	isCore := func(i int) bool {
		return significance.PoissonSF(eventCount[i], lambda[i]) < p.Alpha
	}
	rn := newRun(idx, p.Radius, p.NonCorePoints, isCore)
	pts := idx.Points()

	var clusters []PoissonSummary
	cID := 0
	for i := 0; i < rn.n(); i++ {
		if rn.label[i] != LabelCore || pts[i].Class != geometry.ClassEvent {
			continue
		}

		cID++
		rn.label[i] = Label(cID)
		rn.inCluster[i] = cID
		coreCount := 1
		nEInCluster := 1
		nBInCluster := 0
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
					if pts[j].Class == geometry.ClassBackground {
						nBInCluster++
						worklist = append(worklist, j)
					} else {
						nEInCluster++
						coreCount++
						worklist = append(worklist, j)
					}
				case LabelRejected:
					if rn.nonCore {
						rn.label[j] = Label(cID)
						rn.inCluster[j] = cID
						touched = append(touched, j)
						if pts[j].Class == geometry.ClassBackground {
							nBInCluster++
						} else {
							nEInCluster++
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

		expEvents := float64(nBInCluster) / float64(countB) * float64(countE)
		ll := float64(nEInCluster) * math.Log(float64(nEInCluster)/expEvents)
		if nEInCluster < countE {
			ll += float64(countE-nEInCluster) * math.Log(float64(countE-nEInCluster)/(float64(countE)-expEvents))
		}
		clusters = append(clusters, PoissonSummary{
			ClusterID: cID,
			Events:    nEInCluster,
			ExpEvents: expEvents,
			LL:        ll,
			PValue:    -1,
		})
	}

	labels := make([]int, rn.n())
	for i, l := range rn.label {
		if l == LabelCore {
			// A candidate core no surviving cluster reached ends as noise.
			l = LabelRejected
		}
		labels[i] = int(l)
	}
	return PoissonResult{Labels: labels, Clusters: clusters}
}

// PoissonMaxLL computes the single highest log-likelihood across all
// candidate clusters that would be discovered under the current labels,
// without retaining per-point label assignments. It is the statistic the
// Monte Carlo driver needs per replica (spec §4.5 step 3); unlike
// Poisson it never keeps the discovered clusters, only their LL.
func PoissonMaxLL(idx *grid.Index, countE, countB int, eventCount, backgroundCount []int, p PoissonParams) (float64, bool) {
	result := Poisson(idx, countE, countB, eventCount, backgroundCount, p)
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

package cluster

import (
	"github.com/tingli3/escib/internal/grid"
	"github.com/tingli3/escib/internal/neighbors"
)

// DBSCANResult is the outcome of a DBSCAN invocation: a label per point
// in idx's grid order, -1 for noise and >=1 for a cluster id.
type DBSCANResult struct {
	Labels      []int
	NumClusters int
}

// DBSCAN runs the density-based engine (spec §4.4.1) over idx: a point is
// a candidate core iff it has at least minPts neighbors within r
// (self included); any unvisited core may seed; only points that were
// candidate cores when visited propagate; a discovered cluster survives
// iff its core count strictly exceeds minCore.
func DBSCAN(idx *grid.Index, r float64, minPts, minCore int, nonCorePoints bool) DBSCANResult {
	counts := neighbors.CountSingleClass(idx, r)
	isCore := func(i int) bool { return counts[i] >= minPts }
	rn := newRun(idx, r, nonCorePoints, isCore)

	cID := 0
	for i := 0; i < rn.n(); i++ {
		if rn.label[i] != LabelCore {
			continue
		}

		cID++
		rn.label[i] = Label(cID)
		rn.inCluster[i] = cID
		coreCount := 1
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
					worklist = append(worklist, j)
					coreCount++
				case LabelRejected:
					if rn.nonCore {
						rn.label[j] = Label(cID)
						rn.inCluster[j] = cID
						touched = append(touched, j)
					}
				}
			}
		}

		if coreCount <= minCore {
			rn.recycle(touched)
			cID--
		}
	}

	labels := make([]int, rn.n())
	for i, l := range rn.label {
		labels[i] = int(l)
	}
	return DBSCANResult{Labels: labels, NumClusters: cID}
}

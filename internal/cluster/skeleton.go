// Package cluster implements the three flood-fill clustering engines
// (DBSCAN, Poisson-ESCIB, Bernoulli-ESCIB) that share a single
// expansion skeleton (spec §4.4): an initial core/non-core label pass,
// then worklist-driven region growing guarded by an inCluster marker
// that prevents double counting where two cells of the same cluster's
// 3x3 windows overlap.
package cluster

import (
	"github.com/tingli3/escib/internal/geometry"
	"github.com/tingli3/escib/internal/grid"
)

// Label is a point's state during cluster discovery. The spec's original
// two-value scheme (0 = candidate core / unassigned, -1 = noise) is
// replaced here, per spec §9's own re-implementation recommendation, by
// a three-state encoding: a point is either still eligible to become a
// core (LabelCore), permanently rejected unless absorbed as a border
// point (LabelRejected), or assigned to a cluster (any value >= 1).
type Label int32

const (
	// LabelRejected marks a point that failed the engine's core
	// predicate. It can still be absorbed into a cluster as a border
	// point when nonCorePoints is set, but it never seeds or propagates.
	LabelRejected Label = -1
	// LabelCore marks a point that passed the engine's core predicate
	// and has not yet been claimed by any cluster.
	LabelCore Label = 0
)

// run holds the mutable buffers one clustering invocation owns for its
// duration (spec §5: no state is shared across invocations).
type run struct {
	idx       *grid.Index
	r2        float64
	nonCore   bool
	label     []Label
	inCluster []int // -1 until first visited by the current cluster's expansion
}

func newRun(idx *grid.Index, r float64, nonCorePoints bool, isCore func(i int) bool) *run {
	n := len(idx.Points())
	rn := &run{idx: idx, r2: r * r, nonCore: nonCorePoints, label: make([]Label, n), inCluster: make([]int, n)}
	for i := range rn.inCluster {
		rn.inCluster[i] = -1
	}
	for i := 0; i < n; i++ {
		if isCore(i) {
			rn.label[i] = LabelCore
		} else {
			rn.label[i] = LabelRejected
		}
	}
	return rn
}

func (rn *run) n() int { return len(rn.label) }

// neighborsOf returns the point indices within r of q, scanning only the
// 3x3 cell window around q's cell (the invariant spec §9 relies on: cell
// side == r guarantees this window contains every in-radius neighbor).
func (rn *run) neighborsOf(q int) []int {
	pts := rn.idx.Points()
	p := pts[q]
	col, row := rn.idx.CellOf(p)
	colLo, colHi, rowLo, rowHi := rn.idx.CellWindow(col, row)
	var out []int
	for rr := rowLo; rr < rowHi; rr++ {
		for cc := colLo; cc < colHi; cc++ {
			start, end := rn.idx.CellRange(cc, rr)
			for k := start; k < end; k++ {
				if geometry.SquaredDistance(p, pts[k]) <= rn.r2 {
					out = append(out, k)
				}
			}
		}
	}
	return out
}

// recycle resets every touched point back to LabelRejected -- a
// discarded cluster's points, core or border, never get a second chance
// to seed (spec §4.4 step 4, literal behavior).
func (rn *run) recycle(touched []int) {
	for _, j := range touched {
		rn.label[j] = LabelRejected
	}
}

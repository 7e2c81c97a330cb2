// Package neighbors implements the per-point neighbor counting primitive
// (spec §4.2) against a pre-built grid.Index: for every query point, scan
// the 3x3 window of grid cells around it and tally points within the
// search radius by Euclidean distance.
package neighbors

import (
	"github.com/tingli3/escib/internal/geometry"
	"github.com/tingli3/escib/internal/grid"
)

// CountSingleClass returns, for every point in idx.Points() (grid order),
// the number of points of idx within radius r, self included.
func CountSingleClass(idx *grid.Index, r float64) []int {
	pts := idx.Points()
	counts := make([]int, len(pts))
	r2 := r * r
	for i, p := range pts {
		counts[i] = scanWindow(idx, pts, p, r2)
	}
	return counts
}

// CountTwoClass returns, for every point in idx.Points(), the number of
// class-0 and class-1 points within radius r (self included in whichever
// count matches its own class).
func CountTwoClass(idx *grid.Index, r float64) (count0, count1 []int) {
	pts := idx.Points()
	count0 = make([]int, len(pts))
	count1 = make([]int, len(pts))
	r2 := r * r
	for i, p := range pts {
		c0, c1 := scanWindowTwoClass(idx, pts, p, r2)
		count0[i] = c0
		count1[i] = c1
	}
	return count0, count1
}

// CountAgainstBackground returns, for each event point, the number of
// points in bgIdx within radius r (the heterogeneous-index variant).
// events need not be indexed themselves; only their cell in bgIdx's
// geometry matters.
func CountAgainstBackground(bgIdx *grid.Index, events []geometry.Point, r float64) []int {
	bgPts := bgIdx.Points()
	out := make([]int, len(events))
	r2 := r * r
	for i, e := range events {
		out[i] = scanWindow(bgIdx, bgPts, e, r2)
	}
	return out
}

// scanWindow counts points of candidates within r2 (squared radius) of q,
// scanning only the 3x3 cell window around q's cell in idx.
func scanWindow(idx *grid.Index, candidates []geometry.Point, q geometry.Point, r2 float64) int {
	col, row := idx.CellOf(q)
	colLo, colHi, rowLo, rowHi := idx.CellWindow(col, row)
	count := 0
	for rr := rowLo; rr < rowHi; rr++ {
		for cc := colLo; cc < colHi; cc++ {
			start, end := idx.CellRange(cc, rr)
			for k := start; k < end; k++ {
				if squaredDist(q, candidates[k]) <= r2 {
					count++
				}
			}
		}
	}
	return count
}

func scanWindowTwoClass(idx *grid.Index, candidates []geometry.Point, q geometry.Point, r2 float64) (c0, c1 int) {
	col, row := idx.CellOf(q)
	colLo, colHi, rowLo, rowHi := idx.CellWindow(col, row)
	for rr := rowLo; rr < rowHi; rr++ {
		for cc := colLo; cc < colHi; cc++ {
			start, end := idx.CellRange(cc, rr)
			for k := start; k < end; k++ {
				cand := candidates[k]
				if squaredDist(q, cand) <= r2 {
					if cand.Class == geometry.ClassEvent {
						c1++
					} else {
						c0++
					}
				}
			}
		}
	}
	return c0, c1
}

func squaredDist(a, b geometry.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// ReferenceCount is the O(N^2) brute-force reference used by tests to
// check CountSingleClass for exactness (spec §8). It ignores class tags.
func ReferenceCount(pts []geometry.Point, r float64) []int {
	r2 := r * r
	out := make([]int, len(pts))
	for i, p := range pts {
		n := 0
		for _, q := range pts {
			if squaredDist(p, q) <= r2 {
				n++
			}
		}
		out[i] = n
	}
	return out
}

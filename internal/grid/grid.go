// Package grid implements the uniform-grid spatial index: a counting-sort
// reordering of a point set into cell-major order plus the cell offset
// table that bounds each cell's slice of the reordered arrays.
package grid

import (
	"fmt"
	"math"

	"github.com/tingli3/escib/internal/geometry"
)

// Index is an immutable uniform grid over a fixed point set. Cell side is
// exactly the search radius used to build it, so any two points within
// that radius of each other fall in cells whose column and row differ by
// at most one (see SPEC_FULL.md §9).
type Index struct {
	box            geometry.BoundingBox
	cellSide       float64
	nBlockX        int
	nBlockY        int
	offset         []int // len nBlockX*nBlockY + 1
	points         []geometry.Point
	permOldToNew   []int
	permNewToOld   []int
}

// Build indexes pts into cell-major order using side as both the cell
// size and the neighbor search radius. side must be positive.
func Build(pts []geometry.Point, side float64) (*Index, error) {
	if side <= 0 {
		return nil, fmt.Errorf("grid: cell side must be positive, got %v", side)
	}
	box := geometry.NewBoundingBox(pts)
	idx := &Index{box: box, cellSide: side}
	if box.Empty() {
		idx.nBlockX, idx.nBlockY = 1, 1
		idx.offset = []int{0, 0}
		return idx, nil
	}

	idx.nBlockX = blockCount(box.XMax-box.XMin, side)
	idx.nBlockY = blockCount(box.YMax-box.YMin, side)
	nCells := idx.nBlockX * idx.nBlockY

	counts := make([]int, nCells)
	cellIDs := make([]int, len(pts))
	for i, p := range pts {
		col, row := idx.cellOf(p)
		c := row*idx.nBlockX + col
		cellIDs[i] = c
		counts[c]++
	}

	offset := make([]int, nCells+1)
	for c := 0; c < nCells; c++ {
		offset[c+1] = offset[c] + counts[c]
	}

	cursor := make([]int, nCells)
	copy(cursor, offset[:nCells])

	newPoints := make([]geometry.Point, len(pts))
	permNewToOld := make([]int, len(pts))
	for i, p := range pts {
		c := cellIDs[i]
		dst := cursor[c]
		cursor[c]++
		newPoints[dst] = p
		permNewToOld[dst] = i
	}

	permOldToNew := make([]int, len(pts))
	for newIdx, oldIdx := range permNewToOld {
		permOldToNew[oldIdx] = newIdx
	}

	idx.offset = offset
	idx.points = newPoints
	idx.permNewToOld = permNewToOld
	idx.permOldToNew = permOldToNew
	return idx, nil
}

// blockCount returns ceil(extent/side), clamped to at least 1 so a
// degenerate (zero-extent) axis still has one block.
func blockCount(extent, side float64) int {
	n := int(math.Ceil(extent / side))
	if n < 1 {
		n = 1
	}
	return n
}

// cellOf computes p's (col, row), clamping to the last column/row when p
// sits exactly on xMax/yMax (see spec §4.1 edge cases).
func (idx *Index) cellOf(p geometry.Point) (col, row int) {
	col = int(math.Floor((p.X - idx.box.XMin) / idx.cellSide))
	row = int(math.Floor((p.Y - idx.box.YMin) / idx.cellSide))
	if col < 0 {
		col = 0
	}
	if row < 0 {
		row = 0
	}
	if col >= idx.nBlockX {
		col = idx.nBlockX - 1
	}
	if row >= idx.nBlockY {
		row = idx.nBlockY - 1
	}
	return col, row
}

// CellOf is the exported form of cellOf, used by callers that need a
// point's cell without re-deriving grid geometry by hand.
func (idx *Index) CellOf(p geometry.Point) (col, row int) {
	return idx.cellOf(p)
}

// Points returns the cell-major reordered point slice. Callers that carry
// parallel per-point data (class tags, pre-computed counts) must permute
// those slices identically using Permute or PermNewToOld.
func (idx *Index) Points() []geometry.Point { return idx.points }

// Offset returns the cell offset table: cell c's points occupy indices
// [Offset()[c], Offset()[c+1]) of Points().
func (idx *Index) Offset() []int { return idx.offset }

// NBlockX and NBlockY return the grid dimensions.
func (idx *Index) NBlockX() int { return idx.nBlockX }
func (idx *Index) NBlockY() int { return idx.nBlockY }

// CellSide returns the grid's cell side (== the search radius it was
// built with).
func (idx *Index) CellSide() float64 { return idx.cellSide }

// Box returns the bounding box the grid was built over.
func (idx *Index) Box() geometry.BoundingBox { return idx.box }

// PermNewToOld returns, for each position in the reordered arrays, the
// index that point held in the array originally passed to Build.
func (idx *Index) PermNewToOld() []int { return idx.permNewToOld }

// Permute reorders an arbitrary parallel slice (same length and original
// order as the points passed to Build) into the grid's cell-major order.
// src is read through PermNewToOld into a newly allocated slice.
func Permute[T any](idx *Index, src []T) []T {
	out := make([]T, len(src))
	for newIdx, oldIdx := range idx.permNewToOld {
		out[newIdx] = src[oldIdx]
	}
	return out
}

// CellWindow returns the half-open [lo, hi) column and row ranges of the
// 3x3 window around (col, row), clamped to the grid's bounds.
func (idx *Index) CellWindow(col, row int) (colLo, colHi, rowLo, rowHi int) {
	colLo, colHi = clampWindow(col, idx.nBlockX)
	rowLo, rowHi = clampWindow(row, idx.nBlockY)
	return
}

func clampWindow(v, n int) (lo, hi int) {
	lo = v - 1
	if lo < 0 {
		lo = 0
	}
	hi = v + 2
	if hi > n {
		hi = n
	}
	return
}

// CellRange returns the half-open [start, end) point-index range owned by
// cell (col, row).
func (idx *Index) CellRange(col, row int) (start, end int) {
	c := row*idx.nBlockX + col
	return idx.offset[c], idx.offset[c+1]
}

package grid

import (
	"testing"

	"github.com/tingli3/escib/internal/geometry"
)

func TestBuildOffsetInvariants(t *testing.T) {
	pts := []geometry.Point{
		{X: 0, Y: 0}, {X: 0.2, Y: 0.2}, {X: 3, Y: 3}, {X: 3.1, Y: 3.2}, {X: 9, Y: 9},
	}
	idx, err := Build(pts, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sum := 0
	for c := 0; c < idx.NBlockX()*idx.NBlockY(); c++ {
		start, end := idx.Offset()[c], idx.Offset()[c+1]
		if start > end {
			t.Fatalf("cell %d: offset not non-decreasing: %d > %d", c, start, end)
		}
		sum += end - start
	}
	if sum != len(pts) {
		t.Fatalf("offsets cover %d points, want %d", sum, len(pts))
	}
	if idx.Offset()[0] != 0 {
		t.Fatalf("offset[0] = %d, want 0", idx.Offset()[0])
	}
	last := idx.NBlockX() * idx.NBlockY()
	if idx.Offset()[last] != len(pts) {
		t.Fatalf("offset[last] = %d, want %d", idx.Offset()[last], len(pts))
	}

	for pos, p := range idx.Points() {
		col, row := idx.CellOf(p)
		start, end := idx.CellRange(col, row)
		if pos < start || pos >= end {
			t.Fatalf("point %d (cell %d,%d) outside its own cell range [%d,%d)", pos, col, row, start, end)
		}
	}
}

func TestBuildRejectsNonPositiveSide(t *testing.T) {
	if _, err := Build(nil, 0); err == nil {
		t.Fatal("expected error for zero side")
	}
	if _, err := Build(nil, -1); err == nil {
		t.Fatal("expected error for negative side")
	}
}

func TestEdgeClamping(t *testing.T) {
	// A single point exactly at (xMax, yMax) must clamp into the last
	// cell, keeping offset[last] == N (spec §8 scenario 5).
	pts := []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}
	idx, err := Build(pts, 2.5)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	last := idx.NBlockX() * idx.NBlockY()
	if idx.Offset()[last] != 2 {
		t.Fatalf("offset[last] = %d, want 2", idx.Offset()[last])
	}
	col, row := idx.CellOf(geometry.Point{X: 10, Y: 10})
	if col != idx.NBlockX()-1 || row != idx.NBlockY()-1 {
		t.Fatalf("expected clamp to last cell, got (%d,%d) of (%d,%d)", col, row, idx.NBlockX(), idx.NBlockY())
	}
}

func TestPermuteRoundTrip(t *testing.T) {
	pts := []geometry.Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 0.1, Y: 0.1}}
	idx, err := Build(pts, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ids := []int{100, 200, 300}
	permuted := Permute(idx, ids)
	for newIdx, oldIdx := range idx.PermNewToOld() {
		if permuted[newIdx] != ids[oldIdx] {
			t.Fatalf("permuted[%d] = %d, want %d", newIdx, permuted[newIdx], ids[oldIdx])
		}
	}
}

func TestCellWindowClampsToBounds(t *testing.T) {
	pts := []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}
	idx, err := Build(pts, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	colLo, colHi, rowLo, rowHi := idx.CellWindow(0, 0)
	if colLo != 0 || rowLo != 0 {
		t.Fatalf("expected window clamped at 0, got colLo=%d rowLo=%d", colLo, rowLo)
	}
	if colHi > idx.NBlockX() || rowHi > idx.NBlockY() {
		t.Fatalf("window exceeds grid bounds: colHi=%d rowHi=%d (grid %dx%d)", colHi, rowHi, idx.NBlockX(), idx.NBlockY())
	}
}

package cluster

import (
	"testing"

	"github.com/tingli3/escib/internal/geometry"
	"github.com/tingli3/escib/internal/grid"
)

func TestNewRunLabelsFromPredicate(t *testing.T) {
	pts := []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	idx, err := grid.Build(pts, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	isCore := func(i int) bool { return i != 1 }
	rn := newRun(idx, 1, false, isCore)

	if rn.label[0] != LabelCore || rn.label[2] != LabelCore {
		t.Fatalf("expected points 0,2 to be core, got %v", rn.label)
	}
	if rn.label[1] != LabelRejected {
		t.Fatalf("expected point 1 to be rejected, got %v", rn.label[1])
	}
	for _, v := range rn.inCluster {
		if v != -1 {
			t.Fatalf("inCluster should start at -1 for all points, got %v", rn.inCluster)
		}
	}
}

func TestRecycleResetsToRejected(t *testing.T) {
	pts := []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}
	idx, err := grid.Build(pts, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rn := newRun(idx, 1, false, func(i int) bool { return true })
	rn.label[0] = Label(1)
	rn.label[1] = Label(1)
	rn.recycle([]int{0, 1})
	if rn.label[0] != LabelRejected || rn.label[1] != LabelRejected {
		t.Fatalf("recycle did not reset labels: %v", rn.label)
	}
}

func TestNeighborsOfRespectsRadius(t *testing.T) {
	pts := []geometry.Point{{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 5, Y: 0}}
	idx, err := grid.Build(pts, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rn := newRun(idx, 1, false, func(i int) bool { return true })
	neighbors := rn.neighborsOf(0)
	found5 := false
	for _, j := range neighbors {
		if idx.Points()[j].X == 5 {
			found5 = true
		}
	}
	if found5 {
		t.Fatal("point at distance 5 should not be a neighbor of point at (0,0) with radius 1")
	}
	if len(neighbors) != 2 {
		t.Fatalf("expected 2 neighbors (self + 0.5 away), got %d", len(neighbors))
	}
}

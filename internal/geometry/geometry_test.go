package geometry

import "testing"

func TestNewBoundingBoxEmpty(t *testing.T) {
	b := NewBoundingBox(nil)
	if !b.Empty() {
		t.Fatalf("expected empty box, got %+v", b)
	}
}

func TestNewBoundingBox(t *testing.T) {
	pts := []Point{{X: 1, Y: 2}, {X: -3, Y: 5}, {X: 4, Y: -1}}
	b := NewBoundingBox(pts)
	if b.XMin != -3 || b.XMax != 4 || b.YMin != -1 || b.YMax != 5 {
		t.Fatalf("unexpected box: %+v", b)
	}
}

func TestMergeWithEmpty(t *testing.T) {
	a := BoundingBox{XMin: 0, XMax: 1, YMin: 0, YMax: 1}
	empty := BoundingBox{XMin: 1, XMax: 0, YMin: 1, YMax: 0}
	if got := Merge(a, empty); got != a {
		t.Fatalf("merge with empty should return a, got %+v", got)
	}
	if got := Merge(empty, a); got != a {
		t.Fatalf("merge with empty should return a, got %+v", got)
	}
}

func TestMerge(t *testing.T) {
	a := BoundingBox{XMin: 0, XMax: 1, YMin: 0, YMax: 1}
	b := BoundingBox{XMin: -1, XMax: 0.5, YMin: 2, YMax: 3}
	got := Merge(a, b)
	want := BoundingBox{XMin: -1, XMax: 1, YMin: 0, YMax: 3}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSquaredDistance(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 3, Y: 4}
	if got := SquaredDistance(a, b); got != 25 {
		t.Fatalf("got %v, want 25", got)
	}
}

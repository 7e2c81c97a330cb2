package montecarlo

import (
	"math/rand/v2"
	"testing"

	"github.com/tingli3/escib/internal/cluster"
	"github.com/tingli3/escib/internal/geometry"
	"github.com/tingli3/escib/internal/grid"
	"github.com/tingli3/escib/internal/neighbors"
)

func TestPValuesAddOneSmoothing(t *testing.T) {
	// spec.md §8 scenario 6: nSim=9, a cluster whose observed LL exceeds
	// every one of the 9 replica LLs must receive pValue = 1/10.
	llAbove := []int{0}
	got := pValues(llAbove, 9)
	if len(got) != 1 {
		t.Fatalf("got %d p-values, want 1", len(got))
	}
	if want := 1.0 / 10; got[0] != want {
		t.Fatalf("pValue = %v, want %v", got[0], want)
	}
}

func TestPValuesRangeAndMinimum(t *testing.T) {
	nSim := 9
	for above := 0; above <= nSim; above++ {
		got := pValues([]int{above}, nSim)[0]
		if got <= 0 || got > 1 {
			t.Fatalf("pValue(%d,%d) = %v out of (0,1]", above, nSim, got)
		}
	}
	min := pValues([]int{0}, nSim)[0]
	max := pValues([]int{nSim}, nSim)[0]
	if min != 1.0/10 {
		t.Fatalf("minimum pValue = %v, want %v", min, 1.0/10)
	}
	if max != 1.0 {
		t.Fatalf("maximum pValue = %v, want 1", max)
	}
}

func TestAssignClassesPicksExactlyK(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	pts := make([]geometry.Point, 50)
	for i := range pts {
		pts[i] = geometry.Point{X: float64(i), Y: 0, Class: geometry.ClassBackground}
	}
	assignClasses(rng, pts, 12)

	count := 0
	for _, p := range pts {
		if p.Class == geometry.ClassEvent {
			count++
		}
	}
	if count != 12 {
		t.Fatalf("assignClasses marked %d points as events, want 12", count)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	pts := []geometry.Point{
		{X: 0, Y: 0, Class: geometry.ClassBackground},
		{X: 1, Y: 1, Class: geometry.ClassEvent},
		{X: 2, Y: 2, Class: geometry.ClassBackground},
	}
	saved := snapshotClasses(pts)
	for i := range pts {
		pts[i].Class = geometry.ClassEvent
	}
	restoreClasses(pts, saved)
	if pts[0].Class != geometry.ClassBackground || pts[1].Class != geometry.ClassEvent || pts[2].Class != geometry.ClassBackground {
		t.Fatalf("restoreClasses did not restore original classes: %v", pts)
	}
}

func TestBernoulliRestoresClassesAndShapesResult(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	var pts []geometry.Point
	for i := 0; i < 60; i++ {
		pts = append(pts, geometry.Point{X: rng.Float64() * 10, Y: rng.Float64() * 10, Class: geometry.ClassBackground})
	}
	for i := 0; i < 8; i++ {
		pts = append(pts, geometry.Point{
			X:     5 + (rng.Float64()*2-1)*0.3,
			Y:     5 + (rng.Float64()*2-1)*0.3,
			Class: geometry.ClassEvent,
		})
	}
	idx, err := grid.Build(pts, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	before := snapshotClasses(idx.Points())

	countCas, countCon := 0, 0
	for _, p := range pts {
		if p.Class == geometry.ClassEvent {
			countCas++
		} else {
			countCon++
		}
	}
	controlCount, caseCount := neighbors.CountTwoClass(idx, 1)
	params := cluster.BernoulliParams{Radius: 1, Alpha: 0.05, P: float64(countCas) / float64(countCas+countCon), MinCore: 3, NonCorePoints: false}
	base := cluster.Bernoulli(idx, countCas, countCon, caseCount, controlCount, params)

	nSim := 9
	result := Bernoulli(idx, countCas, countCon, base.Clusters, params, nSim, rng)

	if len(result.PValues) != len(base.Clusters) {
		t.Fatalf("got %d p-values, want %d (one per cluster)", len(result.PValues), len(base.Clusters))
	}
	if len(result.ReplicaMaxLL) != nSim {
		t.Fatalf("got %d replica LLs, want %d", len(result.ReplicaMaxLL), nSim)
	}
	for _, p := range result.PValues {
		if p <= 0 || p > 1 {
			t.Fatalf("p-value %v out of (0,1]", p)
		}
	}

	after := snapshotClasses(idx.Points())
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("point %d class not restored after Bernoulli run: before=%v after=%v", i, before[i], after[i])
		}
	}
}

func TestPoissonRestoresClassesAndShapesResult(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	var pts []geometry.Point
	for i := 0; i < 150; i++ {
		pts = append(pts, geometry.Point{X: rng.Float64() * 10, Y: rng.Float64() * 10, Class: geometry.ClassBackground})
	}
	for i := 0; i < 15; i++ {
		pts = append(pts, geometry.Point{
			X:     5 + (rng.Float64()*2-1)*0.3,
			Y:     5 + (rng.Float64()*2-1)*0.3,
			Class: geometry.ClassEvent,
		})
	}
	idx, err := grid.Build(pts, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	before := snapshotClasses(idx.Points())

	countE, countB := 0, 0
	for _, p := range pts {
		if p.Class == geometry.ClassEvent {
			countE++
		} else {
			countB++
		}
	}
	backgroundCount, eventCount := neighbors.CountTwoClass(idx, 1)
	params := cluster.PoissonParams{Radius: 1, Alpha: 0.05, BaselineRatio: 1, MinCore: 5, NonCorePoints: false}
	base := cluster.Poisson(idx, countE, countB, eventCount, backgroundCount, params)

	nSim := 9
	result := Poisson(idx, countE, countB, base.Clusters, params, nSim, rng)

	if len(result.PValues) != len(base.Clusters) {
		t.Fatalf("got %d p-values, want %d (one per cluster)", len(result.PValues), len(base.Clusters))
	}
	if len(result.ReplicaMaxLL) != nSim {
		t.Fatalf("got %d replica LLs, want %d", len(result.ReplicaMaxLL), nSim)
	}
	for _, p := range result.PValues {
		if p <= 0 || p > 1 {
			t.Fatalf("p-value %v out of (0,1]", p)
		}
	}

	after := snapshotClasses(idx.Points())
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("point %d class not restored after Poisson run: before=%v after=%v", i, before[i], after[i])
		}
	}
}

func TestNoSurvivingReplicaContributesZeroLL(t *testing.T) {
	// A single-point index can never produce a surviving cluster under
	// any minCore >= 1, so every replica must contribute simMaxLL = 0
	// and never increment llAbove (spec §9's documented boundary case).
	pts := []geometry.Point{{X: 0, Y: 0, Class: geometry.ClassEvent}}
	idx, err := grid.Build(pts, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	params := cluster.BernoulliParams{Radius: 1, Alpha: 0.05, P: 1, MinCore: 5, NonCorePoints: false}
	clusters := []cluster.BernoulliSummary{{ClusterID: 1, NCas: 1, NCon: 0, LL: 1}}
	rng := rand.New(rand.NewPCG(9, 10))
	result := Bernoulli(idx, 1, 0, clusters, params, 5, rng)
	for _, ll := range result.ReplicaMaxLL {
		if ll != 0 {
			t.Fatalf("expected every replica LL to be 0 when no cluster can survive, got %v", ll)
		}
	}
	for _, p := range result.PValues {
		if want := 1.0 / 6; p != want {
			t.Fatalf("expected the minimum pValue=1/(1+nSim)=%v when no replica reaches the observed LL, got %v", want, p)
		}
	}
}

package cluster

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/tingli3/escib/internal/geometry"
	"github.com/tingli3/escib/internal/grid"
	"github.com/tingli3/escib/internal/neighbors"
)

// bernoulliHotSpotFixture builds spec.md §8 scenario 3: 100 controls
// uniform in [0,10]^2, 10 cases clustered at (5,5)+-0.3, 5 cases
// scattered uniformly.
func bernoulliHotSpotFixture(seed uint64) []geometry.Point {
	rng := rand.New(rand.NewPCG(seed, seed^0xabcdef))
	var pts []geometry.Point
	for i := 0; i < 100; i++ {
		pts = append(pts, geometry.Point{X: rng.Float64() * 10, Y: rng.Float64() * 10, Class: geometry.ClassBackground})
	}
	for i := 0; i < 10; i++ {
		pts = append(pts, geometry.Point{
			X:     5 + (rng.Float64()*2-1)*0.3,
			Y:     5 + (rng.Float64()*2-1)*0.3,
			Class: geometry.ClassEvent,
		})
	}
	for i := 0; i < 5; i++ {
		pts = append(pts, geometry.Point{X: rng.Float64() * 10, Y: rng.Float64() * 10, Class: geometry.ClassEvent})
	}
	return pts
}

func TestBernoulliSignificantHotSpot(t *testing.T) {
	pts := bernoulliHotSpotFixture(42)
	countCas, countCon := 0, 0
	for _, p := range pts {
		if p.Class == geometry.ClassEvent {
			countCas++
		} else {
			countCon++
		}
	}

	idx, err := grid.Build(pts, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	controlCount, caseCount := neighbors.CountTwoClass(idx, 1)

	params := BernoulliParams{
		Radius:        1,
		Alpha:         0.05,
		P:             1.0 * float64(countCas) / float64(countCas+countCon),
		MinCore:       3,
		NonCorePoints: false,
	}

	result := Bernoulli(idx, countCas, countCon, caseCount, controlCount, params)
	if len(result.Clusters) != 1 {
		t.Fatalf("got %d surviving clusters, want 1 (fixture=%d cases, %d controls)", len(result.Clusters), countCas, countCon)
	}
	c := result.Clusters[0]
	if c.ClusterID != 1 {
		t.Fatalf("ClusterID = %d, want 1", c.ClusterID)
	}
	if c.LL <= 0 {
		t.Fatalf("LL = %v, want > 0", c.LL)
	}
	if c.NCas < 10 {
		t.Fatalf("NCas = %d, want >= 10 (the dense cluster)", c.NCas)
	}
}

func TestBernoulliLLFormula(t *testing.T) {
	// nCas=3 nCon=7 nIn=10, countCas=5 countCon=20, n=25 nOut=15.
	got := bernoulliLL(3, 7, 5, 20, 25)
	want := 3*math.Log(3.0/10) + 7*math.Log(7.0/10) + (5-3)*math.Log(2.0/15) + (20-7)*math.Log(13.0/15)
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("bernoulliLL = %v, want %v", got, want)
	}
}

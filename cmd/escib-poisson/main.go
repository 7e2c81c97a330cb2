// Command escib-poisson runs the Poisson-ESCIB clustering engine
// (spec.md §4.4.2) over a background/event point pair, writes a points
// output file (event points only) plus a cluster-info file, and
// optionally assigns Monte Carlo p-values (spec.md §4.5).
//
// Usage: escib-poisson inputBackground inputEvents output radius alpha baselineRatio minCore nonCorePoints nSim
package main

import (
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/tingli3/escib/internal/cluster"
	"github.com/tingli3/escib/internal/geometry"
	"github.com/tingli3/escib/internal/grid"
	"github.com/tingli3/escib/internal/ioformat"
	"github.com/tingli3/escib/internal/montecarlo"
	"github.com/tingli3/escib/internal/neighbors"
	"github.com/tingli3/escib/internal/runid"
)

const usage = "usage: escib-poisson inputBackground inputEvents output radius alpha baselineRatio minCore nonCorePoints nSim"

// rngSeed1 and rngSeed2 fix the Monte Carlo replica stream so identical inputs and
// parameters reproduce byte-identical output across invocations (spec.md
// §8's determinism property); the CLI surface has no seed argument, so
// the seed is a module constant rather than user-tunable.
var rngSeed1, rngSeed2 uint64 = 0x9E3779B97F4A7C15, 0xBF58476D1CE4E5B9

// args is escib-poisson's parsed positional command line.
type args struct {
	bgPath        string
	eventPath     string
	outputPath    string
	radius        float64
	alpha         float64
	baselineRatio float64
	minCore       int
	nonCorePoints bool
	nSim          int
}

// parseArgs parses argv (including argv[0], as in os.Args) into args. It
// never calls os.Exit so it can be exercised directly in tests.
func parseArgs(argv []string) (args, error) {
	if len(argv) != 10 {
		return args{}, fmt.Errorf("%s", usage)
	}
	radius, err := parseFloatArg(argv[4], "radius")
	if err != nil {
		return args{}, fmt.Errorf("escib-poisson: %w", err)
	}
	alpha, err := parseFloatArg(argv[5], "alpha")
	if err != nil {
		return args{}, fmt.Errorf("escib-poisson: %w", err)
	}
	baselineRatio, err := parseFloatArg(argv[6], "baselineRatio")
	if err != nil {
		return args{}, fmt.Errorf("escib-poisson: %w", err)
	}
	minCore, err := strconv.Atoi(argv[7])
	if err != nil {
		return args{}, fmt.Errorf("escib-poisson: bad minCore %q: %w", argv[7], err)
	}
	nonCoreFlag, err := strconv.Atoi(argv[8])
	if err != nil {
		return args{}, fmt.Errorf("escib-poisson: bad nonCorePoints %q: %w", argv[8], err)
	}
	nSim, err := strconv.Atoi(argv[9])
	if err != nil {
		return args{}, fmt.Errorf("escib-poisson: bad nSim %q: %w", argv[9], err)
	}
	return args{
		bgPath:        argv[1],
		eventPath:     argv[2],
		outputPath:    argv[3],
		radius:        radius,
		alpha:         alpha,
		baselineRatio: baselineRatio,
		minCore:       minCore,
		nonCorePoints: nonCoreFlag != 0,
		nSim:          nSim,
	}, nil
}

func main() {
	a, err := parseArgs(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	runID := runid.New()
	log.Printf("escib-poisson[%s]: reading %s, %s", runID, a.bgPath, a.eventPath)

	background, err := ioformat.ReadPoints(a.bgPath, geometry.ClassBackground)
	if err != nil {
		log.Fatalf("escib-poisson[%s]: %v", runID, err)
	}
	events, err := ioformat.ReadPoints(a.eventPath, geometry.ClassEvent)
	if err != nil {
		log.Fatalf("escib-poisson[%s]: %v", runID, err)
	}

	countB, countE := len(background), len(events)
	combined := make([]geometry.Point, 0, countB+countE)
	combined = append(combined, background...)
	combined = append(combined, events...)

	idx, err := grid.Build(combined, a.radius)
	if err != nil {
		log.Fatalf("escib-poisson[%s]: %v", runID, err)
	}

	backgroundCount, eventCount := neighbors.CountTwoClass(idx, a.radius)
	params := cluster.PoissonParams{
		Radius:        a.radius,
		Alpha:         a.alpha,
		BaselineRatio: a.baselineRatio,
		MinCore:       a.minCore,
		NonCorePoints: a.nonCorePoints,
	}

	result := cluster.Poisson(idx, countE, countB, eventCount, backgroundCount, params)
	log.Printf("escib-poisson[%s]: %d background, %d events, %d surviving clusters", runID, countB, countE, len(result.Clusters))

	withPValue := a.nSim > 0
	if withPValue {
		bgIdx, err := grid.Build(background, a.radius)
		if err != nil {
			log.Fatalf("escib-poisson[%s]: %v", runID, err)
		}
		rng := rand.New(rand.NewPCG(rngSeed1, rngSeed2))
		mc := montecarlo.Poisson(bgIdx, countE, countB, result.Clusters, params, a.nSim, rng)
		for i := range result.Clusters {
			result.Clusters[i].PValue = mc.PValues[i]
		}
		log.Printf("escib-poisson[%s]: ran %d Monte Carlo replicas", runID, a.nSim)
	}

	if err := ioformat.WritePoissonPoints(a.outputPath, idx.Points(), result.Labels); err != nil {
		log.Fatalf("escib-poisson[%s]: %v", runID, err)
	}
	if err := ioformat.WritePoissonInfo(ioformat.InfoPath(a.outputPath), result.Clusters, withPValue); err != nil {
		log.Fatalf("escib-poisson[%s]: %v", runID, err)
	}
}

func parseFloatArg(s, name string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q: %w", name, s, err)
	}
	return v, nil
}

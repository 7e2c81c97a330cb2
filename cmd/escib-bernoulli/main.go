// Command escib-bernoulli runs the Bernoulli-ESCIB clustering engine
// (spec.md §4.4.3) over a case/control point pair and writes a points
// output file plus a cluster-info file.
//
// Usage: escib-bernoulli inputCase inputControl output radius alpha baselineRatio minCore nonCorePoints
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/tingli3/escib/internal/cluster"
	"github.com/tingli3/escib/internal/geometry"
	"github.com/tingli3/escib/internal/grid"
	"github.com/tingli3/escib/internal/ioformat"
	"github.com/tingli3/escib/internal/neighbors"
	"github.com/tingli3/escib/internal/runid"
)

const usage = "usage: escib-bernoulli inputCase inputControl output radius alpha baselineRatio minCore nonCorePoints"

// args is escib-bernoulli's parsed positional command line.
type args struct {
	casePath      string
	controlPath   string
	outputPath    string
	radius        float64
	alpha         float64
	baselineRatio float64
	minCore       int
	nonCorePoints bool
}

// parseArgs parses argv (including argv[0], as in os.Args) into args. It
// never calls os.Exit so it can be exercised directly in tests.
func parseArgs(argv []string) (args, error) {
	if len(argv) != 9 {
		return args{}, fmt.Errorf("%s", usage)
	}
	radius, err := parseFloatArg(argv[4], "radius")
	if err != nil {
		return args{}, fmt.Errorf("escib-bernoulli: %w", err)
	}
	alpha, err := parseFloatArg(argv[5], "alpha")
	if err != nil {
		return args{}, fmt.Errorf("escib-bernoulli: %w", err)
	}
	baselineRatio, err := parseFloatArg(argv[6], "baselineRatio")
	if err != nil {
		return args{}, fmt.Errorf("escib-bernoulli: %w", err)
	}
	minCore, err := strconv.Atoi(argv[7])
	if err != nil {
		return args{}, fmt.Errorf("escib-bernoulli: bad minCore %q: %w", argv[7], err)
	}
	nonCoreFlag, err := strconv.Atoi(argv[8])
	if err != nil {
		return args{}, fmt.Errorf("escib-bernoulli: bad nonCorePoints %q: %w", argv[8], err)
	}
	return args{
		casePath:      argv[1],
		controlPath:   argv[2],
		outputPath:    argv[3],
		radius:        radius,
		alpha:         alpha,
		baselineRatio: baselineRatio,
		minCore:       minCore,
		nonCorePoints: nonCoreFlag != 0,
	}, nil
}

func main() {
	a, err := parseArgs(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	runID := runid.New()
	log.Printf("escib-bernoulli[%s]: reading %s, %s", runID, a.casePath, a.controlPath)

	cases, err := ioformat.ReadPoints(a.casePath, geometry.ClassEvent)
	if err != nil {
		log.Fatalf("escib-bernoulli[%s]: %v", runID, err)
	}
	controls, err := ioformat.ReadPoints(a.controlPath, geometry.ClassBackground)
	if err != nil {
		log.Fatalf("escib-bernoulli[%s]: %v", runID, err)
	}

	countCas, countCon := len(cases), len(controls)
	combined := make([]geometry.Point, 0, countCas+countCon)
	combined = append(combined, cases...)
	combined = append(combined, controls...)

	idx, err := grid.Build(combined, a.radius)
	if err != nil {
		log.Fatalf("escib-bernoulli[%s]: %v", runID, err)
	}

	controlCount, caseCount := neighbors.CountTwoClass(idx, a.radius)
	params := cluster.BernoulliParams{
		Radius:        a.radius,
		Alpha:         a.alpha,
		P:             a.baselineRatio * float64(countCas) / float64(countCas+countCon),
		MinCore:       a.minCore,
		NonCorePoints: a.nonCorePoints,
	}

	result := cluster.Bernoulli(idx, countCas, countCon, caseCount, controlCount, params)
	log.Printf("escib-bernoulli[%s]: %d cases, %d controls, %d surviving clusters", runID, countCas, countCon, len(result.Clusters))

	if err := ioformat.WriteBernoulliPoints(a.outputPath, idx.Points(), result.Labels); err != nil {
		log.Fatalf("escib-bernoulli[%s]: %v", runID, err)
	}
	if err := ioformat.WriteBernoulliInfo(ioformat.InfoPath(a.outputPath), result.Clusters, false); err != nil {
		log.Fatalf("escib-bernoulli[%s]: %v", runID, err)
	}
}

func parseFloatArg(s, name string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q: %w", name, s, err)
	}
	return v, nil
}

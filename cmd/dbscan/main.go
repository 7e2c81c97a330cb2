// Command dbscan runs the density-based clustering engine (spec.md
// §4.4.1) over a single input file of 2D points and writes a points
// output file labeling every point with its cluster id (-1 for noise).
//
// Usage: dbscan inputEvents output radius minPts minCore nonCorePoints
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
	"github.com/tingli3/escib/internal/runid"
)

const usage = "usage: dbscan inputEvents output radius minPts minCore nonCorePoints"

// args is dbscan's parsed positional command line.
type args struct {
	inputPath     string
	outputPath    string
	radius        float64
	minPts        int
	minCore       int
	nonCorePoints bool
}

// parseArgs parses argv (including argv[0], as in os.Args) into args. It
// never calls os.Exit so it can be exercised directly in tests.
func parseArgs(argv []string) (args, error) {
	if len(argv) != 7 {
		return args{}, fmt.Errorf("%s", usage)
	}
	radius, err := strconv.ParseFloat(argv[3], 64)
	if err != nil {
		return args{}, fmt.Errorf("dbscan: bad radius %q: %w", argv[3], err)
	}
	minPts, err := strconv.Atoi(argv[4])
	if err != nil {
		return args{}, fmt.Errorf("dbscan: bad minPts %q: %w", argv[4], err)
	}
	minCore, err := strconv.Atoi(argv[5])
	if err != nil {
		return args{}, fmt.Errorf("dbscan: bad minCore %q: %w", argv[5], err)
	}
	nonCoreFlag, err := strconv.Atoi(argv[6])
	if err != nil {
		return args{}, fmt.Errorf("dbscan: bad nonCorePoints %q: %w", argv[6], err)
	}
	return args{
		inputPath:     argv[1],
		outputPath:    argv[2],
		radius:        radius,
		minPts:        minPts,
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
	log.Printf("dbscan[%s]: reading %s", runID, a.inputPath)

	pts, err := ioformat.ReadPoints(a.inputPath, geometry.ClassEvent)
	if err != nil {
		log.Fatalf("dbscan[%s]: %v", runID, err)
	}

	idx, err := grid.Build(pts, a.radius)
	if err != nil {
		log.Fatalf("dbscan[%s]: %v", runID, err)
	}

	result := cluster.DBSCAN(idx, a.radius, a.minPts, a.minCore, a.nonCorePoints)
	log.Printf("dbscan[%s]: %d points, %d clusters", runID, len(pts), result.NumClusters)

	if err := ioformat.WriteDBSCANPoints(a.outputPath, idx.Points(), result.Labels); err != nil {
		log.Fatalf("dbscan[%s]: %v", runID, err)
	}
}

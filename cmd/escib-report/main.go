// Command escib-report is an auxiliary tool (SPEC_FULL.md §12, not part
// of spec.md §6's fixed positional CLI surface): it reads a previously
// written points+_Info output pair from one of the three core programs,
// persists it to a local SQLite database via internal/store, and
// optionally renders a scatter plot via internal/escibplot.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tingli3/escib/internal/escibplot"
	"github.com/tingli3/escib/internal/escibstats"
	"github.com/tingli3/escib/internal/geometry"
	"github.com/tingli3/escib/internal/ioformat"
	"github.com/tingli3/escib/internal/runid"
	"github.com/tingli3/escib/internal/store"
)

// loadedRun is what loadRun reads back from a previous program's output
// pair: the points to plot, their cluster labels, the engine-neutral
// cluster records to persist, and a one-line size summary for logging
// (empty for dbscan, which has no per-cluster size notion).
type loadedRun struct {
	pts            []geometry.Point
	labels         []int
	clusterRecords []store.ClusterRecord
	summaryLine    string
}

// loadRun reads back the points+_Info output pair for engine at
// pointsPath. It contains no flag/logging/process-exit concerns so it
// can be exercised directly in tests.
func loadRun(engine, pointsPath string) (loadedRun, error) {
	switch engine {
	case "dbscan":
		pts, labels, err := ioformat.ReadDBSCANPoints(pointsPath)
		if err != nil {
			return loadedRun{}, err
		}
		return loadedRun{pts: pts, labels: labels}, nil
	case "bernoulli":
		pts, labels, err := ioformat.ReadBernoulliPoints(pointsPath)
		if err != nil {
			return loadedRun{}, err
		}
		clusters, err := ioformat.ReadBernoulliInfo(ioformat.InfoPath(pointsPath))
		if err != nil {
			return loadedRun{}, err
		}
		sizes := make([]float64, len(clusters))
		for i, c := range clusters {
			sizes[i] = float64(c.NCas + c.NCon)
		}
		summary := escibstats.SummarizeSizes(sizes)
		return loadedRun{
			pts:            pts,
			labels:         labels,
			clusterRecords: store.ClusterRecordsFromBernoulli(clusters),
			summaryLine:    fmt.Sprintf("%d clusters, mean size %.2f (stddev %.2f)", summary.Count, summary.Mean, summary.Stddev),
		}, nil
	case "poisson":
		pts, labels, err := ioformat.ReadPoissonPoints(pointsPath)
		if err != nil {
			return loadedRun{}, err
		}
		clusters, err := ioformat.ReadPoissonInfo(ioformat.InfoPath(pointsPath))
		if err != nil {
			return loadedRun{}, err
		}
		sizes := make([]float64, len(clusters))
		for i, c := range clusters {
			sizes[i] = float64(c.Events)
		}
		summary := escibstats.SummarizeSizes(sizes)
		return loadedRun{
			pts:            pts,
			labels:         labels,
			clusterRecords: store.ClusterRecordsFromPoisson(clusters),
			summaryLine:    fmt.Sprintf("%d clusters, mean events %.2f (stddev %.2f)", summary.Count, summary.Mean, summary.Stddev),
		}, nil
	default:
		return loadedRun{}, fmt.Errorf("escib-report: unknown engine %q (want dbscan, bernoulli, or poisson)", engine)
	}
}

func main() {
	engine := flag.String("engine", "", "engine that produced the input: dbscan, bernoulli, or poisson")
	pointsPath := flag.String("points", "", "points output file to read")
	dbPath := flag.String("db", "escib.db", "SQLite database path to persist the run into")
	plotPath := flag.String("plot", "", "if set, render a PNG scatter plot of the result to this path")
	radius := flag.Float64("radius", 0, "radius the run was computed with (stored as metadata only)")
	minCore := flag.Int("min-core", 0, "minCore the run was computed with (stored as metadata only)")
	flag.Parse()

	if *engine == "" || *pointsPath == "" {
		fmt.Fprintln(os.Stderr, "usage: escib-report -engine dbscan|bernoulli|poisson -points <path> [-db <path>] [-plot <path>]")
		os.Exit(1)
	}

	runID := runid.New()

	loaded, err := loadRun(*engine, *pointsPath)
	if err != nil {
		log.Fatalf("escib-report[%s]: %v", runID, err)
	}
	pts, labels, clusterRecords := loaded.pts, loaded.labels, loaded.clusterRecords
	if loaded.summaryLine != "" {
		log.Printf("escib-report[%s]: %s", runID, loaded.summaryLine)
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("escib-report[%s]: %v", runID, err)
	}
	defer db.Close()

	run := store.RunRecord{
		RunID:       runID,
		Engine:      *engine,
		PointsPath:  *pointsPath,
		Radius:      *radius,
		MinCore:     *minCore,
		CreatedUnix: store.NowUnix(),
	}
	if err := db.SaveRun(run, clusterRecords); err != nil {
		log.Fatalf("escib-report[%s]: %v", runID, err)
	}
	log.Printf("escib-report[%s]: persisted %d clusters from %s into %s", runID, len(clusterRecords), *pointsPath, *dbPath)

	if *plotPath != "" {
		if err := escibplot.Save(*plotPath, fmt.Sprintf("%s: %s", *engine, *pointsPath), pts, labels); err != nil {
			log.Fatalf("escib-report[%s]: %v", runID, err)
		}
		log.Printf("escib-report[%s]: wrote plot %s", runID, *plotPath)
	}
}

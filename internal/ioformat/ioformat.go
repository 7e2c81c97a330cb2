// Package ioformat implements the plain-CSV external interfaces of spec
// §6: reading one-class-per-file point lists, and writing the points and
// cluster-info output files for all three CLI programs. The writer shape
// (a thin struct wrapping *csv.Writer with header/row helpers) follows
// the teacher's internal/lidar/sweep.CSVWriter.
package ioformat

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tingli3/escib/internal/cluster"
	"github.com/tingli3/escib/internal/geometry"
)

// ReadPoints reads one "x,y" pair per line from path and tags every point
// with class. A malformed line fails loudly with its line number (spec
// §7 prefers loud failure over silently truncating input); empty lines
// are skipped wherever they occur.
func ReadPoints(path string, class geometry.Class) ([]geometry.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ioformat: open %s: %w", path, err)
	}
	defer f.Close()

	var pts []geometry.Point
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		x, y, err := parseXY(line)
		if err != nil {
			return nil, fmt.Errorf("ioformat: %s:%d: %w", path, lineNo, err)
		}
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return nil, fmt.Errorf("ioformat: %s:%d: non-finite coordinate", path, lineNo)
		}
		pts = append(pts, geometry.Point{X: x, Y: y, Class: class})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ioformat: read %s: %w", path, err)
	}
	return pts, nil
}

func parseXY(line string) (x, y float64, err error) {
	r := csv.NewReader(strings.NewReader(line))
	fields, err := r.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("malformed line %q: %w", line, err)
	}
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("malformed line %q: want 2 fields, got %d", line, len(fields))
	}
	x, err = strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad x field %q: %w", fields[0], err)
	}
	y, err = strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad y field %q: %w", fields[1], err)
	}
	return x, y, nil
}

// InfoPath returns the cluster-info companion path for a points output
// path (spec §6: "suffixed with _Info").
func InfoPath(pointsPath string) string {
	return pointsPath + "_Info"
}

// WriteDBSCANPoints writes `x,y,clusterID` for every point in idx order
// (no header, per spec §6).
func WriteDBSCANPoints(path string, pts []geometry.Point, labels []int) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	for i, p := range pts {
		if err := w.Write([]string{fmtFloat(p.X), fmtFloat(p.Y), strconv.Itoa(labels[i])}); err != nil {
			return fmt.Errorf("ioformat: write %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteBernoulliPoints writes the header `X,Y,CaseOrCon,ClusterID`
// followed by one row per point, in idx order.
func WriteBernoulliPoints(path string, pts []geometry.Point, labels []int) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"X", "Y", "CaseOrCon", "ClusterID"}); err != nil {
		return fmt.Errorf("ioformat: write %s: %w", path, err)
	}
	for i, p := range pts {
		if err := w.Write([]string{fmtFloat(p.X), fmtFloat(p.Y), strconv.Itoa(int(p.Class)), strconv.Itoa(labels[i])}); err != nil {
			return fmt.Errorf("ioformat: write %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WritePoissonPoints writes `x,y,clusterID` for event points only (spec
// §6), in idx order, skipping background points.
func WritePoissonPoints(path string, pts []geometry.Point, labels []int) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	for i, p := range pts {
		if p.Class != geometry.ClassEvent {
			continue
		}
		if err := w.Write([]string{fmtFloat(p.X), fmtFloat(p.Y), strconv.Itoa(labels[i])}); err != nil {
			return fmt.Errorf("ioformat: write %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteBernoulliInfo writes the cluster-info file for a Bernoulli run:
// `ClusterID,nCas,nCon,LL` plus `,PValue` when withPValue is set.
func WriteBernoulliInfo(path string, clusters []cluster.BernoulliSummary, withPValue bool) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	header := []string{"ClusterID", "nCas", "nCon", "LL"}
	if withPValue {
		header = append(header, "PValue")
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("ioformat: write %s: %w", path, err)
	}
	for _, c := range clusters {
		row := []string{strconv.Itoa(c.ClusterID), strconv.Itoa(c.NCas), strconv.Itoa(c.NCon), fmtFloat(c.LL)}
		if withPValue {
			row = append(row, fmtFloat(c.PValue))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("ioformat: write %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WritePoissonInfo writes the cluster-info file for a Poisson run:
// `ClusterID,Events,expEvents,LL` plus `,PValue` when withPValue is set.
func WritePoissonInfo(path string, clusters []cluster.PoissonSummary, withPValue bool) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	header := []string{"ClusterID", "Events", "expEvents", "LL"}
	if withPValue {
		header = append(header, "PValue")
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("ioformat: write %s: %w", path, err)
	}
	for _, c := range clusters {
		row := []string{strconv.Itoa(c.ClusterID), strconv.Itoa(c.Events), fmtFloat(c.ExpEvents), fmtFloat(c.LL)}
		if withPValue {
			row = append(row, fmtFloat(c.PValue))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("ioformat: write %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadDBSCANPoints reads back a points file written by WriteDBSCANPoints:
// `x,y,clusterID` per line, no header.
func ReadDBSCANPoints(path string) ([]geometry.Point, []int, error) {
	records, err := readCSV(path, 0)
	if err != nil {
		return nil, nil, err
	}
	pts := make([]geometry.Point, len(records))
	labels := make([]int, len(records))
	for i, rec := range records {
		if len(rec) < 3 {
			return nil, nil, fmt.Errorf("ioformat: %s: row %d: want 3 fields, got %d", path, i, len(rec))
		}
		x, y, err := parseFields(rec[0], rec[1])
		if err != nil {
			return nil, nil, fmt.Errorf("ioformat: %s: row %d: %w", path, i, err)
		}
		l, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, nil, fmt.Errorf("ioformat: %s: row %d: bad clusterID %q: %w", path, i, rec[2], err)
		}
		pts[i] = geometry.Point{X: x, Y: y}
		labels[i] = l
	}
	return pts, labels, nil
}

// ReadBernoulliPoints reads back a points file written by
// WriteBernoulliPoints: header `X,Y,CaseOrCon,ClusterID` then one row
// per point.
func ReadBernoulliPoints(path string) ([]geometry.Point, []int, error) {
	records, err := readCSV(path, 1)
	if err != nil {
		return nil, nil, err
	}
	pts := make([]geometry.Point, len(records))
	labels := make([]int, len(records))
	for i, rec := range records {
		if len(rec) < 4 {
			return nil, nil, fmt.Errorf("ioformat: %s: row %d: want 4 fields, got %d", path, i, len(rec))
		}
		x, y, err := parseFields(rec[0], rec[1])
		if err != nil {
			return nil, nil, fmt.Errorf("ioformat: %s: row %d: %w", path, i, err)
		}
		classTag, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, nil, fmt.Errorf("ioformat: %s: row %d: bad classTag %q: %w", path, i, rec[2], err)
		}
		l, err := strconv.Atoi(rec[3])
		if err != nil {
			return nil, nil, fmt.Errorf("ioformat: %s: row %d: bad clusterID %q: %w", path, i, rec[3], err)
		}
		pts[i] = geometry.Point{X: x, Y: y, Class: geometry.Class(classTag)}
		labels[i] = l
	}
	return pts, labels, nil
}

// ReadPoissonPoints reads back a points file written by
// WritePoissonPoints: `x,y,clusterID` per line, event points only, no
// header.
func ReadPoissonPoints(path string) ([]geometry.Point, []int, error) {
	records, err := readCSV(path, 0)
	if err != nil {
		return nil, nil, err
	}
	pts := make([]geometry.Point, len(records))
	labels := make([]int, len(records))
	for i, rec := range records {
		if len(rec) < 3 {
			return nil, nil, fmt.Errorf("ioformat: %s: row %d: want 3 fields, got %d", path, i, len(rec))
		}
		x, y, err := parseFields(rec[0], rec[1])
		if err != nil {
			return nil, nil, fmt.Errorf("ioformat: %s: row %d: %w", path, i, err)
		}
		l, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, nil, fmt.Errorf("ioformat: %s: row %d: bad clusterID %q: %w", path, i, rec[2], err)
		}
		pts[i] = geometry.Point{X: x, Y: y, Class: geometry.ClassEvent}
		labels[i] = l
	}
	return pts, labels, nil
}

// ReadBernoulliInfo reads back a cluster-info file written by
// WriteBernoulliInfo.
func ReadBernoulliInfo(path string) ([]cluster.BernoulliSummary, error) {
	records, header, err := readCSVWithHeader(path)
	if err != nil {
		return nil, err
	}
	hasPValue := len(header) >= 5
	out := make([]cluster.BernoulliSummary, len(records))
	for i, rec := range records {
		id, _ := strconv.Atoi(rec[0])
		nCas, _ := strconv.Atoi(rec[1])
		nCon, _ := strconv.Atoi(rec[2])
		ll, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("ioformat: %s: row %d: bad LL %q: %w", path, i, rec[3], err)
		}
		pValue := -1.0
		if hasPValue && len(rec) > 4 {
			pValue, err = strconv.ParseFloat(rec[4], 64)
			if err != nil {
				return nil, fmt.Errorf("ioformat: %s: row %d: bad PValue %q: %w", path, i, rec[4], err)
			}
		}
		out[i] = cluster.BernoulliSummary{ClusterID: id, NCas: nCas, NCon: nCon, LL: ll, PValue: pValue}
	}
	return out, nil
}

// ReadPoissonInfo reads back a cluster-info file written by
// WritePoissonInfo.
func ReadPoissonInfo(path string) ([]cluster.PoissonSummary, error) {
	records, header, err := readCSVWithHeader(path)
	if err != nil {
		return nil, err
	}
	hasPValue := len(header) >= 5
	out := make([]cluster.PoissonSummary, len(records))
	for i, rec := range records {
		id, _ := strconv.Atoi(rec[0])
		events, _ := strconv.Atoi(rec[1])
		expEvents, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("ioformat: %s: row %d: bad expEvents %q: %w", path, i, rec[2], err)
		}
		ll, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("ioformat: %s: row %d: bad LL %q: %w", path, i, rec[3], err)
		}
		pValue := -1.0
		if hasPValue && len(rec) > 4 {
			pValue, err = strconv.ParseFloat(rec[4], 64)
			if err != nil {
				return nil, fmt.Errorf("ioformat: %s: row %d: bad PValue %q: %w", path, i, rec[4], err)
			}
		}
		out[i] = cluster.PoissonSummary{ClusterID: id, Events: events, ExpEvents: expEvents, LL: ll, PValue: pValue}
	}
	return out, nil
}

// readCSV reads path as CSV and returns every record after skipping
// skipHeaderRows leading rows.
func readCSV(path string, skipHeaderRows int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ioformat: open %s: %w", path, err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ioformat: read %s: %w", path, err)
	}
	if skipHeaderRows > len(records) {
		return nil, nil
	}
	return records[skipHeaderRows:], nil
}

// readCSVWithHeader is readCSV plus the header row itself, used by the
// cluster-info readers to detect whether a PValue column is present.
func readCSVWithHeader(path string) (records [][]string, header []string, err error) {
	all, err := readCSV(path, 0)
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("ioformat: %s: empty file", path)
	}
	return all[1:], all[0], nil
}

func parseFields(xs, ys string) (x, y float64, err error) {
	x, err = strconv.ParseFloat(xs, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad x field %q: %w", xs, err)
	}
	y, err = strconv.ParseFloat(ys, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad y field %q: %w", ys, err)
	}
	return x, y, nil
}

func create(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("ioformat: create %s: %w", path, err)
	}
	return f, nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

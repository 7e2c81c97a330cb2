// Package store persists clustering runs (parameters, cluster summaries,
// p-values) to a local SQLite database so repeated invocations of the
// CLI programs can be compared over time. It is a supplemented feature
// (SPEC_FULL.md §11/§12): the core clustering programs never require a
// database, but the auxiliary escib-report tool writes through this
// package to build up a history of runs.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tingli3/escib/internal/cluster"
)

// DB wraps a *sql.DB the way the teacher's internal/db.DB does, so
// migration and query helpers can hang off a single receiver.
type DB struct {
	*sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// applies the embedded migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("store: set journal mode: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("store: set busy_timeout: %w", err)
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// RunRecord is one clustering invocation's parameters, keyed by its
// runid.New() identifier.
type RunRecord struct {
	RunID       string
	Engine      string // "dbscan", "bernoulli", or "poisson"
	PointsPath  string
	Radius      float64
	Alpha       float64
	MinCore     int
	NonCore     bool
	NSim        int
	CreatedUnix int64
}

// ClusterRecord is one surviving cluster's accounting, engine-neutral:
// Count1/Count0 hold events/background for Poisson or cases/controls for
// Bernoulli; ExpCount1 is only meaningful for Poisson. PValue is nil when
// Monte Carlo did not run.
type ClusterRecord struct {
	ClusterID int
	Count1    int
	Count0    int
	ExpCount1 float64
	LL        float64
	PValue    *float64
}

// SaveRun persists a run and its cluster records in a single transaction.
func (db *DB) SaveRun(run RunRecord, clusters []ClusterRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	nonCore := 0
	if run.NonCore {
		nonCore = 1
	}
	_, err = tx.Exec(
		`INSERT INTO runs (run_id, engine, points_path, radius, alpha, min_core, non_core, n_sim, created_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Engine, run.PointsPath, run.Radius, run.Alpha, run.MinCore, nonCore, run.NSim, run.CreatedUnix,
	)
	if err != nil {
		return fmt.Errorf("store: insert run %s: %w", run.RunID, err)
	}

	for _, c := range clusters {
		_, err = tx.Exec(
			`INSERT INTO clusters (run_id, cluster_id, count1, count0, exp_count1, ll, p_value)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, c.ClusterID, c.Count1, c.Count0, c.ExpCount1, c.LL, c.PValue,
		)
		if err != nil {
			return fmt.Errorf("store: insert cluster %s/%d: %w", run.RunID, c.ClusterID, err)
		}
	}

	return tx.Commit()
}

// ClusterRecordsFromBernoulli converts the engine's native summary slice
// into the store's engine-neutral shape.
func ClusterRecordsFromBernoulli(clusters []cluster.BernoulliSummary) []ClusterRecord {
	out := make([]ClusterRecord, len(clusters))
	for i, c := range clusters {
		out[i] = ClusterRecord{ClusterID: c.ClusterID, Count1: c.NCas, Count0: c.NCon, LL: c.LL, PValue: pvalueOrNil(c.PValue)}
	}
	return out
}

// ClusterRecordsFromPoisson converts the engine's native summary slice
// into the store's engine-neutral shape.
func ClusterRecordsFromPoisson(clusters []cluster.PoissonSummary) []ClusterRecord {
	out := make([]ClusterRecord, len(clusters))
	for i, c := range clusters {
		out[i] = ClusterRecord{ClusterID: c.ClusterID, Count1: c.Events, ExpCount1: c.ExpEvents, LL: c.LL, PValue: pvalueOrNil(c.PValue)}
	}
	return out
}

// pvalueOrNil maps the engines' -1 sentinel (no Monte Carlo run) to a
// NULL column.
func pvalueOrNil(p float64) *float64 {
	if p < 0 {
		return nil
	}
	v := p
	return &v
}

// ListRuns returns every stored run, most recent first.
func (db *DB) ListRuns() ([]RunRecord, error) {
	rows, err := db.Query(`SELECT run_id, engine, points_path, radius, alpha, min_core, non_core, n_sim, created_unix
	                        FROM runs ORDER BY created_unix DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var nonCore int
		if err := rows.Scan(&r.RunID, &r.Engine, &r.PointsPath, &r.Radius, &r.Alpha, &r.MinCore, &nonCore, &r.NSim, &r.CreatedUnix); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		r.NonCore = nonCore != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClustersForRun returns every cluster record stored for runID, ordered
// by cluster ID.
func (db *DB) ClustersForRun(runID string) ([]ClusterRecord, error) {
	rows, err := db.Query(
		`SELECT cluster_id, count1, count0, exp_count1, ll, p_value FROM clusters WHERE run_id = ? ORDER BY cluster_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: clusters for %s: %w", runID, err)
	}
	defer rows.Close()

	var out []ClusterRecord
	for rows.Next() {
		var c ClusterRecord
		var pv sql.NullFloat64
		if err := rows.Scan(&c.ClusterID, &c.Count1, &c.Count0, &c.ExpCount1, &c.LL, &pv); err != nil {
			return nil, fmt.Errorf("store: scan cluster: %w", err)
		}
		if pv.Valid {
			v := pv.Float64
			c.PValue = &v
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// NowUnix is a thin seam so callers (and tests) can stamp CreatedUnix
// without the package reaching for time.Now() itself at call sites that
// already have a run timestamp from elsewhere.
func NowUnix() int64 {
	return time.Now().Unix()
}

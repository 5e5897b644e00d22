// Package runstore persists clustering runs and their per-point labels to
// SQLite, so parameter sweeps over the same dataset can be compared after
// the fact.
package runstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/behavior.report/internal/stb"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run is one recorded clustering run: the parameter echo plus the outcome
// counts shown in the run summary.
type Run struct {
	ID                string
	CreatedAt         time.Time
	BehavioralColumns string
	PointCount        int
	MinPts            int
	K                 int
	Pct               float64
	STBDBCANMinPts    int
	MinPtsCluster     int
	OutlierUpperBound float64
	SpatialWeight     float64
	TemporalWeight    float64
	ClusterCount      int
	NoiseCount        int
	UnclassifiedCount int
	ElapsedMS         int64
}

// PointLabel is the persisted cluster assignment of one observation.
type PointLabel struct {
	PointIndex int
	SensorID   string
	Label      stb.Label
}

// RunStore wraps the SQLite database holding runs and labels.
type RunStore struct {
	db *sql.DB
}

// Open opens (or creates) the run database at path and applies any pending
// schema migrations.
func Open(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runstore: opening %s: %w", path, err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &RunStore{db: db}, nil
}

// Close closes the underlying database.
func (s *RunStore) Close() error { return s.db.Close() }

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("runstore: loading embedded migrations: %w", err)
	}
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("runstore: preparing migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("runstore: preparing migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("runstore: migration up failed: %w", err)
	}
	return nil
}

// RecordRun inserts a run and its labels in one transaction. When run.ID is
// empty a new UUID is assigned; the stored id is returned.
func (s *RunStore) RecordRun(run *Run, labels []PointLabel) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("runstore: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (
			run_id, behavioral_columns, point_count,
			min_pts, k, pct, stbdbcan_min_pts, min_pts_cluster,
			stbof_upper_bound, spatial_weight, temporal_weight,
			cluster_count, noise_count, unclassified_count, elapsed_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.BehavioralColumns, run.PointCount,
		run.MinPts, run.K, run.Pct, run.STBDBCANMinPts, run.MinPtsCluster,
		run.OutlierUpperBound, run.SpatialWeight, run.TemporalWeight,
		run.ClusterCount, run.NoiseCount, run.UnclassifiedCount, run.ElapsedMS)
	if err != nil {
		return "", fmt.Errorf("runstore: inserting run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO run_labels (run_id, point_index, sensor_id, cluster_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("runstore: preparing label insert: %w", err)
	}
	defer stmt.Close()
	for _, l := range labels {
		if _, err := stmt.Exec(run.ID, l.PointIndex, l.SensorID, int(l.Label)); err != nil {
			return "", fmt.Errorf("runstore: inserting label for point %d: %w", l.PointIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("runstore: commit: %w", err)
	}
	return run.ID, nil
}

// GetRun fetches a single run by id.
func (s *RunStore) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, created_at, behavioral_columns, point_count,
		       min_pts, k, pct, stbdbcan_min_pts, min_pts_cluster,
		       stbof_upper_bound, spatial_weight, temporal_weight,
		       cluster_count, noise_count, unclassified_count, elapsed_ms
		FROM runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("runstore: run %s not found", id)
	}
	return run, err
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(limit int) ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, created_at, behavioral_columns, point_count,
		       min_pts, k, pct, stbdbcan_min_pts, min_pts_cluster,
		       stbof_upper_bound, spatial_weight, temporal_weight,
		       cluster_count, noise_count, unclassified_count, elapsed_ms
		FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runstore: listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LabelsForRun returns the persisted labels of a run ordered by point index.
func (s *RunStore) LabelsForRun(id string) ([]PointLabel, error) {
	rows, err := s.db.Query(`
		SELECT point_index, sensor_id, cluster_id
		FROM run_labels WHERE run_id = ? ORDER BY point_index`, id)
	if err != nil {
		return nil, fmt.Errorf("runstore: loading labels for %s: %w", id, err)
	}
	defer rows.Close()

	var labels []PointLabel
	for rows.Next() {
		var l PointLabel
		var cluster int
		if err := rows.Scan(&l.PointIndex, &l.SensorID, &cluster); err != nil {
			return nil, fmt.Errorf("runstore: scanning label: %w", err)
		}
		l.Label = stb.Label(cluster)
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	err := row.Scan(
		&run.ID, &run.CreatedAt, &run.BehavioralColumns, &run.PointCount,
		&run.MinPts, &run.K, &run.Pct, &run.STBDBCANMinPts, &run.MinPtsCluster,
		&run.OutlierUpperBound, &run.SpatialWeight, &run.TemporalWeight,
		&run.ClusterCount, &run.NoiseCount, &run.UnclassifiedCount, &run.ElapsedMS)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/matcha/internal/endpoint"
)

// ErrRunNotFound is returned when a run ID is not in the catalogue.
var ErrRunNotFound = errors.New("run not found")

// Run is one endpoint-finding pass over a track collection.
type Run struct {
	ID                  string
	CreatedAt           time.Time
	Radius              float64
	MinRefineNeighbours int
	// Source is the input the tracks were loaded from.
	Source     string
	OutputDir  string
	TrackCount int
}

// TrackEndpoint is the catalogued outcome for one track of a run.
type TrackEndpoint struct {
	RunID        string
	TrackID      int64
	Start, End   endpoint.Point
	StartIndex   int
	EndIndex     int
	StartScore   float64
	EndScore     float64
	StartRefined bool
	EndRefined   bool
	PointCount   int
}

// NewTrackEndpoint builds the catalogue row for a finder result.
func NewTrackEndpoint(runID string, trackID int64, pointCount int, r endpoint.Result) TrackEndpoint {
	return TrackEndpoint{
		RunID:        runID,
		TrackID:      trackID,
		Start:        r.Pair.Start,
		End:          r.Pair.End,
		StartIndex:   r.Start.Index,
		EndIndex:     r.End.Index,
		StartScore:   r.Start.Score,
		EndScore:     r.End.Score,
		StartRefined: r.Start.Refined,
		EndRefined:   r.End.Refined,
		PointCount:   pointCount,
	}
}

// RecordRun inserts a run. A zero CreatedAt is stamped from db.Clock.
func (db *DB) RecordRun(run Run) (Run, error) {
	if run.ID == "" {
		return run, errors.New("run ID is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = db.Clock.Now()
	}
	_, err := db.Exec(
		`INSERT INTO endpoint_runs (
			run_id, created_unix_nanos, radius, min_refine_neighbours,
			source, output_dir, track_count
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), run.Radius, run.MinRefineNeighbours,
		run.Source, run.OutputDir, run.TrackCount,
	)
	if err != nil {
		return run, fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return run, nil
}

// RecordEndpoints inserts the endpoint rows of one run in a single
// transaction. Either every row is stored or none is.
func (db *DB) RecordEndpoints(eps []TrackEndpoint) error {
	if len(eps) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO track_endpoints (
			run_id, track_id, start_x, start_y, start_z, end_x, end_y, end_z,
			start_index, end_index, start_score, end_score,
			start_refined, end_refined, point_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ep := range eps {
		if _, err := stmt.Exec(
			ep.RunID, ep.TrackID,
			ep.Start.X, ep.Start.Y, ep.Start.Z,
			ep.End.X, ep.End.Y, ep.End.Z,
			ep.StartIndex, ep.EndIndex, ep.StartScore, ep.EndScore,
			ep.StartRefined, ep.EndRefined, ep.PointCount,
		); err != nil {
			return fmt.Errorf("failed to record endpoints for track %d: %w", ep.TrackID, err)
		}
	}
	return tx.Commit()
}

// GetRun returns a single run.
func (db *DB) GetRun(runID string) (Run, error) {
	row := db.QueryRow(`SELECT run_id, created_unix_nanos, radius, min_refine_neighbours,
			source, output_dir, track_count
		FROM endpoint_runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// Runs lists every run, newest first.
func (db *DB) Runs() ([]Run, error) {
	rows, err := db.Query(`SELECT run_id, created_unix_nanos, radius, min_refine_neighbours,
			source, output_dir, track_count
		FROM endpoint_runs ORDER BY created_unix_nanos DESC, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunEndpoints returns the endpoint rows of a run ordered by track ID.
func (db *DB) RunEndpoints(runID string) ([]TrackEndpoint, error) {
	if _, err := db.GetRun(runID); err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT run_id, track_id, start_x, start_y, start_z,
			end_x, end_y, end_z, start_index, end_index, start_score, end_score,
			start_refined, end_refined, point_count
		FROM track_endpoints WHERE run_id = ? ORDER BY track_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var eps []TrackEndpoint
	for rows.Next() {
		var ep TrackEndpoint
		if err := rows.Scan(
			&ep.RunID, &ep.TrackID,
			&ep.Start.X, &ep.Start.Y, &ep.Start.Z,
			&ep.End.X, &ep.End.Y, &ep.End.Z,
			&ep.StartIndex, &ep.EndIndex, &ep.StartScore, &ep.EndScore,
			&ep.StartRefined, &ep.EndRefined, &ep.PointCount,
		); err != nil {
			return nil, err
		}
		eps = append(eps, ep)
	}
	return eps, rows.Err()
}

// DeleteRun removes a run and, through the foreign key, its endpoints.
func (db *DB) DeleteRun(runID string) error {
	res, err := db.Exec(`DELETE FROM endpoint_runs WHERE run_id = ?`, runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var run Run
	var createdNanos int64
	if err := s.Scan(&run.ID, &createdNanos, &run.Radius, &run.MinRefineNeighbours,
		&run.Source, &run.OutputDir, &run.TrackCount); err != nil {
		return Run{}, err
	}
	run.CreatedAt = time.Unix(0, createdNanos).UTC()
	return run, nil
}

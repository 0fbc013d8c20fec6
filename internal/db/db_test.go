package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/matcha/internal/endpoint"
	"github.com/banshee-data/matcha/internal/monitoring"
	"github.com/banshee-data/matcha/internal/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })

	db, err := Open(filepath.Join(t.TempDir(), "catalogue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_AppliesMigrations(t *testing.T) {
	db := setupTestDB(t)

	version, dirty, err := db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	for _, table := range []string{"endpoint_runs", "track_endpoints"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestOpen_Reopen(t *testing.T) {
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	defer func() { monitoring.Logf = original }()
	path := filepath.Join(t.TempDir(), "catalogue.db")

	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.RecordRun(Run{ID: "r1", Radius: 20, MinRefineNeighbours: 10})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	runs, err := db.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "r1", runs[0].ID)
}

func TestMigrateDownAndUp(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.MigrateDown(MigrationsFS()))
	version, _, err := db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	_, err = db.Exec(`SELECT point_count FROM track_endpoints`)
	assert.Error(t, err, "point_count should be gone after rolling back migration 2")

	require.NoError(t, db.MigrateUp(MigrationsFS()))
	version, _, err = db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func TestMigrate_NilFS(t *testing.T) {
	db := setupTestDB(t)
	assert.Error(t, db.MigrateUp(nil))
}

func TestRecordRun_StampsFromClock(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	db.Clock = timeutil.NewMockClock(now)

	run, err := db.RecordRun(Run{ID: "run-a", Radius: 20, MinRefineNeighbours: 10, Source: "tracks.json", OutputDir: "/out", TrackCount: 2})
	require.NoError(t, err)
	assert.True(t, run.CreatedAt.Equal(now))

	got, err := db.GetRun("run-a")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(now))
	assert.Equal(t, 20.0, got.Radius)
	assert.Equal(t, 10, got.MinRefineNeighbours)
	assert.Equal(t, "tracks.json", got.Source)
	assert.Equal(t, "/out", got.OutputDir)
	assert.Equal(t, 2, got.TrackCount)
}

func TestRecordRun_Errors(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.RecordRun(Run{})
	assert.Error(t, err)

	_, err = db.RecordRun(Run{ID: "dup"})
	require.NoError(t, err)
	_, err = db.RecordRun(Run{ID: "dup"})
	assert.Error(t, err)
}

func TestRuns_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	clock := timeutil.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	db.Clock = clock

	for _, id := range []string{"first", "second", "third"} {
		_, err := db.RecordRun(Run{ID: id})
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	runs, err := db.Runs()
	require.NoError(t, err)
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"third", "second", "first"}, ids)
}

func TestRecordEndpoints_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.RecordRun(Run{ID: "run-b", Radius: 20, MinRefineNeighbours: 10})
	require.NoError(t, err)

	result := endpoint.Result{
		Pair:  endpoint.EndpointPair{Start: endpoint.Point{X: 0, Y: 1.5, Z: -2}, End: endpoint.Point{X: 10, Y: 1.5, Z: -2}},
		Start: endpoint.Density{Index: 0, Seed: 0, Refined: true, Neighbours: 11, Score: 35},
		End:   endpoint.Density{Index: 10, Seed: 10, Refined: false, Neighbours: 4, Score: 35},
	}
	eps := []TrackEndpoint{
		NewTrackEndpoint("run-b", 7, 11, result),
		NewTrackEndpoint("run-b", 3, 11, result),
	}
	require.NoError(t, db.RecordEndpoints(eps))

	got, err := db.RunEndpoints("run-b")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].TrackID)
	assert.Equal(t, eps[0], got[1])
	assert.True(t, got[1].StartRefined)
	assert.False(t, got[1].EndRefined)
}

func TestRecordEndpoints_Atomic(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.RecordRun(Run{ID: "run-c"})
	require.NoError(t, err)

	eps := []TrackEndpoint{
		{RunID: "run-c", TrackID: 1},
		{RunID: "run-c", TrackID: 1}, // duplicate primary key
	}
	assert.Error(t, db.RecordEndpoints(eps))

	got, err := db.RunEndpoints("run-c")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordEndpoints_UnknownRun(t *testing.T) {
	db := setupTestDB(t)
	err := db.RecordEndpoints([]TrackEndpoint{{RunID: "ghost", TrackID: 1}})
	assert.Error(t, err, "foreign key should reject endpoints for an unknown run")
}

func TestRunEndpoints_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.RunEndpoints("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestDeleteRun_Cascades(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.RecordRun(Run{ID: "run-d"})
	require.NoError(t, err)
	require.NoError(t, db.RecordEndpoints([]TrackEndpoint{{RunID: "run-d", TrackID: 1}}))

	require.NoError(t, db.DeleteRun("run-d"))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM track_endpoints`).Scan(&n))
	assert.Zero(t, n)
	assert.ErrorIs(t, db.DeleteRun("run-d"), ErrRunNotFound)
}

func TestMigrateLogger(t *testing.T) {
	rec := &monitoring.Recorder{}
	original := monitoring.Logf
	monitoring.SetLogger(rec.Logf)
	defer func() { monitoring.Logf = original }()

	l := &migrateLogger{}
	l.Printf("applied %d", 2)
	assert.False(t, l.Verbose())
	assert.Equal(t, []string{"[migrate] applied 2"}, rec.Lines())
}

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary test database
func setupTestDB(t *testing.T) (*DBClient, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_surfaceeval.sqlite3")
	t.Setenv("SURFACEEVAL_DB_PATH", dbPath)

	client, err := NewDBClient()
	require.NoError(t, err, "Failed to create test DB client")

	t.Cleanup(func() {
		client.Close()
	})

	return client, dbPath
}

func sampleEvaluation() *Evaluation {
	return &Evaluation{
		Name:      "touch fader",
		Device:    "touch-surface",
		Signal:    "fader",
		BPM:       90,
		NumBeats:  8,
		Pattern:   "0.25,0.75,0.5,1",
		NumRuns:   2,
		Complete:  true,
		MeanError: 0.4,
		Runs: []RunScore{
			{RunIndex: 1, Path: "logs/run_1.log", Value: 0.5},
			{RunIndex: 0, Path: "logs/run_0.log", Value: 0.3},
		},
	}
}

func TestNewDBClient(t *testing.T) {
	client, dbPath := setupTestDB(t)

	require.NotNil(t, client)
	require.NotNil(t, client.DB)
	require.NotNil(t, client.db)

	_, err := os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")
}

func TestNewDBClientCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "eval.db")

	client, err := NewDBClientWithPath(path)
	require.NoError(t, err)
	defer client.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveAndGetEvaluation(t *testing.T) {
	client, _ := setupTestDB(t)

	series := []SeriesPoint{
		{RunIndex: 0, Seq: 0, TimestampMs: 0, Observed: 0.2, Expected: 0.25},
		{RunIndex: 0, Seq: 1, TimestampMs: 300, Observed: 0.3, Expected: 0.25},
		{RunIndex: 1, Seq: 0, TimestampMs: 0, Observed: 0.1, Expected: 0.25},
	}
	id, err := client.SaveEvaluation(sampleEvaluation(), series)
	require.NoError(t, err)
	assert.Len(t, id, 36, "expected a UUID")

	got, err := client.GetEvaluation(id)
	require.NoError(t, err)
	assert.Equal(t, "touch fader", got.Name)
	assert.Equal(t, 90.0, got.BPM)
	require.Len(t, got.Runs, 2)
	assert.Equal(t, 0, got.Runs[0].RunIndex, "runs must come back in run order")
	assert.Equal(t, 0.3, got.Runs[0].Value)
	assert.Equal(t, 1, got.Runs[1].RunIndex)

	points, err := client.GetSeries(id, 0)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 300.0, points[1].TimestampMs)
	assert.Equal(t, 0.25, points[1].Expected)
}

func TestSaveEvaluationKeepsGivenID(t *testing.T) {
	client, _ := setupTestDB(t)

	eval := sampleEvaluation()
	eval.ID = "00000000-0000-4000-8000-000000000001"
	id, err := client.SaveEvaluation(eval, nil)
	require.NoError(t, err)
	assert.Equal(t, eval.ID, id)
}

func TestGetEvaluationNotFound(t *testing.T) {
	client, _ := setupTestDB(t)

	_, err := client.GetEvaluation("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetSeries("missing", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEvaluations(t *testing.T) {
	client, _ := setupTestDB(t)

	for i := 0; i < 3; i++ {
		_, err := client.SaveEvaluation(sampleEvaluation(), nil)
		require.NoError(t, err)
	}

	evals, err := client.ListEvaluations()
	require.NoError(t, err)
	assert.Len(t, evals, 3)
}

func TestDeleteEvaluation(t *testing.T) {
	client, _ := setupTestDB(t)

	id, err := client.SaveEvaluation(sampleEvaluation(), []SeriesPoint{{RunIndex: 0, Seq: 0}})
	require.NoError(t, err)

	require.NoError(t, client.DeleteEvaluation(id))

	_, err = client.GetEvaluation(id)
	assert.ErrorIs(t, err, ErrNotFound)

	var runs, points int64
	client.DB.Model(&RunScore{}).Where("evaluation_id = ?", id).Count(&runs)
	client.DB.Model(&SeriesPoint{}).Where("evaluation_id = ?", id).Count(&points)
	assert.Zero(t, runs)
	assert.Zero(t, points)

	assert.ErrorIs(t, client.DeleteEvaluation(id), ErrNotFound)
}

func TestNilClient(t *testing.T) {
	var c *DBClient
	assert.NoError(t, c.Close())
	_, err := c.SaveEvaluation(sampleEvaluation(), nil)
	assert.Error(t, err)
}

package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rishabh-bhattad/audioset-downloader-win/pkg/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew(t *testing.T) {
	db := testDB(t)
	require.NotNil(t, db)
}

func TestNewWithFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	require.FileExists(t, dbPath)
}

func TestDB_CreateRecord(t *testing.T) {
	db := testDB(t)

	record := &Record{
		RunID:        "run-1",
		YTID:         "abc123",
		StartSeconds: 10.0,
		EndSeconds:   20.0,
		PrimaryLabel: "/m/09x0r",
		Outcome:      "succeeded",
		Attempts:     2,
	}

	require.NoError(t, db.CreateRecord(record))
	require.Greater(t, record.ID, int64(0))
	require.False(t, record.CreatedAt.IsZero())
}

func TestDB_GetRunRecords(t *testing.T) {
	db := testDB(t)

	for i, outcome := range []string{"succeeded", "failed", "skipped"} {
		require.NoError(t, db.CreateRecord(&Record{
			RunID:        "run-1",
			YTID:         "vid" + string(rune('a'+i)),
			StartSeconds: 0,
			EndSeconds:   10,
			PrimaryLabel: "/m/09x0r",
			Outcome:      outcome,
			Attempts:     1,
		}))
	}
	// Record in another run must not leak in
	require.NoError(t, db.CreateRecord(&Record{
		RunID: "run-2", YTID: "other", Outcome: "succeeded", PrimaryLabel: "/m/09x0r",
	}))

	records, err := db.GetRunRecords("run-1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "vida", records[0].YTID)
	require.Equal(t, "succeeded", records[0].Outcome)
}

func TestDB_GetRunFailures(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.CreateRecord(&Record{RunID: "run-1", YTID: "ok", Outcome: "succeeded", PrimaryLabel: "x"}))
	require.NoError(t, db.CreateRecord(&Record{RunID: "run-1", YTID: "bad", Outcome: "failed", Attempts: 5, ErrorMessage: "retries exhausted", PrimaryLabel: "x"}))

	failures, err := db.GetRunFailures("run-1")
	require.NoError(t, err)
	require.Len(t, failures, 1)
	require.Equal(t, "bad", failures[0].YTID)
	require.Equal(t, 5, failures[0].Attempts)
}

func TestDB_RunSummary(t *testing.T) {
	db := testDB(t)

	outcomes := []string{"succeeded", "succeeded", "failed", "skipped", "skipped", "skipped"}
	for i, outcome := range outcomes {
		require.NoError(t, db.CreateRecord(&Record{
			RunID: "run-1", YTID: "vid" + string(rune('a'+i)), Outcome: outcome, PrimaryLabel: "x",
		}))
	}

	summary, err := db.RunSummary("run-1")
	require.NoError(t, err)
	require.Equal(t, map[string]int{
		"succeeded": 2,
		"failed":    1,
		"skipped":   3,
	}, summary)
}

func TestDB_DeleteOldRecords(t *testing.T) {
	db := testDB(t)

	old := &Record{RunID: "run-old", YTID: "old", Outcome: "succeeded", PrimaryLabel: "x",
		CreatedAt: time.Now().Add(-90 * 24 * time.Hour)}
	recent := &Record{RunID: "run-new", YTID: "new", Outcome: "succeeded", PrimaryLabel: "x"}
	require.NoError(t, db.CreateRecord(old))
	require.NoError(t, db.CreateRecord(recent))

	require.NoError(t, db.DeleteOldRecords(60*24*time.Hour))

	oldRecords, err := db.GetRunRecords("run-old")
	require.NoError(t, err)
	require.Empty(t, oldRecords)

	newRecords, err := db.GetRunRecords("run-new")
	require.NoError(t, err)
	require.Len(t, newRecords, 1)
}

func TestRecorder_Record(t *testing.T) {
	db := testDB(t)
	recorder := NewRecorder(db, "run-7")

	task := models.DownloadTask{
		YTID:         "abc123",
		StartSeconds: 10.0,
		EndSeconds:   20.0,
		Labels:       []string{"/m/09x0r", "/m/0284vy3"},
	}

	require.NoError(t, recorder.Record(task, models.Result{
		Outcome:  models.OutcomeFailed,
		Attempts: 5,
		Err:      errors.New("retries exhausted"),
	}))

	records, err := db.GetRunRecords("run-7")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "abc123", records[0].YTID)
	require.Equal(t, "/m/09x0r", records[0].PrimaryLabel)
	require.Equal(t, "failed", records[0].Outcome)
	require.Equal(t, 5, records[0].Attempts)
	require.Equal(t, "retries exhausted", records[0].ErrorMessage)
}

package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_SaveAndGetRun(t *testing.T) {
	store := NewMemoryStorage()
	defer store.Close()

	run := sampleRun()
	require.NoError(t, store.SaveRun(run))
	assert.NotZero(t, run.ID)

	loaded, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "expected.out", loaded.ExpectedFile)
	assert.Equal(t, RunStatusMismatch, loaded.Status)
	assert.False(t, loaded.CreatedAt.IsZero())
}

func TestMemoryStorage_GetRun_NotFound(t *testing.T) {
	store := NewMemoryStorage()
	defer store.Close()

	_, err := store.GetRun(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	store := NewMemoryStorage()
	defer store.Close()

	run := sampleRun()
	require.NoError(t, store.SaveRun(run))

	first, err := store.GetRun(run.ID)
	require.NoError(t, err)
	first.ExpectedFile = "mutated.out"

	second, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "expected.out", second.ExpectedFile)
}

func TestMemoryStorage_Mismatches(t *testing.T) {
	store := NewMemoryStorage()
	defer store.Close()

	run := sampleRun()
	require.NoError(t, store.SaveRun(run))
	require.NoError(t, store.SaveMismatches(run.ID, []*MismatchRecord{
		{Column: "col1", Row: 1, Expected: "1", Actual: "9"},
		{Column: "col2", Row: 2, Expected: "4", Actual: "5"},
	}))

	loaded, err := store.GetMismatches(run.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "col1", loaded[0].Column)
	assert.Equal(t, run.ID, loaded[1].RunID)
}

func TestMemoryStorage_ListRunsFilters(t *testing.T) {
	store := NewMemoryStorage()
	defer store.Close()

	okRun := sampleRun()
	okRun.Status = RunStatusOK
	okRun.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, store.SaveRun(okRun))

	mismatchRun := sampleRun()
	require.NoError(t, store.SaveRun(mismatchRun))

	runs, err := store.ListRuns(RunFilters{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, mismatchRun.ID, runs[0].ID)

	byStatus, err := store.ListRuns(RunFilters{Status: RunStatusOK})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, okRun.ID, byStatus[0].ID)

	recent, err := store.ListRuns(RunFilters{Since: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	limited, err := store.ListRuns(RunFilters{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestMemoryStorage_Cleanup(t *testing.T) {
	store := NewMemoryStorage()
	defer store.Close()

	old := sampleRun()
	old.CreatedAt = time.Now().AddDate(0, 0, -100)
	require.NoError(t, store.SaveRun(old))
	require.NoError(t, store.SaveMismatches(old.ID, []*MismatchRecord{
		{Column: "col1", Row: 1, Expected: "1", Actual: "9"},
	}))

	fresh := sampleRun()
	require.NoError(t, store.SaveRun(fresh))

	deleted, err := store.CleanupOldRuns(time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = store.GetRun(old.ID)
	require.Error(t, err)

	orphans, err := store.GetMismatches(old.ID)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestMemoryStorage_Stats(t *testing.T) {
	store := NewMemoryStorage()
	defer store.Close()

	run := sampleRun()
	require.NoError(t, store.SaveRun(run))
	require.NoError(t, store.SaveMismatches(run.ID, []*MismatchRecord{
		{Column: "col1", Row: 1, Expected: "1", Actual: "9"},
	}))

	stats, err := store.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Runs)
	assert.Equal(t, int64(1), stats.Mismatches)

	assert.NoError(t, store.VacuumDatabase())
}

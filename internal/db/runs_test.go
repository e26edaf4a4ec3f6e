package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRunsDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func TestOpen_CreatesDirectoryAndSchema(t *testing.T) {
	sqlDB := openRunsDB(t)
	assert.Equal(t, len(All), schemaVersionOf(t, sqlDB))
}

func TestRecordRun_GeneratesID(t *testing.T) {
	sqlDB := openRunsDB(t)

	id, err := RecordRun(sqlDB, Run{FilePath: "a.txt", NodeCount: 3})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	runs, err := ListRuns(sqlDB, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, "a.txt", runs[0].FilePath)
	assert.Equal(t, 3, runs[0].NodeCount)
	assert.False(t, runs[0].Failed())
	assert.WithinDuration(t, time.Now(), runs[0].CreatedAt, time.Minute)
}

func TestRecordRun_KeepsGivenID(t *testing.T) {
	sqlDB := openRunsDB(t)

	id, err := RecordRun(sqlDB, Run{ID: "fixed", FilePath: "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)

	_, err = RecordRun(sqlDB, Run{ID: "fixed", FilePath: "b.txt"})
	assert.Error(t, err)
}

func TestListRuns_NewestFirstAndFilters(t *testing.T) {
	sqlDB := openRunsDB(t)
	for _, r := range []Run{
		{FilePath: "a.txt", Recoveries: 1},
		{FilePath: "b.txt", Strict: true, Error: "strict mode violation"},
		{FilePath: "a.txt", Downgrades: 2},
	} {
		_, err := RecordRun(sqlDB, r)
		require.NoError(t, err)
	}

	runs, err := ListRuns(sqlDB, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, 2, runs[0].Downgrades)
	assert.Equal(t, 1, runs[2].Recoveries)

	runs, err = ListRuns(sqlDB, RunFilter{FilePath: "a.txt"})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = ListRuns(sqlDB, RunFilter{FailedOnly: true})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Strict)
	assert.True(t, runs[0].Failed())

	runs, err = ListRuns(sqlDB, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSummarize(t *testing.T) {
	sqlDB := openRunsDB(t)

	s, err := Summarize(sqlDB)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, s)

	for _, r := range []Run{
		{FilePath: "a.txt", Recoveries: 1, ForcedCloses: 1},
		{FilePath: "b.txt", Error: "boom"},
		{FilePath: "a.txt", Recoveries: 2, Downgrades: 3},
	} {
		_, err := RecordRun(sqlDB, r)
		require.NoError(t, err)
	}

	s, err = Summarize(sqlDB)
	require.NoError(t, err)
	assert.Equal(t, Summary{Runs: 3, Files: 2, Failed: 1, Recoveries: 3, Downgrades: 3, ForcedCloses: 1}, s)
}

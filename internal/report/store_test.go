package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "attack_runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := openStore(t)

	runID, err := s.BeginRun("UCI_HAR", "rf", "attack_rand_query")
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	tab := NewTable("attack_rand_query", "model_type", "query_size", "consistency", "runtime")
	require.NoError(t, tab.Append("rf", "10", Ftoa(16.666667), Ftoa(0.25)))
	require.NoError(t, tab.Append("rf", "20", Ftoa(33.333333), Ftoa(0.5)))

	require.NoError(t, s.RecordTable(runID, tab))
	require.NoError(t, s.FinishRun(runID, tab.Len()))

	rec, results, err := s.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, "UCI_HAR", rec.Dataset)
	assert.Equal(t, "rf", rec.ModelType)
	assert.Equal(t, "attack_rand_query", rec.Sweep)
	assert.Equal(t, 2, rec.RowCount)
	assert.False(t, rec.FinishedAt.IsZero())

	require.Len(t, results, 2)
	assert.InDelta(t, 16.666667, results[0].Consistency, 1e-6)
	assert.InDelta(t, 0.5, results[1].Runtime, 1e-6)
	// Metric columns are lifted out of the params JSON.
	assert.NotContains(t, results[0].ParamsJSON, "consistency")
	assert.Contains(t, results[0].ParamsJSON, `"query_size":"10"`)
}

func TestFinishRunUnknownID(t *testing.T) {
	s := openStore(t)
	require.Error(t, s.FinishRun("missing", 0))
}

func TestListRunsOrder(t *testing.T) {
	s := openStore(t)

	first, err := s.BeginRun("UCI_HAR", "rf", "attack_rand_query")
	require.NoError(t, err)
	second, err := s.BeginRun("UCI_HAR", "lr", "attack_rand_feat")
	require.NoError(t, err)

	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	ids := []string{runs[0].RunID, runs[1].RunID}
	assert.Contains(t, ids, first)
	assert.Contains(t, ids, second)
}

func TestRecordTableLiftsMeanColumn(t *testing.T) {
	s := openStore(t)

	runID, err := s.BeginRun("UCI_HAR", "dnn", "attack_rand_feat")
	require.NoError(t, err)

	tab := NewTable("attack_rand_feat", "model_type", "num_features", "consistency_mean", "consistency_std", "runtime")
	require.NoError(t, tab.Append("dnn", "5", Ftoa(20), Ftoa(1.5), Ftoa(3)))
	require.NoError(t, s.RecordTable(runID, tab))

	_, results, err := s.GetRun(runID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 20, results[0].Consistency, 1e-6)
	assert.Contains(t, results[0].ParamsJSON, "consistency_std")
}

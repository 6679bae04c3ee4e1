package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendArity(t *testing.T) {
	tab := NewTable("attack_rand_query", "model_type", "query_size", "consistency", "runtime")
	require.Error(t, tab.Append("rf", "10"))
	require.NoError(t, tab.Append("rf", "10", Ftoa(16.666667), Ftoa(0.5)))
	assert.Equal(t, 1, tab.Len())
}

func TestRowMap(t *testing.T) {
	tab := NewTable("r", "a", "b")
	require.NoError(t, tab.Append("1", "2"))
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, tab.Row(0))
}

func TestWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	tab := NewTable("r", "a", "b")
	require.NoError(t, tab.Append("1", "2"))
	require.NoError(t, tab.WriteFile(path))
	require.NoError(t, tab.Append("3", "4"))
	require.NoError(t, tab.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n3,4\n", string(data))
}

func TestAppendFileCreatesThenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	first := NewTable("r", "a", "b")
	require.NoError(t, first.Append("1", "2"))
	require.NoError(t, first.AppendFile(path))

	second := NewTable("r", "a", "b")
	require.NoError(t, second.Append("3", "4"))
	require.NoError(t, second.AppendFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// One header, prior rows kept, new rows after them.
	assert.Equal(t, "a,b\n1,2\n3,4\n", string(data))
}

func TestAppendFileRejectsSchemaDrift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	first := NewTable("r", "a", "b")
	require.NoError(t, first.Append("1", "2"))
	require.NoError(t, first.AppendFile(path))

	drifted := NewTable("r", "a", "c")
	require.NoError(t, drifted.Append("5", "6"))
	require.Error(t, drifted.AppendFile(path))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "42", Itoa(42))
	assert.Equal(t, "16.666667", Ftoa(100.0/6.0))
}

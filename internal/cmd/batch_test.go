package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBatchFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestReadBatchFileJSON(t *testing.T) {
	path := writeBatchFixture(t, "batch.json", `[
		{"operation": "query.balance", "payload": "{}"},
		{"operation": "order.submit", "payload": "{\"id\":42}", "attempts": 5}
	]`)

	entries, err := readBatchFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "query.balance", entries[0].Operation)
	assert.Equal(t, "{}", entries[0].Payload)
	assert.Zero(t, entries[0].Attempts)

	assert.Equal(t, "order.submit", entries[1].Operation)
	assert.Equal(t, 5, entries[1].Attempts)
}

func TestReadBatchFileYAML(t *testing.T) {
	path := writeBatchFixture(t, "batch.yaml", `
- operation: query.balance
  payload: "{}"
- operation: order.submit
  payload: '{"id":42}'
  retry_interval_ms: 250
`)

	entries, err := readBatchFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "query.balance", entries[0].Operation)
	assert.Equal(t, "order.submit", entries[1].Operation)
	assert.Equal(t, 250, entries[1].RetryIntervalMs)
}

func TestReadBatchFileInvalidJSON(t *testing.T) {
	path := writeBatchFixture(t, "batch.json", `{"operation": "not-an-array"}`)

	_, err := readBatchFile(path)
	assert.Error(t, err)
}

func TestReadBatchFileMissing(t *testing.T) {
	_, err := readBatchFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestOpenSinkStdout(t *testing.T) {
	sink, err := openSink("-")
	require.NoError(t, err)
	assert.Equal(t, "-", sink.path)
	assert.Equal(t, os.Stdout, sink.writer)
	assert.NoError(t, sink.close())
}

func TestOpenSinkCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	sink, err := openSink(path)
	require.NoError(t, err)
	assert.Equal(t, path, sink.path)
	require.NoError(t, sink.close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

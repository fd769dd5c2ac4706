package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTargetStorage_TargetPath(t *testing.T) {
	ts := NewTargetStorage("/etc/prometheus/targets")
	require.Equal(t, "/etc/prometheus/targets/blackbox_ssh_targets.json", ts.TargetPath("blackbox_ssh", "json"))
	require.Equal(t, "/etc/prometheus/targets/blackbox_ssh_targets.yml", ts.TargetPath("blackbox_ssh", "yml"))
}

func TestTargetStorage_StageThenCommit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "targets")
	ts := NewTargetStorage(dir)

	a := ts.TargetPath("a", "json")
	b := ts.TargetPath("b", "json")
	require.NoError(t, ts.Stage(a, []byte("[]\n")))
	require.NoError(t, ts.Stage(b, []byte("[1]\n")))
	require.Equal(t, []string{a, b}, ts.paths)

	// Nothing is visible before commit.
	require.NoFileExists(t, a)
	require.NoFileExists(t, b)

	require.NoError(t, ts.Commit())
	require.Empty(t, ts.paths)

	got, err := os.ReadFile(a)
	require.NoError(t, err)
	require.Equal(t, "[]\n", string(got))
	got, err = os.ReadFile(b)
	require.NoError(t, err)
	require.Equal(t, "[1]\n", string(got))
}

func TestTargetStorage_CommitOverwrites(t *testing.T) {
	dir := t.TempDir()
	ts := NewTargetStorage(dir)
	path := ts.TargetPath("node_exporter", "json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	require.NoError(t, ts.Stage(path, []byte("new")))
	require.NoError(t, ts.Commit())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(got))
}

func TestTargetStorage_Discard(t *testing.T) {
	dir := t.TempDir()
	ts := NewTargetStorage(dir)
	require.NoError(t, ts.Stage(ts.TargetPath("a", "json"), []byte("[]")))
	ts.Discard()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "staged temp files must be removed")
}

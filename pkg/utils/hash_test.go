package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashFile_MatchesHashBytes(t *testing.T) {
	content := []byte(`[{"jobs":["node_exporter"],"labels":{},"targets":[]}]`)
	path := filepath.Join(t.TempDir(), "node_exporter_targets.json")
	require.NoError(t, os.WriteFile(path, content, 0644))

	digest, err := HashFile(path)
	require.NoError(t, err)
	require.Equal(t, HashBytes(content), digest)
	require.Len(t, digest, 64)
}

func TestHashFile_Missing(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestHashBytes_Empty(t *testing.T) {
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashBytes(nil))
}

func TestHashReader(t *testing.T) {
	digest, err := HashReader(strings.NewReader("targets"))
	require.NoError(t, err)
	require.Equal(t, HashBytes([]byte("targets")), digest)
}

package storage

import (
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
)

// TargetStorage stages target files as temporary files and moves them into
// place together, so a failure while staging leaves no destination file
// touched.
type TargetStorage struct {
	BaseDir string

	pending []*renameio.PendingFile
	paths   []string
}

// NewTargetStorage creates a new target file storage rooted at baseDir.
func NewTargetStorage(baseDir string) *TargetStorage {
	return &TargetStorage{BaseDir: baseDir}
}

// TargetPath returns the path of the target file for job, e.g.
// <BaseDir>/node_exporter_targets.json.
func (ts *TargetStorage) TargetPath(job, ext string) string {
	return filepath.Join(ts.BaseDir, job+"_targets."+ext)
}

// Stage writes data to a temporary file next to path. The file at path is
// only replaced by Commit.
func (ts *TargetStorage) Stage(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0775); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}

	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644))
	if err != nil {
		return errors.Wrapf(err, "staging %s", path)
	}
	if _, err := pf.Write(data); err != nil {
		_ = pf.Cleanup()
		return errors.Wrapf(err, "staging %s", path)
	}

	ts.pending = append(ts.pending, pf)
	ts.paths = append(ts.paths, path)
	return nil
}

// Commit atomically replaces every staged destination. On failure the
// remaining staged files are discarded.
func (ts *TargetStorage) Commit() error {
	defer ts.reset()

	for i, pf := range ts.pending {
		if err := pf.CloseAtomicallyReplace(); err != nil {
			for _, rest := range ts.pending[i+1:] {
				_ = rest.Cleanup()
			}
			_ = pf.Cleanup()
			return errors.Wrapf(err, "replacing %s", ts.paths[i])
		}
	}
	return nil
}

// Discard removes every staged temporary file.
func (ts *TargetStorage) Discard() {
	for _, pf := range ts.pending {
		_ = pf.Cleanup()
	}
	ts.reset()
}

func (ts *TargetStorage) reset() {
	ts.pending = nil
	ts.paths = nil
}

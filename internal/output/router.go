package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"pim/internal/core"
	"pim/internal/storage"
	"pim/pkg/utils"
)

// Router writes job buckets to a Destination. Standard output receives one
// compact document, a file receives the same document pretty-printed, and a
// directory receives one pretty-printed <job>_targets file per job.
type Router struct {
	Logger log.Logger
	Stdout io.Writer
	Format Format
}

// rendered is an encoded file waiting to be written.
type rendered struct {
	path string
	data []byte
}

// Write renders every bucket before touching any destination file, so an
// encoding failure never leaves partial output behind.
func (r *Router) Write(ctx context.Context, dest Destination, buckets *core.Buckets) error {
	switch dest.Kind {
	case KindStdout:
		data, err := r.Format.Render(buckets, false)
		if err != nil {
			return &WriteError{Path: StdoutName, Err: err}
		}
		if _, err := r.Stdout.Write(data); err != nil {
			return &WriteError{Path: StdoutName, Err: err}
		}
		level.Debug(r.logger()).Log("msg", "wrote targets", "destination", StdoutName, "jobs", buckets.Len(), "bytes", len(data))
		return nil

	case KindFile:
		data, err := r.Format.Render(buckets, true)
		if err != nil {
			return &WriteError{Path: dest.Path, Err: err}
		}
		ts := storage.NewTargetStorage(filepath.Dir(dest.Path))
		return r.commit(ctx, ts, []rendered{{path: dest.Path, data: data}})

	case KindDirectory:
		ts := storage.NewTargetStorage(dest.Path)
		files := make([]rendered, 0, buckets.Len())
		err := buckets.Each(func(b *core.Bucket) error {
			path := ts.TargetPath(b.Job, r.Format.Extension())
			data, err := r.Format.Render(b.Records, true)
			if err != nil {
				return &WriteError{Path: path, Err: err}
			}
			files = append(files, rendered{path: path, data: data})
			return nil
		})
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dest.Path, 0775); err != nil {
			return &WriteError{Path: dest.Path, Err: err}
		}
		return r.commit(ctx, ts, files)

	default:
		return &WriteError{Path: dest.Path, Err: errUnknownKind(dest.Kind)}
	}
}

// commit stages every file and then moves them into place. Nothing is
// replaced unless every file could be staged. Committed files are read back
// and checked against the rendered bytes.
func (r *Router) commit(ctx context.Context, ts *storage.TargetStorage, files []rendered) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			ts.Discard()
			return err
		}
		if err := ts.Stage(f.path, f.data); err != nil {
			ts.Discard()
			return &WriteError{Path: f.path, Err: err}
		}
	}
	if err := ts.Commit(); err != nil {
		return &WriteError{Path: ts.BaseDir, Err: err}
	}

	for _, f := range files {
		digest, err := utils.HashFile(f.path)
		if err != nil {
			return &WriteError{Path: f.path, Err: err}
		}
		if want := utils.HashBytes(f.data); digest != want {
			return &WriteError{Path: f.path, Err: fmt.Errorf("sha256 mismatch after write: got %s, want %s", digest, want)}
		}
		level.Info(r.logger()).Log("msg", "wrote target file", "path", f.path, "sha256", digest)
	}
	return nil
}

func (r *Router) logger() log.Logger {
	if r.Logger == nil {
		return log.NewNopLogger()
	}
	return r.Logger
}

type errUnknownKind Kind

func (e errUnknownKind) Error() string {
	return "unknown destination kind " + Kind(e).String()
}

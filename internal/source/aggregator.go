package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"unicode"

	"github.com/drone/envsubst/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"pim/internal/core"
)

// Document is the raw content of one source document.
type Document struct {
	Name string
	Data []byte
}

// Aggregator reads every document named by a Selector and parses them into a
// single ordered list of groups.
type Aggregator struct {
	Logger log.Logger
	Stdin  io.Reader

	// ExpandEnv substitutes ${VAR} references with environment variables
	// before parsing.
	ExpandEnv bool
}

// Aggregate returns the groups of every selected document, in document order
// then in-document order. A single malformed document fails the whole call.
func (a *Aggregator) Aggregate(ctx context.Context, sel Selector) ([]core.Group, error) {
	docs, err := a.Documents(ctx, sel)
	if err != nil {
		return nil, err
	}

	var groups []core.Group
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data := doc.Data
		if a.ExpandEnv {
			s, err := envsubst.Eval(string(data), getenv)
			if err != nil {
				return nil, &core.ParseError{
					Document: doc.Name,
					Err:      errors.Wrap(err, "expanding environment variables"),
				}
			}
			data = []byte(s)
		}

		parsed, err := core.ParseGroups(doc.Name, data)
		if err != nil {
			return nil, err
		}
		level.Debug(a.logger()).Log("msg", "parsed source document", "document", doc.Name, "groups", len(parsed))
		groups = append(groups, parsed...)
	}
	return groups, nil
}

// Documents reads the raw documents named by sel. Files in a directory are
// returned sorted by name so the result doesn't depend on the order the file
// system lists them in.
func (a *Aggregator) Documents(ctx context.Context, sel Selector) ([]Document, error) {
	if sel.IsStdin() {
		if a.Stdin == nil {
			return nil, &SourceNotFoundError{Path: StdinName, Err: errors.New("no standard input available")}
		}
		data, err := io.ReadAll(a.Stdin)
		if err != nil {
			return nil, &SourceNotFoundError{Path: StdinName, Err: err}
		}
		return []Document{{Name: StdinName, Data: data}}, nil
	}

	path := sel.String()
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &SourceNotFoundError{Path: path, Err: err}
	}
	if !fi.IsDir() {
		doc, err := readDocument(path)
		if err != nil {
			return nil, err
		}
		return []Document{doc}, nil
	}

	names, err := a.listDir(path)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, &SourceNotFoundError{Path: path, Err: errors.New("no source documents found")}
	}

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := readDocument(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// listDir returns the sorted names of the regular files directly inside dir.
func (a *Aggregator) listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &SourceNotFoundError{Path: dir, Err: err}
	}

	var names []string
	for _, e := range entries {
		fi, err := os.Stat(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, &SourceNotFoundError{Path: filepath.Join(dir, e.Name()), Err: err}
		}
		if !fi.Mode().IsRegular() {
			level.Debug(a.logger()).Log("msg", "skipping non-regular file", "path", filepath.Join(dir, e.Name()))
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (a *Aggregator) logger() log.Logger {
	if a.Logger == nil {
		return log.NewNopLogger()
	}
	return a.Logger
}

func readDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, &SourceNotFoundError{Path: path, Err: err}
	}
	return Document{Name: path, Data: data}, nil
}

// getenv is a wrapper around os.Getenv that ignores patterns that are numeric
// regex capture groups (ie "${1}").
func getenv(name string) string {
	for _, r := range name {
		if !unicode.IsDigit(r) {
			return os.Getenv(name)
		}
	}
	return fmt.Sprintf("${%s}", name)
}

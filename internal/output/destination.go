package output

import (
	"os"
	"path/filepath"
	"strings"
)

// StdoutName names standard output in logs and errors.
const StdoutName = "<stdout>"

// Kind enumerates the destinations a Router can write to.
type Kind int

const (
	// KindStdout writes every bucket as one compact document to standard
	// output.
	KindStdout Kind = iota
	// KindFile writes every bucket as one pretty-printed document to a file.
	KindFile
	// KindDirectory writes one pretty-printed file per job into a directory.
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindStdout:
		return "stdout"
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Destination is where converted targets are written.
type Destination struct {
	Kind Kind
	Path string
}

// Stdout returns the standard output destination.
func Stdout() Destination { return Destination{Kind: KindStdout} }

// File returns a single file destination.
func File(path string) Destination { return Destination{Kind: KindFile, Path: path} }

// Directory returns a one-file-per-job destination.
func Directory(path string) Destination { return Destination{Kind: KindDirectory, Path: path} }

// ParseDestination classifies a command line target argument. An empty
// argument or "-" is standard output. An existing directory, or a path
// ending in a separator, is a directory. Anything else is a file.
func ParseDestination(arg string) (Destination, error) {
	if arg == "" || arg == "-" {
		return Stdout(), nil
	}
	if strings.HasSuffix(arg, "/") || strings.HasSuffix(arg, string(filepath.Separator)) {
		return Directory(filepath.Clean(arg)), nil
	}

	fi, err := os.Stat(arg)
	switch {
	case err == nil && fi.IsDir():
		return Directory(arg), nil
	case err == nil || os.IsNotExist(err):
		return File(arg), nil
	default:
		return Destination{}, &WriteError{Path: arg, Err: err}
	}
}

func (d Destination) String() string {
	if d.Kind == KindStdout {
		return StdoutName
	}
	return d.Path
}

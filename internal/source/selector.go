package source

const (
	// StdinArg is the command line argument selecting standard input.
	StdinArg = "-"
	// StdinName names the standard input document in logs and errors.
	StdinName = "<stdin>"
)

// Selector chooses where source documents are read from: standard input or a
// file system path (file or directory).
type Selector struct {
	path  string
	stdin bool
}

// Stdin selects standard input.
func Stdin() Selector { return Selector{stdin: true} }

// Path selects a file or directory.
func Path(p string) Selector { return Selector{path: p} }

// ParseSelector maps a command line argument to a Selector. "-" selects
// standard input.
func ParseSelector(arg string) Selector {
	if arg == StdinArg {
		return Stdin()
	}
	return Path(arg)
}

// IsStdin reports whether s selects standard input.
func (s Selector) IsStdin() bool { return s.stdin }

func (s Selector) String() string {
	if s.stdin {
		return StdinName
	}
	return s.path
}

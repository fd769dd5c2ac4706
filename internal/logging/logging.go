// Package logging builds the go-kit loggers used across pim.
package logging

import (
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Supported log levels.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Supported log formats.
const (
	FormatLogfmt = "logfmt"
	FormatJSON   = "json"
)

// New returns a logger writing to w that drops lines below lvl.
func New(w io.Writer, lvl, format string) (log.Logger, error) {
	var l log.Logger
	switch format {
	case FormatLogfmt, "":
		l = log.NewLogfmtLogger(log.NewSyncWriter(w))
	case FormatJSON:
		l = log.NewJSONLogger(log.NewSyncWriter(w))
	default:
		return nil, fmt.Errorf("unrecognized log format %q", format)
	}

	opt, err := levelOption(lvl)
	if err != nil {
		return nil, err
	}
	l = level.NewFilter(l, opt)
	return log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller), nil
}

func levelOption(lvl string) (level.Option, error) {
	switch lvl {
	case LevelDebug:
		return level.AllowDebug(), nil
	case LevelInfo, "":
		return level.AllowInfo(), nil
	case LevelWarn:
		return level.AllowWarn(), nil
	case LevelError:
		return level.AllowError(), nil
	default:
		return nil, fmt.Errorf("unrecognized log level %q", lvl)
	}
}

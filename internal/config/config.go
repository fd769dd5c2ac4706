// Package config holds the command line configuration shared by pim's
// commands.
package config

import (
	"fmt"

	"github.com/spf13/pflag"

	"pim/internal/logging"
	"pim/internal/output"
)

// DefaultListenAddr is the default address of the HTTP conversion endpoint.
const DefaultListenAddr = ":8080"

// Config is the top-level configuration for pim.
type Config struct {
	LogLevel  string
	LogFormat string

	// ExpandEnv expands ${VAR} references in source documents.
	ExpandEnv    bool
	OutputFormat string

	Server ServerConfig
}

// ServerConfig configures `pim serve`.
type ServerConfig struct {
	ListenAddr string
}

// DefaultConfig holds default settings for pim.
var DefaultConfig = Config{
	LogLevel:     logging.LevelInfo,
	LogFormat:    logging.FormatLogfmt,
	OutputFormat: string(output.FormatJSON),
	Server: ServerConfig{
		ListenAddr: DefaultListenAddr,
	},
}

// RegisterFlags registers the flags shared by every command.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.LogLevel, "log.level", DefaultConfig.LogLevel, "Only log messages with the given severity or above. One of: [debug, info, warn, error]")
	fs.StringVar(&c.LogFormat, "log.format", DefaultConfig.LogFormat, "Output format of log messages. One of: [logfmt, json]")
	fs.BoolVar(&c.ExpandEnv, "config.expand-env", DefaultConfig.ExpandEnv, "Expand ${VAR} references in source documents with environment variables")
	fs.StringVar(&c.OutputFormat, "output.format", DefaultConfig.OutputFormat, "Encoding of generated target files. One of: [json, yaml]")
}

// RegisterServerFlags registers the flags used by `pim serve`.
func (c *Config) RegisterServerFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Server.ListenAddr, "server.http.listen-addr", DefaultConfig.Server.ListenAddr, "Address the HTTP conversion endpoint listens on")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("invalid log.level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case logging.FormatLogfmt, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log.format %q", c.LogFormat)
	}
	if _, err := output.ParseFormat(c.OutputFormat); err != nil {
		return err
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.http.listen-addr must not be empty")
	}
	return nil
}

// Format returns the parsed output format. It must only be called on a
// validated Config.
func (c *Config) Format() output.Format {
	f, _ := output.ParseFormat(c.OutputFormat)
	return f
}

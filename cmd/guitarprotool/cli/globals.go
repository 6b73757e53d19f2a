// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/jamiemacari/guitarprotool/lib/config"
)

// Globals holds the flags accepted by every command. Attach it as the
// root command's [Command.Persistent] and use [Globals.NewLogger] as the
// root's [Command.Logger].
type Globals struct {
	// ConfigPath is the --config flag. When empty, the file named by
	// GUITARPROTOOL_CONFIG is used, and without that [config.Default].
	ConfigPath string

	// Verbose forces debug logging.
	Verbose bool

	loaded *config.Config
}

// AddFlags binds --config and --verbose. Current values are the flag
// defaults, so flags given before the subcommand name survive the
// subcommand's own parse.
func (g *Globals) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&g.ConfigPath, "config", g.ConfigPath,
		"configuration file (default: $"+config.EnvironmentVariable+", then built-in defaults)")
	flagSet.BoolVarP(&g.Verbose, "verbose", "v", g.Verbose, "log at debug level")
}

// Config loads and validates the configuration once per process.
func (g *Globals) Config() (*config.Config, error) {
	if g.loaded != nil {
		return g.loaded, nil
	}

	var (
		cfg *config.Config
		err error
	)
	switch {
	case g.ConfigPath != "":
		cfg, err = config.LoadFile(g.ConfigPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg, err = config.Parse(nil)
	}
	if err != nil {
		return nil, Validation("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, Validation("invalid configuration: %w", err)
	}
	g.loaded = cfg
	return cfg, nil
}

// NewLogger builds the command logger from the logging section of the
// configuration, raised to debug by --verbose.
func (g *Globals) NewLogger() (*slog.Logger, error) {
	cfg, err := g.Config()
	if err != nil {
		return nil, err
	}
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return nil, Validation("%w", err)
	}
	if g.Verbose {
		level = slog.LevelDebug
	}
	format, err := ParseLogFormat(cfg.Logging.Format)
	if err != nil {
		return nil, Validation("logging.format: %w", err)
	}
	return NewCommandLogger(os.Stderr, level, format), nil
}

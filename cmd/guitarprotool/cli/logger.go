// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// LogFormat selects the handler of [NewCommandLogger].
type LogFormat string

const (
	// LogFormatAuto is text when the output is a terminal and JSON
	// otherwise.
	LogFormatAuto LogFormat = "auto"
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// ParseLogFormat accepts auto, text and json. The empty string is auto.
func ParseLogFormat(name string) (LogFormat, error) {
	switch LogFormat(name) {
	case "", LogFormatAuto:
		return LogFormatAuto, nil
	case LogFormatText, LogFormatJSON:
		return LogFormat(name), nil
	}
	return "", fmt.Errorf("unknown log format %q (want auto, text or json)", name)
}

// NewCommandLogger creates a structured logger for CLI command
// operations. With [LogFormatAuto], a terminal gets slog.TextHandler
// for human-readable output; piped or redirected output (CI, scripts)
// gets slog.JSONHandler for machine-parseable output.
//
// Callers scope the logger with command-specific context via With():
//
//	logger = logger.With("command", "unpack", "file", path)
func NewCommandLogger(w io.Writer, level slog.Level, format LogFormat) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if format == LogFormatAuto {
		format = LogFormatJSON
		if IsTerminal(w) {
			format = LogFormatText
		}
	}
	var handler slog.Handler
	if format == LogFormatText {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

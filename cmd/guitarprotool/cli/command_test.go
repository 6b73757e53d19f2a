// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func noop(context.Context, []string, *slog.Logger) error { return nil }

func discardLogger() (*slog.Logger, error) { return slog.New(slog.DiscardHandler), nil }

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name:   "guitarprotool",
		Logger: discardLogger,
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(context.Context, []string, *slog.Logger) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "detect",
				Run: func(context.Context, []string, *slog.Logger) error {
					called = "detect"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"detect"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "detect" {
		t.Errorf("dispatched to %q, want %q", called, "detect")
	}
}

func TestCommand_Execute_ParamsAndPositionalArgs(t *testing.T) {
	type unpackParams struct {
		Output   string `flag:"output,o" desc:"output directory"`
		NoRepair bool   `flag:"no-repair" desc:"skip XML repair"`
	}
	var params unpackParams
	var target string

	command := &Command{
		Name:   "unpack",
		Logger: discardLogger,
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"song.gpx", "-o", "out", "--no-repair"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if params.Output != "out" || !params.NoRepair {
		t.Errorf("params = %+v, want output out and no-repair", params)
	}
	if target != "song.gpx" {
		t.Errorf("target = %q, want %q", target, "song.gpx")
	}
}

type verboseFlag struct{ Verbose bool }

func (v *verboseFlag) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.BoolVarP(&v.Verbose, "verbose", "v", v.Verbose, "verbose")
}

func TestCommand_Execute_PersistentFlags(t *testing.T) {
	for _, args := range [][]string{
		{"--verbose", "sync"},
		{"sync", "--verbose"},
		{"-v", "sync", "--tempo", "120"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			globals := &verboseFlag{}
			var ran bool
			root := &Command{
				Name:       "guitarprotool",
				Persistent: globals,
				Logger:     discardLogger,
				Subcommands: []*Command{{
					Name: "sync",
					Params: func() any {
						return &struct {
							Tempo float64 `flag:"tempo"`
						}{}
					},
					Run: func(context.Context, []string, *slog.Logger) error {
						ran = true
						return nil
					},
				}},
			}
			if err := root.Execute(context.Background(), args); err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if !ran {
				t.Error("subcommand did not run")
			}
			if !globals.Verbose {
				t.Error("--verbose was lost")
			}
		})
	}
}

func TestCommand_Execute_LoggerFromAncestor(t *testing.T) {
	sentinel := errors.New("no logger today")
	root := &Command{
		Name:   "guitarprotool",
		Logger: func() (*slog.Logger, error) { return nil, sentinel },
		Subcommands: []*Command{{
			Name: "version",
			Run:  noop,
		}},
	}
	err := root.Execute(context.Background(), []string{"version"})
	if !errors.Is(err, sentinel) {
		t.Errorf("Execute() = %v, want the Logger error", err)
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "sync",
		Params: func() any {
			return &struct {
				BeatsPerBar int    `flag:"beats-per-bar" desc:"beats in each bar"`
				Report      string `flag:"report" desc:"report file"`
			}{}
		},
		Run: noop,
	}

	err := command.Execute(context.Background(), []string{"--beats-per-baar", "4"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --beats-per-bar") {
		t.Errorf("error = %q, want suggestion for '--beats-per-bar'", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "sync",
		Params: func() any {
			return &struct {
				Report string `flag:"report"`
			}{}
		},
		Run: noop,
	}

	err := command.Execute(context.Background(), []string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "guitarprotool",
		Subcommands: []*Command{
			{Name: "unpack"},
			{Name: "repair"},
			{Name: "version"},
		},
	}

	err := root.Execute(context.Background(), []string{"unpak"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"unpack\"") {
		t.Errorf("error = %q, want suggestion for 'unpack'", err.Error())
	}

	err = root.Execute(context.Background(), []string{"zzzzzzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want an error without a suggestion", err)
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:        "guitarprotool",
				Summary:     "Guitar Pro file tools",
				Subcommands: []*Command{{Name: "sync", Summary: "Plan sync points"}},
			}
			if err := root.Execute(context.Background(), []string{helpArg}); err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name:        "guitarprotool",
		Subcommands: []*Command{{Name: "sync", Summary: "Plan sync points"}},
	}

	err := root.Execute(context.Background(), []string{})
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %v, want 'subcommand required'", err)
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "guitarprotool",
		Description: "Guitar Pro container and audio sync tools.",
		Persistent:  &verboseFlag{},
		Subcommands: []*Command{
			{Name: "unpack", Summary: "Unpack a .gpx container"},
			{Name: "sync", Summary: "Plan sync points"},
		},
		Examples: []Example{{
			Description: "Plan sync points for a performance",
			Command:     "guitarprotool sync --tempo 120 --bars 64 --beats beats.txt",
		}},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Guitar Pro container and audio sync tools.",
		"Usage:",
		"guitarprotool <command> [flags]",
		"Commands:",
		"unpack",
		"Unpack a .gpx container",
		"Flags:",
		"--verbose",
		"Examples:",
		"guitarprotool sync --tempo 120",
		"Run 'guitarprotool <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "guitarprotool"}
	sync := &Command{Name: "sync", parent: root}

	if got := root.fullName(); got != "guitarprotool" {
		t.Errorf("root.fullName() = %q", got)
	}
	if got := sync.fullName(); got != "guitarprotool sync" {
		t.Errorf("sync.fullName() = %q", got)
	}
}

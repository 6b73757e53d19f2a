// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamiemacari/guitarprotool/cmd/guitarprotool/cli"
	"github.com/jamiemacari/guitarprotool/lib/config"
)

// TestCommandTree checks that every leaf command is documented and
// that its flags bind alongside the global flags. Printing help binds
// the full flag set, which panics on a duplicate flag name.
func TestCommandTree(t *testing.T) {
	root := Root()
	seen := make(map[string]bool)
	for _, command := range root.Subcommands {
		if seen[command.Name] {
			t.Errorf("duplicate command %q", command.Name)
		}
		seen[command.Name] = true
		if command.Summary == "" {
			t.Errorf("%s: missing Summary", command.Name)
		}
		if command.Run == nil {
			t.Errorf("%s: missing Run", command.Name)
		}
		if err := Root().Execute(context.Background(), []string{command.Name, "--help"}); err != nil {
			t.Errorf("%s --help: %v", command.Name, err)
		}
	}
	for _, name := range []string{"detect", "unpack", "pack", "repair", "sync", "inspect", "version"} {
		if !seen[name] {
			t.Errorf("command %q missing from the tree", name)
		}
	}
}

func TestUnknownCommandSuggestion(t *testing.T) {
	err := Root().Execute(context.Background(), []string{"snyc"})
	if err == nil || !strings.Contains(err.Error(), `did you mean "sync"`) {
		t.Errorf("Execute(snyc) = %v, want a suggestion of sync", err)
	}
}

func TestGlobalFlagsBeforeSubcommand(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	for _, args := range [][]string{
		{"--config", missing, "version"},
		{"version", "--config", missing},
	} {
		err := Root().Execute(context.Background(), args)
		if err == nil {
			t.Errorf("Execute(%q) succeeded with a missing config file", args)
			continue
		}
		if category := cli.CategoryOf(err); category != cli.CategoryValidation {
			t.Errorf("Execute(%q) category = %s, want validation (error: %v)", args, category, err)
		}
	}
}

func TestVersionRejectsArguments(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	err := Root().Execute(context.Background(), []string{"version", "extra"})
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Errorf("version extra = %v, want a validation error", err)
	}
}

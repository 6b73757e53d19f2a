// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/jamiemacari/guitarprotool/lib/config"
	"github.com/jamiemacari/guitarprotool/lib/testutil"
)

func TestGlobalsConfigDefaults(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache-home")

	globals := &Globals{}
	cfg, err := globals.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.Sync.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want default 44100", cfg.Sync.SampleRate)
	}
	if cfg.Cache.Directory != "/tmp/cache-home/guitarprotool" {
		t.Errorf("Cache.Directory = %q, want expanded default", cfg.Cache.Directory)
	}

	again, _ := globals.Config()
	if again != cfg {
		t.Error("Config loaded twice")
	}
}

func TestGlobalsConfigSources(t *testing.T) {
	flagFile := testutil.WriteFile(t, "flag.yaml", []byte("sync:\n  sample_rate: 48000\n"))
	envFile := filepath.Join(filepath.Dir(flagFile), "env.yaml")
	t.Setenv(config.EnvironmentVariable, envFile)

	// --config wins over the environment, which names a missing file.
	cfg, err := (&Globals{ConfigPath: flagFile}).Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.Sync.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", cfg.Sync.SampleRate)
	}

	_, err = (&Globals{}).Config()
	if CategoryOf(err) != CategoryValidation {
		t.Errorf("missing GUITARPROTOOL_CONFIG file: error = %v, want validation", err)
	}
}

func TestGlobalsRejectsInvalidConfig(t *testing.T) {
	path := testutil.WriteFile(t, "bad.yaml", []byte("sync:\n  sample_rate: -1\n"))
	_, err := (&Globals{ConfigPath: path}).Config()
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != CategoryValidation {
		t.Errorf("error = %v, want validation ToolError", err)
	}
}

func TestGlobalsNewLogger(t *testing.T) {
	path := testutil.WriteFile(t, "quiet.yaml", []byte("logging:\n  level: error\n  format: json\n"))

	logger, err := (&Globals{ConfigPath: path}).NewLogger()
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("debug enabled at level error")
	}

	logger, err = (&Globals{ConfigPath: path, Verbose: true}).NewLogger()
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if !logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("--verbose did not enable debug")
	}
}

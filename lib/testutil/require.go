// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// RequireNear fails the test unless |got - want| <= tolerance. NaN
// never matches.
//
//	testutil.RequireNear(t, report.StabilityScore, 1.0, 1e-9, "stability of a steady grid")
func RequireNear(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, got, want, tolerance float64, msgAndArgs ...any) {
	t.Helper()
	if math.IsNaN(got) || math.IsNaN(want) || math.Abs(got-want) > tolerance {
		t.Fatalf("got %v, want %v ± %v: %s", got, want, tolerance, formatMessage(msgAndArgs))
	}
}

// WriteFile writes content to name inside a fresh temporary directory
// owned by t and returns the full path.
func WriteFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// formatMessage formats optional message arguments into a string.
// Accepts either a single string or a format string followed by args.
func formatMessage(msgAndArgs []any) string {
	if len(msgAndArgs) == 0 {
		return "(no message)"
	}
	if len(msgAndArgs) == 1 {
		if s, ok := msgAndArgs[0].(string); ok {
			return s
		}
		return fmt.Sprintf("%v", msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprintf("%v", msgAndArgs)
}

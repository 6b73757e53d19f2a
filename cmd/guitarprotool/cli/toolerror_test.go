// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestToolError_AllCategories(t *testing.T) {
	tests := []struct {
		name     string
		err      *ToolError
		category ErrorCategory
	}{
		{"Validation", Validation("bad"), CategoryValidation},
		{"NotFound", NotFound("missing"), CategoryNotFound},
		{"Conflict", Conflict("exists"), CategoryConflict},
		{"Internal", Internal("bug"), CategoryInternal},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.err.Category != test.category {
				t.Errorf("Category = %q, want %q", test.err.Category, test.category)
			}
			if got := CategoryOf(fmt.Errorf("wrapped: %w", test.err)); got != test.category {
				t.Errorf("CategoryOf = %q, want %q", got, test.category)
			}
		})
	}
}

func TestToolError_PreservesChain(t *testing.T) {
	err := NotFound("reading beats: %w", fs.ErrNotExist)
	if err.Error() != "reading beats: file does not exist" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should see through ToolError")
	}
}

func TestCategoryOf_PlainError(t *testing.T) {
	if got := CategoryOf(errors.New("boom")); got != CategoryInternal {
		t.Errorf("CategoryOf = %q, want internal", got)
	}
}

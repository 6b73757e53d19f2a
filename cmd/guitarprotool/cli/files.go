// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// ReadFile reads a file named on the command line, classifying a
// missing file as [CategoryNotFound].
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, NotFound("%s: %w", path, err)
	}
	if err != nil {
		return nil, Internal("reading %s: %w", path, err)
	}
	return data, nil
}

// WriteFile writes data to path through a temporary file in the same
// directory, so a failed write never leaves a truncated file behind.
// An existing file is replaced only when force is set.
func WriteFile(path string, data []byte, force bool) (err error) {
	if !force {
		if _, statErr := os.Stat(path); statErr == nil {
			return Conflict("%s already exists (use --force to overwrite)", path)
		}
	}

	temporary, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return Internal("creating %s: %w", path, err)
	}
	success := false
	defer func() {
		if !success {
			temporary.Close()
			os.Remove(temporary.Name())
		}
	}()

	if _, err := temporary.Write(data); err != nil {
		return Internal("writing %s: %w", path, err)
	}
	if err := temporary.Close(); err != nil {
		return Internal("writing %s: %w", path, err)
	}
	if err := os.Chmod(temporary.Name(), 0o644); err != nil {
		return Internal("writing %s: %w", path, err)
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		return Internal("writing %s: %w", path, err)
	}
	success = true
	return nil
}

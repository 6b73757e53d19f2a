// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/jamiemacari/guitarprotool/cmd/guitarprotool/cli"
	"github.com/jamiemacari/guitarprotool/lib/bcfs"
	"github.com/jamiemacari/guitarprotool/lib/bcfz"
	"github.com/jamiemacari/guitarprotool/lib/config"
	"github.com/jamiemacari/guitarprotool/lib/gpx"
	"github.com/jamiemacari/guitarprotool/lib/unpackcache"
)

// repairParams are the repair flags shared by unpack and repair.
type repairParams struct {
	Disable []string `json:"disable" flag:"disable" desc:"repair rules to skip, in addition to container.disabled_repairs"`
}

// disabledRepairs merges the configured and flagged rule names.
func (p repairParams) disabledRepairs(cfg *config.Config) []string {
	disabled := slices.Clone(cfg.Container.DisabledRepairs)
	for _, name := range p.Disable {
		if !slices.Contains(disabled, name) {
			disabled = append(disabled, name)
		}
	}
	return disabled
}

// openOptions translates configuration and flags into [gpx.Options].
// useCache opens the unpack cache; a cache that cannot be opened is
// logged and skipped.
func openOptions(cfg *config.Config, repair repairParams, skipRepair, useCache bool, logger *slog.Logger) gpx.Options {
	options := gpx.Options{
		ShortfallTolerance: cfg.Container.ShortfallTolerance,
		SkipRepair:         skipRepair || !cfg.Container.Repair,
		DisabledRepairs:    repair.disabledRepairs(cfg),
		Logger:             logger,
	}
	if useCache {
		cache, err := unpackcache.Open(cfg.Cache.Directory, unpackcache.Options{Logger: logger})
		if err != nil {
			logger.Warn("unpack cache unavailable", "directory", cfg.Cache.Directory, "error", err)
		} else {
			options.Cache = cache
		}
	}
	return options
}

// openError classifies a [gpx.Open] failure. Unsupported or damaged
// input is the caller's to fix; anything else is internal.
func openError(path string, err error) error {
	var (
		unsupported *gpx.UnsupportedFormatError
		stream      *bcfz.MalformedStreamError
		image       *bcfs.MalformedContainerError
	)
	if errors.As(err, &unsupported) || errors.As(err, &stream) || errors.As(err, &image) {
		return cli.Validation("%s: %w", path, err)
	}
	return cli.Internal("%s: %w", path, err)
}

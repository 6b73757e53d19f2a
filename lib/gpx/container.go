// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gpx

import (
	"fmt"
	"log/slog"

	"github.com/jamiemacari/guitarprotool/lib/bcfs"
	"github.com/jamiemacari/guitarprotool/lib/bcfz"
	"github.com/jamiemacari/guitarprotool/lib/unpackcache"
	"github.com/jamiemacari/guitarprotool/lib/xmlrepair"
)

// ScoreName is the entry holding the score XML.
const ScoreName = "score.gpif"

// Options configures [Open].
type Options struct {
	// ShortfallTolerance is passed to [bcfz.Decompress].
	ShortfallTolerance float64

	// SkipRepair leaves XML entries exactly as unpacked.
	SkipRepair bool

	// DisabledRepairs names repair rules to skip. Unknown names are an
	// error.
	DisabledRepairs []string

	// Cache, when set, is consulted before decompressing a BCFZ file
	// and filled afterwards. Cache failures are logged, never
	// returned.
	Cache *unpackcache.Cache

	Logger *slog.Logger
}

// Repair records the repair pass over one entry.
type Repair struct {
	Entry  string          `json:"entry"`
	Hits   []xmlrepair.Hit `json:"hits,omitempty"`
	Latin1 bool            `json:"latin1,omitempty"`
}

// Container is an opened GPX file.
type Container struct {
	Format Format

	// Entries are the unpacked files in container order, with XML
	// entries repaired unless Options.SkipRepair was set.
	Entries []bcfs.Entry

	// Repairs lists the entries the repair pass changed.
	Repairs []Repair

	// Cached is set when the entries came from the unpack cache.
	Cached bool
}

// Open decodes a BCFZ or BCFS file. Other formats return
// [*UnsupportedFormatError]; decoding failures return the typed errors
// of lib/bcfz and lib/bcfs.
func Open(data []byte, options Options) (*Container, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var rules []xmlrepair.Rule
	if !options.SkipRepair {
		var err error
		rules, err = xmlrepair.Select(options.DisabledRepairs)
		if err != nil {
			return nil, fmt.Errorf("gpx: %w", err)
		}
	}

	format := DetectFormat(data)
	container := &Container{Format: format}
	switch format {
	case FormatBCFZ:
		entries, cached, err := unpackCompressed(data, options, logger)
		if err != nil {
			return nil, err
		}
		container.Entries, container.Cached = entries, cached
	case FormatBCFS:
		archive, err := bcfs.Unpack(data)
		if err != nil {
			return nil, err
		}
		container.Entries = archive.Entries
	default:
		return nil, &UnsupportedFormatError{Format: format}
	}

	if !options.SkipRepair {
		container.repair(rules, logger)
	}
	return container, nil
}

func unpackCompressed(data []byte, options Options, logger *slog.Logger) ([]bcfs.Entry, bool, error) {
	var key unpackcache.Key
	if options.Cache != nil {
		key = options.Cache.Key(data, options.ShortfallTolerance)
		entries, found, err := options.Cache.Get(key)
		if err != nil {
			logger.Warn("unpack cache lookup failed", "error", err)
		}
		if found {
			return entries, true, nil
		}
	}

	image, err := bcfz.Decompress(data, bcfz.Options{
		ShortfallTolerance: options.ShortfallTolerance,
		Logger:             logger,
	})
	if err != nil {
		return nil, false, err
	}
	archive, err := bcfs.Unpack(image)
	if err != nil {
		return nil, false, err
	}
	logger.Debug("unpacked container",
		"compressed_bytes", len(data),
		"image_bytes", len(image),
		"entries", len(archive.Entries),
	)

	if options.Cache != nil {
		if err := options.Cache.Put(key, archive.Entries); err != nil {
			logger.Warn("unpack cache store failed", "error", err)
		}
	}
	return archive.Entries, false, nil
}

func (c *Container) repair(rules []xmlrepair.Rule, logger *slog.Logger) {
	for i, entry := range c.Entries {
		if !xmlrepair.IsXML(entry.Name, entry.Content) {
			continue
		}
		result := xmlrepair.RepairWith(entry.Content, rules)
		if !result.Changed() {
			continue
		}
		c.Entries[i].Content = result.Content
		c.Repairs = append(c.Repairs, Repair{Entry: entry.Name, Hits: result.Hits, Latin1: result.Latin1})
		logger.Info("repaired XML entry",
			"entry", entry.Name,
			"sites", result.Total(),
			"latin1", result.Latin1,
		)
	}
}

// Lookup returns the content of the named entry.
func (c *Container) Lookup(name string) ([]byte, bool) {
	for _, entry := range c.Entries {
		if entry.Name == name {
			return entry.Content, true
		}
	}
	return nil, false
}

// Score returns the score XML.
func (c *Container) Score() ([]byte, bool) {
	return c.Lookup(ScoreName)
}

// Names returns the entry names in container order.
func (c *Container) Names() []string {
	names := make([]string, len(c.Entries))
	for i, entry := range c.Entries {
		names[i] = entry.Name
	}
	return names
}

// Write packs entries into a BCFS image, compressed to BCFZ unless
// compress is false.
func Write(entries []bcfs.Entry, compress bool) ([]byte, error) {
	image, err := bcfs.Pack(entries)
	if err != nil {
		return nil, err
	}
	if !compress {
		return image, nil
	}
	return bcfz.Compress(image)
}

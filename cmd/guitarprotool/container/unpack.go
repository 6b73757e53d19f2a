// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jamiemacari/guitarprotool/cmd/guitarprotool/cli"
	"github.com/jamiemacari/guitarprotool/lib/gpx"
	"github.com/jamiemacari/guitarprotool/lib/xmlrepair"
)

type unpackParams struct {
	cli.JSONOutput
	repairParams
	Output   string `json:"output"    flag:"output,o"  desc:"directory to write entries into (required)"`
	NoRepair bool   `json:"no_repair" flag:"no-repair" desc:"write XML entries exactly as stored"`
	Cache    bool   `json:"cache"     flag:"cache"     desc:"consult and fill the unpack cache (default: cache.enabled)"`
	Force    bool   `json:"force"     flag:"force,f"   desc:"overwrite existing entry files"`
}

type unpackedEntry struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type unpackResult struct {
	Path    string          `json:"path"`
	Format  gpx.Format      `json:"format"`
	Output  string          `json:"output"`
	Entries []unpackedEntry `json:"entries"`
	Repairs []gpx.Repair    `json:"repairs"`
	Cached  bool            `json:"cached"`
}

// UnpackCommand returns the "unpack" command.
func UnpackCommand(globals *cli.Globals) *cli.Command {
	var params unpackParams

	return &cli.Command{
		Name:    "unpack",
		Summary: "Extract the entries of a .gpx container",
		Description: `Decompress a Guitar Pro 6 container and write each of its entries
(score.gpif, misc.xml, ...) into the output directory.

XML entries are repaired on the way out unless --no-repair is given or
container.repair is false. Use "guitarprotool repair" to see what a
repair pass would change without unpacking.

With --cache (or cache.enabled in the configuration) the unpacked
entries are stored under cache.directory, keyed by the content of the
.gpx file, and reused on the next unpack of the same file.`,
		Usage:  "guitarprotool unpack <file.gpx> --output <dir> [flags]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Unpack a score into a directory",
				Command:     "guitarprotool unpack song.gpx -o song/",
			},
			{
				Description: "Unpack without touching the XML",
				Command:     "guitarprotool unpack song.gpx -o raw/ --no-repair",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("unpack requires exactly one file, got %d arguments", len(args))
			}
			if params.Output == "" {
				return cli.Validation("--output is required")
			}
			cfg, err := globals.Config()
			if err != nil {
				return err
			}
			useCache := params.Cache || cfg.Cache.Enabled
			options := openOptions(cfg, params.repairParams, params.NoRepair, useCache, logger)
			return runUnpack(args[0], &params, options, os.Stdout, logger)
		},
	}
}

func runUnpack(path string, params *unpackParams, options gpx.Options, stdout io.Writer, logger *slog.Logger) error {
	logger = logger.With("command", "unpack", "file", path)
	if !options.SkipRepair {
		if _, err := xmlrepair.Select(options.DisabledRepairs); err != nil {
			return cli.Validation("%w", err)
		}
	}

	data, err := cli.ReadFile(path)
	if err != nil {
		return err
	}
	container, err := gpx.Open(data, options)
	if err != nil {
		return openError(path, err)
	}

	if err := os.MkdirAll(params.Output, 0o755); err != nil {
		return cli.Internal("creating %s: %w", params.Output, err)
	}
	result := unpackResult{
		Path:    path,
		Format:  container.Format,
		Output:  params.Output,
		Repairs: container.Repairs,
		Cached:  container.Cached,
	}
	for _, entry := range container.Entries {
		if !filepath.IsLocal(entry.Name) {
			return cli.Validation("%s: entry name %q escapes the output directory", path, entry.Name)
		}
		if err := cli.WriteFile(filepath.Join(params.Output, entry.Name), entry.Content, params.Force); err != nil {
			return err
		}
		result.Entries = append(result.Entries, unpackedEntry{Name: entry.Name, Size: len(entry.Content)})
	}
	logger.Info("unpacked container",
		"entries", len(result.Entries),
		"repaired", len(result.Repairs),
		"cached", result.Cached,
	)

	if done, err := params.EmitJSON(stdout, result); done {
		return err
	}
	source := "decoded"
	if result.Cached {
		source = "from cache"
	}
	fmt.Fprintf(stdout, "%s: %s, %d entries %s\n", path, result.Format.Description(), len(result.Entries), source)
	for _, entry := range result.Entries {
		fmt.Fprintf(stdout, "  %-24s %8d bytes\n", entry.Name, entry.Size)
	}
	for _, repair := range result.Repairs {
		fmt.Fprintf(stdout, "  repaired %s:%s\n", repair.Entry, describeRepair(repair.Hits, repair.Latin1))
	}
	return nil
}

// describeRepair renders rule hits as " rule×count, ..." for text output.
func describeRepair(hits []xmlrepair.Hit, latin1 bool) string {
	var text string
	if latin1 {
		text = " decoded as ISO-8859-1;"
	}
	for i, hit := range hits {
		if i > 0 {
			text += ","
		}
		text += fmt.Sprintf(" %s x%d", hit.Rule, hit.Count)
	}
	return text
}

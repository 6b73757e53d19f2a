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
	"github.com/jamiemacari/guitarprotool/lib/bcfs"
	"github.com/jamiemacari/guitarprotool/lib/gpx"
)

type packParams struct {
	cli.JSONOutput
	Output       string `json:"output"       flag:"output,o"     desc:"container file to write (required)"`
	Uncompressed bool   `json:"uncompressed" flag:"uncompressed" desc:"write a BCFS image instead of a compressed BCFZ container"`
	Force        bool   `json:"force"        flag:"force,f"      desc:"overwrite an existing output file"`
}

type packResult struct {
	Output  string     `json:"output"`
	Format  gpx.Format `json:"format"`
	Entries []string   `json:"entries"`
	Size    int        `json:"size"`
}

// PackCommand returns the "pack" command.
func PackCommand() *cli.Command {
	var params packParams

	return &cli.Command{
		Name:    "pack",
		Summary: "Build a .gpx container from a directory",
		Description: `Pack every regular file in a directory into a Guitar Pro 6 container,
the inverse of "guitarprotool unpack". Files are stored in name order;
subdirectories are ignored.

The container is BCFZ-compressed unless --uncompressed is given.`,
		Usage:  "guitarprotool pack <dir> --output <file.gpx> [flags]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Repack an edited score",
				Command:     "guitarprotool pack song/ -o song-fixed.gpx",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("pack requires exactly one directory, got %d arguments", len(args))
			}
			if params.Output == "" {
				return cli.Validation("--output is required")
			}
			return runPack(args[0], &params, os.Stdout, logger)
		},
	}
}

func runPack(directory string, params *packParams, stdout io.Writer, logger *slog.Logger) error {
	entries, err := readEntries(directory)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return cli.Validation("%s contains no files to pack", directory)
	}

	data, err := gpx.Write(entries, !params.Uncompressed)
	if err != nil {
		return cli.Validation("packing %s: %w", directory, err)
	}
	if err := cli.WriteFile(params.Output, data, params.Force); err != nil {
		return err
	}

	result := packResult{
		Output: params.Output,
		Format: gpx.DetectFormat(data),
		Size:   len(data),
	}
	for _, entry := range entries {
		result.Entries = append(result.Entries, entry.Name)
	}
	logger.Info("packed container",
		"command", "pack",
		"output", params.Output,
		"entries", len(entries),
		"bytes", len(data),
	)

	if done, err := params.EmitJSON(stdout, result); done {
		return err
	}
	fmt.Fprintf(stdout, "%s: %s, %d entries, %d bytes\n",
		result.Output, result.Format.Description(), len(result.Entries), result.Size)
	return nil
}

// readEntries loads the regular files of directory in name order.
func readEntries(directory string) ([]bcfs.Entry, error) {
	listing, err := os.ReadDir(directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cli.NotFound("%s: %w", directory, err)
		}
		return nil, cli.Internal("reading %s: %w", directory, err)
	}
	var entries []bcfs.Entry
	for _, item := range listing {
		if !item.Type().IsRegular() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(directory, item.Name()))
		if err != nil {
			return nil, cli.Internal("reading %s: %w", item.Name(), err)
		}
		entries = append(entries, bcfs.Entry{Name: item.Name(), Content: content})
	}
	return entries, nil
}

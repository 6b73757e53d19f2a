// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/jamiemacari/guitarprotool/cmd/guitarprotool/cli"
	"github.com/jamiemacari/guitarprotool/lib/bcfz"
	"github.com/jamiemacari/guitarprotool/lib/gpx"
)

type detectParams struct {
	cli.JSONOutput
}

// detection is one row of detect output.
type detection struct {
	Path        string     `json:"path"`
	Format      gpx.Format `json:"format"`
	Description string     `json:"description"`
	Openable    bool       `json:"openable"`
	Size        int        `json:"size"`

	// DecompressedSize is the size declared by a BCFZ header.
	DecompressedSize uint32 `json:"decompressed_size,omitempty"`

	// ExtensionFormat is what the file name suggests, reported when it
	// disagrees with the content.
	ExtensionFormat *gpx.Format `json:"extension_format,omitempty"`
}

// DetectCommand returns the "detect" command.
func DetectCommand() *cli.Command {
	var params detectParams

	return &cli.Command{
		Name:    "detect",
		Summary: "Identify the format of Guitar Pro files",
		Description: `Identify each file by its leading bytes: a compressed Guitar Pro 6
container (BCFZ), an uncompressed sector image (BCFS), a Guitar Pro 7/8
ZIP archive, or a Guitar Pro 3-5 binary.

Exits 1 when any file is not recognised.`,
		Usage:  "guitarprotool detect <file>... [flags]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Check what kind of file a download is",
				Command:     "guitarprotool detect song.gpx",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return cli.Validation("detect requires at least one file")
			}
			return runDetect(args, &params, os.Stdout, logger)
		},
	}
}

func runDetect(paths []string, params *detectParams, stdout io.Writer, logger *slog.Logger) error {
	results := make([]detection, 0, len(paths))
	unknown := 0
	for _, path := range paths {
		data, err := cli.ReadFile(path)
		if err != nil {
			return err
		}
		result := detect(path, data)
		if result.Format == gpx.FormatUnknown {
			unknown++
		}
		logger.Debug("detected format", "path", path, "format", result.Format)
		results = append(results, result)
	}

	if done, err := params.EmitJSON(stdout, results); done {
		if err == nil && unknown > 0 {
			return &cli.ExitError{Code: 1}
		}
		return err
	}

	writer := tabwriter.NewWriter(stdout, 2, 0, 2, ' ', 0)
	for _, result := range results {
		line := fmt.Sprintf("%s\t%s\t%s", result.Path, result.Format, result.Description)
		if result.DecompressedSize > 0 {
			line += fmt.Sprintf(" (%d bytes unpacked)", result.DecompressedSize)
		}
		if result.ExtensionFormat != nil {
			line += fmt.Sprintf("; name suggests %s", result.ExtensionFormat.Description())
		}
		fmt.Fprintln(writer, line)
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	if unknown > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func detect(path string, data []byte) detection {
	format := gpx.DetectFormat(data)
	result := detection{
		Path:        path,
		Format:      format,
		Description: format.Description(),
		Openable:    format.Openable(),
		Size:        len(data),
	}
	if format == gpx.FormatBCFZ {
		if header, err := bcfz.ParseHeader(data); err == nil {
			result.DecompressedSize = header.DecompressedSize
		}
	}
	if named := gpx.FormatFromExtension(path); named != gpx.FormatUnknown && named != format {
		result.ExtensionFormat = &named
	}
	return result
}

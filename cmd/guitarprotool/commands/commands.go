// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete guitarprotool command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jamiemacari/guitarprotool/cmd/guitarprotool/cli"
	"github.com/jamiemacari/guitarprotool/cmd/guitarprotool/container"
	"github.com/jamiemacari/guitarprotool/cmd/guitarprotool/syncpoints"
	"github.com/jamiemacari/guitarprotool/lib/version"
)

// Root builds and returns the guitarprotool command tree. The global
// --config and --verbose flags are accepted before or after the
// subcommand name.
func Root() *cli.Command {
	globals := &cli.Globals{}

	return &cli.Command{
		Name: "guitarprotool",
		Description: `guitarprotool: Guitar Pro 6/7 container and audio sync tooling.

Open, repair and rebuild .gpx and .gp containers, and plan the sync
points that keep a score in time with a recording of the song.`,
		Persistent: globals,
		Logger:     globals.NewLogger,
		Subcommands: []*cli.Command{
			container.DetectCommand(),
			container.UnpackCommand(globals),
			container.PackCommand(),
			container.RepairCommand(globals),
			syncpoints.SyncCommand(globals),
			syncpoints.InspectCommand(),
			versionCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Identify a file's container format",
				Command:     "guitarprotool detect song.gpx",
			},
			{
				Description: "Unpack a score, repairing damaged XML",
				Command:     "guitarprotool unpack song.gpx -o song/",
			},
			{
				Description: "Rebuild a container from an unpacked directory",
				Command:     "guitarprotool pack song/ -o fixed.gpx",
			},
			{
				Description: "Plan sync points for a recording",
				Command:     "guitarprotool sync --beats beats.txt --tempo 120 --bars 64 -o plan.cbor",
			},
			{
				Description: "Use a configuration file with debug logging",
				Command:     "guitarprotool --config guitarprotool.yaml -v sync -b beats.txt -t 96",
			},
		},
	}
}

type versionParams struct {
	cli.JSONOutput
}

func versionCommand() *cli.Command {
	var params versionParams

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Params:  func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("version takes no arguments, got %q", args[0])
			}
			if done, err := params.EmitJSON(os.Stdout, version.Current()); done {
				return err
			}
			fmt.Printf("guitarprotool %s\n", version.Full())
			return nil
		},
	}
}
